package camstream

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/lancam/camstream/storage"
)

// buildRouter prepares the HTTP surface served by the session's listening
// endpoint. Every response carries permissive CORS so arbitrary local
// clients (browsers, media players) connect without preflight friction.
func (s *Session) buildRouter(cfg StreamConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))
	log.Info().Str("scope", SCOPE_HTTP).Str("event", EVENT_HTTP_CORS_ENABLE).Msg("Permissive CORS enabled")

	if s.creds != nil {
		router.Use(basicAuthGuard(s.creds.Username, s.creds.Password))
	}
	// Registered after the guard so the profiling endpoints honor it too
	pprof.Register(router)

	router.GET(cfg.StreamPath, StreamWrapper(s))
	if cfg.StreamPath != "/stream" {
		router.GET("/stream", StreamWrapper(s))
	}
	router.GET("/frame", FrameWrapper(s))
	router.GET("/status", StatusWrapper(s, cfg))
	router.GET("/ws", WebSocketWrapper(s))
	router.POST("/snapshot", SnapshotWrapper(s))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("scope", SCOPE_HTTP).Str("event", EVENT_HTTP_PREPARE).Str("stream_path", cfg.StreamPath).Msg("Router prepared")
	return router
}

// StreamWrapper returns the multipart stream handler
func StreamWrapper(s *Session) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		if s.State() != SESSION_STATE_STREAMING {
			// Covers Preparing as well: clients connecting before the session
			// reaches Streaming are refused, not queued
			ctx.String(http.StatusServiceUnavailable, "Stream is not active (state: %s)\n", s.State())
			return
		}
		ctx.Header("Content-Type", StreamContentType)
		ctx.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		ctx.Header("Connection", "close")
		ctx.Writer.WriteHeader(http.StatusOK)
		ctx.Writer.Flush()
		err := s.delivery.Stream(ctx.Request.Context(), ctx.Writer)
		if err != nil {
			// A failed client write terminates only this loop
			log.Info().Err(err).Str("scope", SCOPE_DELIVERY).Str("remote_addr", ctx.Request.RemoteAddr).Msg("Delivery loop ended")
		}
	}
}

// FrameWrapper returns the single most-recent frame handler
func FrameWrapper(s *Session) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		frame, ok := s.buffer.Latest()
		if !ok {
			ctx.Status(http.StatusNoContent)
			return
		}
		ctx.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		ctx.Data(http.StatusOK, "image/jpeg", frame)
	}
}

// StatusWrapper returns the plaintext health handler. Not machine-parsed.
func StatusWrapper(s *Session, cfg StreamConfig) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		state := s.State()
		stateWord := "Stopped"
		if state == SESSION_STATE_STREAMING {
			stateWord = "Running"
		}
		body := fmt.Sprintf("State: %s (%s)\nOutput: %s\nEncoding: %dx%d @ %d fps, max %d bps\nElapsed: %s\nClients: %d\n",
			stateWord, state,
			cfg.StreamURL(),
			cfg.Quality.Width, cfg.Quality.Height, cfg.Quality.FrameRate, cfg.MaxBitrate,
			s.stats.Elapsed().Round(time.Second),
			s.delivery.ClientsCount(),
		)
		ctx.String(http.StatusOK, body)
	}
}

// SnapshotWrapper persists the current latest frame through the configured
// snapshot storage
func SnapshotWrapper(s *Session) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		if s.snapshots == nil {
			ctx.String(http.StatusNotImplemented, "No snapshot storage configured\n")
			return
		}
		frame, ok := s.buffer.Latest()
		if !ok {
			ctx.Status(http.StatusNoContent)
			return
		}
		name := fmt.Sprintf("snapshot_%d.jpg", time.Now().Unix())
		stored, err := s.snapshots.SaveSnapshot(ctx.Request.Context(), storage.SnapshotUnit{Name: name, Payload: frame})
		if err != nil {
			log.Error().Err(err).Str("scope", SCOPE_SNAPSHOT).Str("event", EVENT_SNAPSHOT_SAVE).Msg("Can't save snapshot")
			ctx.String(http.StatusInternalServerError, "Can't save snapshot\n")
			return
		}
		log.Info().Str("scope", SCOPE_SNAPSHOT).Str("event", EVENT_SNAPSHOT_SAVE).Str("object", stored).Msg("Snapshot saved")
		ctx.JSON(http.StatusOK, gin.H{"object": stored})
	}
}

// basicAuthGuard enforces the session credentials on every route
func basicAuthGuard(username, password string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, pass, ok := ctx.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(password)) != 1 {
			ctx.Header("WWW-Authenticate", `Basic realm="camstream"`)
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		ctx.Next()
	}
}
