package camstream

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	wsDeadlineTimeout = 10 * time.Second
	wsStatsInterval   = 1 * time.Second

	wsUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
)

// DiagnosticsPayload is the stats snapshot pushed to websocket subscribers
type DiagnosticsPayload struct {
	State        string  `json:"state"`
	AchievedRate float64 `json:"achieved_rate"`
	TargetRate   int     `json:"target_rate"`
	Occupancy    float64 `json:"occupancy"`
	Queued       int     `json:"queued"`
	Clients      int     `json:"clients"`
	ElapsedSec   float64 `json:"elapsed_sec"`
}

// WebSocketWrapper returns the live diagnostics feed handler
func WebSocketWrapper(s *Session) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		wsDiagnostics(s, ctx.Writer, ctx.Request)
	}
}

// wsDiagnostics upgrades the connection and pushes one stats payload per
// second until the peer disconnects or the session leaves Streaming
func wsDiagnostics(s *Session, w http.ResponseWriter, r *http.Request) {
	log.Info().Str("scope", SCOPE_WS_HANDLER).Str("event", EVENT_WS_REQUEST).Str("remote_addr", r.RemoteAddr).Msg("Diagnostics subscriber connected")
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("scope", SCOPE_WS_HANDLER).Str("event", EVENT_WS_UPGRADER).Str("remote_addr", r.RemoteAddr).Msg("Can't call websocket upgrader")
		return
	}
	defer func() {
		log.Info().Str("scope", SCOPE_WS_HANDLER).Str("event", EVENT_WS_REQUEST).Str("remote_addr", r.RemoteAddr).Msg("Diagnostics subscriber disconnected")
		conn.Close()
	}()

	// Drain control frames so peer close is noticed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsStatsInterval)
	defer ticker.Stop()
	for range ticker.C {
		payload := DiagnosticsPayload{
			State:        s.State().String(),
			AchievedRate: s.ingestor.AchievedRate(),
			TargetRate:   s.rates.Target(),
			Occupancy:    s.buffer.Occupancy(),
			Queued:       s.buffer.Len(),
			Clients:      s.delivery.ClientsCount(),
			ElapsedSec:   s.stats.Elapsed().Seconds(),
		}
		if err := conn.SetWriteDeadline(time.Now().Add(wsDeadlineTimeout)); err != nil {
			return
		}
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
		if s.State() != SESSION_STATE_STREAMING {
			return
		}
	}
}
