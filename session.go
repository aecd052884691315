package camstream

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lancam/camstream/storage"
	"github.com/lancam/camstream/vault"
)

// SessionOptions wires the session's collaborators and tunables. The
// buffer capacity, occupancy band, rate target and segment ceiling are
// empirically chosen defaults exposed here instead of being hard-coded.
type SessionOptions struct {
	Vault     vault.CredentialVault
	Capture   CaptureSource
	Snapshots storage.SnapshotStorage

	BufferCapacity    int
	TargetBand        float64
	InitialTargetRate int
	MaxSegments       int
	OverlayEnabled    bool
}

// Session is the single live streaming lifecycle object. It exclusively
// owns the frame buffer and the listening endpoint; at most one session is
// in a non-idle state at a time, enforced by the Start() precondition.
type Session struct {
	mu sync.Mutex

	state   SessionState
	current *StreamConfig
	lastErr *StreamError

	buffer   *FrameBuffer
	rates    *RateController
	ingestor *Ingestor
	delivery *Delivery
	stats    *StreamingStats

	credVault vault.CredentialVault
	capture   CaptureSource
	snapshots storage.SnapshotStorage

	listener net.Listener
	server   *http.Server
	cancel   context.CancelFunc

	// creds retrieved on start when authentication is enabled, guarding the
	// HTTP surface with basic auth. Never persisted.
	creds *vault.Credentials
}

// NewSession prepares an idle session with the given collaborators
func NewSession(opts SessionOptions) *Session {
	buffer := NewFrameBuffer(opts.BufferCapacity, opts.TargetBand)
	rates := NewRateController(opts.InitialTargetRate)
	return &Session{
		state:     SESSION_STATE_IDLE,
		buffer:    buffer,
		rates:     rates,
		ingestor:  NewIngestor(buffer, rates, opts.OverlayEnabled),
		delivery:  NewDelivery(buffer, rates, opts.MaxSegments),
		stats:     &StreamingStats{},
		credVault: opts.Vault,
		capture:   opts.Capture,
		snapshots: opts.Snapshots,
	}
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the classified error of the most recent failure, nil
// outside of the Error state
func (s *Session) LastError() *StreamError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CurrentConfig returns a copy of the accepted configuration, if any
func (s *Session) CurrentConfig() (StreamConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return StreamConfig{}, false
	}
	return *s.current, true
}

// Ingestor exposes the frame sink handed to the capture collaborator
func (s *Session) Ingestor() *Ingestor {
	return s.ingestor
}

// UpdateConfiguration validates cfg and replaces the current configuration.
// When authentication is requested the credentials are handed to the vault
// and only a non-secret reference is retained; when it is not, any
// previously stored credentials are proactively cleared. Session state is
// never changed and the previous configuration survives any failure.
func (s *Session) UpdateConfiguration(ctx context.Context, cfg StreamConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := cfg.Validate(); err != nil {
		return err
	}
	key := cfg.credentialKey()
	if cfg.AuthEnabled {
		err := s.credVault.Store(ctx, key, vault.Credentials{Username: cfg.Username, Password: cfg.Password})
		if err != nil {
			return NewStreamError(ERROR_CODE_CONFIGURATION, errors.Wrap(err, "Can't store credentials in the vault"))
		}
		cfg.CredentialRef = key
	} else {
		if err := s.credVault.Clear(ctx, key); err != nil {
			log.Warn().Err(err).Str("scope", SCOPE_SESSION).Str("event", EVENT_SESSION_CONFIGURE).Msg("Can't clear stale credentials")
		}
		cfg.CredentialRef = ""
	}
	// Plaintext never outlives validation
	cfg.Password = ""
	s.current = &cfg
	log.Info().Str("scope", SCOPE_SESSION).Str("event", EVENT_SESSION_CONFIGURE).Str("address", cfg.Address).Int("port", cfg.Port).Str("stream_path", cfg.StreamPath).Bool("auth_enabled", cfg.AuthEnabled).Msg("Configuration accepted")
	return nil
}

// Start brings the session from Idle (or Stopped/Error) to Streaming:
// re-validates the configuration, retrieves credentials when needed, binds
// the listening endpoint, arms the ingestion layer and opens the capture
// source. Returns the externally reachable stream URL.
func (s *Session) Start(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.startable() {
		return "", errors.Wrapf(ErrSessionAlreadyActive, "state is '%s'", s.state)
	}
	if s.current == nil {
		cfg := DefaultStreamConfig()
		s.current = &cfg
		log.Info().Str("scope", SCOPE_SESSION).Str("event", EVENT_SESSION_START).Msg("No configuration set, falling back to defaults")
	}
	cfg := *s.current
	// Defense against the stored configuration having gone stale
	if err := cfg.Validate(); err != nil {
		return "", s.failLocked(ERROR_CODE_CONFIGURATION, err)
	}
	s.state = SESSION_STATE_PREPARING
	s.lastErr = nil

	if cfg.AuthEnabled {
		creds, err := s.credVault.Retrieve(ctx, cfg.CredentialRef)
		if err != nil {
			return "", s.failLocked(ERROR_CODE_CONFIGURATION, errors.Wrap(err, "Can't retrieve stored credentials"))
		}
		s.creds = &creds
	} else {
		s.creds = nil
	}

	listenAddr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return "", s.failLocked(classifyBindError(err), errors.Wrapf(err, "Can't bind listening endpoint on '%s'", listenAddr))
	}
	s.listener = listener

	streamCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	events := make(chan CaptureEvent, 16)

	s.server = &http.Server{Handler: s.buildRouter(cfg)}
	go func(srv *http.Server, ln net.Listener) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("scope", SCOPE_HTTP).Str("event", EVENT_HTTP_STOP).Msg("HTTP server terminated")
		}
	}(s.server, listener)

	s.ingestor.Arm()
	if s.capture != nil {
		if err := s.capture.Open(streamCtx, s.ingestor, events); err != nil {
			s.teardownLocked()
			return "", s.failLocked(ERROR_CODE_CAMERA, errors.Wrap(err, "Can't open capture source"))
		}
	}
	go s.adjustLoop(streamCtx)
	go s.consumeCaptureEvents(streamCtx, events)

	s.state = SESSION_STATE_STREAMING
	s.stats.MarkStarted(time.Now())
	metricSessionStarts.Inc()
	streamURL := cfg.StreamURL()
	log.Info().Str("scope", SCOPE_SESSION).Str("event", EVENT_SESSION_START).Str("stream_url", streamURL).Msg("Session is streaming")
	return streamURL, nil
}

// Stop tears the session down. Idempotent: stopping an already-stopped or
// never-started session succeeds immediately. Returns the elapsed duration
// of the stopped session for display.
func (s *Session) Stop(ctx context.Context) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SESSION_STATE_STREAMING && s.state != SESSION_STATE_PREPARING {
		return 0, nil
	}
	s.state = SESSION_STATE_STOPPING
	elapsed := s.stats.Elapsed()
	s.teardownLocked()
	s.stats.Reset()
	s.state = SESSION_STATE_STOPPED
	log.Info().Str("scope", SCOPE_SESSION).Str("event", EVENT_SESSION_STOP).Dur("elapsed", elapsed).Msg("Session stopped")
	return elapsed, nil
}

// ClearError resets an errored session back to Idle. Only valid from the
// Error state.
func (s *Session) ClearError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SESSION_STATE_ERROR {
		return errors.Wrapf(ErrNotInErrorState, "state is '%s'", s.state)
	}
	s.state = SESSION_STATE_IDLE
	s.lastErr = nil
	log.Info().Str("scope", SCOPE_SESSION).Str("event", EVENT_SESSION_CLEAR_ERROR).Msg("Error cleared")
	return nil
}

// failLocked classifies err, transitions to Error and returns the typed
// error. Caller must hold s.mu.
func (s *Session) failLocked(code ErrorCode, err error) error {
	serr := NewStreamError(code, err)
	s.state = SESSION_STATE_ERROR
	s.lastErr = serr
	metricSessionErrors.WithLabelValues(code.String()).Inc()
	log.Error().Err(err).Str("scope", SCOPE_SESSION).Str("event", EVENT_SESSION_ERROR).Str("code", code.String()).Msg("Session failed")
	return serr
}

// teardownLocked halts ingestion, closes the capture source and the
// listening endpoint and drains the buffer. Closing the endpoint propagates
// disconnection to every delivery loop within one polling interval.
// Caller must hold s.mu.
func (s *Session) teardownLocked() {
	s.ingestor.Disarm()
	if s.capture != nil {
		if err := s.capture.Close(); err != nil {
			log.Warn().Err(err).Str("scope", SCOPE_CAPTURE).Str("event", EVENT_SESSION_STOP).Msg("Can't close capture source")
		}
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.server != nil {
		// Close (not graceful Shutdown) so long-lived stream connections are
		// cut immediately and loops observe the exit
		if err := s.server.Close(); err != nil {
			log.Warn().Err(err).Str("scope", SCOPE_HTTP).Str("event", EVENT_HTTP_STOP).Msg("Can't close HTTP server")
		}
		s.server = nil
	}
	if s.listener != nil {
		// The Serve goroutine may not have registered the listener with the
		// server yet, so close it directly as well. The double close when it
		// has is harmless.
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Warn().Err(err).Str("scope", SCOPE_HTTP).Str("event", EVENT_HTTP_STOP).Msg("Can't close listening endpoint")
		}
		s.listener = nil
	}
	s.creds = nil
	s.buffer.Clear()
}

// adjustLoop runs the shared once-per-second target-rate adjustment while
// the session is streaming
func (s *Session) adjustLoop(ctx context.Context) {
	ticker := time.NewTicker(adjustWindow)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			occupancy := s.buffer.Occupancy()
			target := s.rates.Adjust(occupancy)
			metricTargetRate.Set(float64(target))
			metricBufferOccupancy.Set(occupancy)
			log.Debug().Str("scope", SCOPE_DELIVERY).Str("event", EVENT_RATE_ADJUST).Float64("occupancy", occupancy).Int("target_rate", target).Msg("Adjusted target rate")
		}
	}
}

// consumeCaptureEvents turns capture collaborator failures into session
// error transitions
func (s *Session) consumeCaptureEvents(ctx context.Context, events <-chan CaptureEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev.Kind {
			case CAPTURE_EVENT_ERROR:
				log.Error().Err(ev.Err).Str("scope", SCOPE_CAPTURE).Str("event", EVENT_SESSION_ERROR).Str("message", ev.Message).Msg("Capture source failed")
				s.mu.Lock()
				if s.state == SESSION_STATE_STREAMING || s.state == SESSION_STATE_PREPARING {
					s.teardownLocked()
					s.failLocked(ERROR_CODE_CAMERA, ev.Err)
				}
				s.mu.Unlock()
				return
			default:
				log.Info().Str("scope", SCOPE_CAPTURE).Str("message", ev.Message).Msg("Capture event")
			}
		}
	}
}

// classifyBindError maps listener errors onto the taxonomy: resolution
// failures are network-class, refusal to bind is server-unreachable
func classifyBindError(err error) ErrorCode {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ERROR_CODE_NETWORK
	}
	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return ERROR_CODE_NETWORK
	}
	return ERROR_CODE_SERVER_UNREACHABLE
}
