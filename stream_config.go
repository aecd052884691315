package camstream

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	MinBitrate = 100_000
	MaxBitrate = 10_000_000

	MinKeyFrameInterval = 1
	MaxKeyFrameInterval = 60

	minPasswordLength = 8
)

var hostnameRegExp = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*$`)

// QualityProfile is a resolution/frame-rate/bitrate triple
type QualityProfile struct {
	Width     int `json:"width" toml:"width"`
	Height    int `json:"height" toml:"height"`
	FrameRate int `json:"frame_rate" toml:"frame_rate"`
	Bitrate   int `json:"bitrate" toml:"bitrate"`
}

// StreamConfig is an immutable value describing a single streaming session.
// It is validated before the session accepts it as current; once
// authentication credentials are handed to the vault only CredentialRef is
// retained, never the plaintext password.
type StreamConfig struct {
	Address          string         `json:"address" toml:"address"`
	Port             int            `json:"port" toml:"port"`
	StreamPath       string         `json:"stream_path" toml:"stream_path"`
	Quality          QualityProfile `json:"quality" toml:"quality"`
	AudioEnabled     bool           `json:"audio_enabled" toml:"audio_enabled"`
	MaxBitrate       int            `json:"max_bitrate" toml:"max_bitrate"`
	KeyFrameInterval int            `json:"keyframe_interval" toml:"keyframe_interval"`
	AuthEnabled      bool           `json:"auth_enabled" toml:"auth_enabled"`
	Username         string         `json:"username" toml:"username"`
	Password         string         `json:"-" toml:"-"`
	// CredentialRef is the non-secret vault key retained after validation
	CredentialRef string `json:"credential_ref" toml:"-"`
}

// DefaultStreamConfig is the documented fallback used by Start() when no
// configuration has been submitted yet
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Address:    "0.0.0.0",
		Port:       8080,
		StreamPath: "/stream",
		Quality: QualityProfile{
			Width:     1280,
			Height:    720,
			FrameRate: 30,
			Bitrate:   2_000_000,
		},
		MaxBitrate:       4_000_000,
		KeyFrameInterval: 2,
	}
}

// Validate runs the whole validation pipeline in order, first failure wins.
// Every failure carries the configuration classification code.
func (cfg *StreamConfig) Validate() error {
	if err := validateAddress(cfg.Address); err != nil {
		return NewStreamError(ERROR_CODE_CONFIGURATION, err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return NewStreamError(ERROR_CODE_CONFIGURATION, fmt.Errorf("port %d is out of range [1, 65535]", cfg.Port))
	}
	if err := validateStreamPath(cfg.StreamPath); err != nil {
		return NewStreamError(ERROR_CODE_CONFIGURATION, err)
	}
	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.Username) == "" {
			return NewStreamError(ERROR_CODE_CONFIGURATION, fmt.Errorf("username must not be empty when authentication is enabled"))
		}
		// CredentialRef set means the password already lives in the vault
		if cfg.CredentialRef == "" {
			if len(cfg.Password) < minPasswordLength {
				return NewStreamError(ERROR_CODE_CONFIGURATION, fmt.Errorf("password must be at least %d characters", minPasswordLength))
			}
		}
	}
	if cfg.MaxBitrate < MinBitrate || cfg.MaxBitrate > MaxBitrate {
		return NewStreamError(ERROR_CODE_CONFIGURATION, fmt.Errorf("max bitrate %d is out of range [%d, %d]", cfg.MaxBitrate, MinBitrate, MaxBitrate))
	}
	if cfg.KeyFrameInterval < MinKeyFrameInterval || cfg.KeyFrameInterval > MaxKeyFrameInterval {
		return NewStreamError(ERROR_CODE_CONFIGURATION, fmt.Errorf("keyframe interval %d is out of range [%d, %d] seconds", cfg.KeyFrameInterval, MinKeyFrameInterval, MaxKeyFrameInterval))
	}
	return nil
}

// StreamURL returns the externally reachable stream endpoint for this
// configuration. A wildcard bind address is resolved to a concrete
// outbound interface address so the URL is usable from another machine.
func (cfg *StreamConfig) StreamURL() string {
	host := cfg.Address
	if host == "0.0.0.0" || host == "::" || host == "" {
		host = outboundAddress()
	}
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port)), cfg.StreamPath)
}

// credentialKey derives the non-secret vault key for this configuration
func (cfg *StreamConfig) credentialKey() string {
	return fmt.Sprintf("stream/%s:%d", cfg.Address, cfg.Port)
}

func validateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return errors.New("server address must not be empty")
	}
	if ip := net.ParseIP(address); ip != nil {
		return nil
	}
	if !hostnameRegExp.MatchString(address) {
		return errors.Errorf("server address '%s' is not a valid IP or hostname", address)
	}
	return nil
}

func validateStreamPath(path string) error {
	if path == "" {
		return errors.New("stream path must not be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return errors.Errorf("stream path '%s' must start with '/'", path)
	}
	if strings.Contains(path, "..") {
		return errors.Errorf("stream path '%s' must not contain path traversal", path)
	}
	for _, r := range path {
		if r < 0x20 || r == 0x7f {
			return errors.New("stream path must not contain control characters")
		}
		if r == ' ' {
			return errors.New("stream path must not contain spaces")
		}
	}
	return nil
}

// outboundAddress resolves the preferred local interface address without
// sending any traffic
func outboundAddress() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
