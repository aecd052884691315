package configuration

import (
	"fmt"
)

// Configuration represents user defined settings for the capture server
type Configuration struct {
	StreamCfg   StreamSettings   `json:"stream" toml:"stream"`
	TuningCfg   TuningSettings   `json:"tuning" toml:"tuning"`
	VaultCfg    VaultSettings    `json:"vault" toml:"vault"`
	SnapshotCfg SnapshotSettings `json:"snapshots" toml:"snapshots"`
	LoggerCfg   LoggerSettings   `json:"logger" toml:"logger"`
}

// StreamSettings carries the initial stream configuration submitted to the
// session on boot
type StreamSettings struct {
	Address          string          `json:"address" toml:"address"`
	Port             int             `json:"port" toml:"port"`
	StreamPath       string          `json:"stream_path" toml:"stream_path"`
	Quality          QualitySettings `json:"quality" toml:"quality"`
	AudioEnabled     bool            `json:"audio_enabled" toml:"audio_enabled"`
	MaxBitrate       int             `json:"max_bitrate" toml:"max_bitrate"`
	KeyFrameInterval int             `json:"keyframe_interval" toml:"keyframe_interval"`
	AuthEnabled      bool            `json:"auth_enabled" toml:"auth_enabled"`
	Username         string          `json:"username" toml:"username"`
	Password         string          `json:"password" toml:"password"`
}

// QualitySettings is the resolution/frame-rate/bitrate triple
type QualitySettings struct {
	Width     int `json:"width" toml:"width"`
	Height    int `json:"height" toml:"height"`
	FrameRate int `json:"frame_rate" toml:"frame_rate"`
	Bitrate   int `json:"bitrate" toml:"bitrate"`
}

// TuningSettings exposes the empirically chosen pipeline constants. Zero
// values fall back to defaults in post-processing.
type TuningSettings struct {
	BufferCapacity    int     `json:"buffer_capacity" toml:"buffer_capacity"`
	TargetBand        float64 `json:"target_band" toml:"target_band"`
	InitialTargetRate int     `json:"initial_target_rate" toml:"initial_target_rate"`
	MaxSegments       int     `json:"max_segments" toml:"max_segments"`
	OverlayEnabled    bool    `json:"overlay_enabled" toml:"overlay_enabled"`
	// TestSourceFPS > 0 runs the built-in test pattern source at that rate
	TestSourceFPS int `json:"test_source_fps" toml:"test_source_fps"`
}

// VaultSettings selects the credential vault backend
type VaultSettings struct {
	// 'memory' or 'redis'
	Type       string `json:"type" toml:"type"`
	RedisAddr  string `json:"redis_addr" toml:"redis_addr"`
	RedisDB    int    `json:"redis_db" toml:"redis_db"`
	TTLSeconds int    `json:"ttl_seconds" toml:"ttl_seconds"`
}

// SnapshotSettings selects the still-frame snapshot storage backend
type SnapshotSettings struct {
	Enabled bool `json:"enabled" toml:"enabled"`
	// 'filesystem' or 'minio'
	Type      string        `json:"type" toml:"type"`
	Directory string        `json:"directory" toml:"directory"`
	Minio     MinioSettings `json:"minio_settings" toml:"minio_settings"`
}

// MinioSettings
type MinioSettings struct {
	Host          string `json:"host" toml:"host"`
	Port          int32  `json:"port" toml:"port"`
	SSL           bool   `json:"ssl" toml:"ssl"`
	User          string `json:"user" toml:"user"`
	Password      string `json:"password" toml:"password"`
	DefaultBucket string `json:"default_bucket" toml:"default_bucket"`
	DefaultPath   string `json:"default_path" toml:"default_path"`
}

func (ms *MinioSettings) String() string {
	return fmt.Sprintf("Host '%s' Port '%d' User '%s' Bucket '%s' Path '%s'", ms.Host, ms.Port, ms.User, ms.DefaultBucket, ms.DefaultPath)
}

// LoggerSettings tunes zerolog output
type LoggerSettings struct {
	// 'debug', 'info', 'warn' or 'error'
	Level  string `json:"level" toml:"level"`
	Pretty bool   `json:"pretty" toml:"pretty"`
}
