package configuration

const (
	defaultAddress    = "0.0.0.0"
	defaultPort       = 8080
	defaultStreamPath = "/stream"

	defaultBufferCapacity    = 80
	defaultTargetBand        = 0.7
	defaultInitialTargetRate = 30
	defaultMaxSegments       = 10000

	defaultVaultType    = "memory"
	defaultRedisAddr    = "localhost:6379"
	defaultSnapshotType = "filesystem"
	defaultSnapshotDir  = "./snapshots"

	defaultLogLevel = "info"
)

func postProcessDefaults(cfg *Configuration) {
	if cfg.StreamCfg.Address == "" {
		cfg.StreamCfg.Address = defaultAddress
	}
	if cfg.StreamCfg.Port == 0 {
		cfg.StreamCfg.Port = defaultPort
	}
	if cfg.StreamCfg.StreamPath == "" {
		cfg.StreamCfg.StreamPath = defaultStreamPath
	}
	if cfg.StreamCfg.Quality.Width == 0 {
		cfg.StreamCfg.Quality.Width = 1280
	}
	if cfg.StreamCfg.Quality.Height == 0 {
		cfg.StreamCfg.Quality.Height = 720
	}
	if cfg.StreamCfg.Quality.FrameRate == 0 {
		cfg.StreamCfg.Quality.FrameRate = 30
	}
	if cfg.StreamCfg.Quality.Bitrate == 0 {
		cfg.StreamCfg.Quality.Bitrate = 2_000_000
	}
	if cfg.StreamCfg.MaxBitrate == 0 {
		cfg.StreamCfg.MaxBitrate = 4_000_000
	}
	if cfg.StreamCfg.KeyFrameInterval == 0 {
		cfg.StreamCfg.KeyFrameInterval = 2
	}

	if cfg.TuningCfg.BufferCapacity == 0 {
		cfg.TuningCfg.BufferCapacity = defaultBufferCapacity
	}
	if cfg.TuningCfg.TargetBand == 0 {
		cfg.TuningCfg.TargetBand = defaultTargetBand
	}
	if cfg.TuningCfg.InitialTargetRate == 0 {
		cfg.TuningCfg.InitialTargetRate = defaultInitialTargetRate
	}
	if cfg.TuningCfg.MaxSegments == 0 {
		cfg.TuningCfg.MaxSegments = defaultMaxSegments
	}

	if cfg.VaultCfg.Type == "" {
		cfg.VaultCfg.Type = defaultVaultType
	}
	if cfg.VaultCfg.RedisAddr == "" {
		cfg.VaultCfg.RedisAddr = defaultRedisAddr
	}

	if cfg.SnapshotCfg.Type == "" {
		cfg.SnapshotCfg.Type = defaultSnapshotType
	}
	if cfg.SnapshotCfg.Directory == "" {
		cfg.SnapshotCfg.Directory = defaultSnapshotDir
	}

	if cfg.LoggerCfg.Level == "" {
		cfg.LoggerCfg.Level = defaultLogLevel
	}
}
