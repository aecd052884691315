package camstream

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/lancam/camstream/configuration"
	"github.com/lancam/camstream/storage"
	"github.com/lancam/camstream/vault"
)

// Application owns the single streaming session and the collaborators
// built from the configuration file. The "only one active session"
// invariant is a Start() precondition, not a hidden singleton.
type Application struct {
	Session *Session
	cfg     *configuration.Configuration
}

// NewApplication wires vault, snapshot storage and the session from user
// configuration. The capture source stays a caller-provided collaborator.
func NewApplication(cfg *configuration.Configuration, capture CaptureSource) (*Application, error) {
	credVault, err := prepareVault(cfg.VaultCfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare credential vault")
	}
	snapshots, err := prepareSnapshotStorage(cfg.SnapshotCfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare snapshot storage")
	}
	session := NewSession(SessionOptions{
		Vault:             credVault,
		Capture:           capture,
		Snapshots:         snapshots,
		BufferCapacity:    cfg.TuningCfg.BufferCapacity,
		TargetBand:        cfg.TuningCfg.TargetBand,
		InitialTargetRate: cfg.TuningCfg.InitialTargetRate,
		MaxSegments:       cfg.TuningCfg.MaxSegments,
		OverlayEnabled:    cfg.TuningCfg.OverlayEnabled,
	})
	return &Application{
		Session: session,
		cfg:     cfg,
	}, nil
}

// StreamConfigFromSettings maps the file-level stream section onto the
// session's configuration value
func StreamConfigFromSettings(settings configuration.StreamSettings) StreamConfig {
	return StreamConfig{
		Address:    settings.Address,
		Port:       settings.Port,
		StreamPath: settings.StreamPath,
		Quality: QualityProfile{
			Width:     settings.Quality.Width,
			Height:    settings.Quality.Height,
			FrameRate: settings.Quality.FrameRate,
			Bitrate:   settings.Quality.Bitrate,
		},
		AudioEnabled:     settings.AudioEnabled,
		MaxBitrate:       settings.MaxBitrate,
		KeyFrameInterval: settings.KeyFrameInterval,
		AuthEnabled:      settings.AuthEnabled,
		Username:         settings.Username,
		Password:         settings.Password,
	}
}

// Boot submits the configured stream settings and starts the session,
// returning the reachable stream URL
func (app *Application) Boot(ctx context.Context) (string, error) {
	cfg := StreamConfigFromSettings(app.cfg.StreamCfg)
	if err := app.Session.UpdateConfiguration(ctx, cfg); err != nil {
		return "", err
	}
	return app.Session.Start(ctx)
}

// Shutdown stops the session
func (app *Application) Shutdown(ctx context.Context) error {
	_, err := app.Session.Stop(ctx)
	return err
}

func prepareVault(settings configuration.VaultSettings) (vault.CredentialVault, error) {
	switch vault.NewVaultTypeFrom(settings.Type) {
	case vault.VAULT_REDIS:
		return vault.NewRedisProvider(settings.RedisAddr, settings.RedisDB, time.Duration(settings.TTLSeconds)*time.Second)
	case vault.VAULT_MEMORY:
		return vault.NewMemoryProvider(), nil
	default:
		return nil, errors.Errorf("Unknown vault type '%s'", settings.Type)
	}
}

func prepareSnapshotStorage(settings configuration.SnapshotSettings) (storage.SnapshotStorage, error) {
	if !settings.Enabled {
		return nil, nil
	}
	switch storage.NewStorageTypeFrom(settings.Type) {
	case storage.STORAGE_FILESYSTEM:
		return storage.NewFileSystemProvider(settings.Directory)
	case storage.STORAGE_MINIO:
		endpoint := fmt.Sprintf("%s:%d", settings.Minio.Host, settings.Minio.Port)
		client, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(settings.Minio.User, settings.Minio.Password, ""),
			Secure: settings.Minio.SSL,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't connect to MinIO on '%s'", endpoint)
		}
		provider, err := storage.NewMinioProvider(client, settings.Minio.DefaultBucket, settings.Minio.DefaultPath)
		if err != nil {
			return nil, err
		}
		if err := provider.MakeBucket(settings.Minio.DefaultBucket); err != nil {
			return nil, errors.Wrap(err, "Can't prepare snapshot bucket")
		}
		return provider, nil
	default:
		return nil, errors.Errorf("Unknown snapshot storage type '%s'", settings.Type)
	}
}
