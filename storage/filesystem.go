package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileSystemProvider writes snapshots under a base directory, one
// subdirectory per bucket
type FileSystemProvider struct {
	Path string
}

func NewFileSystemProvider(path string) (SnapshotStorage, error) {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "Can't prepare snapshot directory '%s'", path)
	}
	return &FileSystemProvider{
		Path: path,
	}, nil
}

func (storage *FileSystemProvider) Type() StorageType {
	return STORAGE_FILESYSTEM
}

func (storage *FileSystemProvider) MakeBucket(bucket string) error {
	return os.MkdirAll(filepath.Join(storage.Path, bucket), os.ModePerm)
}

func (storage *FileSystemProvider) SaveSnapshot(ctx context.Context, object SnapshotUnit) (string, error) {
	fname := filepath.Join(storage.Path, object.Bucket, object.Name)
	if err := os.WriteFile(fname, object.Payload, 0o644); err != nil {
		return "", errors.Wrapf(err, "Can't write snapshot '%s'", fname)
	}
	return fname, nil
}
