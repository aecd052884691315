package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// MinioProvider uploads snapshots to a MinIO/S3 bucket. Buckets carry an
// expiration lifecycle so old snapshots age out on the server side.
type MinioProvider struct {
	client *minio.Client

	DefaultBucket string
	Path          string
}

func NewMinioProvider(client *minio.Client, bucket, path string) (SnapshotStorage, error) {
	return &MinioProvider{
		client:        client,
		DefaultBucket: bucket,
		Path:          path,
	}, nil
}

func (m *MinioProvider) Type() StorageType {
	return STORAGE_MINIO
}

func (m *MinioProvider) MakeBucket(bucket string) error {
	_ = m.client.MakeBucket(context.Background(),
		bucket,
		minio.MakeBucketOptions{},
	)
	config := lifecycle.NewConfiguration()
	config.Rules = []lifecycle.Rule{
		{
			ID:     "expire-bucket",
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: 2,
			},
		},
	}
	_ = m.client.SetBucketLifecycle(context.Background(), bucket, config)
	return nil
}

// SaveSnapshot uploads the payload bytes under '<path>/<name>' in either the
// unit's bucket or the provider default
func (m *MinioProvider) SaveSnapshot(ctx context.Context, object SnapshotUnit) (string, error) {
	fname := fmt.Sprintf("%s/%s", m.Path, object.Name)
	bucket := m.DefaultBucket
	if object.Bucket != "" {
		bucket = object.Bucket
	}
	_, err := m.client.PutObject(
		ctx,
		bucket,
		fname,
		bytes.NewReader(object.Payload),
		int64(len(object.Payload)),
		minio.PutObjectOptions{
			ContentType: "image/jpeg",
		},
	)
	if err != nil {
		return "", err
	}
	return fname, nil
}
