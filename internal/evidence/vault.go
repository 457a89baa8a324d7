// Package evidence stores uploaded evidence payloads in object storage. The
// store itself only ever keeps the fingerprint; the bytes live here.
package evidence

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sentinelops/mission-intel-platform/internal/fingerprint"
)

type Vault struct {
	client     *minio.Client
	bucketName string
}

func NewVault(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Vault, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check evidence bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create evidence bucket: %w", err)
		}
	}

	return &Vault{client: client, bucketName: bucket}, nil
}

// Put streams one evidence file into the vault and returns its object key
// together with the identity fingerprint of (name, size, lastModified).
func (v *Vault) Put(ctx context.Context, alertID, fileName string, size int64, lastModified int64, data io.Reader) (string, string, error) {
	hash := fingerprint.File(fileName, size, lastModified)
	objectKey := fmt.Sprintf("%s/%s-%s", alertID, hash, fileName)

	_, err := v.client.PutObject(ctx, v.bucketName, objectKey, data, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		UserMetadata: map[string]string{
			"alert-id":     alertID,
			"fingerprint":  hash,
			"created-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("store evidence object: %w", err)
	}

	return objectKey, hash, nil
}

// Get retrieves a stored evidence object.
func (v *Vault) Get(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := v.client.GetObject(ctx, v.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get evidence object: %w", err)
	}
	return obj, nil
}

// List returns the object keys recorded for one alert.
func (v *Vault) List(ctx context.Context, alertID string) ([]string, error) {
	objectCh := v.client.ListObjects(ctx, v.bucketName, minio.ListObjectsOptions{
		Prefix:    alertID + "/",
		Recursive: true,
	})

	var keys []string
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list evidence objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}
