// Package storeclient adapts a MinIO deployment to the contract.ObjectStore
// interface consumed by the query engine.
package storeclient

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/meterflow/meterflow/internal/contract"
)

// Client wraps a minio.Client behind the ObjectStore contract. It is
// stateless beyond the underlying connection pool and safe for concurrent
// use across queries.
type Client struct {
	mc *minio.Client
}

var _ contract.ObjectStore = &Client{} // Compile-time check

// New constructs a MinIO-backed object store client. The client is
// constructed explicitly and injected into the engine; there is no package
// level singleton.
func New(endpoint, accessKey, secretKey string, useSSL bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object store %s: %w", endpoint, err)
	}
	return &Client{mc: mc}, nil
}

// ListObjects implements contract.ObjectStore. Listing errors reported
// mid-stream abort the listing for this prefix only.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]contract.ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var infos []contract.ObjectInfo
	for obj := range c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if obj.Err != nil {
			return infos, fmt.Errorf("list %s/%s: %w", bucket, prefix, obj.Err)
		}
		infos = append(infos, contract.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return infos, nil
}

// GetObject implements contract.ObjectStore.
func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, &contract.NotFoundError{Bucket: bucket, Key: key}
		}
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// StatObject implements contract.ObjectStore.
func (c *Client) StatObject(ctx context.Context, bucket, key string) (contract.ObjectInfo, error) {
	stat, err := c.mc.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return contract.ObjectInfo{}, &contract.NotFoundError{Bucket: bucket, Key: key}
		}
		return contract.ObjectInfo{}, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	return contract.ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		LastModified: stat.LastModified,
	}, nil
}

// BucketExists implements contract.ObjectStore.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return c.mc.BucketExists(ctx, bucket)
}
