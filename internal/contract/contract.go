// Package contract provides interfaces and shared utilities for the
// meterflow CLI's internal architecture.
package contract

import (
	"context"
	"errors"
	"time"
)

// ObjectInfo describes one stored object as returned by a listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore defines the necessary operations against the telemetry object
// store. This allows the query engine to be tested without a live MinIO
// deployment.
type ObjectStore interface {
	// ListObjects returns the objects under the given prefix. Non-recursive
	// listings stop at the next path separator.
	ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]ObjectInfo, error)

	// GetObject returns the full content of one object.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// StatObject returns metadata for one object, or an error satisfying
	// IsNotFound when the key does not exist.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// BucketExists reports whether the bucket exists. A transport-level error
	// here means the store itself is unreachable.
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// NotFoundError marks a key that does not exist in the store. Missing objects
// are expected during planning and are never fatal.
type NotFoundError struct {
	Bucket string
	Key    string
}

func (e *NotFoundError) Error() string {
	return "object not found: " + e.Bucket + "/" + e.Key
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
