package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockObjectStore is a mock implementation of ObjectStore for testing.
type MockObjectStore struct {
	mock.Mock
}

var _ ObjectStore = &MockObjectStore{} // Compile-time check

// ListObjects implements the ObjectStore interface.
func (m *MockObjectStore) ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]ObjectInfo, error) {
	args := m.Called(ctx, bucket, prefix, recursive)
	infos, _ := args.Get(0).([]ObjectInfo)
	return infos, args.Error(1)
}

// GetObject implements the ObjectStore interface.
func (m *MockObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// StatObject implements the ObjectStore interface.
func (m *MockObjectStore) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	info, _ := args.Get(0).(ObjectInfo)
	return info, args.Error(1)
}

// BucketExists implements the ObjectStore interface.
func (m *MockObjectStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}
