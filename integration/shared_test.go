//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meterflow/meterflow/internal/storeclient"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

var (
	// sharedEndpoint holds the address of a MinIO container started once for
	// all tests.
	sharedEndpoint string

	// startOnce ensures we only start the container once.
	startOnce sync.Once

	// terminate stops the shared container after all tests.
	terminate func()
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if terminate != nil {
		terminate()
	}

	os.Exit(code)
}

// minioEndpoint returns the endpoint of the shared MinIO container, starting
// it on first use.
func minioEndpoint(t *testing.T) string {
	t.Helper()

	startOnce.Do(func() {
		ctx := context.Background()
		req := testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
		}
		minioC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			panic(fmt.Sprintf("failed to start minio: %v", err))
		}
		terminate = func() { _ = minioC.Terminate(context.Background()) }

		host, err := minioC.Host(ctx)
		if err != nil {
			panic(fmt.Sprintf("failed to resolve minio host: %v", err))
		}
		port, err := minioC.MappedPort(ctx, "9000")
		if err != nil {
			panic(fmt.Sprintf("failed to resolve minio port: %v", err))
		}
		sharedEndpoint = fmt.Sprintf("%s:%s", host, port.Port())
	})

	return sharedEndpoint
}

// newStoreClient returns an engine-facing client for the shared container.
func newStoreClient(t *testing.T) *storeclient.Client {
	t.Helper()
	client, err := storeclient.New(minioEndpoint(t), minioUser, minioPassword, false)
	if err != nil {
		t.Fatalf("connect store client: %v", err)
	}
	return client
}

// seedBucket creates a bucket and uploads the given key/payload pairs with a
// raw minio client, so the engine-facing client under test plays no part in
// the setup.
func seedBucket(t *testing.T, bucket string, objects map[string]string) {
	t.Helper()
	ctx := context.Background()

	mc, err := minio.New(minioEndpoint(t), &minio.Options{
		Creds: credentials.NewStaticV4(minioUser, minioPassword, ""),
	})
	if err != nil {
		t.Fatalf("connect seed client: %v", err)
	}

	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		t.Fatalf("probe bucket %s: %v", bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			t.Fatalf("make bucket %s: %v", bucket, err)
		}
	}

	for key, payload := range objects {
		_, err := mc.PutObject(ctx, bucket, key,
			bytes.NewReader([]byte(payload)), int64(len(payload)),
			minio.PutObjectOptions{})
		if err != nil {
			t.Fatalf("seed %s/%s: %v", bucket, key, err)
		}
	}
}
