package storage

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/minio"
)

// setupMinIO starts a MinIO container and returns its endpoint
func setupMinIO(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return endpoint
}

func TestObjectStores_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	endpoint := setupMinIO(t)
	ctx := context.Background()
	cfg := Config{
		Bucket:    "roomtreat-test-" + uuid.New().String()[:8],
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}

	// The minio backend creates the bucket, so it runs first.
	mc, err := NewMinIOStore(ctx, cfg)
	require.NoError(t, err)
	sc, err := NewS3Store(ctx, cfg)
	require.NoError(t, err)

	backends := []struct {
		name  string
		store ObjectStore
	}{
		{"minio", mc},
		{"s3", sc},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			store := WithBreaker(b.name, b.store, BreakerSettings{Failures: 3, Timeout: time.Second})
			key := MeasurementKey(uuid.New().String(), "left.txt")
			body := []byte("20 80.0\n25 82.0\n31.5 79.0\n")

			require.NoError(t, store.Put(ctx, key, body, "text/plain"))

			got, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, body, got)

			u, err := store.PresignGet(ctx, key, time.Minute)
			require.NoError(t, err)
			resp, err := http.Get(u)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			require.NoError(t, store.Delete(ctx, key))
			_, err = store.Get(ctx, key)
			assert.ErrorIs(t, err, ErrObjectNotFound)

			assert.Error(t, store.Put(ctx, key, body, "audio/wav"))
		})
	}
}
