package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStore implements ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func TestMeasurementKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"left.TXT", "measurements/abc.txt"},
		{"sweep.frd", "measurements/abc.frd"},
		{"session.mdat", "measurements/abc.mdat"},
		{"", "measurements/abc.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, MeasurementKey("abc", tt.filename))
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/plain", ContentTypeFor(measurement.FormatText))
	assert.Equal(t, "text/plain", ContentTypeFor(measurement.FormatFRD))
	assert.Equal(t, "application/octet-stream", ContentTypeFor(measurement.FormatMDAT))
	assert.NoError(t, validateContentType(ContentTypeFor(measurement.FormatMDAT)))
	assert.Error(t, validateContentType("audio/wav"))
}

func TestNewBackends(t *testing.T) {
	store, err := New(context.Background(), BackendNone, Config{})
	require.NoError(t, err)
	assert.Nil(t, store)

	_, err = New(context.Background(), "ftp", Config{})
	assert.Error(t, err)

	_, err = New(context.Background(), BackendS3, Config{})
	assert.ErrorContains(t, err, "S3_BUCKET")

	_, err = New(context.Background(), BackendMinIO, Config{Bucket: "b"})
	assert.ErrorContains(t, err, "S3_ENDPOINT")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	backend := &MockObjectStore{}
	backend.On("Put", mock.Anything, "k", mock.Anything, "text/plain").Return(errors.New("connection reset")).Times(3)

	store := WithBreaker("test", backend, BreakerSettings{Failures: 3, Timeout: time.Minute})
	for i := 0; i < 3; i++ {
		err := store.Put(ctx, "k", []byte("x"), "text/plain")
		assert.ErrorContains(t, err, "connection reset")
	}

	err := store.Put(ctx, "k", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	backend.AssertNumberOfCalls(t, "Put", 3)
}

func TestBreakerIgnoresMissingKeys(t *testing.T) {
	ctx := context.Background()
	backend := &MockObjectStore{}
	missing := fmt.Errorf("%w: gone", ErrObjectNotFound)
	backend.On("Get", mock.Anything, "gone").Return(nil, missing)
	backend.On("Get", mock.Anything, "here").Return([]byte("20 80\n"), nil)
	backend.On("PresignGet", mock.Anything, "here", DownloadURLExpiry).Return("http://minio/here", nil)
	backend.On("Delete", mock.Anything, "here").Return(nil)

	store := WithBreaker("test", backend, BreakerSettings{Failures: 1, Timeout: time.Minute})
	for i := 0; i < 3; i++ {
		_, err := store.Get(ctx, "gone")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	}

	data, err := store.Get(ctx, "here")
	require.NoError(t, err)
	assert.Equal(t, []byte("20 80\n"), data)

	u, err := store.PresignGet(ctx, "here", DownloadURLExpiry)
	require.NoError(t, err)
	assert.Equal(t, "http://minio/here", u)
	assert.NoError(t, store.Delete(ctx, "here"))
	backend.AssertExpectations(t)
}
