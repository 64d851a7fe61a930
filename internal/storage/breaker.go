package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerSettings configure the circuit breaker around a store.
type BreakerSettings struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures int
	// Timeout is how long the breaker stays open before a trial call.
	Timeout time.Duration
	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration
}

type breakerStore struct {
	next ObjectStore
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps store in a circuit breaker. Missing keys do not count as failures.
func WithBreaker(name string, store ObjectStore, s BreakerSettings) ObjectStore {
	if s.Failures < 1 {
		s.Failures = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: s.Interval,
		Timeout:  s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(s.Failures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrObjectNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Storage circuit breaker changed state")
		},
	})
	return &breakerStore{next: store, cb: cb}
}

func (b *breakerStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Put(ctx, key, data, contentType)
	})
	return err
}

func (b *breakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (b *breakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

func (b *breakerStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.PresignGet(ctx, key, expiry)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
