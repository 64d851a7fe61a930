package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	maxPingRetries      = 5
)

// Open connects to PostgreSQL and pings it with exponential backoff until
// it answers or maxElapsed passes.
func Open(ctx context.Context, url string, maxElapsed time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready")
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxPingRetries-1), ctx))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not reach database after %d attempts: %w", attempt, err)
	}

	log.Info().Int("attempts", attempt).Msg("Connected to database")
	return db, nil
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", repository.ErrNotFound, pqErr.Constraint)
		}
	}
	return err
}
