package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"postsurvey/internal/metrics"
)

// RetryConfig bounds every store call.
type RetryConfig struct {
	// Retries is the number of extra attempts after the first failure.
	Retries int
	// Timeout applies to each attempt. Zero disables it.
	Timeout time.Duration
	// Backoff is the wait before the first retry, doubled after each one.
	Backoff time.Duration
}

// DefaultRetryConfig matches the store client settings the service runs with.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Retries: 2, Timeout: 5 * time.Second, Backoff: 100 * time.Millisecond}
}

type retryClient struct {
	next   Client
	cfg    RetryConfig
	logger zerolog.Logger
}

// WithRetry wraps next with per-attempt timeouts and retries on transient
// errors. CreateDocument is never retried: a timed-out insert may still have
// landed, and a second attempt would write a second document.
func WithRetry(next Client, cfg RetryConfig, logger zerolog.Logger) Client {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &retryClient{next: next, cfg: cfg, logger: logger}
}

func (c *retryClient) do(ctx context.Context, op string, entity Entity, retry bool, fn func(context.Context) error) error {
	attempts := 1
	if retry {
		attempts += c.cfg.Retries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.Backoff << (attempt - 1)
			c.logger.Debug().
				Str("op", op).
				Str("entity", entity.Name).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("retrying store call")
			metrics.StoreRetriesTotal.WithLabelValues(entity.Name, op).Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.cfg.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		}
		err := fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}
		if IsPermanent(err) || ctx.Err() != nil {
			return err
		}
		lastErr = err
	}
	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("%s %s: max retries exceeded: %w", op, entity.Name, lastErr)
}

func (c *retryClient) GetDocument(ctx context.Context, entity Entity, id string, fields []string) (bson.Raw, error) {
	var out bson.Raw
	err := c.do(ctx, "get", entity, true, func(ctx context.Context) error {
		var err error
		out, err = c.next.GetDocument(ctx, entity, id, fields)
		return err
	})
	return out, err
}

func (c *retryClient) SearchDocuments(ctx context.Context, entity Entity, q Query) ([]bson.Raw, error) {
	var out []bson.Raw
	err := c.do(ctx, "search", entity, true, func(ctx context.Context) error {
		var err error
		out, err = c.next.SearchDocuments(ctx, entity, q)
		return err
	})
	return out, err
}

func (c *retryClient) CreateDocument(ctx context.Context, entity Entity, doc any) (string, error) {
	var id string
	err := c.do(ctx, "create", entity, false, func(ctx context.Context) error {
		var err error
		id, err = c.next.CreateDocument(ctx, entity, doc)
		return err
	})
	return id, err
}

func (c *retryClient) UpdatePartialDocument(ctx context.Context, entity Entity, id string, fields Fields) error {
	return c.do(ctx, "update", entity, true, func(ctx context.Context) error {
		return c.next.UpdatePartialDocument(ctx, entity, id, fields)
	})
}

func (c *retryClient) DeleteDocument(ctx context.Context, entity Entity, id string) error {
	return c.do(ctx, "delete", entity, true, func(ctx context.Context) error {
		return c.next.DeleteDocument(ctx, entity, id)
	})
}

// EnsureIndexes forwards to the wrapped client when it maintains indexes.
func (c *retryClient) EnsureIndexes(ctx context.Context, entity Entity, indexes []Index) error {
	if ix, ok := c.next.(Indexer); ok {
		return ix.EnsureIndexes(ctx, entity, indexes)
	}
	return nil
}
