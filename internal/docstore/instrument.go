package docstore

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"postsurvey/internal/metrics"
)

type instrumentedClient struct {
	next   Client
	logger zerolog.Logger
}

// WithMetrics records a counter and a latency histogram for every call and
// logs each one at debug level.
func WithMetrics(next Client, logger zerolog.Logger) Client {
	return &instrumentedClient{next: next, logger: logger}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

func (c *instrumentedClient) observe(op string, entity Entity, timer *metrics.Timer, err error) {
	timer.ObserveDurationVec(metrics.StoreOperationDuration, entity.Name, op)
	metrics.StoreOperationsTotal.WithLabelValues(entity.Name, op, outcome(err)).Inc()
	c.logger.Debug().
		Str("op", op).
		Str("entity", entity.String()).
		Dur("took", timer.Duration()).
		Err(err).
		Msg("store call")
}

func (c *instrumentedClient) GetDocument(ctx context.Context, entity Entity, id string, fields []string) (bson.Raw, error) {
	timer := metrics.NewTimer()
	raw, err := c.next.GetDocument(ctx, entity, id, fields)
	c.observe("get", entity, timer, err)
	return raw, err
}

func (c *instrumentedClient) SearchDocuments(ctx context.Context, entity Entity, q Query) ([]bson.Raw, error) {
	timer := metrics.NewTimer()
	raws, err := c.next.SearchDocuments(ctx, entity, q)
	c.observe("search", entity, timer, err)
	return raws, err
}

func (c *instrumentedClient) CreateDocument(ctx context.Context, entity Entity, doc any) (string, error) {
	timer := metrics.NewTimer()
	id, err := c.next.CreateDocument(ctx, entity, doc)
	c.observe("create", entity, timer, err)
	return id, err
}

func (c *instrumentedClient) UpdatePartialDocument(ctx context.Context, entity Entity, id string, fields Fields) error {
	timer := metrics.NewTimer()
	err := c.next.UpdatePartialDocument(ctx, entity, id, fields)
	c.observe("update", entity, timer, err)
	return err
}

func (c *instrumentedClient) DeleteDocument(ctx context.Context, entity Entity, id string) error {
	timer := metrics.NewTimer()
	err := c.next.DeleteDocument(ctx, entity, id)
	c.observe("delete", entity, timer, err)
	return err
}

func (c *instrumentedClient) EnsureIndexes(ctx context.Context, entity Entity, indexes []Index) error {
	if ix, ok := c.next.(Indexer); ok {
		return ix.EnsureIndexes(ctx, entity, indexes)
	}
	return nil
}
