// Package docstoretest provides document-store doubles for tests.
package docstoretest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"postsurvey/internal/docstore"
)

// Call identifies one store call for fault matching.
type Call struct {
	Op     string
	Entity string
	ID     string
}

// FaultyClient wraps a client and fails calls selected by Fail. It also
// records every call it sees.
type FaultyClient struct {
	Next docstore.Client

	mu    sync.Mutex
	fail  func(Call) error
	calls []Call
}

// NewFaultyClient wraps next with no faults configured.
func NewFaultyClient(next docstore.Client) *FaultyClient {
	return &FaultyClient{Next: next}
}

// Fail installs fn; a non-nil return fails the matching call before it
// reaches the wrapped client.
func (c *FaultyClient) Fail(fn func(Call) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fn
}

// Calls returns the calls seen so far.
func (c *FaultyClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Count returns how many calls matched op and entity.
func (c *FaultyClient) Count(op, entity string) int {
	n := 0
	for _, call := range c.Calls() {
		if call.Op == op && call.Entity == entity {
			n++
		}
	}
	return n
}

func (c *FaultyClient) check(call Call) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	if c.fail != nil {
		return c.fail(call)
	}
	return nil
}

func (c *FaultyClient) GetDocument(ctx context.Context, entity docstore.Entity, id string, fields []string) (bson.Raw, error) {
	if err := c.check(Call{Op: "get", Entity: entity.Name, ID: id}); err != nil {
		return nil, err
	}
	return c.Next.GetDocument(ctx, entity, id, fields)
}

func (c *FaultyClient) SearchDocuments(ctx context.Context, entity docstore.Entity, q docstore.Query) ([]bson.Raw, error) {
	if err := c.check(Call{Op: "search", Entity: entity.Name}); err != nil {
		return nil, err
	}
	return c.Next.SearchDocuments(ctx, entity, q)
}

func (c *FaultyClient) CreateDocument(ctx context.Context, entity docstore.Entity, doc any) (string, error) {
	if err := c.check(Call{Op: "create", Entity: entity.Name}); err != nil {
		return "", err
	}
	return c.Next.CreateDocument(ctx, entity, doc)
}

func (c *FaultyClient) UpdatePartialDocument(ctx context.Context, entity docstore.Entity, id string, fields docstore.Fields) error {
	if err := c.check(Call{Op: "update", Entity: entity.Name, ID: id}); err != nil {
		return err
	}
	return c.Next.UpdatePartialDocument(ctx, entity, id, fields)
}

func (c *FaultyClient) DeleteDocument(ctx context.Context, entity docstore.Entity, id string) error {
	if err := c.check(Call{Op: "delete", Entity: entity.Name, ID: id}); err != nil {
		return err
	}
	return c.Next.DeleteDocument(ctx, entity, id)
}

func (c *FaultyClient) EnsureIndexes(ctx context.Context, entity docstore.Entity, indexes []docstore.Index) error {
	if ix, ok := c.Next.(docstore.Indexer); ok {
		return ix.EnsureIndexes(ctx, entity, indexes)
	}
	return nil
}
