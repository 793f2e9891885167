package docstore

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryClient keeps documents in process. Searches without a sort return
// documents in insertion order.
type MemoryClient struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order   []string
	docs    map[string]bson.M
	indexes []Index
}

// NewMemoryClient creates an empty in-process store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{collections: make(map[string]*memCollection)}
}

func (c *MemoryClient) collection(name string) *memCollection {
	coll, ok := c.collections[name]
	if !ok {
		coll = &memCollection{docs: make(map[string]bson.M)}
		c.collections[name] = coll
	}
	return coll
}

// lookup is the read-only variant of collection, safe under RLock.
func (c *MemoryClient) lookup(name string) *memCollection {
	if coll, ok := c.collections[name]; ok {
		return coll
	}
	return &memCollection{docs: map[string]bson.M{}}
}

func (coll *memCollection) all() []bson.M {
	out := make([]bson.M, 0, len(coll.order))
	for _, id := range coll.order {
		out = append(out, coll.docs[id])
	}
	return out
}

func (c *MemoryClient) GetDocument(ctx context.Context, entity Entity, id string, fields []string) (bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.lookup(entity.Name).docs[id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
	}
	return bson.Marshal(project(doc, fields))
}

func (c *MemoryClient) SearchDocuments(ctx context.Context, entity Entity, q Query) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return runQuery(entity, c.lookup(entity.Name).all(), q)
}

func (c *MemoryClient) CreateDocument(ctx context.Context, entity Entity, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m, err := normalize(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", entity.Name, err)
	}
	id := newID()
	m[FieldID] = id
	if entity.Schema != "" {
		m[FieldSchema] = entity.Schema
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	coll := c.collection(entity.Name)
	if violatesUnique(coll.indexes, coll.all(), m) {
		return "", fmt.Errorf("%s: %w", entity.Name, ErrDuplicate)
	}
	coll.docs[id] = m
	coll.order = append(coll.order, id)
	return id, nil
}

func (c *MemoryClient) UpdatePartialDocument(ctx context.Context, entity Entity, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := normalize(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", entity.Name, id, err)
	}
	delete(patch, FieldID)

	c.mu.Lock()
	defer c.mu.Unlock()

	coll := c.collection(entity.Name)
	current, ok := coll.docs[id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
	}
	next := make(bson.M, len(current)+len(patch))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	if violatesUnique(coll.indexes, coll.all(), next) {
		return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrDuplicate)
	}
	coll.docs[id] = next
	return nil
}

func (c *MemoryClient) DeleteDocument(ctx context.Context, entity Entity, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	coll := c.collection(entity.Name)
	if _, ok := coll.docs[id]; !ok {
		return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
	}
	delete(coll.docs, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return nil
}

// EnsureIndexes records indexes; only unique ones change behavior.
func (c *MemoryClient) EnsureIndexes(ctx context.Context, entity Entity, indexes []Index) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	coll := c.collection(entity.Name)
	for _, idx := range indexes {
		replaced := false
		for i, existing := range coll.indexes {
			if existing.Name == idx.Name {
				coll.indexes[i] = idx
				replaced = true
			}
		}
		if !replaced {
			coll.indexes = append(coll.indexes, idx)
		}
	}
	return nil
}
