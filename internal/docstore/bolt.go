package docstore

import (
	"context"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson"
)

// BoltClient stores documents in a single bbolt file, one bucket per entity,
// values BSON-encoded. Keys are ObjectID hex strings, so bucket order follows
// creation order.
type BoltClient struct {
	db *bolt.DB

	mu      sync.RWMutex
	indexes map[string][]Index
}

// NewBoltClient opens (or creates) the database file at path.
func NewBoltClient(path string) (*BoltClient, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &BoltClient{db: db, indexes: make(map[string][]Index)}, nil
}

// Close closes the database
func (c *BoltClient) Close() error {
	return c.db.Close()
}

func decodeAll(b *bolt.Bucket) ([]bson.M, error) {
	var docs []bson.M
	if b == nil {
		return docs, nil
	}
	err := b.ForEach(func(_, v []byte) error {
		var doc bson.M
		if err := bson.Unmarshal(v, &doc); err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	return docs, err
}

func (c *BoltClient) uniqueIndexes(entity string) []Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexes[entity]
}

func (c *BoltClient) GetDocument(ctx context.Context, entity Entity, id string, fields []string) (bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out bson.Raw
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entity.Name))
		if b == nil {
			return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
		}
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
		}
		var doc bson.M
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		raw, err := bson.Marshal(project(doc, fields))
		if err != nil {
			return err
		}
		out = raw
		return nil
	})
	return out, err
}

func (c *BoltClient) SearchDocuments(ctx context.Context, entity Entity, q Query) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []bson.M
	err := c.db.View(func(tx *bolt.Tx) error {
		var err error
		docs, err = decodeAll(tx.Bucket([]byte(entity.Name)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return runQuery(entity, docs, q)
}

func (c *BoltClient) CreateDocument(ctx context.Context, entity Entity, doc any) (string, error) {
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
	indexes := c.uniqueIndexes(entity.Name)

	err = c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(entity.Name))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", entity.Name, err)
		}
		if len(indexes) > 0 {
			existing, err := decodeAll(b)
			if err != nil {
				return err
			}
			if violatesUnique(indexes, existing, m) {
				return fmt.Errorf("%s: %w", entity.Name, ErrDuplicate)
			}
		}
		data, err := bson.Marshal(m)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *BoltClient) UpdatePartialDocument(ctx context.Context, entity Entity, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := normalize(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", entity.Name, id, err)
	}
	delete(patch, FieldID)
	indexes := c.uniqueIndexes(entity.Name)

	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entity.Name))
		if b == nil {
			return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
		}
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
		}
		var doc bson.M
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		for k, v := range patch {
			doc[k] = v
		}
		if len(indexes) > 0 {
			existing, err := decodeAll(b)
			if err != nil {
				return err
			}
			if violatesUnique(indexes, existing, doc) {
				return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrDuplicate)
			}
		}
		out, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), out)
	})
}

func (c *BoltClient) DeleteDocument(ctx context.Context, entity Entity, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entity.Name))
		if b == nil || b.Get([]byte(id)) == nil {
			return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}

// EnsureIndexes creates the entity bucket and remembers its unique indexes.
// Non-unique indexes are accepted and ignored; searches scan the bucket.
func (c *BoltClient) EnsureIndexes(ctx context.Context, entity Entity, indexes []Index) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(entity.Name))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", entity.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var unique []Index
	for _, idx := range indexes {
		if idx.Unique {
			unique = append(unique, idx)
		}
	}
	c.indexes[entity.Name] = unique
	return nil
}
