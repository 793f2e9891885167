// Package docstore is the document-store collaborator used by the survey
// repositories: named entities with a schema tag, single-document CRUD and a
// paginated search capped at MaxPageSize documents per call. No transactions,
// no cross-document counting.
package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	// MaxPageSize is the largest page SearchDocuments accepts.
	MaxPageSize = 100

	// FieldID is the store-assigned document id.
	FieldID = "_id"
	// FieldSchema holds the entity schema tag on every created document.
	FieldSchema = "_schema"
)

// Entity names a collection and the schema version its documents are written with.
type Entity struct {
	Name   string
	Schema string
}

func (e Entity) String() string {
	if e.Schema == "" {
		return e.Name
	}
	return e.Name + "@" + e.Schema
}

// Op is a comparison operator in a Where clause.
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Condition compares one document field against a value.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Where is a conjunction of conditions. The zero value matches everything.
type Where []Condition

// Eq, Ne, Gte and Lte build single conditions.
func Eq(field string, value any) Condition  { return Condition{Field: field, Op: OpEq, Value: value} }
func Ne(field string, value any) Condition  { return Condition{Field: field, Op: OpNe, Value: value} }
func Gte(field string, value any) Condition { return Condition{Field: field, Op: OpGte, Value: value} }
func Lte(field string, value any) Condition { return Condition{Field: field, Op: OpLte, Value: value} }

// Sort orders search results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Query describes one page of a search.
type Query struct {
	// Fields is the projection; empty returns whole documents. FieldID is
	// always included.
	Fields   []string
	Where    Where
	Sort     *Sort
	Page     int
	PageSize int
}

// Validate checks pagination bounds, the sort field and operators.
func (q Query) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidQuery, q.Page)
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return fmt.Errorf("%w: pageSize must be between 1 and %d, got %d", ErrInvalidQuery, MaxPageSize, q.PageSize)
	}
	if q.Sort != nil && q.Sort.Field == "" {
		return fmt.Errorf("%w: sort field is empty", ErrInvalidQuery)
	}
	for _, c := range q.Where {
		switch c.Op {
		case OpEq, OpNe, OpGte, OpLte:
		default:
			return fmt.Errorf("%w: unknown operator %q on %s", ErrInvalidQuery, c.Op, c.Field)
		}
	}
	return nil
}

// Fields is a partial document used for updates.
type Fields = bson.M

// Client is the document-store interface the repositories depend on.
type Client interface {
	GetDocument(ctx context.Context, entity Entity, id string, fields []string) (bson.Raw, error)
	SearchDocuments(ctx context.Context, entity Entity, q Query) ([]bson.Raw, error)
	CreateDocument(ctx context.Context, entity Entity, doc any) (string, error)
	UpdatePartialDocument(ctx context.Context, entity Entity, id string, fields Fields) error
	DeleteDocument(ctx context.Context, entity Entity, id string) error
}

// Index describes a secondary index. Unique indexes reject a second document
// with the same key values with ErrDuplicate.
type Index struct {
	Name   string
	Keys   []string
	Unique bool
}

// Indexer is implemented by backends that maintain indexes.
type Indexer interface {
	EnsureIndexes(ctx context.Context, entity Entity, indexes []Index) error
}

// Get fetches one document and decodes it into T.
func Get[T any](ctx context.Context, c Client, entity Entity, id string, fields []string) (*T, error) {
	raw, err := c.GetDocument(ctx, entity, id, fields)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", entity.Name, id, err)
	}
	return &out, nil
}

// Search runs one page of a search and decodes every document into T.
func Search[T any](ctx context.Context, c Client, entity Entity, q Query) ([]T, error) {
	raws, err := c.SearchDocuments(ctx, entity, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entity.Name, err)
		}
		out = append(out, v)
	}
	return out, nil
}
