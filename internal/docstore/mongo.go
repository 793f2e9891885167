package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient maps entities to collections of one database. Document ids are
// ObjectIDs, exposed as hex strings.
type MongoClient struct {
	db *mongo.Database
}

// NewMongoClient creates a document store over db
func NewMongoClient(db *mongo.Database) *MongoClient {
	return &MongoClient{db: db}
}

func (c *MongoClient) collection(entity Entity) *mongo.Collection {
	return c.db.Collection(entity.Name)
}

func projection(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	proj := bson.D{}
	for _, f := range fields {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}

var mongoOps = map[Op]string{
	OpEq:  "$eq",
	OpNe:  "$ne",
	OpGte: "$gte",
	OpLte: "$lte",
}

// buildFilter merges conditions per field so range bounds on one field land
// in the same operator document.
func buildFilter(where Where) (bson.M, error) {
	filter := bson.M{}
	for _, cond := range where {
		op, ok := mongoOps[cond.Op]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator %q on %s", ErrInvalidQuery, cond.Op, cond.Field)
		}
		value := cond.Value
		if cond.Field == FieldID {
			if hex, ok := value.(string); ok {
				oid, err := primitive.ObjectIDFromHex(hex)
				if err != nil {
					return nil, fmt.Errorf("%w: bad id %q", ErrInvalidQuery, hex)
				}
				value = oid
			}
		}
		ops, ok := filter[cond.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[cond.Field] = ops
		}
		ops[op] = value
	}
	return filter, nil
}

func objectID(entity Entity, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
	}
	return oid, nil
}

func (c *MongoClient) GetDocument(ctx context.Context, entity Entity, id string, fields []string) (bson.Raw, error) {
	oid, err := objectID(entity, id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOne()
	if proj := projection(fields); proj != nil {
		opts.SetProjection(proj)
	}
	raw, err := c.collection(entity).FindOne(ctx, bson.M{FieldID: oid}, opts).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *MongoClient) SearchDocuments(ctx context.Context, entity Entity, q Query) ([]bson.Raw, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	filter, err := buildFilter(withSchema(entity, q.Where))
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSkip(int64((q.Page - 1) * q.PageSize)).
		SetLimit(int64(q.PageSize))
	if proj := projection(q.Fields); proj != nil {
		opts.SetProjection(proj)
	}
	if q.Sort != nil && q.Sort.Field != "" {
		dir := 1
		if q.Sort.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.Sort.Field, Value: dir}})
	}

	cursor, err := c.collection(entity).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]bson.Raw, 0, q.PageSize)
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		docs = append(docs, raw)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *MongoClient) CreateDocument(ctx context.Context, entity Entity, doc any) (string, error) {
	m, err := normalize(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", entity.Name, err)
	}
	oid := primitive.NewObjectID()
	m[FieldID] = oid
	if entity.Schema != "" {
		m[FieldSchema] = entity.Schema
	}

	if _, err := c.collection(entity).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", entity.Name, ErrDuplicate)
		}
		return "", err
	}
	return oid.Hex(), nil
}

func (c *MongoClient) UpdatePartialDocument(ctx context.Context, entity Entity, id string, fields Fields) error {
	oid, err := objectID(entity, id)
	if err != nil {
		return err
	}
	set := bson.M{}
	for k, v := range fields {
		if k != FieldID {
			set[k] = v
		}
	}

	result, err := c.collection(entity).UpdateOne(ctx, bson.M{FieldID: oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrDuplicate)
		}
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
	}
	return nil
}

func (c *MongoClient) DeleteDocument(ctx context.Context, entity Entity, id string) error {
	oid, err := objectID(entity, id)
	if err != nil {
		return err
	}
	result, err := c.collection(entity).DeleteOne(ctx, bson.M{FieldID: oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", entity.Name, id, ErrNotFound)
	}
	return nil
}

// EnsureIndexes creates the given indexes, ascending on every key.
func (c *MongoClient) EnsureIndexes(ctx context.Context, entity Entity, indexes []Index) error {
	var errs []error
	for _, idx := range indexes {
		keys := bson.D{}
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		opts := options.Index().SetUnique(idx.Unique)
		if idx.Name != "" {
			opts.SetName(idx.Name)
		}
		_, err := c.collection(entity).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
		if err != nil {
			errs = append(errs, fmt.Errorf("index %s on %s: %w", idx.Name, entity.Name, err))
		}
	}
	return errors.Join(errs...)
}
