package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBuildFilter(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()

	tests := []struct {
		name    string
		where   Where
		want    bson.M
		wantErr error
	}{
		{
			name:  "empty",
			where: nil,
			want:  bson.M{},
		},
		{
			name:  "equality per field",
			where: Where{Eq("surveyId", "s1"), Ne("orderId", "o1")},
			want: bson.M{
				"surveyId": bson.M{"$eq": "s1"},
				"orderId":  bson.M{"$ne": "o1"},
			},
		},
		{
			name:  "range bounds merge on one field",
			where: Where{Gte("respondedAt", from), Lte("respondedAt", to)},
			want:  bson.M{"respondedAt": bson.M{"$gte": from, "$lte": to}},
		},
		{
			name:  "hex id becomes object id",
			where: Where{Eq(FieldID, oid.Hex())},
			want:  bson.M{FieldID: bson.M{"$eq": oid}},
		},
		{
			name:    "bad id",
			where:   Where{Eq(FieldID, "not-hex")},
			wantErr: ErrInvalidQuery,
		},
		{
			name:    "unknown operator",
			where:   Where{{Field: "rank", Op: "$regex", Value: "x"}},
			wantErr: ErrInvalidQuery,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildFilter(tt.where)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildFilter_WithSchema(t *testing.T) {
	got, err := buildFilter(withSchema(testEntity, Where{Eq("isActive", true)}))
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		FieldSchema: bson.M{"$eq": testEntity.Schema},
		"isActive":  bson.M{"$eq": true},
	}, got)

	got, err = buildFilter(withSchema(Entity{Name: "untagged"}, nil))
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, got)
}

func TestProjection(t *testing.T) {
	assert.Nil(t, projection(nil))
	assert.Equal(t, bson.D{{Key: "question", Value: 1}, {Key: "options", Value: 1}}, projection([]string{"question", "options"}))
}

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := objectID(testEntity, oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = objectID(testEntity, "survey-001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoClient(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "test." + testEntity.Name

	mt.Run("create returns hex id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		c := NewMongoClient(mt.DB)

		id, err := c.CreateDocument(ctx, testEntity, item{Name: "A"})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(id)
		assert.NoError(mt, err)
	})

	mt.Run("duplicate key is ErrDuplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))
		c := NewMongoClient(mt.DB)

		_, err := c.CreateDocument(ctx, testEntity, item{Name: "A"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("get decodes document", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: FieldID, Value: oid},
			{Key: "name", Value: "A"},
			{Key: "rank", Value: 3},
		}))
		c := NewMongoClient(mt.DB)

		got, err := Get[item](ctx, c, testEntity, oid.Hex(), nil)
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), got.ID)
		assert.Equal(mt, "A", got.Name)
		assert.Equal(mt, 3, got.Rank)
	})

	mt.Run("get missing is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		c := NewMongoClient(mt.DB)

		_, err := c.GetDocument(ctx, testEntity, primitive.NewObjectID().Hex(), nil)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("search returns the batch", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: FieldID, Value: primitive.NewObjectID()}, {Key: "rank", Value: 1}},
			bson.D{{Key: FieldID, Value: primitive.NewObjectID()}, {Key: "rank", Value: 2}},
		))
		c := NewMongoClient(mt.DB)

		got, err := Search[item](ctx, c, testEntity, Query{
			Where:    Where{Eq("group", "a")},
			Sort:     &Sort{Field: "rank"},
			Page:     1,
			PageSize: 10,
		})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, []int{1, 2}, []int{got[0].Rank, got[1].Rank})
	})

	mt.Run("search rejects bad query before calling the server", func(mt *mtest.T) {
		c := NewMongoClient(mt.DB)

		_, err := c.SearchDocuments(ctx, testEntity, Query{Page: 1, PageSize: MaxPageSize + 1})
		assert.ErrorIs(mt, err, ErrInvalidQuery)
		_, err = c.SearchDocuments(ctx, testEntity, Query{Where: Where{Eq(FieldID, "nope")}, Page: 1, PageSize: 1})
		assert.ErrorIs(mt, err, ErrInvalidQuery)
	})

	mt.Run("update without match is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		c := NewMongoClient(mt.DB)

		err := c.UpdatePartialDocument(ctx, testEntity, primitive.NewObjectID().Hex(), Fields{"rank": 1})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update with match succeeds", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		c := NewMongoClient(mt.DB)

		assert.NoError(mt, c.UpdatePartialDocument(ctx, testEntity, primitive.NewObjectID().Hex(), Fields{"rank": 1}))
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		c := NewMongoClient(mt.DB)
		id := primitive.NewObjectID().Hex()

		assert.NoError(mt, c.DeleteDocument(ctx, testEntity, id))
		assert.ErrorIs(mt, c.DeleteDocument(ctx, testEntity, id), ErrNotFound)
	})

	mt.Run("malformed id is not found without a round trip", func(mt *mtest.T) {
		c := NewMongoClient(mt.DB)

		_, err := c.GetDocument(ctx, testEntity, "survey-001", nil)
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.ErrorIs(mt, c.DeleteDocument(ctx, testEntity, "survey-001"), ErrNotFound)
	})
}
