package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const mockNamespace = mtest.TestDb + "." + ProductsCollection

// TestMongoRepository runs the repository against the driver's mock deployment and
// inspects the commands it sends, so the owner scoping is checked on the wire.
func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create adds owner key", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p, err := repo.Create(ctx, Product{OwnerID: alice, Fields: map[string]any{"name": "Pen"}})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(p.ID)
		assert.NoError(mt, err)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, alice, cmd.Lookup("documents", "0", OwnerField).StringValue())
		assert.Equal(mt, "Pen", cmd.Lookup("documents", "0", "name").StringValue())
	})

	mt.Run("get filters on id and owner", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch, bson.D{
			{Key: IDField, Value: oid},
			{Key: OwnerField, Value: alice},
			{Key: "name", Value: "Laptop"},
			{Key: "specs", Value: bson.D{{Key: "ram", Value: "16GB"}}},
		}))

		p, err := repo.Get(ctx, alice, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), p.ID)
		assert.Equal(mt, alice, p.OwnerID)
		assert.Equal(mt, bson.M{"ram": "16GB"}, p.Fields["specs"])

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, oid, cmd.Lookup("filter", IDField).ObjectID())
		assert.Equal(mt, alice, cmd.Lookup("filter", OwnerField).StringValue())
	})

	mt.Run("get of another owners product is not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch))

		_, err := repo.Get(ctx, bob, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Equal(mt, bob, mt.GetStartedEvent().Command.Lookup("filter", OwnerField).StringValue())
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)

		_, err := repo.Get(ctx, alice, "not-an-id")
		assert.ErrorIs(mt, err, ErrNotFound)
		upd, err := repo.Update(ctx, alice, "not-an-id", map[string]any{"name": "x"})
		require.NoError(mt, err)
		assert.Equal(mt, UpdateResult{}, upd)
		del, err := repo.Delete(ctx, alice, "not-an-id")
		require.NoError(mt, err)
		assert.Equal(mt, DeleteResult{}, del)

		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("update is owner scoped and reports counts", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		res, err := repo.Update(ctx, alice, oid.Hex(), map[string]any{"price": "999"})
		require.NoError(mt, err)
		assert.Equal(mt, UpdateResult{Matched: 1, Modified: 0}, res)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, oid, cmd.Lookup("updates", "0", "q", IDField).ObjectID())
		assert.Equal(mt, alice, cmd.Lookup("updates", "0", "q", OwnerField).StringValue())
		assert.Equal(mt, "999", cmd.Lookup("updates", "0", "u", "$set", "price").StringValue())
	})

	mt.Run("delete is owner scoped", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		res, err := repo.Delete(ctx, bob, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, DeleteResult{}, res)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, oid, cmd.Lookup("deletes", "0", "q", IDField).ObjectID())
		assert.Equal(mt, bob, cmd.Lookup("deletes", "0", "q", OwnerField).StringValue())
	})

	mt.Run("search quotes the key and scopes by owner", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch, bson.D{
			{Key: IDField, Value: primitive.NewObjectID()},
			{Key: OwnerField, Value: alice},
			{Key: "name", Value: "C++ Primer"},
		}))

		found, err := repo.Search(ctx, alice, "c++")
		require.NoError(mt, err)
		require.Len(mt, found, 1)
		assert.Equal(mt, "C++ Primer", found[0].Fields["name"])

		filter := mt.GetStartedEvent().Command.Lookup("filter")
		assert.Equal(mt, alice, filter.Document().Lookup(OwnerField).StringValue())
		for i, f := range searchFields {
			pattern, options := filter.Document().Lookup("$or", string(rune('0'+i)), f).Regex()
			assert.Equal(mt, `c\+\+`, pattern, f)
			assert.Equal(mt, "i", options, f)
		}
	})
}
