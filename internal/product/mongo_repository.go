package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductsCollection is the Mongo collection holding product documents.
const ProductsCollection = "products"

// MongoRepository stores products as documents in MongoDB.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository builds a repository on the products collection of db. Nested
// documents decode as maps so they serialize back to plain JSON objects.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	opts := options.Collection().SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	return &MongoRepository{coll: db.Collection(ProductsCollection, opts)}
}

// Create inserts the product fields together with the owner key.
func (r *MongoRepository) Create(ctx context.Context, p Product) (Product, error) {
	doc := bson.M{}
	for k, v := range p.Fields {
		doc[k] = v
	}
	doc[OwnerField] = p.OwnerID
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return Product{}, fmt.Errorf("insert product: unexpected id type %T", res.InsertedID)
	}
	p.ID = oid.Hex()
	return p, nil
}

// ListByOwner returns every product owned by ownerID in insertion order.
func (r *MongoRepository) ListByOwner(ctx context.Context, ownerID string) ([]Product, error) {
	return r.find(ctx, bson.M{OwnerField: ownerID})
}

// Get fetches a single product by identifier and owner.
func (r *MongoRepository) Get(ctx context.Context, ownerID, id string) (Product, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return Product{}, ErrNotFound
	}
	var doc bson.M
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return fromDocument(doc), nil
}

// Update applies patch with $set.
func (r *MongoRepository) Update(ctx context.Context, ownerID, id string, patch map[string]any) (UpdateResult, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return UpdateResult{}, nil
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": patch})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update product: %w", err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// Delete removes a product by identifier and owner.
func (r *MongoRepository) Delete(ctx context.Context, ownerID, id string) (DeleteResult, error) {
	filter, ok := ownedFilter(ownerID, id)
	if !ok {
		return DeleteResult{}, nil
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete product: %w", err)
	}
	return DeleteResult{Deleted: res.DeletedCount}, nil
}

// Search matches name, company or category with a case-insensitive literal regex.
func (r *MongoRepository) Search(ctx context.Context, ownerID, key string) ([]Product, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(key), Options: "i"}
	or := make(bson.A, 0, len(searchFields))
	for _, f := range searchFields {
		or = append(or, bson.M{f: pattern})
	}
	return r.find(ctx, bson.M{OwnerField: ownerID, "$or": or})
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]Product, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: IDField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, fromDocument(doc))
	}
	return products, nil
}

func ownedFilter(ownerID, id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{IDField: oid, OwnerField: ownerID}, true
}

func fromDocument(doc bson.M) Product {
	p := Product{Fields: make(map[string]any, len(doc))}
	for k, v := range doc {
		switch k {
		case IDField:
			if oid, ok := v.(primitive.ObjectID); ok {
				p.ID = oid.Hex()
			} else {
				p.ID = fmt.Sprint(v)
			}
		case OwnerField:
			p.OwnerID, _ = v.(string)
		default:
			p.Fields[k] = v
		}
	}
	return p
}
