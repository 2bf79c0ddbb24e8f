package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"product-manager/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productDocument is the mirror's representation of a product.
type productDocument struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Date             time.Time `bson:"date"`
	ManufacturePhone string    `bson:"manufacturePhone"`
	ManufactureEmail string    `bson:"manufactureEmail"`
	Count            int       `bson:"count"`
}

func newProductDocument(p model.Product) productDocument {
	return productDocument{
		ID:               p.ID.String(),
		Name:             p.Name,
		Date:             p.Date.UTC(),
		ManufacturePhone: p.ManufacturePhone,
		ManufactureEmail: p.ManufactureEmail,
		Count:            p.Count,
	}
}

func (d productDocument) toProduct() (model.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid product id %q in mirror: %w", d.ID, err)
	}
	return model.Product{
		ID:               id,
		Name:             d.Name,
		Date:             d.Date.UTC(),
		ManufacturePhone: d.ManufacturePhone,
		ManufactureEmail: d.ManufactureEmail,
		Count:            d.Count,
	}, nil
}

// MongoProductMirror keeps a copy of the products in a MongoDB collection.
type MongoProductMirror struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

var _ ProductMirror = (*MongoProductMirror)(nil)

// NewMongoProductMirror creates a mirror over the given collection.
func NewMongoProductMirror(collection *mongo.Collection, logger zerolog.Logger) *MongoProductMirror {
	return &MongoProductMirror{
		collection: collection,
		logger:     logger.With().Str("repository", "product_mirror").Logger(),
	}
}

// EnsureIndexes creates the lookup indexes. Existing indexes are left alone.
func (m *MongoProductMirror) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "manufactureEmail", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}

	names, err := m.collection.Indexes().CreateMany(ctx, models)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to create mirror indexes")
		return fmt.Errorf("failed to create mirror indexes: %w", err)
	}

	m.logger.Debug().Strs("indexes", names).Msg("mirror indexes ensured")
	return nil
}

// Get retrieves a single product by its ID.
func (m *MongoProductMirror) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var doc productDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		m.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to find product")
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	p, err := doc.toProduct()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Add inserts a product. A nil id is replaced with a fresh one.
func (m *MongoProductMirror) Add(ctx context.Context, product model.Product) (*model.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	if _, err := m.collection.InsertOne(ctx, newProductDocument(product)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.NewConflictError("product %s already exists", product.ID)
		}
		m.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return &product, nil
}

// AddMany inserts products in one ordered call.
func (m *MongoProductMirror) AddMany(ctx context.Context, products []model.Product) ([]model.Product, error) {
	added := make([]model.Product, 0, len(products))
	if len(products) == 0 {
		return added, nil
	}

	docs := make([]any, 0, len(products))
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		docs = append(docs, newProductDocument(p))
		added = append(added, p)
	}

	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.NewConflictError("one or more products already exist")
		}
		m.logger.Error().Err(err).Int("count", len(docs)).Msg("failed to insert products")
		return nil, fmt.Errorf("failed to insert products: %w", err)
	}

	return added, nil
}

// Update overwrites the mutable fields of a product and returns the stored
// state, or nil when the product is not mirrored.
func (m *MongoProductMirror) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":             product.Name,
		"manufacturePhone": product.ManufacturePhone,
		"manufactureEmail": product.ManufactureEmail,
		"count":            product.Count,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": product.ID.String()}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		m.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	p, err := doc.toProduct()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product and reports whether a document was removed.
func (m *MongoProductMirror) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		m.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany removes the given products and reports whether any was removed.
func (m *MongoProductMirror) DeleteMany(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}

	res, err := m.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		m.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete products")
		return false, fmt.Errorf("failed to delete products: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// FindByName returns products whose name equals the trimmed input.
func (m *MongoProductMirror) FindByName(ctx context.Context, name string) ([]model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return m.find(ctx, bson.M{"name": name})
}

// FindByManufacturer returns products whose manufacturer email equals the trimmed input.
func (m *MongoProductMirror) FindByManufacturer(ctx context.Context, email string) ([]model.Product, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	return m.find(ctx, bson.M{"manufactureEmail": email})
}

// ListAll returns every mirrored product ordered by date.
func (m *MongoProductMirror) ListAll(ctx context.Context) ([]model.Product, error) {
	return m.find(ctx, bson.M{})
}

// Upsert replaces each product's document, inserting it when missing.
func (m *MongoProductMirror) Upsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": p.ID.String()}).
			SetReplacement(newProductDocument(p)).
			SetUpsert(true))
	}

	res, err := m.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		m.logger.Error().Err(err).Int("count", len(products)).Msg("failed to upsert products")
		return fmt.Errorf("failed to upsert products: %w", err)
	}

	m.logger.Debug().
		Int64("matched", res.MatchedCount).
		Int64("upserted", res.UpsertedCount).
		Msg("products upserted")

	return nil
}

// IDs lists every mirrored product id.
func (m *MongoProductMirror) IDs(ctx context.Context) ([]uuid.UUID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list mirror ids: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make([]uuid.UUID, 0)
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode mirror id: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			m.logger.Warn().Str("document_id", doc.ID).Msg("skipping document with invalid id")
			continue
		}
		ids = append(ids, id)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mirror ids: %w", err)
	}

	return ids, nil
}

func (m *MongoProductMirror) find(ctx context.Context, filter bson.M) ([]model.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
