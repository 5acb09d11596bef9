package mongorepository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"smm-market/internal/storefront/data"
	"smm-market/pkg/logging"
)

const (
	OrdersCollection    = "orders"
	ProvidersCollection = "providers"

	DefaultListLimit = 100
)

type MongoRepository struct {
	orders    *mongo.Collection
	providers *mongo.Collection
	logger    *logging.ZapLogger
	now       func() time.Time
}

func New(db *mongo.Database, logger *logging.ZapLogger) *MongoRepository {
	return &MongoRepository{
		orders:    db.Collection(OrdersCollection),
		providers: db.Collection(ProvidersCollection),
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureIndexes creates the indexes the reconciliation and admin queries rely on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "providerId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create orders indexes: %w", err)
	}
	_, err = r.providers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create providers indexes: %w", err)
	}
	return nil
}

// DoWithTransaction runs f as is. Every write of the repository touches a
// single document, which MongoDB already applies atomically.
func (r *MongoRepository) DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

func (r *MongoRepository) GetReconcilableOrders(ctx context.Context) ([]data.Order, error) {
	filter := bson.M{
		"status":          bson.M{"$in": data.ReconcilableStatuses},
		"providerId":      bson.M{"$ne": ""},
		"externalOrderId": bson.M{"$ne": ""},
	}
	opts := options.Find().SetSort(bson.D{{Key: "providerId", Value: 1}, {Key: "createdAt", Value: 1}})
	return r.findOrders(ctx, filter, opts)
}

func (r *MongoRepository) SaveReconciliation(ctx context.Context, order data.Order) error {
	charge, err := toDecimal128(order.ProviderCharge)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"status":         string(order.Status),
		"providerStatus": order.ProviderStatus,
		"providerCharge": charge,
		"updatedAt":      r.now().UTC(),
	}}
	res, err := r.orders.UpdateOne(ctx, bson.M{"_id": order.ID}, update)
	if err != nil {
		return handleMongoError(err)
	}
	if res.MatchedCount == 0 {
		return data.ErrOrderNotFound
	}
	return nil
}

func (r *MongoRepository) InsertOrder(ctx context.Context, order data.Order) error {
	order.UpdatedAt = order.CreatedAt
	doc, err := newOrderDocument(order)
	if err != nil {
		return err
	}
	if _, err := r.orders.InsertOne(ctx, doc); err != nil {
		return handleMongoError(err)
	}
	return nil
}

func (r *MongoRepository) GetOrder(ctx context.Context, id string) (data.Order, error) {
	r.logger.DebugCtx(ctx, "getting order", zap.String("orderID", id))
	var doc orderDocument
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return data.Order{}, data.ErrOrderNotFound
		}
		return data.Order{}, handleMongoError(err)
	}
	return doc.toOrder()
}

// ListOrders returns the newest orders first. An empty status matches all.
func (r *MongoRepository) ListOrders(ctx context.Context, status data.Status, limit int) ([]data.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	filter := bson.M{}
	if status != data.NullStatus {
		filter["status"] = string(status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return r.findOrders(ctx, filter, opts)
}

func (r *MongoRepository) SetExternalOrderID(ctx context.Context, id, externalOrderID string) error {
	update := bson.M{"$set": bson.M{
		"externalOrderId": externalOrderID,
		"updatedAt":       r.now().UTC(),
	}}
	res, err := r.orders.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return handleMongoError(err)
	}
	if res.MatchedCount == 0 {
		return data.ErrOrderNotFound
	}
	return nil
}

func (r *MongoRepository) InsertProvider(ctx context.Context, provider data.Provider) error {
	if _, err := r.providers.InsertOne(ctx, newProviderDocument(provider)); err != nil {
		return handleMongoError(err)
	}
	return nil
}

func (r *MongoRepository) GetProvider(ctx context.Context, id string) (data.Provider, error) {
	var doc providerDocument
	if err := r.providers.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return data.Provider{}, data.ErrProviderNotFound
		}
		return data.Provider{}, handleMongoError(err)
	}
	return doc.toProvider(), nil
}

func (r *MongoRepository) ListProviders(ctx context.Context) ([]data.Provider, error) {
	cursor, err := r.providers.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, handleMongoError(err)
	}
	var docs []providerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError(err)
	}
	result := make([]data.Provider, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toProvider())
	}
	return result, nil
}

func (r *MongoRepository) UpdateProvider(ctx context.Context, provider data.Provider) error {
	update := bson.M{"$set": bson.M{
		"name":   provider.Name,
		"url":    provider.URL,
		"apiKey": provider.APIKey,
		"active": provider.Active,
	}}
	res, err := r.providers.UpdateOne(ctx, bson.M{"_id": provider.ID}, update)
	if err != nil {
		return handleMongoError(err)
	}
	if res.MatchedCount == 0 {
		return data.ErrProviderNotFound
	}
	return nil
}

func (r *MongoRepository) findOrders(ctx context.Context, filter any, opts *options.FindOptions) ([]data.Order, error) {
	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, handleMongoError(err)
	}
	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError(err)
	}
	result := make([]data.Order, 0, len(docs))
	for i := range docs {
		order, err := docs[i].toOrder()
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, nil
}

func handleMongoError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return data.ErrUniqueConstraintViolation
	}
	return fmt.Errorf("database error: %w", err)
}
