package mongorepository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"smm-market/internal/storefront/data"
	"smm-market/pkg/logging"
)

var createdAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newRepository(mt *mtest.T) *MongoRepository {
	repo := New(mt.DB, logging.NewNop())
	repo.now = func() time.Time { return createdAt }
	return repo
}

func toBSON(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func sampleOrder(id string) data.Order {
	return data.Order{
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
		ID:              id,
		UserID:          "u1",
		ServiceID:       "12",
		ServiceName:     "Followers",
		Link:            "https://example.com/p/1",
		Quantity:        1000,
		Price:           decimal.RequireFromString("3.5"),
		Status:          data.ProcessingStatus,
		ProviderID:      "p1",
		ExternalOrderID: "X1",
		ProviderStatus:  "In progress",
		ProviderCharge:  decimal.RequireFromString("1.25"),
	}
}

func orderBSON(t *testing.T, order data.Order) bson.D {
	t.Helper()
	doc, err := newOrderDocument(order)
	require.NoError(t, err)
	return toBSON(t, doc)
}

func assertSameOrder(t *testing.T, want, got data.Order) {
	t.Helper()
	assert.True(t, want.Price.Equal(got.Price), "price %s != %s", want.Price, got.Price)
	assert.True(t, want.ProviderCharge.Equal(got.ProviderCharge), "charge %s != %s", want.ProviderCharge, got.ProviderCharge)
	want.Price, got.Price = decimal.Zero, decimal.Zero
	want.ProviderCharge, got.ProviderCharge = decimal.Zero, decimal.Zero
	assert.Equal(t, want, got)
}

func TestOrders(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "db." + OrdersCollection

	mt.Run("reconcilable orders", func(mt *mtest.T) {
		first, second := sampleOrder("o1"), sampleOrder("o2")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			orderBSON(mt.T, first),
			orderBSON(mt.T, second),
		))

		orders, err := newRepository(mt).GetReconcilableOrders(context.Background())

		require.NoError(mt, err)
		require.Len(mt, orders, 2)
		assertSameOrder(mt.T, first, orders[0])
		assertSameOrder(mt.T, second, orders[1])
	})

	mt.Run("reconcilable orders failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := newRepository(mt).GetReconcilableOrders(context.Background())

		assert.ErrorContains(mt, err, "bad query")
	})

	mt.Run("save reconciliation", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := newRepository(mt).SaveReconciliation(context.Background(), sampleOrder("o1"))

		require.NoError(mt, err)
		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
	})

	mt.Run("save reconciliation missing order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := newRepository(mt).SaveReconciliation(context.Background(), sampleOrder("gone"))

		assert.ErrorIs(mt, err, data.ErrOrderNotFound)
	})

	mt.Run("insert duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := newRepository(mt).InsertOrder(context.Background(), sampleOrder("o1"))

		assert.ErrorIs(mt, err, data.ErrUniqueConstraintViolation)
	})

	mt.Run("get order", func(mt *mtest.T) {
		order := sampleOrder("o1")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderBSON(mt.T, order)))

		got, err := newRepository(mt).GetOrder(context.Background(), "o1")

		require.NoError(mt, err)
		assertSameOrder(mt.T, order, got)
	})

	mt.Run("get order not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := newRepository(mt).GetOrder(context.Background(), "o1")

		assert.ErrorIs(mt, err, data.ErrOrderNotFound)
	})

	mt.Run("list orders", func(mt *mtest.T) {
		order := sampleOrder("o1")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderBSON(mt.T, order)))

		orders, err := newRepository(mt).ListOrders(context.Background(), data.ProcessingStatus, 0)

		require.NoError(mt, err)
		require.Len(mt, orders, 1)
		assertSameOrder(mt.T, order, orders[0])
	})

	mt.Run("set external order id", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)
		repo := newRepository(mt)

		require.NoError(mt, repo.SetExternalOrderID(context.Background(), "o1", "23501"))
		assert.ErrorIs(mt, repo.SetExternalOrderID(context.Background(), "gone", "23502"), data.ErrOrderNotFound)
	})
}

func TestProviders(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "db." + ProvidersCollection
	provider := data.Provider{
		CreatedAt: createdAt,
		ID:        "p1",
		Name:      "Panel",
		URL:       "https://panel.example/api/v2",
		APIKey:    "secret",
		Active:    true,
	}

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, newRepository(mt).InsertProvider(context.Background(), provider))
	})

	mt.Run("get", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toBSON(mt.T, newProviderDocument(provider))))

		got, err := newRepository(mt).GetProvider(context.Background(), "p1")

		require.NoError(mt, err)
		assert.Equal(mt, provider, got)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := newRepository(mt).GetProvider(context.Background(), "p1")

		assert.ErrorIs(mt, err, data.ErrProviderNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toBSON(mt.T, newProviderDocument(provider))))

		got, err := newRepository(mt).ListProviders(context.Background())

		require.NoError(mt, err)
		assert.Equal(mt, []data.Provider{provider}, got)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		assert.ErrorIs(mt, newRepository(mt).UpdateProvider(context.Background(), provider), data.ErrProviderNotFound)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		require.NoError(mt, newRepository(mt).EnsureIndexes(context.Background()))
	})
}

func TestDecimalConversion(t *testing.T) {
	value, err := toDecimal128(decimal.RequireFromString("1234.567890"))
	require.NoError(t, err)

	back, err := fromDecimal128(value)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1234.56789").Equal(back))
}
