package mongostore

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

func TestProductFilter(t *testing.T) {
	t.Parallel()

	assert.Empty(t, productFilter(domain.ProductFilter{}))

	f := productFilter(domain.ProductFilter{Name: "a.b", Size: "M+"})
	require.Contains(t, f, "name")
	require.Contains(t, f, "sizes")
	re, ok := f["name"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `a\.b`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestDecimalRoundTrip(t *testing.T) {
	t.Parallel()

	in := decimal.RequireFromString("19.99")
	d, err := toDecimal128(in)
	require.NoError(t, err)
	out, err := fromDecimal128(d)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func newStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URL")
	if uri == "" {
		t.Skip("MONGODB_TEST_URL is not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, uri, "storefront_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, s.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = s.products.Database().Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestStore_ProductLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	p := &domain.Product{
		Name:      "Shirt",
		Price:     decimal.NewFromInt(20),
		Sizes:     []domain.SizeStock{{Size: "M", Quantity: 2}, {Size: "L", Quantity: 0}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateProduct(ctx, p))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", got.Name)
	assert.True(t, decimal.NewFromInt(20).Equal(got.Price))

	_, err = s.GetProduct(ctx, "zzz")
	require.ErrorIs(t, err, domain.ErrNotFound)

	res, err := s.ListProducts(ctx, domain.ProductFilter{Name: "shi", Size: "m"}, pagination.Window{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	res, err = s.ListProducts(ctx, domain.ProductFilter{Size: "l"}, pagination.Window{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, res.Total)

	ok, err := s.DecrementSize(ctx, p.ID, "M", 3, now)
	require.NoError(t, err)
	assert.False(t, ok)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := s.DecrementSize(ctx, p.ID, "M", 1, time.Now()); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 2, wins.Load())

	require.NoError(t, s.RestockSize(ctx, p.ID, "M", 1, now))
	got, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Sizes[0].Quantity)
}

func TestStore_Orders(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateOrder(ctx, &domain.Order{
			UserID:    "u1",
			Items:     []domain.OrderItem{{ProductID: "p", Qty: i + 1}},
			Total:     decimal.NewFromInt(int64(i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	res, err := s.ListOrdersByUser(ctx, "u1", pagination.Window{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.Items[0].Items[0].Qty)
}
