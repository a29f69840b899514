// Package mongostore keeps products and orders in MongoDB. It satisfies the
// same store interfaces as the gorm repository.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"
)

type sizeDoc struct {
	Size     string `bson:"size"`
	Quantity int    `bson:"quantity"`
}

type productDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Sizes     []sizeDoc            `bson:"sizes"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type itemDoc struct {
	ProductID string `bson:"productId"`
	Qty       int    `bson:"qty"`
}

type orderDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	UserID    string               `bson:"userId"`
	Items     []itemDoc            `bson:"items"`
	Total     primitive.Decimal128 `bson:"total"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type Store struct {
	client   *mongo.Client
	products *mongo.Collection
	orders   *mongo.Collection
}

// Connect dials uri, pings the primary and returns a Store bound to database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:   client,
		products: db.Collection(productsCollection),
		orders:   db.Collection(ordersCollection),
	}, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "sizes.size", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("products indexes: %w", err)
	}
	if _, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("orders indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return err
	}

	doc := productDoc{
		Name:      p.Name,
		Price:     price,
		Sizes:     make([]sizeDoc, 0, len(p.Sizes)),
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
	for _, sz := range p.Sizes {
		doc.Sizes = append(doc.Sizes, sizeDoc{Size: sz.Size, Quantity: sz.Quantity})
	}

	res, err := s.products.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id %T", res.InsertedID)
	}
	p.ID = oid.Hex()
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc productDoc
	if err := s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	p, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d productDoc) toDomain() (domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return domain.Product{}, err
	}
	sizes := make([]domain.SizeStock, 0, len(d.Sizes))
	for _, sz := range d.Sizes {
		sizes = append(sizes, domain.SizeStock{Size: sz.Size, Quantity: sz.Quantity})
	}
	return domain.Product{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     price,
		Sizes:     sizes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// productFilter builds the match document for a listing. Inputs are quoted
// so they match literally.
func productFilter(f domain.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Size != "" {
		filter["sizes"] = bson.M{"$elemMatch": bson.M{
			"size":     primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Size) + "$", Options: "i"},
			"quantity": bson.M{"$gt": 0},
		}}
	}
	return filter
}

func (s *Store) ListProducts(ctx context.Context, f domain.ProductFilter, w pagination.Window) (pagination.Result[domain.Product], error) {
	filter := productFilter(f)
	sort := bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

	docs, total, err := findPage[productDoc](ctx, s.products, filter, sort, w)
	if err != nil {
		return pagination.Result[domain.Product]{}, err
	}

	items := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return pagination.Result[domain.Product]{}, err
		}
		items = append(items, p)
	}
	return pagination.Result[domain.Product]{Items: items, Total: total}, nil
}

// DecrementSize matches the size entry and its stock precondition in the same
// filter, so the positional $inc applies only when enough stock is present.
func (s *Store) DecrementSize(ctx context.Context, id, size string, qty int, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	filter := bson.M{
		"_id":   oid,
		"sizes": bson.M{"$elemMatch": bson.M{"size": size, "quantity": bson.M{"$gte": qty}}},
	}
	update := bson.M{
		"$inc": bson.M{"sizes.$.quantity": -qty},
		"$set": bson.M{"updatedAt": at.UTC()},
	}

	res, err := s.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *Store) RestockSize(ctx context.Context, id, size string, qty int, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": oid, "sizes.size": size},
		bson.M{
			"$inc": bson.M{"sizes.$.quantity": qty},
			"$set": bson.M{"updatedAt": at.UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	total, err := toDecimal128(o.Total)
	if err != nil {
		return err
	}

	doc := orderDoc{
		UserID:    o.UserID,
		Items:     make([]itemDoc, 0, len(o.Items)),
		Total:     total,
		CreatedAt: o.CreatedAt.UTC(),
		UpdatedAt: o.UpdatedAt.UTC(),
	}
	for _, it := range o.Items {
		doc.Items = append(doc.Items, itemDoc{ProductID: it.ProductID, Qty: it.Qty})
	}

	res, err := s.orders.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id %T", res.InsertedID)
	}
	o.ID = oid.Hex()
	return nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string, w pagination.Window) (pagination.Result[domain.Order], error) {
	sort := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

	docs, total, err := findPage[orderDoc](ctx, s.orders, bson.M{"userId": userID}, sort, w)
	if err != nil {
		return pagination.Result[domain.Order]{}, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		t, err := fromDecimal128(d.Total)
		if err != nil {
			return pagination.Result[domain.Order]{}, err
		}
		items := make([]domain.OrderItem, 0, len(d.Items))
		for _, it := range d.Items {
			items = append(items, domain.OrderItem{ProductID: it.ProductID, Qty: it.Qty})
		}
		orders = append(orders, domain.Order{
			ID:        d.ID.Hex(),
			UserID:    d.UserID,
			Items:     items,
			Total:     t,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return pagination.Result[domain.Order]{Items: orders, Total: total}, nil
}

func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, w pagination.Window) ([]T, int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	docs := make([]T, 0, w.Limit)
	if total == 0 || int64(w.Offset) >= total {
		return docs, total, nil
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(w.Offset)).
		SetLimit(int64(w.Limit))
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
