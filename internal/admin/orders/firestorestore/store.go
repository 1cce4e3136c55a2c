package firestorestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
)

// Config tunes the Firestore-backed order store.
type Config struct {
	OrdersCollection   string
	ProductsCollection string
	Location           *time.Location
	Logger             *zap.Logger
}

// Store reads orders mirrored from the storefront into Firestore.
// Documents live at orders/{id} and products/{id}.
type Store struct {
	client   *firestore.Client
	orders   string
	products string
	loc      *time.Location
	logger   *zap.Logger
}

var _ orders.Store = (*Store)(nil)

type orderDocument struct {
	Status    string         `firestore:"status"`
	PaidAt    *time.Time     `firestore:"paidAt"`
	Items     []itemDocument `firestore:"items"`
	Flags     flagsDocument  `firestore:"flags"`
	UpdatedAt time.Time      `firestore:"updatedAt"`
}

type itemDocument struct {
	ProductID int64  `firestore:"productId"`
	Name      string `firestore:"name"`
	Quantity  int    `firestore:"quantity"`
}

type flagsDocument struct {
	TestOrder      bool `firestore:"testOrder"`
	TestOrderSaved bool `firestore:"testOrderSaved"`
	UnderReview    bool `firestore:"underReview"`
	Blacklisted    bool `firestore:"blacklisted"`
}

type productDocument struct {
	Name        string `firestore:"name"`
	SKU         string `firestore:"sku"`
	MetalType   string `firestore:"metalType"`
	WeightValue string `firestore:"weightValue"`
	WeightUnit  string `firestore:"weightUnit"`
}

// New constructs a Firestore-backed store.
func New(client *firestore.Client, cfg Config) *Store {
	if client == nil {
		panic("firestorestore: firestore client is required")
	}
	if cfg.OrdersCollection == "" {
		cfg.OrdersCollection = "orders"
	}
	if cfg.ProductsCollection == "" {
		cfg.ProductsCollection = "products"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store{
		client:   client,
		orders:   cfg.OrdersCollection,
		products: cfg.ProductsCollection,
		loc:      cfg.Location,
		logger:   cfg.Logger,
	}
}

// Find implements orders.Store. Status filtering runs in Firestore; the
// remaining filters, ordering and paging run in memory.
func (s *Store) Find(ctx context.Context, query orders.Query) ([]orders.Order, error) {
	list, err := s.load(ctx, query)
	if err != nil {
		return nil, err
	}
	orders.SortByID(list)
	orders.SortOrders(list, query.Sort)
	return orders.Page(list, query.Offset, query.Limit), nil
}

// Count implements orders.Store.
func (s *Store) Count(ctx context.Context, query orders.Query) (int, error) {
	list, err := s.load(ctx, query)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *Store) load(ctx context.Context, query orders.Query) ([]orders.Order, error) {
	q := s.client.Collection(s.orders).Query
	switch len(query.Statuses) {
	case 0:
	case 1:
		q = q.Where("status", "==", string(query.Statuses[0]))
	default:
		statuses := make([]string, 0, len(query.Statuses))
		for _, st := range query.Statuses {
			statuses = append(statuses, string(st))
		}
		q = q.Where("status", "in", statuses)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var list []orders.Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestorestore: list orders: %w", err)
		}
		order, err := decodeOrder(snap)
		if err != nil {
			s.logger.Warn("skip order document", zap.String("path", snap.Ref.Path), zap.Error(err))
			continue
		}
		if query.Matches(order) {
			list = append(list, order)
		}
	}
	return list, nil
}

// Get implements orders.Store.
func (s *Store) Get(ctx context.Context, id int64) (orders.Order, error) {
	snap, err := s.orderRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return orders.Order{}, orders.ErrOrderNotFound
		}
		return orders.Order{}, fmt.Errorf("firestorestore: get order %d: %w", id, err)
	}
	return decodeOrder(snap)
}

// Products implements orders.Store.
func (s *Store) Products(ctx context.Context, ids []int64) (map[int64]orders.Product, error) {
	out := make(map[int64]orders.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, s.client.Collection(s.products).Doc(docID(id)))
	}
	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("firestorestore: load products: %w", err)
	}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		product, err := decodeProduct(snap)
		if err != nil {
			s.logger.Warn("skip product document", zap.String("path", snap.Ref.Path), zap.Error(err))
			continue
		}
		out[product.ID] = product
	}
	return out, nil
}

// UpdateFlags implements orders.Store.
func (s *Store) UpdateFlags(ctx context.Context, id int64, fn func(*orders.Flags) error) (orders.Flags, error) {
	ref := s.orderRef(id)
	var result orders.Flags
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		order, err := decodeOrder(snap)
		if err != nil {
			return err
		}
		flags := order.Flags
		if err := fn(&flags); err != nil {
			return err
		}
		result = flags
		return tx.Update(ref, []firestore.Update{
			{Path: "flags", Value: flagsToDocument(flags)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if status.Code(err) == codes.NotFound {
		return orders.Flags{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return orders.Flags{}, fmt.Errorf("firestorestore: update flags for order %d: %w", id, err)
	}
	return result, nil
}

// SetPaidAt implements orders.Store.
func (s *Store) SetPaidAt(ctx context.Context, id int64, paidAt time.Time) (orders.Order, error) {
	ref := s.orderRef(id)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "paidAt", Value: paidAt.UTC()},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if status.Code(err) == codes.NotFound {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return orders.Order{}, fmt.Errorf("firestorestore: set paid date for order %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// PaidMonths implements orders.Store.
func (s *Store) PaidMonths(ctx context.Context) ([]orders.YearMonth, error) {
	list, err := s.load(ctx, orders.Query{
		Statuses:    []orders.Status{orders.StatusProcessing},
		RequirePaid: true,
	})
	if err != nil {
		return nil, err
	}
	return orders.MonthsOf(list, s.loc), nil
}

// Seed writes orders and products, replacing existing documents.
func (s *Store) Seed(ctx context.Context, list []orders.Order, products []orders.Product) error {
	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for _, product := range products {
		job, err := bw.Set(s.client.Collection(s.products).Doc(docID(product.ID)), productToDocument(product))
		if err != nil {
			bw.End()
			return fmt.Errorf("firestorestore: seed product %d: %w", product.ID, err)
		}
		jobs = append(jobs, job)
	}
	for _, order := range list {
		job, err := bw.Set(s.orderRef(order.ID), orderToDocument(order))
		if err != nil {
			bw.End()
			return fmt.Errorf("firestorestore: seed order %d: %w", order.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("firestorestore: seed: %w", err)
		}
	}
	return nil
}

func (s *Store) orderRef(id int64) *firestore.DocumentRef {
	return s.client.Collection(s.orders).Doc(docID(id))
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeOrder(snap *firestore.DocumentSnapshot) (orders.Order, error) {
	id, err := strconv.ParseInt(snap.Ref.ID, 10, 64)
	if err != nil {
		return orders.Order{}, fmt.Errorf("firestorestore: order id %q: %w", snap.Ref.ID, err)
	}
	var doc orderDocument
	if err := snap.DataTo(&doc); err != nil {
		return orders.Order{}, fmt.Errorf("firestorestore: decode order %d: %w", id, err)
	}
	return orderFromDocument(id, doc)
}

func orderFromDocument(id int64, doc orderDocument) (orders.Order, error) {
	st, ok := orders.ParseStatus(doc.Status)
	if !ok {
		return orders.Order{}, fmt.Errorf("firestorestore: order %d has unknown status %q", id, doc.Status)
	}
	order := orders.Order{
		ID:     id,
		Status: st,
		Items:  make([]orders.LineItem, 0, len(doc.Items)),
		Flags: orders.Flags{
			TestOrder:      doc.Flags.TestOrder,
			TestOrderSaved: doc.Flags.TestOrderSaved,
			UnderReview:    doc.Flags.UnderReview,
			Blacklisted:    doc.Flags.Blacklisted,
		},
	}
	if doc.PaidAt != nil && !doc.PaidAt.IsZero() {
		paid := doc.PaidAt.UTC()
		order.PaidAt = &paid
	}
	for _, item := range doc.Items {
		order.Items = append(order.Items, orders.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
		})
	}
	return order, nil
}

func orderToDocument(order orders.Order) orderDocument {
	doc := orderDocument{
		Status:    string(order.Status),
		Flags:     flagsToDocument(order.Flags),
		UpdatedAt: time.Now().UTC(),
	}
	if order.PaidAt != nil {
		paid := order.PaidAt.UTC()
		doc.PaidAt = &paid
	}
	for _, item := range order.Items {
		doc.Items = append(doc.Items, itemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
		})
	}
	return doc
}

func flagsToDocument(f orders.Flags) flagsDocument {
	return flagsDocument{
		TestOrder:      f.TestOrder,
		TestOrderSaved: f.TestOrderSaved,
		UnderReview:    f.UnderReview,
		Blacklisted:    f.Blacklisted,
	}
}

func decodeProduct(snap *firestore.DocumentSnapshot) (orders.Product, error) {
	id, err := strconv.ParseInt(snap.Ref.ID, 10, 64)
	if err != nil {
		return orders.Product{}, fmt.Errorf("firestorestore: product id %q: %w", snap.Ref.ID, err)
	}
	var doc productDocument
	if err := snap.DataTo(&doc); err != nil {
		return orders.Product{}, fmt.Errorf("firestorestore: decode product %d: %w", id, err)
	}
	return productFromDocument(id, doc), nil
}

func productFromDocument(id int64, doc productDocument) orders.Product {
	return orders.Product{
		ID:          id,
		Name:        doc.Name,
		SKU:         doc.SKU,
		MetalType:   doc.MetalType,
		WeightValue: doc.WeightValue,
		WeightUnit:  doc.WeightUnit,
	}
}

func productToDocument(p orders.Product) productDocument {
	return productDocument{
		Name:        p.Name,
		SKU:         p.SKU,
		MetalType:   p.MetalType,
		WeightValue: p.WeightValue,
		WeightUnit:  p.WeightUnit,
	}
}
