package orders

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StaticStore keeps orders and products in memory. It backs local
// development and tests.
type StaticStore struct {
	mu       sync.RWMutex
	orders   map[int64]Order
	products map[int64]Product
	loc      *time.Location
}

// NewStaticStore returns a StaticStore holding copies of the provided data.
func NewStaticStore(orders []Order, products []Product) *StaticStore {
	s := &StaticStore{
		orders:   make(map[int64]Order, len(orders)),
		products: make(map[int64]Product, len(products)),
		loc:      time.UTC,
	}
	for _, order := range orders {
		s.orders[order.ID] = cloneOrder(order)
	}
	for _, product := range products {
		s.products[product.ID] = product
	}
	return s
}

// NewSampleStore returns a StaticStore populated with representative bullion
// orders paid relative to now.
func NewSampleStore(now time.Time) *StaticStore {
	return NewStaticStore(SampleData(now))
}

// SampleData returns the demo orders and products used by NewSampleStore and
// by database seeding.
func SampleData(now time.Time) ([]Order, []Product) {
	at := func(d time.Duration) *time.Time {
		t := now.Add(-d).UTC().Truncate(time.Second)
		return &t
	}
	day := 24 * time.Hour

	products := []Product{
		{ID: 101, Name: "Silver Maple Leaf 1 oz", SKU: "AG-ML-1OZ", MetalType: "Silver", WeightValue: "1", WeightUnit: "ounces"},
		{ID: 102, Name: "Silver Bar 100 g", SKU: "AG-BAR-100G", MetalType: "Silver", WeightValue: "100", WeightUnit: "grams"},
		{ID: 103, Name: "Gold Krugerrand 1 oz", SKU: "AU-KR-1OZ", MetalType: "Gold", WeightValue: "1", WeightUnit: "ounces"},
		{ID: 104, Name: "Gold Bar 20 g", SKU: "AU-BAR-20G", MetalType: "Gold", WeightValue: "20", WeightUnit: "grams"},
		{ID: 105, Name: "Platinum Eagle 1/2 oz", SKU: "PT-EA-HALF", MetalType: "Platinum", WeightValue: "0.5", WeightUnit: "ounces"},
		{ID: 106, Name: "Copper Round 1 oz", SKU: "CU-RD-1OZ", MetalType: "Copper", WeightValue: "1", WeightUnit: "ounces"},
		{ID: 107, Name: "Gift Card", SKU: "GIFT-50"},
		{ID: 108, Name: "金 インゴット 5g", SKU: "AU-JP-5G", MetalType: "金", WeightValue: "5", WeightUnit: "grams"},
	}

	orders := []Order{
		{ID: 5012, Status: StatusProcessing, PaidAt: at(2 * time.Hour), Items: []LineItem{
			{ProductID: 101, Name: "Silver Maple Leaf 1 oz", Quantity: 10},
			{ProductID: 103, Name: "Gold Krugerrand 1 oz", Quantity: 1},
		}},
		{ID: 5011, Status: StatusProcessing, PaidAt: at(26 * time.Hour), Items: []LineItem{
			{ProductID: 102, Name: "Silver Bar 100 g", Quantity: 3},
			{ProductID: 107, Name: "Gift Card", Quantity: 1},
		}},
		{ID: 5010, Status: StatusProcessing, PaidAt: at(3 * day), Items: []LineItem{
			{ProductID: 105, Name: "Platinum Eagle 1/2 oz", Quantity: 4},
		}, Flags: Flags{TestOrder: true, TestOrderSaved: true}},
		{ID: 5009, Status: StatusCompleted, PaidAt: at(6 * day), Items: []LineItem{
			{ProductID: 104, Name: "Gold Bar 20 g", Quantity: 2},
		}},
		{ID: 5008, Status: StatusCancelled, PaidAt: at(8 * day), Items: []LineItem{
			{ProductID: 106, Name: "Copper Round 1 oz", Quantity: 25},
		}, Flags: Flags{UnderReview: true}},
		{ID: 5007, Status: StatusProcessing, PaidAt: at(12 * day), Items: []LineItem{
			{ProductID: 101, Name: "Silver Maple Leaf 1 oz", Quantity: 5},
		}, Flags: Flags{Blacklisted: true}},
		{ID: 5006, Status: StatusProcessing, PaidAt: at(40 * day), Items: []LineItem{
			{ProductID: 104, Name: "Gold Bar 20 g", Quantity: 1},
			{ProductID: 106, Name: "Copper Round 1 oz", Quantity: 10},
		}},
		{ID: 5005, Status: StatusCancelled, Items: []LineItem{
			{ProductID: 102, Name: "Silver Bar 100 g", Quantity: 1},
		}, Flags: Flags{UnderReview: true}},
		{ID: 5004, Status: StatusPending, Items: []LineItem{
			{ProductID: 103, Name: "Gold Krugerrand 1 oz", Quantity: 2},
		}},
	}

	return orders, products
}

// WithLocation sets the zone used to bucket paid months.
func (s *StaticStore) WithLocation(loc *time.Location) *StaticStore {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Find implements Store.
func (s *StaticStore) Find(_ context.Context, query Query) ([]Order, error) {
	matched := s.filterOrders(query)
	SortOrders(matched, query.Sort)
	return Page(matched, query.Offset, query.Limit), nil
}

// Count implements Store.
func (s *StaticStore) Count(_ context.Context, query Query) (int, error) {
	return len(s.filterOrders(query)), nil
}

// Get implements Store.
func (s *StaticStore) Get(_ context.Context, id int64) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// Products implements Store.
func (s *StaticStore) Products(_ context.Context, ids []int64) (map[int64]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]Product, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

// UpdateFlags implements Store.
func (s *StaticStore) UpdateFlags(_ context.Context, id int64, fn func(*Flags) error) (Flags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return Flags{}, ErrOrderNotFound
	}
	flags := order.Flags
	if err := fn(&flags); err != nil {
		return Flags{}, fmt.Errorf("update flags for order %d: %w", id, err)
	}
	order.Flags = flags
	s.orders[id] = order
	return flags, nil
}

// SetPaidAt implements Store.
func (s *StaticStore) SetPaidAt(_ context.Context, id int64, paidAt time.Time) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	paid := paidAt
	order.PaidAt = &paid
	s.orders[id] = order
	return cloneOrder(order), nil
}

// PaidMonths implements Store.
func (s *StaticStore) PaidMonths(_ context.Context) ([]YearMonth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Order, 0, len(s.orders))
	for _, order := range s.orders {
		list = append(list, order)
	}
	return MonthsOf(list, s.loc), nil
}

func (s *StaticStore) filterOrders(query Query) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Order, 0, len(s.orders))
	for _, order := range s.orders {
		if !query.Matches(order) {
			continue
		}
		results = append(results, cloneOrder(order))
	}
	// Map iteration is random; settle ties on ID before the caller's stable sort.
	SortByID(results)
	return results
}

func cloneOrder(order Order) Order {
	if order.PaidAt != nil {
		paid := *order.PaidAt
		order.PaidAt = &paid
	}
	order.Items = append([]LineItem(nil), order.Items...)
	return order
}
