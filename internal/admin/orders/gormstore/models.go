package gormstore

import (
	"time"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
)

type orderRecord struct {
	ID        int64             `gorm:"primaryKey;autoIncrement:false"`
	Status    string            `gorm:"size:32;index"`
	PaidAt    *time.Time        `gorm:"index"`
	Items     []orderItemRecord `gorm:"foreignKey:OrderID"`
	Flags     *orderFlagRecord  `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        int64  `gorm:"primaryKey"`
	OrderID   int64  `gorm:"index;not null"`
	ProductID int64  `gorm:"index;not null"`
	Name      string `gorm:"size:255"`
	Quantity  int
}

func (orderItemRecord) TableName() string { return "order_items" }

type productRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"size:255"`
	SKU         string `gorm:"column:sku;size:100"`
	MetalType   string `gorm:"size:64"`
	WeightValue string `gorm:"size:32"`
	WeightUnit  string `gorm:"size:16"`
}

func (productRecord) TableName() string { return "products" }

type orderFlagRecord struct {
	OrderID        int64 `gorm:"primaryKey;autoIncrement:false"`
	TestOrder      bool  `gorm:"not null;default:false"`
	TestOrderSaved bool  `gorm:"not null;default:false"`
	UnderReview    bool  `gorm:"not null;default:false;index"`
	Blacklisted    bool  `gorm:"not null;default:false;index"`
	UpdatedAt      time.Time
}

func (orderFlagRecord) TableName() string { return "order_flags" }

func (r orderRecord) toDomain() orders.Order {
	order := orders.Order{
		ID:     r.ID,
		Status: orders.Status(r.Status),
		Items:  make([]orders.LineItem, 0, len(r.Items)),
	}
	if r.PaidAt != nil {
		paid := r.PaidAt.UTC()
		order.PaidAt = &paid
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, orders.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
		})
	}
	if r.Flags != nil {
		order.Flags = r.Flags.toDomain()
	}
	return order
}

func (r orderFlagRecord) toDomain() orders.Flags {
	return orders.Flags{
		TestOrder:      r.TestOrder,
		TestOrderSaved: r.TestOrderSaved,
		UnderReview:    r.UnderReview,
		Blacklisted:    r.Blacklisted,
	}
}

func (r productRecord) toDomain() orders.Product {
	return orders.Product{
		ID:          r.ID,
		Name:        r.Name,
		SKU:         r.SKU,
		MetalType:   r.MetalType,
		WeightValue: r.WeightValue,
		WeightUnit:  r.WeightUnit,
	}
}

func orderFromDomain(o orders.Order) orderRecord {
	rec := orderRecord{ID: o.ID, Status: string(o.Status)}
	if o.PaidAt != nil {
		paid := o.PaidAt.UTC()
		rec.PaidAt = &paid
	}
	for _, item := range o.Items {
		rec.Items = append(rec.Items, orderItemRecord{
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
		})
	}
	flags := flagsFromDomain(o.ID, o.Flags)
	rec.Flags = &flags
	return rec
}

func flagsFromDomain(orderID int64, f orders.Flags) orderFlagRecord {
	return orderFlagRecord{
		OrderID:        orderID,
		TestOrder:      f.TestOrder,
		TestOrderSaved: f.TestOrderSaved,
		UnderReview:    f.UnderReview,
		Blacklisted:    f.Blacklisted,
	}
}

func productFromDomain(p orders.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		MetalType:   p.MetalType,
		WeightValue: p.WeightValue,
		WeightUnit:  p.WeightUnit,
	}
}
