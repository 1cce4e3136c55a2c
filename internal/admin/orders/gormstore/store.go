package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

// Store implements orders.Store on a relational database through GORM.
type Store struct {
	db  *gorm.DB
	loc *time.Location
}

var _ orders.Store = (*Store)(nil)

// New wraps an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db, loc: time.UTC}
}

// WithLocation sets the zone used to bucket paid months.
func (s *Store) WithLocation(loc *time.Location) *Store {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Open connects to the database for driver ("mysql", "postgres" or "sqlite").
// SQL statements slower than 200ms are logged through zap.
func Open(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(observability.NewPrintfAdapter(log), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates or updates the report tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&orderRecord{}, &orderItemRecord{}, &productRecord{}, &orderFlagRecord{})
}

// Seed inserts orders and products, replacing rows with the same IDs.
func (s *Store) Seed(ctx context.Context, list []orders.Order, products []orders.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, product := range products {
			rec := productFromDomain(product)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
				return fmt.Errorf("gormstore: seed product %d: %w", product.ID, err)
			}
		}
		for _, order := range list {
			if err := tx.Where("order_id = ?", order.ID).Delete(&orderItemRecord{}).Error; err != nil {
				return fmt.Errorf("gormstore: seed order %d items: %w", order.ID, err)
			}
			rec := orderFromDomain(order)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
				return fmt.Errorf("gormstore: seed order %d: %w", order.ID, err)
			}
		}
		return nil
	})
}

// Find implements orders.Store.
func (s *Store) Find(ctx context.Context, query orders.Query) ([]orders.Order, error) {
	tx := s.filtered(ctx, query).
		Select("orders.*").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Flags")

	direction := "DESC"
	if query.Sort.Direction == orders.SortDirectionAsc {
		direction = "ASC"
	}
	// Unpaid orders sort as the earliest timestamp on every dialect.
	tx = tx.Order("CASE WHEN orders.paid_at IS NULL THEN 0 ELSE 1 END " + direction).
		Order("orders.paid_at " + direction).
		Order("orders.id DESC")

	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	var records []orderRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("gormstore: find orders: %w", err)
	}

	out := make([]orders.Order, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// Count implements orders.Store.
func (s *Store) Count(ctx context.Context, query orders.Query) (int, error) {
	var total int64
	if err := s.filtered(ctx, query).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gormstore: count orders: %w", err)
	}
	return int(total), nil
}

func (s *Store) filtered(ctx context.Context, query orders.Query) *gorm.DB {
	tx := s.db.WithContext(ctx).
		Model(&orderRecord{}).
		Joins("LEFT JOIN order_flags ON order_flags.order_id = orders.id")

	if len(query.Statuses) > 0 {
		statuses := make([]string, 0, len(query.Statuses))
		for _, status := range query.Statuses {
			statuses = append(statuses, string(status))
		}
		tx = tx.Where("orders.status IN ?", statuses)
	}
	if query.RequirePaid {
		tx = tx.Where("orders.paid_at IS NOT NULL")
	}
	if query.ExcludeBlacklisted {
		tx = tx.Where("(order_flags.blacklisted IS NULL OR order_flags.blacklisted = ?)", false)
	}
	if query.UnderReviewOnly {
		tx = tx.Where("order_flags.under_review = ?", true)
	}
	if query.Paid != nil {
		tx = tx.Where("orders.paid_at >= ?", query.Paid.From.UTC())
		if query.Paid.ToExclusive {
			tx = tx.Where("orders.paid_at < ?", query.Paid.To.UTC())
		} else {
			tx = tx.Where("orders.paid_at <= ?", query.Paid.To.UTC())
		}
	}
	return tx
}

// Get implements orders.Store.
func (s *Store) Get(ctx context.Context, id int64) (orders.Order, error) {
	var rec orderRecord
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Flags").
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return orders.Order{}, fmt.Errorf("gormstore: get order %d: %w", id, err)
	}
	return rec.toDomain(), nil
}

// Products implements orders.Store.
func (s *Store) Products(ctx context.Context, ids []int64) (map[int64]orders.Product, error) {
	out := make(map[int64]orders.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var records []productRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("gormstore: load products: %w", err)
	}
	for _, rec := range records {
		out[rec.ID] = rec.toDomain()
	}
	return out, nil
}

// UpdateFlags implements orders.Store.
func (s *Store) UpdateFlags(ctx context.Context, id int64, fn func(*orders.Flags) error) (orders.Flags, error) {
	var result orders.Flags
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order orderRecord
		if err := tx.Select("id").First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return orders.ErrOrderNotFound
			}
			return err
		}

		var rec orderFlagRecord
		if err := tx.Where("order_id = ?", id).Limit(1).Find(&rec).Error; err != nil {
			return err
		}
		flags := rec.toDomain()
		if err := fn(&flags); err != nil {
			return err
		}

		updated := flagsFromDomain(id, flags)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"test_order", "test_order_saved", "under_review", "blacklisted", "updated_at"}),
		}).Create(&updated).Error
		if err != nil {
			return err
		}
		result = flags
		return nil
	})
	if errors.Is(err, orders.ErrOrderNotFound) {
		return orders.Flags{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return orders.Flags{}, fmt.Errorf("gormstore: update flags for order %d: %w", id, err)
	}
	return result, nil
}

// SetPaidAt implements orders.Store.
func (s *Store) SetPaidAt(ctx context.Context, id int64, paidAt time.Time) (orders.Order, error) {
	res := s.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"paid_at": paidAt.UTC(), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return orders.Order{}, fmt.Errorf("gormstore: set paid date for order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	return s.Get(ctx, id)
}

// PaidMonths implements orders.Store.
func (s *Store) PaidMonths(ctx context.Context) ([]orders.YearMonth, error) {
	var paid []time.Time
	err := s.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("status = ? AND paid_at IS NOT NULL", string(orders.StatusProcessing)).
		Pluck("paid_at", &paid).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: paid months: %w", err)
	}

	list := make([]orders.Order, 0, len(paid))
	for i := range paid {
		list = append(list, orders.Order{Status: orders.StatusProcessing, PaidAt: &paid[i]})
	}
	return orders.MonthsOf(list, s.loc), nil
}
