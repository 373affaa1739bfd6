package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"procdesk/internal/domain/order"
	"procdesk/internal/infrastructure/persistence/mappers"
	"procdesk/internal/infrastructure/persistence/models"
	"procdesk/internal/shared/logger"
)

// OrderRepository implements the order repository over a single operator's
// database file.
type OrderRepository struct {
	db     *gorm.DB
	mapper mappers.OrderMapper
	logger logger.Interface
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB, log logger.Interface) order.Repository {
	return &OrderRepository{
		db:     db,
		mapper: mappers.NewOrderMapper(),
		logger: log,
	}
}

func (r *OrderRepository) Create(ctx context.Context, entity *order.Order) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create order",
			"username", entity.Username(), "order_number", entity.OrderNumber(), "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set order ID: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

func (r *OrderRepository) Update(ctx context.Context, entity *order.Order) error {
	model := r.mapper.ToModel(entity)

	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", model.ID).
		Select("client", "order_number", "item_count", "entry_date",
			"processing_date", "cut_time", "notes", "value").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %d not found", model.ID)
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %d not found", id)
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := applyFilter(r.db.WithContext(ctx), filter).
		Order("coalesce(processing_date, entry_date) DESC, id DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orderModels []*models.OrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return r.mapper.ToEntities(orderModels), nil
}

func (r *OrderRepository) GetTotals(ctx context.Context, filter order.ListFilter) (order.Totals, error) {
	var row struct {
		Orders int64
		Items  int64
		Value  float64
	}
	err := applyFilter(r.db.WithContext(ctx), filter).
		Select("COUNT(*) AS orders, COALESCE(SUM(item_count), 0) AS items, COALESCE(SUM(value), 0) AS value").
		Scan(&row).Error
	if err != nil {
		return order.Totals{}, fmt.Errorf("failed to compute totals: %w", err)
	}
	return order.Totals{
		Orders: int(row.Orders),
		Items:  int(row.Items),
		Value:  row.Value,
	}, nil
}

func (r *OrderRepository) DistinctClients(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "client")
}

func (r *OrderRepository) DistinctOrderNumbers(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "order_number")
}

func (r *OrderRepository) ProcessingDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("processing_date IS NOT NULL").
		Distinct("processing_date").
		Order("processing_date").
		Pluck("processing_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list processing dates: %w", err)
	}
	return dates, nil
}

func (r *OrderRepository) distinctColumn(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Distinct(column).
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// applyFilter translates a ListFilter into WHERE clauses. Prefix matches
// go through upper() so the registered Unicode collation applies, and the
// date range compares against the processing date with the entry date as
// fallback for orders still waiting.
func applyFilter(db *gorm.DB, filter order.ListFilter) *gorm.DB {
	query := db.Model(&models.OrderModel{})

	if filter.ClientPrefix != "" {
		query = query.Where("upper(client) LIKE upper(?) ESCAPE '\\'",
			escapeLike(filter.ClientPrefix)+"%")
	}
	if filter.OrderNumberPrefix != "" {
		query = query.Where("upper(order_number) LIKE upper(?) ESCAPE '\\'",
			escapeLike(filter.OrderNumberPrefix)+"%")
	}
	if filter.DateFrom != nil {
		query = query.Where("coalesce(processing_date, entry_date) >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("coalesce(processing_date, entry_date) <= ?", *filter.DateTo)
	}
	return query
}
