package order

import (
	"context"
	"time"
)

// ListFilter narrows order queries. Prefix matches are case-insensitive,
// including accented characters. The date range applies to the processing
// date when set, falling back to the entry date for unprocessed orders.
type ListFilter struct {
	ClientPrefix      string
	OrderNumberPrefix string
	DateFrom          *time.Time
	DateTo            *time.Time
	Limit             int
	Offset            int
}

// Totals aggregates matching orders.
type Totals struct {
	Orders int
	Items  int
	Value  float64
}

// Add folds one order into the totals.
func (t *Totals) Add(itemCount int, value float64) {
	t.Orders++
	t.Items += itemCount
	t.Value += value
}

// Merge folds another totals bucket in.
func (t *Totals) Merge(other Totals) {
	t.Orders += other.Orders
	t.Items += other.Items
	t.Value += other.Value
}

// Repository operates on one user's order database. Cross-user queries live
// a layer up, iterating user databases and merging.
type Repository interface {
	Create(ctx context.Context, order *Order) error

	GetByID(ctx context.Context, id uint) (*Order, error)

	Update(ctx context.Context, order *Order) error

	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filter ListFilter) ([]*Order, error)

	GetTotals(ctx context.Context, filter ListFilter) (Totals, error)

	// DistinctClients returns the distinct client names, sorted.
	DistinctClients(ctx context.Context) ([]string, error)

	// DistinctOrderNumbers returns the distinct order numbers, sorted.
	DistinctOrderNumbers(ctx context.Context) ([]string, error)

	// ProcessingDates returns every non-null processing date, ascending.
	ProcessingDates(ctx context.Context) ([]time.Time, error)
}
