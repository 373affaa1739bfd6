// Package order models customer processing orders. Each user owns a private
// set of orders kept in that user's database file; administrators see all of
// them through cross-database iteration, never through shared rows.
package order

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"procdesk/internal/shared/errors"
)

// Order is one processing-order record.
type Order struct {
	id             uint
	username       string
	client         string
	orderNumber    string
	itemCount      int
	entryDate      time.Time
	processingDate *time.Time
	cutTime        CutTime
	notes          string
	value          float64
	loggedAt       time.Time
}

// Input carries the raw field values of a create or update, before
// normalization. String fields arrive as typed by the operator.
type Input struct {
	Username       string `validate:"required"`
	Client         string `validate:"required"`
	OrderNumber    string `validate:"required"`
	ItemCount      string `validate:"required"`
	EntryDate      string `validate:"required"`
	ProcessingDate string
	CutTime        string
	Notes          string
	Value          string `validate:"required"`
}

// NewOrder validates and normalizes raw input into an order.
func NewOrder(in Input) (*Order, error) {
	username := strings.TrimSpace(in.Username)
	client := strings.TrimSpace(in.Client)
	number := strings.TrimSpace(in.OrderNumber)
	if username == "" || client == "" || number == "" ||
		strings.TrimSpace(in.ItemCount) == "" || strings.TrimSpace(in.EntryDate) == "" ||
		strings.TrimSpace(in.Value) == "" {
		return nil, errors.NewValidationError(
			"required fields: username, client, order number, item count, entry date, value")
	}

	itemCount, err := ParseItemCount(in.ItemCount)
	if err != nil {
		return nil, err
	}

	value, err := ParseValue(in.Value)
	if err != nil {
		return nil, err
	}

	entryDate, err := ParseDate(in.EntryDate)
	if err != nil || entryDate == nil {
		return nil, errors.NewValidationError("invalid entry date")
	}

	processingDate, err := ParseDate(in.ProcessingDate)
	if err != nil {
		return nil, errors.NewValidationError("invalid processing date")
	}
	if processingDate != nil && processingDate.Before(*entryDate) {
		return nil, errors.NewValidationError("processing date cannot be before the entry date")
	}

	cutTime, err := NewCutTime(in.CutTime)
	if err != nil {
		return nil, err
	}

	return &Order{
		username:       username,
		client:         client,
		orderNumber:    number,
		itemCount:      itemCount,
		entryDate:      *entryDate,
		processingDate: processingDate,
		cutTime:        cutTime,
		notes:          strings.TrimSpace(in.Notes),
		value:          value,
		loggedAt:       time.Now().UTC(),
	}, nil
}

// ReconstructOrder rebuilds an order from persistence.
func ReconstructOrder(id uint, username, client, orderNumber string, itemCount int, entryDate time.Time, processingDate *time.Time, cutTime CutTime, notes string, value float64, loggedAt time.Time) *Order {
	return &Order{
		id:             id,
		username:       username,
		client:         client,
		orderNumber:    orderNumber,
		itemCount:      itemCount,
		entryDate:      entryDate,
		processingDate: processingDate,
		cutTime:        cutTime,
		notes:          notes,
		value:          value,
		loggedAt:       loggedAt,
	}
}

func (o *Order) ID() uint                   { return o.id }
func (o *Order) Username() string           { return o.username }
func (o *Order) Client() string             { return o.client }
func (o *Order) OrderNumber() string        { return o.orderNumber }
func (o *Order) ItemCount() int             { return o.itemCount }
func (o *Order) EntryDate() time.Time       { return o.entryDate }
func (o *Order) ProcessingDate() *time.Time { return o.processingDate }
func (o *Order) CutTime() CutTime           { return o.cutTime }
func (o *Order) Notes() string              { return o.notes }
func (o *Order) Value() float64             { return o.value }
func (o *Order) LoggedAt() time.Time        { return o.loggedAt }

// SetID is called by the repository after insert.
func (o *Order) SetID(id uint) error {
	if o.id != 0 {
		return errors.NewInternalError("order ID already set")
	}
	o.id = id
	return nil
}

// BaseDate is the date used for period bucketing and dashboards: the
// processing date when present, otherwise the entry date.
func (o *Order) BaseDate() time.Time {
	if o.processingDate != nil {
		return *o.processingDate
	}
	return o.entryDate
}

// ApplyUpdate replaces the mutable fields from validated input. The owner
// never changes; records do not move between user databases.
func (o *Order) ApplyUpdate(in Input) error {
	updated, err := NewOrder(Input{
		Username:       o.username,
		Client:         in.Client,
		OrderNumber:    in.OrderNumber,
		ItemCount:      in.ItemCount,
		EntryDate:      in.EntryDate,
		ProcessingDate: in.ProcessingDate,
		CutTime:        in.CutTime,
		Notes:          in.Notes,
		Value:          in.Value,
	})
	if err != nil {
		return err
	}

	o.client = updated.client
	o.orderNumber = updated.orderNumber
	o.itemCount = updated.itemCount
	o.entryDate = updated.entryDate
	o.processingDate = updated.processingDate
	o.cutTime = updated.cutTime
	o.notes = updated.notes
	o.value = updated.value
	return nil
}

// ParseItemCount validates a positive integer item count.
func ParseItemCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.NewValidationError("item count must be a valid number")
	}
	if n <= 0 {
		return 0, errors.NewValidationError("item count must be a positive number")
	}
	return n, nil
}

// thousandsGroups matches the dot-grouped integer form "1.234" or
// "1.234.567", where the dots separate thousands rather than decimals.
var thousandsGroups = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// ParseValue parses a monetary amount, accepting both "1234.56" and the
// thousands-dot comma-decimal form "1.234,56". A comma always marks the
// decimals; without one, dot-grouped digits are thousands separators, so
// "1.234" is 1234. Rounded to cents.
func ParseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.Contains(raw, ","):
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	case thousandsGroups.MatchString(raw):
		raw = strings.ReplaceAll(raw, ".", "")
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewValidationError("order value must be a valid number")
	}
	if v < 0 {
		return 0, errors.NewValidationError("order value cannot be negative")
	}
	return math.Round(v*100) / 100, nil
}

// ParseDate parses an ISO date (YYYY-MM-DD). Empty input yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, errors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	return &t, nil
}
