// Package dashboard aggregates order activity across every operator's
// database into the numbers the management overview shows.
package dashboard

import (
	"sort"
	"time"

	"procdesk/internal/domain/order"
	"procdesk/internal/shared/billing"
)

// Stats summarizes a set of orders. Averages are derived once at the end
// of accumulation; a zero denominator yields a zero average.
type Stats struct {
	Orders           int
	Items            int
	Value            float64
	CutSeconds       int
	ActiveDays       int
	OrdersPerDay     float64
	ItemsPerOrder    float64
	ValuePerOrder    float64
	CutSecondsPerDay float64
}

// PeriodStats is one billing period's slice of an operator's activity.
type PeriodStats struct {
	Period billing.Period
	Orders int
	Items  int
	Value  float64
}

// MonthStats is one calendar month's slice of an operator's activity.
type MonthStats struct {
	Year   int
	Month  time.Month
	Orders int
	Items  int
	Value  float64
}

// YearStats is one calendar year's totals across every operator.
type YearStats struct {
	Year   int
	Orders int
	Items  int
	Value  float64
}

// UserReport is one operator's aggregate plus the per-period and
// per-calendar-month breakdowns, newest first.
type UserReport struct {
	Username string
	Stats    Stats
	Periods  []PeriodStats
	Months   []MonthStats
}

// Report is the finished dashboard: the overall aggregate, yearly totals
// newest year first, and one entry per operator, sorted by username.
type Report struct {
	Overall Stats
	Years   []YearStats
	Users   []UserReport
}

type monthKey struct {
	year  int
	month time.Month
}

type userAccum struct {
	orders     int
	items      int
	value      float64
	cutSeconds int
	days       map[time.Time]struct{}
	periods    map[billing.Period]*PeriodStats
	months     map[monthKey]*MonthStats
}

// Accumulator folds orders into dashboard numbers one at a time, so a
// cross-database scan never holds more than the running totals.
type Accumulator struct {
	users map[string]*userAccum
	days  map[time.Time]struct{}
	years map[int]*YearStats
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		users: make(map[string]*userAccum),
		days:  make(map[time.Time]struct{}),
		years: make(map[int]*YearStats),
	}
}

// Add folds one order in. Activity is dated by the order's base date, the
// processing date when present and the entry date otherwise, matching how
// listings and totals bucket orders.
func (a *Accumulator) Add(o *order.Order) {
	if o == nil {
		return
	}

	day := dateOnly(o.BaseDate())
	a.days[day] = struct{}{}

	ys, ok := a.years[day.Year()]
	if !ok {
		ys = &YearStats{Year: day.Year()}
		a.years[day.Year()] = ys
	}
	ys.Orders++
	ys.Items += o.ItemCount()
	ys.Value += o.Value()

	ua, ok := a.users[o.Username()]
	if !ok {
		ua = &userAccum{
			days:    make(map[time.Time]struct{}),
			periods: make(map[billing.Period]*PeriodStats),
			months:  make(map[monthKey]*MonthStats),
		}
		a.users[o.Username()] = ua
	}

	ua.orders++
	ua.items += o.ItemCount()
	ua.value += o.Value()
	ua.cutSeconds += o.CutTime().Seconds()
	ua.days[day] = struct{}{}

	period := billing.PeriodFor(day)
	ps, ok := ua.periods[period]
	if !ok {
		ps = &PeriodStats{Period: period}
		ua.periods[period] = ps
	}
	ps.Orders++
	ps.Items += o.ItemCount()
	ps.Value += o.Value()

	mk := monthKey{year: day.Year(), month: day.Month()}
	ms, ok := ua.months[mk]
	if !ok {
		ms = &MonthStats{Year: mk.year, Month: mk.month}
		ua.months[mk] = ms
	}
	ms.Orders++
	ms.Items += o.ItemCount()
	ms.Value += o.Value()
}

// Result derives the averages and assembles the report.
func (a *Accumulator) Result() *Report {
	report := &Report{}

	var totalOrders, totalItems, totalCutSeconds int
	var totalValue float64

	names := make([]string, 0, len(a.users))
	for name := range a.users {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ua := a.users[name]
		totalOrders += ua.orders
		totalItems += ua.items
		totalValue += ua.value
		totalCutSeconds += ua.cutSeconds

		periods := make([]PeriodStats, 0, len(ua.periods))
		for _, ps := range ua.periods {
			periods = append(periods, *ps)
		}
		sort.Slice(periods, func(i, j int) bool {
			return periods[i].Period.Start.After(periods[j].Period.Start)
		})

		months := make([]MonthStats, 0, len(ua.months))
		for _, ms := range ua.months {
			months = append(months, *ms)
		}
		sort.Slice(months, func(i, j int) bool {
			if months[i].Year != months[j].Year {
				return months[i].Year > months[j].Year
			}
			return months[i].Month > months[j].Month
		})

		report.Users = append(report.Users, UserReport{
			Username: name,
			Stats:    deriveStats(ua.orders, ua.items, ua.value, ua.cutSeconds, len(ua.days)),
			Periods:  periods,
			Months:   months,
		})
	}

	for _, ys := range a.years {
		report.Years = append(report.Years, *ys)
	}
	sort.Slice(report.Years, func(i, j int) bool {
		return report.Years[i].Year > report.Years[j].Year
	})

	report.Overall = deriveStats(totalOrders, totalItems, totalValue, totalCutSeconds, len(a.days))
	return report
}

func deriveStats(orders, items int, value float64, cutSeconds, activeDays int) Stats {
	s := Stats{
		Orders:     orders,
		Items:      items,
		Value:      value,
		CutSeconds: cutSeconds,
		ActiveDays: activeDays,
	}
	if activeDays > 0 {
		s.OrdersPerDay = float64(orders) / float64(activeDays)
		s.CutSecondsPerDay = float64(cutSeconds) / float64(activeDays)
	}
	if orders > 0 {
		s.ItemsPerOrder = float64(items) / float64(orders)
		s.ValuePerOrder = value / float64(orders)
	}
	return s
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
