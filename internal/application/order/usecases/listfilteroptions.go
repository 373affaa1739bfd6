package usecases

import (
	"context"
	"sort"
	"time"

	"procdesk/internal/shared/billing"
	"procdesk/internal/shared/ident"
	"procdesk/internal/shared/logger"
)

// FilterOptions feeds the search controls: every known client, order
// number, the years carrying processed orders, and the billing periods the
// logged orders span, both flat and enumerated per year. The current
// period is always present so a fresh install still offers a choice.
type FilterOptions struct {
	Clients      []string
	OrderNumbers []string
	Years        []int
	Periods      []billing.Period
	YearPeriods  map[int][]billing.Period
}

// ListFilterOptionsCommand scopes the options to one operator or all.
type ListFilterOptionsCommand struct {
	Username string
}

// ListFilterOptionsUseCase collects the distinct values used to populate
// search filters.
type ListFilterOptionsUseCase struct {
	provider RepositoryProvider
	now      func() time.Time
	logger   logger.Interface
}

// NewListFilterOptionsUseCase creates a new instance of ListFilterOptionsUseCase
func NewListFilterOptionsUseCase(provider RepositoryProvider, log logger.Interface) *ListFilterOptionsUseCase {
	return &ListFilterOptionsUseCase{
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log,
	}
}

// Execute gathers distinct clients, order numbers and billing periods.
func (uc *ListFilterOptionsUseCase) Execute(ctx context.Context, cmd ListFilterOptionsCommand) (*FilterOptions, error) {
	slugs, err := uc.scope(cmd.Username)
	if err != nil {
		return nil, err
	}

	clientSet := map[string]struct{}{}
	numberSet := map[string]struct{}{}
	var dates []time.Time

	for _, slug := range slugs {
		repo, err := uc.provider.ForSlug(slug)
		if err != nil {
			uc.logger.Warnw("skipping unreachable user database", "slug", slug, "error", err)
			continue
		}

		clients, err := repo.DistinctClients(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range clients {
			clientSet[c] = struct{}{}
		}

		numbers, err := repo.DistinctOrderNumbers(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range numbers {
			numberSet[n] = struct{}{}
		}

		fileDates, err := repo.ProcessingDates(ctx)
		if err != nil {
			return nil, err
		}
		dates = append(dates, fileDates...)
	}

	now := uc.now()
	periods := billing.EnsureCurrent(billing.UniquePeriods(dates), now)

	yearSet := map[int]struct{}{}
	for _, d := range dates {
		yearSet[d.Year()] = struct{}{}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	yearPeriods := make(map[int][]billing.Period, len(years))
	for _, y := range years {
		yearPeriods[y] = billing.PeriodsForYear(y, now, dates)
	}

	return &FilterOptions{
		Clients:      sortedKeys(clientSet),
		OrderNumbers: sortedKeys(numberSet),
		Years:        years,
		Periods:      periods,
		YearPeriods:  yearPeriods,
	}, nil
}

func (uc *ListFilterOptionsUseCase) scope(username string) ([]string, error) {
	if username == "" {
		return uc.provider.Slugs()
	}
	// Resolve through the provider so the file exists afterwards.
	if _, err := uc.provider.ForUser(username); err != nil {
		return nil, err
	}
	return []string{ident.Slug(username)}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
