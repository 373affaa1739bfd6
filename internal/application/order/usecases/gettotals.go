package usecases

import (
	"context"

	"procdesk/internal/domain/order"
	"procdesk/internal/shared/logger"
)

// GetTotalsCommand scopes a totals query the same way a listing is scoped.
type GetTotalsCommand struct {
	Username string
	Filter   order.ListFilter
}

// GetTotalsUseCase aggregates order count, item count and value across the
// selected databases. Totals are computed in SQL per file and merged, so
// no rows are materialized.
type GetTotalsUseCase struct {
	provider RepositoryProvider
	logger   logger.Interface
}

// NewGetTotalsUseCase creates a new instance of GetTotalsUseCase
func NewGetTotalsUseCase(provider RepositoryProvider, log logger.Interface) *GetTotalsUseCase {
	return &GetTotalsUseCase{provider: provider, logger: log}
}

// Execute computes the totals for the command's scope.
func (uc *GetTotalsUseCase) Execute(ctx context.Context, cmd GetTotalsCommand) (order.Totals, error) {
	cmd.Filter.Limit = 0
	cmd.Filter.Offset = 0

	if cmd.Username != "" {
		repo, err := uc.provider.ForUser(cmd.Username)
		if err != nil {
			return order.Totals{}, err
		}
		return repo.GetTotals(ctx, cmd.Filter)
	}

	slugs, err := uc.provider.Slugs()
	if err != nil {
		return order.Totals{}, err
	}

	var totals order.Totals
	for _, slug := range slugs {
		repo, err := uc.provider.ForSlug(slug)
		if err != nil {
			uc.logger.Warnw("skipping unreachable user database", "slug", slug, "error", err)
			continue
		}
		part, err := repo.GetTotals(ctx, cmd.Filter)
		if err != nil {
			return order.Totals{}, err
		}
		totals.Merge(part)
	}
	return totals, nil
}
