package dashboard

import (
	"context"

	orderusecases "procdesk/internal/application/order/usecases"
	"procdesk/internal/domain/order"
	"procdesk/internal/shared/logger"
)

// GetDashboardUseCase walks every operator's database and builds the
// management overview. The optional filter narrows the scan, typically to
// one billing period.
type GetDashboardUseCase struct {
	provider orderusecases.RepositoryProvider
	logger   logger.Interface
}

// NewGetDashboardUseCase creates a new instance of GetDashboardUseCase
func NewGetDashboardUseCase(provider orderusecases.RepositoryProvider, log logger.Interface) *GetDashboardUseCase {
	return &GetDashboardUseCase{provider: provider, logger: log}
}

// Execute scans all operator databases and accumulates the report.
func (uc *GetDashboardUseCase) Execute(ctx context.Context, filter order.ListFilter) (*Report, error) {
	filter.Limit = 0
	filter.Offset = 0

	slugs, err := uc.provider.Slugs()
	if err != nil {
		return nil, err
	}

	acc := NewAccumulator()
	for _, slug := range slugs {
		repo, err := uc.provider.ForSlug(slug)
		if err != nil {
			uc.logger.Warnw("skipping unreachable user database", "slug", slug, "error", err)
			continue
		}
		orders, err := repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			acc.Add(o)
		}
	}
	return acc.Result(), nil
}
