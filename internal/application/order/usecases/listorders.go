package usecases

import (
	"context"
	"sort"

	"procdesk/internal/domain/order"
	"procdesk/internal/shared/ident"
	"procdesk/internal/shared/logger"
)

// ListOrdersCommand scopes a listing. An empty Username means every
// operator, which only administrators may request; the interface layer
// enforces that before calling.
type ListOrdersCommand struct {
	Username string
	Filter   order.ListFilter
}

// OrderView is one listed order with its cross-database record id.
type OrderView struct {
	RecordID string
	Order    *order.Order
}

// ListOrdersUseCase lists orders from one operator's database or from all
// of them merged.
type ListOrdersUseCase struct {
	provider RepositoryProvider
	logger   logger.Interface
}

// NewListOrdersUseCase creates a new instance of ListOrdersUseCase
func NewListOrdersUseCase(provider RepositoryProvider, log logger.Interface) *ListOrdersUseCase {
	return &ListOrdersUseCase{provider: provider, logger: log}
}

// Execute runs the listing. For the all-operators case each file is
// queried without paging, the results merged and ordered by base date,
// and paging applied to the merged set.
func (uc *ListOrdersUseCase) Execute(ctx context.Context, cmd ListOrdersCommand) ([]OrderView, error) {
	if cmd.Username != "" {
		repo, err := uc.provider.ForUser(cmd.Username)
		if err != nil {
			return nil, err
		}
		found, err := repo.List(ctx, cmd.Filter)
		if err != nil {
			return nil, err
		}
		return views(ident.Slug(cmd.Username), found), nil
	}

	slugs, err := uc.provider.Slugs()
	if err != nil {
		return nil, err
	}

	perFile := cmd.Filter
	perFile.Limit = 0
	perFile.Offset = 0

	var merged []OrderView
	for _, slug := range slugs {
		repo, err := uc.provider.ForSlug(slug)
		if err != nil {
			uc.logger.Warnw("skipping unreachable user database", "slug", slug, "error", err)
			continue
		}
		found, err := repo.List(ctx, perFile)
		if err != nil {
			return nil, err
		}
		merged = append(merged, views(slug, found)...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Order.BaseDate().After(merged[j].Order.BaseDate())
	})

	return page(merged, cmd.Filter.Offset, cmd.Filter.Limit), nil
}

func views(slug string, orders []*order.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderView{
			RecordID: ident.EncodeRecordID(slug, o.ID()),
			Order:    o,
		})
	}
	return out
}

func page(items []OrderView, offset, limit int) []OrderView {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
