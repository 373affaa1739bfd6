package usecases

import (
	"context"

	"procdesk/internal/domain/order"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/ident"
	"procdesk/internal/shared/logger"
)

// UpdateOrderUseCase rewrites an existing order's fields. The record id
// pins both the owner's database and the row, so the order never migrates
// between files even if the username field of the input is wrong.
type UpdateOrderUseCase struct {
	provider RepositoryProvider
	logger   logger.Interface
}

// NewUpdateOrderUseCase creates a new instance of UpdateOrderUseCase
func NewUpdateOrderUseCase(provider RepositoryProvider, log logger.Interface) *UpdateOrderUseCase {
	return &UpdateOrderUseCase{provider: provider, logger: log}
}

// Execute applies the edited fields to the order identified by recordID.
func (uc *UpdateOrderUseCase) Execute(ctx context.Context, recordID string, in order.Input) (*order.Order, error) {
	slug, id, ok := ident.DecodeRecordID(recordID)
	if !ok {
		return nil, errors.NewValidationError("malformed record id", recordID)
	}

	repo, err := uc.provider.ForSlug(slug)
	if err != nil {
		return nil, err
	}

	entity, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, errors.NewNotFoundError("order not found")
	}

	if err := entity.ApplyUpdate(in); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, entity); err != nil {
		return nil, err
	}

	uc.logger.Infow("order updated", "record_id", recordID)
	return entity, nil
}
