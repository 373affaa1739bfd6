package usecases

import (
	"context"

	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/ident"
	"procdesk/internal/shared/logger"
)

// DeleteOrderUseCase removes an order by record id.
type DeleteOrderUseCase struct {
	provider RepositoryProvider
	logger   logger.Interface
}

// NewDeleteOrderUseCase creates a new instance of DeleteOrderUseCase
func NewDeleteOrderUseCase(provider RepositoryProvider, log logger.Interface) *DeleteOrderUseCase {
	return &DeleteOrderUseCase{provider: provider, logger: log}
}

// Execute deletes the order identified by recordID.
func (uc *DeleteOrderUseCase) Execute(ctx context.Context, recordID string) error {
	slug, id, ok := ident.DecodeRecordID(recordID)
	if !ok {
		return errors.NewValidationError("malformed record id", recordID)
	}

	repo, err := uc.provider.ForSlug(slug)
	if err != nil {
		return err
	}

	entity, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		return errors.NewNotFoundError("order not found")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Infow("order deleted", "record_id", recordID)
	return nil
}
