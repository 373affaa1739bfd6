package usecases

import (
	"context"

	"github.com/go-playground/validator/v10"

	"procdesk/internal/domain/order"
	"procdesk/internal/shared/errors"
	"procdesk/internal/shared/ident"
	"procdesk/internal/shared/logger"
)

// CreateOrderResult reports the stored order and its cross-database
// record id, "slug:id", which later update and delete calls use.
type CreateOrderResult struct {
	RecordID string
	Order    *order.Order
}

// CreateOrderUseCase logs a new processing order into its owner's
// database.
type CreateOrderUseCase struct {
	provider RepositoryProvider
	validate *validator.Validate
	logger   logger.Interface
}

// NewCreateOrderUseCase creates a new instance of CreateOrderUseCase
func NewCreateOrderUseCase(provider RepositoryProvider, log logger.Interface) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		provider: provider,
		validate: validator.New(),
		logger:   log,
	}
}

// Execute validates the input and stores the order.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, in order.Input) (*CreateOrderResult, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, errors.NewValidationError("missing required order fields", err.Error())
	}

	entity, err := order.NewOrder(in)
	if err != nil {
		return nil, err
	}

	repo, err := uc.provider.ForUser(entity.Username())
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	recordID := ident.EncodeRecordID(ident.Slug(entity.Username()), entity.ID())
	uc.logger.Infow("order created",
		"record_id", recordID,
		"username", entity.Username(),
		"order_number", entity.OrderNumber())

	return &CreateOrderResult{RecordID: recordID, Order: entity}, nil
}
