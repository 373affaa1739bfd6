package mappers

import (
	"procdesk/internal/domain/order"
	"procdesk/internal/infrastructure/persistence/models"
)

// OrderMapper handles the conversion between domain entities and persistence models
type OrderMapper interface {
	ToEntity(model *models.OrderModel) *order.Order
	ToModel(entity *order.Order) *models.OrderModel
	ToEntities(models []*models.OrderModel) []*order.Order
}

type orderMapperImpl struct{}

// NewOrderMapper creates a new order mapper
func NewOrderMapper() OrderMapper {
	return &orderMapperImpl{}
}

func (m *orderMapperImpl) ToEntity(model *models.OrderModel) *order.Order {
	if model == nil {
		return nil
	}
	return order.ReconstructOrder(
		model.ID,
		model.Username,
		model.Client,
		model.OrderNumber,
		model.ItemCount,
		model.EntryDate,
		model.ProcessingDate,
		order.CutTime(model.CutTime),
		model.Notes,
		model.Value,
		model.LoggedAt,
	)
}

func (m *orderMapperImpl) ToModel(entity *order.Order) *models.OrderModel {
	if entity == nil {
		return nil
	}
	return &models.OrderModel{
		ID:             entity.ID(),
		Username:       entity.Username(),
		Client:         entity.Client(),
		OrderNumber:    entity.OrderNumber(),
		ItemCount:      entity.ItemCount(),
		EntryDate:      entity.EntryDate(),
		ProcessingDate: entity.ProcessingDate(),
		CutTime:        string(entity.CutTime()),
		Notes:          entity.Notes(),
		Value:          entity.Value(),
		LoggedAt:       entity.LoggedAt(),
	}
}

func (m *orderMapperImpl) ToEntities(ms []*models.OrderModel) []*order.Order {
	entities := make([]*order.Order, 0, len(ms))
	for _, model := range ms {
		if entity := m.ToEntity(model); entity != nil {
			entities = append(entities, entity)
		}
	}
	return entities
}
