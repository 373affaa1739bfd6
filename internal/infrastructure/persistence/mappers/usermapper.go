package mappers

import (
	"procdesk/internal/domain/user"
	"procdesk/internal/infrastructure/persistence/models"
)

// UserMapper handles the conversion between domain entities and persistence models
type UserMapper interface {
	ToEntity(model *models.UserModel) *user.User
	ToModel(entity *user.User) *models.UserModel
	ToEntities(models []*models.UserModel) []*user.User
}

type userMapperImpl struct{}

// NewUserMapper creates a new user mapper
func NewUserMapper() UserMapper {
	return &userMapperImpl{}
}

func (m *userMapperImpl) ToEntity(model *models.UserModel) *user.User {
	if model == nil {
		return nil
	}
	return user.ReconstructUser(
		model.ID,
		model.Name,
		model.PasswordHash,
		model.Admin,
		model.Active,
		model.Deleted,
		model.ResetPending,
		model.ArchivedAt,
		model.CreatedAt,
	)
}

func (m *userMapperImpl) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:           entity.ID(),
		Name:         entity.Name(),
		PasswordHash: entity.PasswordHash(),
		Admin:        entity.IsAdmin(),
		Active:       entity.IsActive(),
		Deleted:      entity.IsDeleted(),
		ResetPending: entity.ResetPending(),
		ArchivedAt:   entity.ArchivedAt(),
		CreatedAt:    entity.CreatedAt(),
	}
}

func (m *userMapperImpl) ToEntities(ms []*models.UserModel) []*user.User {
	entities := make([]*user.User, 0, len(ms))
	for _, model := range ms {
		if entity := m.ToEntity(model); entity != nil {
			entities = append(entities, entity)
		}
	}
	return entities
}
