package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"procdesk/internal/domain/user"
	"procdesk/internal/infrastructure/persistence/mappers"
	"procdesk/internal/infrastructure/persistence/models"
	"procdesk/internal/shared/logger"
)

// UserRepository implements the account repository over the shared system
// database.
type UserRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, log logger.Interface) user.Repository {
	return &UserRepository{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: log,
	}
}

func (r *UserRepository) Create(ctx context.Context, entity *user.User) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create user", "name", entity.Name(), "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set user ID: %w", err)
	}

	r.logger.Infow("user created", "id", model.ID, "name", model.Name)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (*user.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

func (r *UserRepository) Update(ctx context.Context, entity *user.User) error {
	model := r.mapper.ToModel(entity)

	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", model.ID).
		Select("name", "password_hash", "admin", "active", "deleted", "reset_pending", "archived_at").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update user", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d not found", model.ID)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, includeArchived bool) ([]*user.User, error) {
	query := r.db.WithContext(ctx).Where("deleted = ?", false)
	if !includeArchived {
		query = query.Where("active = ?", true)
	}

	var userModels []*models.UserModel
	if err := query.Order("name").Find(&userModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return r.mapper.ToEntities(userModels), nil
}

func (r *UserRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("admin = ? AND active = ? AND deleted = ?", true, true, false).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check for administrators: %w", err)
	}
	return count > 0, nil
}
