package repository

import (
	"context"
	"errors"

	"order-feedback/apps/user/model"
	"order-feedback/pkg/database"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return database.Conn(ctx, r.db).Create(u).Error
}

// GetByID returns nil, nil when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) ExistsByRole(ctx context.Context, role string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := database.Conn(ctx, r.db).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
