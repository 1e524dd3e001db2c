package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/prepworks/scoring-service/internal/models"
	"github.com/prepworks/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

// Save writes the full record in a single statement; an appended history
// entry either lands entirely or not at all.
func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}
