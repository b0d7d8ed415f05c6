// Package repository holds the gorm-backed stores for users, profiles and links.
package repository

import (
	"context"
	"errors"
	"strings"

	"biolink/internal/models"
	"biolink/internal/observability"

	"gorm.io/gorm"
)

// UserRepository stores accounts. Lookups return nil, nil for unknown users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db} }

// GetByID returns nil, nil when the id does not resolve.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByUsername returns nil, nil for unknown usernames.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Where("username = ?", username))
}

func (r *userRepository) first(query *gorm.DB) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	err := query.First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, models.NewStoreError("load user", err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()

	err := r.db.WithContext(ctx).Create(user).Error
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return models.NewDuplicateUsernameError(user.Username)
	default:
		return models.NewStoreError("create user", err)
	}
}

// uniqueViolationMarkers covers postgres (SQLSTATE 23505) and sqlite
// ("UNIQUE constraint failed") when TranslateError could not map the error.
var uniqueViolationMarkers = []string{"duplicate key", "unique constraint", "23505"}

func isUniqueConstraintError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
