package userRepo

import (
	"context"
	"errors"

	"calendo/models"
)

var ErrNotFound = errors.New("user not found")

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetWorkers returns active workers ordered by id.
	GetWorkers(ctx context.Context) ([]models.User, error)
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// Update applies the non-nil fields of update and returns the result.
	Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)
	// Delete removes a user record by its ID.
	Delete(ctx context.Context, id string) error
}
