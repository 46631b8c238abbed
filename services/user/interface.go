package user

import (
	"context"

	userRepo "calendo/database/repository/user"
	"calendo/models"
)

type UserService interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetWorkers(ctx context.Context) ([]models.Worker, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UpdateUser(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// WorkerDirectory is the cached worker listing user writes must invalidate.
type WorkerDirectory interface {
	Workers(ctx context.Context) ([]models.Worker, error)
	Invalidate(ctx context.Context)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo    userRepo.UserRepository
	Workers WorkerDirectory
}
