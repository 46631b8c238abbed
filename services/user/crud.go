package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userRepo "calendo/database/repository/user"
	"calendo/models"
	"calendo/utils"

	"go.uber.org/zap"
)

func validRole(r models.Role) bool {
	switch r {
	case models.RoleUser, models.RoleWorker, models.RoleAdmin:
		return true
	}
	return false
}

func (s *DefaultUserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *DefaultUserService) GetWorkers(ctx context.Context) ([]models.Worker, error) {
	return s.Workers.Workers(ctx)
}

func (s *DefaultUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

// CreateUser stores a new account. New users are active unless created
// through an explicit update later.
func (s *DefaultUserService) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	logger := utils.GetLogger()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !validRole(user.Role) {
		return nil, ValidationError{Field: "role", Message: "must be user, worker or admin"}
	}
	user.Active = true

	if err := s.Repo.Create(ctx, &user); err != nil {
		logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if user.Role == models.RoleWorker {
		s.Workers.Invalidate(ctx)
	}
	logger.Info("User created", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}

// UpdateUser applies a partial update. Any change can move a user in or out
// of the worker directory, so the cache is always dropped.
func (s *DefaultUserService) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	logger := utils.GetLogger()

	if update == (models.UserUpdate{}) {
		logger.Warn("No updatable fields provided", zap.String("userID", userID))
		return nil, ValidationError{Field: "body", Message: "no updatable fields provided"}
	}
	if update.Role != nil && !validRole(*update.Role) {
		return nil, ValidationError{Field: "role", Message: "must be user, worker or admin"}
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		update.Email = &email
	}

	u, err := s.Repo.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to update user", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.Workers.Invalidate(ctx)
	return u, nil
}

func (s *DefaultUserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.Workers.Invalidate(ctx)
	utils.GetLogger().Info("User deleted", zap.String("userID", userID))
	return nil
}
