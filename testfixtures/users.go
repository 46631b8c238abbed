package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	userRepo "calendo/database/repository/user"
	"calendo/models"

	"github.com/google/uuid"
)

type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
	// WorkerCalls counts GetWorkers invocations.
	WorkerCalls int
}

var _ userRepo.UserRepository = (*MemoryUserRepo)(nil)

func NewMemoryUserRepo(users ...models.User) *MemoryUserRepo {
	r := &MemoryUserRepo{users: map[string]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

// Worker builds an active worker with the given id and first name.
func Worker(id, firstName string) models.User {
	return models.User{
		ID:        id,
		FirstName: firstName,
		LastName:  "Test",
		Email:     id + "@example.com",
		Role:      models.RoleWorker,
		Active:    true,
	}
}

func (r *MemoryUserRepo) sorted(match func(models.User) bool) []models.User {
	out := []models.User{}
	for _, u := range r.users {
		if match(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryUserRepo) GetWorkers(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.WorkerCalls++
	return r.sorted(func(u models.User) bool { return u.Role == models.RoleWorker && u.Active }), nil
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(models.User) bool { return true }), nil
}

func (r *MemoryUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepo) Update(ctx context.Context, id string, u models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.Active != nil {
		user.Active = *u.Active
	}
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return &user, nil
}

func (r *MemoryUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return userRepo.ErrNotFound
	}
	delete(r.users, id)
	return nil
}
