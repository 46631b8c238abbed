package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	eventsRepo "calendo/database/repository/events"
	"calendo/models"

	"github.com/google/uuid"
)

type MemoryEventRepo struct {
	mu     sync.Mutex
	events map[string]models.InternalEvent
}

var _ eventsRepo.InternalEventRepository = (*MemoryEventRepo)(nil)

func NewMemoryEventRepo() *MemoryEventRepo {
	return &MemoryEventRepo{events: map[string]models.InternalEvent{}}
}

func (r *MemoryEventRepo) Create(ctx context.Context, e *models.InternalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.SharedWith == nil {
		e.SharedWith = []string{}
	}
	e.Visibility = models.VisibilityInternal
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.events[e.ID] = *e
	return nil
}

func (r *MemoryEventRepo) GetByID(ctx context.Context, id string) (*models.InternalEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, eventsRepo.ErrNotFound
	}
	return &e, nil
}

func (r *MemoryEventRepo) GetAll(ctx context.Context) ([]models.InternalEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.InternalEvent{}
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (r *MemoryEventRepo) Update(ctx context.Context, id string, u models.InternalEventUpdate) (*models.InternalEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, eventsRepo.ErrNotFound
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Start != nil {
		e.Start = *u.Start
	}
	if u.End != nil {
		e.End = *u.End
	}
	if u.CalendarID != nil {
		e.CalendarID = *u.CalendarID
	}
	if u.SharedWith != nil {
		e.SharedWith = *u.SharedWith
	}
	e.UpdatedAt = time.Now()
	r.events[id] = e
	return &e, nil
}

func (r *MemoryEventRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return eventsRepo.ErrNotFound
	}
	delete(r.events, id)
	return nil
}
