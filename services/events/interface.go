package events

import (
	"context"
	"errors"
	"time"

	eventsRepo "calendo/database/repository/events"
	"calendo/models"

	"go.uber.org/zap"
)

// ErrEventNotFound is returned when no internal event matches the id.
var ErrEventNotFound = errors.New("internal event not found")

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type EventService interface {
	ListEvents(ctx context.Context) ([]models.InternalEvent, error)
	GetEvent(ctx context.Context, id string) (*models.InternalEvent, error)
	CreateEvent(ctx context.Context, event models.InternalEvent, ownerID string) (*models.InternalEvent, error)
	UpdateEvent(ctx context.Context, id string, update models.InternalEventUpdate) (*models.InternalEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// DefaultEventService keeps internal events in their own collection so they
// never take part in capacity or conflict checks.
type DefaultEventService struct {
	Repo     eventsRepo.InternalEventRepository
	Location *time.Location
	Logger   *zap.Logger
}

func NewEventService(repo eventsRepo.InternalEventRepository, loc *time.Location, logger *zap.Logger) *DefaultEventService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultEventService{Repo: repo, Location: loc, Logger: logger}
}
