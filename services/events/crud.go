package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	eventsRepo "calendo/database/repository/events"
	"calendo/models"
	"calendo/utils"

	"go.uber.org/zap"
)

func (s *DefaultEventService) ListEvents(ctx context.Context) ([]models.InternalEvent, error) {
	events, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list internal events: %w", err)
	}
	return events, nil
}

func (s *DefaultEventService) GetEvent(ctx context.Context, id string) (*models.InternalEvent, error) {
	event, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventsRepo.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch internal event: %w", err)
	}
	return event, nil
}

// CreateEvent stores a staff-only entry. The window is normalized to the
// canonical layout and the creator becomes the owner.
func (s *DefaultEventService) CreateEvent(ctx context.Context, event models.InternalEvent, ownerID string) (*models.InternalEvent, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return nil, ValidationError{Field: "title", Message: "is required"}
	}
	start, end, err := s.window(event.Start, event.End)
	if err != nil {
		return nil, err
	}
	event.Start, event.End = start, end
	event.ID = ""
	if event.OwnerID == "" {
		event.OwnerID = ownerID
	}

	if err := s.Repo.Create(ctx, &event); err != nil {
		s.Logger.Error("Failed to create internal event", zap.String("title", event.Title), zap.Error(err))
		return nil, fmt.Errorf("failed to create internal event: %w", err)
	}
	s.Logger.Info("Internal event created", zap.String("eventID", event.ID), zap.String("start", event.Start))
	return &event, nil
}

// UpdateEvent applies a partial update. A changed start or end is checked
// against the stored other half of the window.
func (s *DefaultEventService) UpdateEvent(ctx context.Context, id string, update models.InternalEventUpdate) (*models.InternalEvent, error) {
	if update == (models.InternalEventUpdate{}) {
		return nil, ValidationError{Field: "body", Message: "no updatable fields provided"}
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, ValidationError{Field: "title", Message: "must not be empty"}
	}

	if update.Start != nil || update.End != nil {
		current, err := s.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		rawStart, rawEnd := current.Start, current.End
		if update.Start != nil {
			rawStart = *update.Start
		}
		if update.End != nil {
			rawEnd = *update.End
		}
		start, end, err := s.window(rawStart, rawEnd)
		if err != nil {
			return nil, err
		}
		update.Start, update.End = &start, &end
	}

	event, err := s.Repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, eventsRepo.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		s.Logger.Error("Failed to update internal event", zap.String("eventID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update internal event: %w", err)
	}
	return event, nil
}

func (s *DefaultEventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, eventsRepo.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete internal event: %w", err)
	}
	s.Logger.Info("Internal event deleted", zap.String("eventID", id))
	return nil
}

func (s *DefaultEventService) window(rawStart, rawEnd string) (string, string, error) {
	start, err := utils.NormalizeTimestamp(rawStart, s.Location)
	if err != nil {
		return "", "", ValidationError{Field: "start", Message: err.Error()}
	}
	end, err := utils.NormalizeTimestamp(rawEnd, s.Location)
	if err != nil {
		return "", "", ValidationError{Field: "end", Message: err.Error()}
	}
	if start >= end {
		return "", "", ValidationError{Field: "end", Message: "must be after start"}
	}
	return start, end, nil
}
