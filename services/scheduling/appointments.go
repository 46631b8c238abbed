package scheduling

import (
	"context"
	"errors"

	appointmentRepo "calendo/database/repository/appointment"
	"calendo/models"
	"calendo/utils"

	"go.uber.org/zap"
)

// List returns slots matching filter. From and To accept any timestamp form
// Book accepts.
func (e *Engine) List(ctx context.Context, filter models.SlotFilter) ([]models.Slot, error) {
	var err error
	if filter.From != "" {
		if filter.From, err = utils.NormalizeTimestamp(filter.From, e.Location); err != nil {
			return nil, invalidInput("invalid from: %v", err)
		}
	}
	if filter.To != "" {
		if filter.To, err = utils.NormalizeTimestamp(filter.To, e.Location); err != nil {
			return nil, invalidInput("invalid to: %v", err)
		}
	}
	switch filter.CalendarID {
	case "", models.CalendarAvailable, models.CalendarBooked:
	default:
		return nil, invalidInput("calendarId must be available or booked")
	}
	slots, err := e.Repo.GetAll(ctx, filter)
	if err != nil {
		return nil, persistence("list slots", err)
	}
	return slots, nil
}

func (e *Engine) Get(ctx context.Context, id string) (*models.Slot, error) {
	slot, err := e.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, notFound(CodeAppointmentNotFound, "appointment "+id+" does not exist")
		}
		return nil, persistence("get slot", err)
	}
	return slot, nil
}

// Update edits description or visibility. Windows and bookings only change
// through Book, Reschedule and Reassign.
func (e *Engine) Update(ctx context.Context, id string, update models.SlotUpdate) (*models.Slot, error) {
	if update.Description == nil && update.Visibility == nil {
		return nil, invalidInput("nothing to update")
	}
	if update.Visibility != nil {
		switch *update.Visibility {
		case models.VisibilityPublic, models.VisibilityInternal:
		default:
			return nil, invalidInput("visibility must be public or internal")
		}
	}
	slot, err := e.Repo.UpdateFields(ctx, id, update)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, notFound(CodeAppointmentNotFound, "appointment "+id+" does not exist")
		}
		return nil, persistence("update slot", err)
	}
	return slot, nil
}

func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.Repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return notFound(CodeAppointmentNotFound, "appointment "+id+" does not exist")
		}
		return persistence("delete slot", err)
	}
	e.Logger.Info("Slot deleted", zap.String("slotId", id))
	return nil
}
