package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	appointmentRepo "calendo/database/repository/appointment"
	userRepo "calendo/database/repository/user"
	"calendo/models"
	"calendo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Caller is the authenticated identity a request runs as. Both fields are
// empty for anonymous callers.
type Caller struct {
	UserID string
	Role   models.Role
}

// IsStaff reports whether the caller may act on other clients' bookings.
func (c Caller) IsStaff() bool {
	return c.UserID != "" && (c.Role == models.RoleAdmin || c.Role == models.RoleWorker)
}

type BookRequest struct {
	Start       string
	End         string
	ClientID    string
	ClientName  *string
	Description *string
}

type BookResult struct {
	Slot    *models.Slot
	Booking models.Booking
}

// Book places one booking on the slot whose window equals the requested one.
// The worker is the first in directory order with no overlapping booking.
// The overlap read, the worker lock and the capacity claim share one
// transaction, so two overlapping bookings can never land on one worker and
// concurrent callers can never push a slot below zero.
func (e *Engine) Book(ctx context.Context, req BookRequest, caller Caller) (*BookResult, error) {
	start, end, err := e.normalizeWindow(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	workers, err := e.directory(ctx)
	if err != nil {
		return nil, err
	}
	clientID := resolveClientID(req.ClientID, caller)
	clientName := e.resolveClientName(ctx, req.ClientName, clientID)

	var result *BookResult
	err = e.Repo.WithTransaction(ctx, func(tx context.Context) error {
		slot, err := e.Repo.GetByWindow(tx, start, end)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrNotFound) {
				return notFound(CodeSlotNotFound, "no slot exists for "+start+" - "+end)
			}
			return persistence("resolve slot", err)
		}

		overlapping, err := e.Repo.GetOverlapping(tx, start, end)
		if err != nil {
			return persistence("load overlapping slots", err)
		}
		set := newBookingSet(slotPointers(overlapping))

		worker, ok := firstFree(workers, set.busyOwners(start, end), "")
		if !ok {
			return conflict(CodeNoWorkerAvailable, "every worker is already booked in this window")
		}
		if slot.HasClient(clientID) || !set.clientFree(clientID, start, end) {
			return conflict(CodeDuplicateBooking, "client already holds a booking in this window")
		}
		if err := e.Repo.LockWorkers(tx, worker.ID); err != nil {
			return persistence("lock worker", err)
		}

		booking := models.Booking{
			ID:          uuid.New().String(),
			OwnerID:     worker.ID,
			OwnerName:   worker.Name,
			ClientID:    clientID,
			ClientName:  clientName,
			Description: deref(req.Description),
			CreatedAt:   time.Now(),
		}
		updated, err := e.Repo.ClaimCapacity(tx, slot.ID, booking)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrConditionFailed) {
				return e.explainClaimFailure(tx, slot.ID, clientID)
			}
			return persistence("claim slot capacity", err)
		}
		result = &BookResult{Slot: updated, Booking: booking}
		return nil
	})
	if err != nil {
		return nil, storeError("booking transaction", err)
	}

	e.Logger.Info("Booking created",
		zap.String("slotId", result.Slot.ID),
		zap.String("bookingId", result.Booking.ID),
		zap.String("workerId", result.Booking.OwnerID),
		zap.String("clientId", clientID),
		zap.Int("remainingCapacity", result.Slot.RemainingCapacity))
	return result, nil
}

// explainClaimFailure re-reads the slot after a conditional update matched
// nothing and reports which precondition no longer held.
func (e *Engine) explainClaimFailure(ctx context.Context, slotID, clientID string) error {
	current, err := e.Repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return notFound(CodeSlotNotFound, "slot was removed while booking")
		}
		return persistence("re-read slot", err)
	}
	switch {
	case current.RemainingCapacity <= 0:
		return conflict(CodeSlotFullyBooked, "slot is fully booked")
	case current.HasClient(clientID):
		return conflict(CodeDuplicateBooking, "client already holds a booking on this slot")
	default:
		return conflict(CodeConcurrentModification, "slot changed while booking, please resubmit")
	}
}

func (e *Engine) normalizeWindow(rawStart, rawEnd string) (string, string, error) {
	if strings.TrimSpace(rawStart) == "" || strings.TrimSpace(rawEnd) == "" {
		return "", "", invalidInput("start and end are required")
	}
	start, err := utils.NormalizeTimestamp(rawStart, e.Location)
	if err != nil {
		return "", "", invalidInput("invalid start: %v", err)
	}
	end, err := utils.NormalizeTimestamp(rawEnd, e.Location)
	if err != nil {
		return "", "", invalidInput("invalid end: %v", err)
	}
	if start >= end {
		return "", "", invalidInput("start must be before end")
	}
	return start, end, nil
}

// resolveClientID books staff on behalf of the requested client. Everyone
// else books as themselves, or as a fresh guest when anonymous.
func resolveClientID(requested string, caller Caller) string {
	if id := strings.TrimSpace(requested); id != "" && caller.IsStaff() {
		return id
	}
	if caller.UserID != "" {
		return caller.UserID
	}
	return "guest-" + uuid.New().String()
}

// resolveClientName prefers the supplied name, then the client's first name.
func (e *Engine) resolveClientName(ctx context.Context, supplied *string, clientID string) string {
	if supplied != nil && strings.TrimSpace(*supplied) != "" {
		return strings.TrimSpace(*supplied)
	}
	if e.Users != nil && !strings.HasPrefix(clientID, "guest-") {
		u, err := e.Users.GetByID(ctx, clientID)
		if err == nil && u.FirstName != "" {
			return u.FirstName
		}
		if err != nil && !errors.Is(err, userRepo.ErrNotFound) {
			e.Logger.Warn("Client lookup failed", zap.String("clientId", clientID), zap.Error(err))
		}
	}
	return "Guest"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
