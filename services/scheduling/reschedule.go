package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	appointmentRepo "calendo/database/repository/appointment"
	"calendo/models"

	"go.uber.org/zap"
)

type RescheduleRequest struct {
	ID          string
	Start       string
	End         string
	Description *string
	ClientName  *string
}

type RescheduleResult struct {
	Slot       *models.Slot
	Booking    models.Booking
	Backfilled []models.Slot
}

// Reschedule moves one booking to [Start, End). The booking keeps its id and
// client. Only the booking's client or staff may move it. The vacated time is
// backfilled with available slots. Everything runs in one transaction.
func (e *Engine) Reschedule(ctx context.Context, req RescheduleRequest, caller Caller) (*RescheduleResult, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, invalidInput("id is required")
	}
	newStart, newEnd, err := e.normalizeWindow(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	workers, err := e.directory(ctx)
	if err != nil {
		return nil, err
	}
	capacity, err := e.slotCapacity(ctx)
	if err != nil {
		return nil, err
	}

	var result *RescheduleResult
	err = e.Repo.WithTransaction(ctx, func(tx context.Context) error {
		origin, idx, err := e.locateBooking(tx, id)
		if err != nil {
			return err
		}
		booking := origin.Bookings[idx]
		if !caller.IsStaff() && (caller.UserID == "" || caller.UserID != booking.ClientID) {
			return forbidden(CodeNotBookingClient, "only the booking's client or staff may move it")
		}
		origStart, origEnd := booking.Window(*origin)

		// Step out of the original slot.
		detachBooking(origin, idx)
		if origin.Dedicated && len(origin.Bookings) == 0 {
			err = e.Repo.DeleteVersioned(tx, origin.ID, origin.Version)
		} else {
			err = e.Repo.ReplaceVersioned(tx, origin)
		}
		if err != nil {
			return storeError("release original slot", err)
		}

		overlapping, err := e.Repo.GetOverlapping(tx, newStart, newEnd)
		if err != nil {
			return persistence("load overlapping slots", err)
		}
		set := newBookingSet(slotPointers(overlapping), booking.ID)
		if !set.clientFree(booking.ClientID, newStart, newEnd) {
			return conflict(CodeDuplicateBooking, "client already holds a booking in the new window")
		}

		worker, ok := findWorker(workers, booking.OwnerID)
		if !ok || !set.workerFree(worker.ID, newStart, newEnd) {
			worker, ok = firstFree(workers, set.busyOwners(newStart, newEnd), "")
			if !ok {
				return conflict(CodeNoWorkerAvailable, "every worker is already booked in the new window")
			}
		}
		if err := e.Repo.LockWorkers(tx, worker.ID); err != nil {
			return persistence("lock worker", err)
		}
		booking.OwnerID, booking.OwnerName = worker.ID, worker.Name
		if req.Description != nil {
			booking.Description = *req.Description
		}
		if req.ClientName != nil && strings.TrimSpace(*req.ClientName) != "" {
			booking.ClientName = strings.TrimSpace(*req.ClientName)
		}

		dest, err := e.placeBooking(tx, booking, newStart, newEnd, origin.Description)
		if err != nil {
			return err
		}
		placed := dest.Bookings[dest.FindBooking(booking.ID)]

		backfilled, err := e.backfill(tx, origStart, origEnd, newStart, newEnd, capacity)
		if err != nil {
			return err
		}
		result = &RescheduleResult{Slot: dest, Booking: placed, Backfilled: backfilled}
		return nil
	})
	if err != nil {
		return nil, storeError("reschedule transaction", err)
	}

	e.Logger.Info("Booking rescheduled",
		zap.String("bookingId", result.Booking.ID),
		zap.String("slotId", result.Slot.ID),
		zap.String("start", newStart), zap.String("end", newEnd),
		zap.String("workerId", result.Booking.OwnerID),
		zap.Int("backfilled", len(result.Backfilled)))
	return result, nil
}

// locateBooking resolves id as a booking id, or as the id of a slot that
// holds exactly one booking.
func (e *Engine) locateBooking(ctx context.Context, id string) (*models.Slot, int, error) {
	slot, err := e.Repo.GetByBookingID(ctx, id)
	if err == nil {
		return slot, slot.FindBooking(id), nil
	}
	if !errors.Is(err, appointmentRepo.ErrNotFound) {
		return nil, 0, persistence("find booking", err)
	}
	slot, err = e.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, 0, notFound(CodeAppointmentNotFound, "appointment "+id+" does not exist")
		}
		return nil, 0, persistence("find appointment", err)
	}
	if len(slot.Bookings) != 1 {
		return nil, 0, notFound(CodeAppointmentNotFound, "slot "+id+" does not hold a single booking")
	}
	return slot, 0, nil
}

// placeBooking joins an available slot with exactly the new window, or
// clears the empty available slots in the way and creates a dedicated one.
func (e *Engine) placeBooking(ctx context.Context, b models.Booking, start, end, description string) (*models.Slot, error) {
	target, err := e.Repo.GetByWindow(ctx, start, end)
	switch {
	case err == nil && target.IsAvailable() && !target.HasOwner(b.OwnerID) && !target.HasClient(b.ClientID):
		attachBooking(target, b, start, end)
		if err := e.Repo.ReplaceVersioned(ctx, target); err != nil {
			return nil, storeError("join slot", err)
		}
		return target, nil
	case err != nil && !errors.Is(err, appointmentRepo.ErrNotFound):
		return nil, persistence("resolve slot", err)
	}

	if _, err := e.Repo.DeleteEmptyAvailableOverlapping(ctx, start, end); err != nil {
		return nil, persistence("clear available slots", err)
	}
	p := newPlan(nil)
	dest := p.addDedicated(b, start, end, description)
	if err := e.Repo.CreateMany(ctx, []models.Slot{*dest}); err != nil {
		return nil, persistence("create booked slot", err)
	}
	return dest, nil
}

// backfill inserts available slots over the vacated time, skipping any
// window that already has a slot. Gaps between the two windows are only
// filled during opening hours.
func (e *Engine) backfill(ctx context.Context, origStart, origEnd, newStart, newEnd string, capacity int) ([]models.Slot, error) {
	windows, err := e.Template.vacatedWindows(origStart, origEnd, newStart, newEnd)
	if err != nil {
		return nil, invalidInput("cannot slice vacated range: %v", err)
	}
	out := []models.Slot{}
	if len(windows) == 0 {
		return out, nil
	}

	present, err := e.Repo.GetOverlapping(ctx, windows[0].Start, windows[len(windows)-1].End)
	if err != nil {
		return nil, persistence("check backfill windows", err)
	}
	taken := make(map[window]bool, len(present))
	for _, s := range present {
		taken[window{Start: s.Start, End: s.End}] = true
	}

	now := time.Now()
	for _, w := range windows {
		if taken[w] {
			continue
		}
		out = append(out, newAvailableSlot(w, capacity, now))
	}
	if err := e.Repo.CreateMany(ctx, out); err != nil {
		return nil, persistence("insert backfill slots", err)
	}
	return out, nil
}
