package scheduling

import (
	"context"
	"fmt"
	"time"

	"calendo/models"
	"calendo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GenerateResult struct {
	Slots   []models.Slot
	Created bool
}

// GenerateMonth creates the month's slots from the template. Generation is
// at most once per month: when a generated slot already starts inside the
// month the stored slots are returned unchanged. Slots placed by reschedule
// or relocation before that do not count; template windows they already
// cover are skipped.
func (e *Engine) GenerateMonth(ctx context.Context, year, month int) (*GenerateResult, error) {
	if year < 1970 || year > 9999 {
		return nil, invalidInput("year must be between 1970 and 9999, got %d", year)
	}
	if month < 1 || month > 12 {
		return nil, invalidInput("month must be between 1 and 12, got %d", month)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	from := utils.FormatCanonical(first)
	to := utils.FormatCanonical(first.AddDate(0, 1, 0))

	n, err := e.Repo.CountGeneratedInRange(ctx, from, to)
	if err != nil {
		return nil, persistence("count existing slots", err)
	}
	existing, err := e.Repo.GetInRange(ctx, from, to)
	if err != nil {
		return nil, persistence("load existing slots", err)
	}
	if n > 0 {
		e.Logger.Info("Slots already generated for month",
			zap.Int("year", year), zap.Int("month", month), zap.Int("count", len(existing)))
		return &GenerateResult{Slots: existing, Created: false}, nil
	}

	capacity, err := e.slotCapacity(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	windows := e.Template.monthWindows(year, time.Month(month))
	slots := make([]models.Slot, 0, len(windows))
	skipped := 0
	for _, w := range windows {
		if windowTaken(existing, w) {
			skipped++
			continue
		}
		slot := newAvailableSlot(w, capacity, now)
		slot.Generated = true
		slots = append(slots, slot)
	}

	if err := e.Repo.CreateMany(ctx, slots); err != nil {
		return nil, persistence(fmt.Sprintf("insert slots for %04d-%02d", year, month), err)
	}
	e.Logger.Info("Generated slots",
		zap.Int("year", year), zap.Int("month", month),
		zap.Int("count", len(slots)), zap.Int("skipped", skipped), zap.Int("capacity", capacity))
	return &GenerateResult{Slots: slots, Created: true}, nil
}

// windowTaken reports whether w already has a slot, or lies under a
// dedicated slot.
func windowTaken(existing []models.Slot, w window) bool {
	for _, s := range existing {
		if s.Start == w.Start && s.End == w.End {
			return true
		}
		if s.Dedicated && utils.Overlaps(s.Start, s.End, w.Start, w.End) {
			return true
		}
	}
	return false
}

// slotCapacity is the active worker count, or the configured default when
// there are no workers.
func (e *Engine) slotCapacity(ctx context.Context) (int, error) {
	workers, err := e.directory(ctx)
	if err != nil {
		return 0, err
	}
	if len(workers) > 0 {
		return len(workers), nil
	}
	if e.DefaultCapacity > 0 {
		return e.DefaultCapacity, nil
	}
	return DefaultSlotCapacity, nil
}

func newAvailableSlot(w window, capacity int, now time.Time) models.Slot {
	slot := models.Slot{
		ID:                uuid.New().String(),
		Start:             w.Start,
		End:               w.End,
		Capacity:          capacity,
		RemainingCapacity: capacity,
		Bookings:          []models.Booking{},
		Visibility:        models.VisibilityPublic,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	slot.Refresh()
	return slot
}
