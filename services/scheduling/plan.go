package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	appointmentRepo "calendo/database/repository/appointment"
	"calendo/models"
	"calendo/utils"

	"github.com/google/uuid"
)

// plan is an in-memory working copy of the slot store for multi-slot
// operations. Changes are collected here and written in one pass inside the
// surrounding transaction.
type plan struct {
	slots   []*models.Slot
	byID    map[string]*models.Slot
	touched map[string]bool
	deleted map[string]bool
	created map[string]bool

	// assigned holds the workers that received a booking.
	assigned map[string]bool
}

func newPlan(slots []models.Slot) *plan {
	p := &plan{
		byID:     make(map[string]*models.Slot, len(slots)),
		touched:  map[string]bool{},
		deleted:  map[string]bool{},
		created:  map[string]bool{},
		assigned: map[string]bool{},
	}
	for i := range slots {
		s := slots[i]
		s.Bookings = append([]models.Booking(nil), s.Bookings...)
		p.slots = append(p.slots, &s)
		p.byID[s.ID] = &s
	}
	return p
}

func (p *plan) get(id string) *models.Slot {
	if p.deleted[id] {
		return nil
	}
	return p.byID[id]
}

// live returns the slots not marked for deletion, chronologically.
func (p *plan) live() []*models.Slot {
	out := make([]*models.Slot, 0, len(p.slots))
	for _, s := range p.slots {
		if !p.deleted[s.ID] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return slotLess(out[i], out[j]) })
	return out
}

func (p *plan) bookings(ignore ...string) bookingSet {
	return newBookingSet(p.live(), ignore...)
}

func (p *plan) touch(id string) { p.touched[id] = true }

func (p *plan) assign(workerID string) { p.assigned[workerID] = true }

func (p *plan) remove(id string) {
	if p.created[id] {
		delete(p.created, id)
		delete(p.byID, id)
		for i, s := range p.slots {
			if s.ID == id {
				p.slots = append(p.slots[:i], p.slots[i+1:]...)
				break
			}
		}
		return
	}
	p.deleted[id] = true
}

// addDedicated creates a capacity-1 slot holding only b.
func (p *plan) addDedicated(b models.Booking, start, end, description string) *models.Slot {
	now := time.Now()
	b.Start, b.End = "", ""
	s := &models.Slot{
		ID:                uuid.New().String(),
		Description:       description,
		Start:             start,
		End:               end,
		Capacity:          1,
		RemainingCapacity: 0,
		Bookings:          []models.Booking{b},
		Visibility:        models.VisibilityPublic,
		Dedicated:         true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.Refresh()
	p.slots = append(p.slots, s)
	p.byID[s.ID] = s
	p.created[s.ID] = true
	return s
}

// clearAvailable drops empty available slots intersecting [start, end).
func (p *plan) clearAvailable(start, end string) {
	for _, s := range p.live() {
		if s.CalendarID == models.CalendarAvailable && len(s.Bookings) == 0 &&
			utils.Overlaps(s.Start, s.End, start, end) {
			p.remove(s.ID)
		}
	}
}

// release detaches booking idx from s, deleting s when it was dedicated and
// is now empty.
func (p *plan) release(s *models.Slot, idx int) models.Booking {
	b := detachBooking(s, idx)
	p.touch(s.ID)
	if s.Dedicated && len(s.Bookings) == 0 {
		p.remove(s.ID)
	}
	return b
}

// apply writes every change. Existing slots are replaced or deleted only at
// the version they were read at.
func (p *plan) apply(ctx context.Context, repo appointmentRepo.AppointmentRepository) error {
	if len(p.assigned) > 0 {
		ids := make([]string, 0, len(p.assigned))
		for id := range p.assigned {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		if err := repo.LockWorkers(ctx, ids...); err != nil {
			return storeError("lock workers", err)
		}
	}
	var fresh []models.Slot
	for _, s := range p.slots {
		var err error
		switch {
		case p.created[s.ID]:
			fresh = append(fresh, *s)
		case p.deleted[s.ID]:
			err = repo.DeleteVersioned(ctx, s.ID, s.Version)
		case p.touched[s.ID]:
			err = repo.ReplaceVersioned(ctx, s)
		}
		if err != nil {
			return storeError("write slot "+s.ID, err)
		}
	}
	if err := repo.CreateMany(ctx, fresh); err != nil {
		return storeError("create slots", err)
	}
	for i := range fresh {
		*p.byID[fresh[i].ID] = fresh[i]
	}
	return nil
}

// changed returns the slots that were written and still exist.
func (p *plan) changed() []models.Slot {
	out := []models.Slot{}
	for _, s := range p.live() {
		if p.touched[s.ID] || p.created[s.ID] {
			out = append(out, *s)
		}
	}
	return out
}

func (p *plan) removedIDs() []string {
	out := []string{}
	for _, s := range p.slots {
		if p.deleted[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}

func slotLess(a, b *models.Slot) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.ID < b.ID
}

// storeError maps repository failures to the engine taxonomy.
func storeError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, appointmentRepo.ErrConditionFailed) {
		return &Error{Kind: KindConflict, Code: CodeConcurrentModification,
			Message: "slots changed during the operation, please retry", Err: err}
	}
	return persistence(op, err)
}
