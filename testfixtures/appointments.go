package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	appointmentRepo "calendo/database/repository/appointment"
	"calendo/models"
	"calendo/utils"

	"github.com/google/uuid"
)

// MemoryAppointmentRepo is an in-memory AppointmentRepository with the same
// conditional-write semantics as the Mongo implementation. Transactions are
// serialized and rolled back from a snapshot on error.
type MemoryAppointmentRepo struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	slots map[string]models.Slot
	locks map[string]int

	// Fail makes the named method return the error.
	Fail map[string]error
}

var _ appointmentRepo.AppointmentRepository = (*MemoryAppointmentRepo)(nil)

func NewMemoryAppointmentRepo() *MemoryAppointmentRepo {
	return &MemoryAppointmentRepo{slots: map[string]models.Slot{}, Fail: map[string]error{}, locks: map[string]int{}}
}

func cloneSlot(s models.Slot) models.Slot {
	s.Bookings = append([]models.Booking{}, s.Bookings...)
	s.SharedWith = append([]string{}, s.SharedWith...)
	return s
}

func (r *MemoryAppointmentRepo) failure(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Fail[method]
}

// Seed stores slots as given, after deriving their computed fields.
func (r *MemoryAppointmentRepo) Seed(slots ...models.Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slots {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.Visibility == "" {
			s.Visibility = models.VisibilityPublic
		}
		s.Refresh()
		r.slots[s.ID] = cloneSlot(s)
	}
}

// All returns every stored slot in chronological order.
func (r *MemoryAppointmentRepo) All() []models.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked(func(models.Slot) bool { return true })
}

func (r *MemoryAppointmentRepo) selectLocked(match func(models.Slot) bool) []models.Slot {
	out := []models.Slot{}
	for _, s := range r.slots {
		if match(s) {
			out = append(out, cloneSlot(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].End != out[j].End {
			return out[i].End < out[j].End
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemoryAppointmentRepo) GetAll(ctx context.Context, f models.SlotFilter) ([]models.Slot, error) {
	if err := r.failure("GetAll"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked(func(s models.Slot) bool {
		if f.CalendarID != "" && s.CalendarID != f.CalendarID {
			return false
		}
		if f.OwnerID != "" && !s.HasOwner(f.OwnerID) {
			return false
		}
		if f.From != "" && s.Start < f.From {
			return false
		}
		if f.To != "" && s.Start >= f.To {
			return false
		}
		return true
	}), nil
}

func (r *MemoryAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	if err := r.failure("GetByID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	c := cloneSlot(s)
	return &c, nil
}

func (r *MemoryAppointmentRepo) GetByWindow(ctx context.Context, start, end string) (*models.Slot, error) {
	if err := r.failure("GetByWindow"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Slot
	for _, s := range r.slots {
		if s.Start != start || s.End != end {
			continue
		}
		if best == nil || s.RemainingCapacity > best.RemainingCapacity ||
			(s.RemainingCapacity == best.RemainingCapacity && s.ID < best.ID) {
			c := cloneSlot(s)
			best = &c
		}
	}
	if best == nil {
		return nil, appointmentRepo.ErrNotFound
	}
	return best, nil
}

func (r *MemoryAppointmentRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Slot, error) {
	if err := r.failure("GetByBookingID"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.FindBooking(bookingID) >= 0 {
			c := cloneSlot(s)
			return &c, nil
		}
	}
	return nil, appointmentRepo.ErrNotFound
}

func (r *MemoryAppointmentRepo) GetInRange(ctx context.Context, from, to string) ([]models.Slot, error) {
	if err := r.failure("GetInRange"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked(func(s models.Slot) bool { return s.Start >= from && s.Start < to }), nil
}

func (r *MemoryAppointmentRepo) GetOverlapping(ctx context.Context, start, end string) ([]models.Slot, error) {
	if err := r.failure("GetOverlapping"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked(func(s models.Slot) bool { return utils.Overlaps(s.Start, s.End, start, end) }), nil
}

func (r *MemoryAppointmentRepo) CountGeneratedInRange(ctx context.Context, from, to string) (int64, error) {
	slots, err := r.GetInRange(ctx, from, to)
	var n int64
	for _, s := range slots {
		if s.Generated {
			n++
		}
	}
	return n, err
}

func (r *MemoryAppointmentRepo) CreateMany(ctx context.Context, slots []models.Slot) error {
	if err := r.failure("CreateMany"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for i := range slots {
		s := &slots[i]
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.Bookings == nil {
			s.Bookings = []models.Booking{}
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		s.Refresh()
		r.slots[s.ID] = cloneSlot(*s)
	}
	return nil
}

func (r *MemoryAppointmentRepo) ClaimCapacity(ctx context.Context, slotID string, b models.Booking) (*models.Slot, error) {
	if err := r.failure("ClaimCapacity"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok || s.RemainingCapacity <= 0 || s.HasOwner(b.OwnerID) || s.HasClient(b.ClientID) {
		return nil, appointmentRepo.ErrConditionFailed
	}
	s = cloneSlot(s)
	s.Bookings = append(s.Bookings, b)
	s.RemainingCapacity--
	s.Version++
	s.UpdatedAt = time.Now()
	s.Refresh()
	r.slots[slotID] = s
	c := cloneSlot(s)
	return &c, nil
}

func (r *MemoryAppointmentRepo) ReplaceVersioned(ctx context.Context, slot *models.Slot) error {
	if err := r.failure("ReplaceVersioned"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.slots[slot.ID]
	if !ok || stored.Version != slot.Version {
		return appointmentRepo.ErrConditionFailed
	}
	if slot.Bookings == nil {
		slot.Bookings = []models.Booking{}
	}
	slot.Refresh()
	slot.Version++
	slot.UpdatedAt = time.Now()
	r.slots[slot.ID] = cloneSlot(*slot)
	return nil
}

func (r *MemoryAppointmentRepo) UpdateFields(ctx context.Context, id string, u models.SlotUpdate) (*models.Slot, error) {
	if err := r.failure("UpdateFields"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	s = cloneSlot(s)
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Visibility != nil {
		s.Visibility = *u.Visibility
	}
	s.Version++
	s.UpdatedAt = time.Now()
	r.slots[id] = s
	c := cloneSlot(s)
	return &c, nil
}

func (r *MemoryAppointmentRepo) DeleteByID(ctx context.Context, id string) error {
	if err := r.failure("DeleteByID"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return appointmentRepo.ErrNotFound
	}
	delete(r.slots, id)
	return nil
}

func (r *MemoryAppointmentRepo) DeleteVersioned(ctx context.Context, id string, version int) error {
	if err := r.failure("DeleteVersioned"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok || s.Version != version {
		return appointmentRepo.ErrConditionFailed
	}
	delete(r.slots, id)
	return nil
}

func (r *MemoryAppointmentRepo) DeleteEmptyAvailableOverlapping(ctx context.Context, start, end string) (int64, error) {
	if err := r.failure("DeleteEmptyAvailableOverlapping"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.slots {
		if s.CalendarID == models.CalendarAvailable && len(s.Bookings) == 0 &&
			utils.Overlaps(s.Start, s.End, start, end) {
			delete(r.slots, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryAppointmentRepo) LockWorkers(ctx context.Context, workerIDs ...string) error {
	if err := r.failure("LockWorkers"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range workerIDs {
		r.locks[id]++
	}
	return nil
}

// LockCount returns how often the worker was locked.
func (r *MemoryAppointmentRepo) LockCount(workerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks[workerID]
}

func (r *MemoryAppointmentRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := make(map[string]models.Slot, len(r.slots))
	for id, s := range r.slots {
		snapshot[id] = cloneSlot(s)
	}
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		r.slots = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *MemoryAppointmentRepo) EnsureIndexes(ctx context.Context) error { return nil }
