package testfixtures

import (
	"time"

	"calendo/models"
	"calendo/services/scheduling"

	"go.uber.org/zap"
)

// Scheduling bundles an engine with the in-memory stores behind it.
type Scheduling struct {
	Engine  *scheduling.Engine
	Slots   *MemoryAppointmentRepo
	Users   *MemoryUserRepo
	Cache   *MemoryCache
	Workers *scheduling.WorkerDirectory
}

// NewScheduling builds an engine over empty stores seeded with users. The
// engine clock is fixed at 2030-01-01 00:00 UTC so relocation never treats
// test slots as past.
func NewScheduling(users ...models.User) *Scheduling {
	slots := NewMemoryAppointmentRepo()
	userStore := NewMemoryUserRepo(users...)
	cache := NewMemoryCache()
	logger := zap.NewNop()
	dir := scheduling.NewWorkerDirectory(userStore, cache, time.Minute, logger)
	engine := scheduling.NewEngine(slots, userStore, dir, logger, time.UTC, scheduling.DefaultSlotCapacity)
	engine.Now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	return &Scheduling{Engine: engine, Slots: slots, Users: userStore, Cache: cache, Workers: dir}
}

// Slot builds a stored slot for [start, end) with the given capacity and
// bookings; remaining capacity is capacity minus the bookings.
func Slot(id, start, end string, capacity int, bookings ...models.Booking) models.Slot {
	if bookings == nil {
		bookings = []models.Booking{}
	}
	s := models.Slot{
		ID:                id,
		Start:             start,
		End:               end,
		Capacity:          capacity,
		RemainingCapacity: capacity - len(bookings),
		Bookings:          bookings,
		Visibility:        models.VisibilityPublic,
	}
	s.Refresh()
	return s
}

func Booking(id, ownerID, clientID string) models.Booking {
	return models.Booking{
		ID:          id,
		OwnerID:     ownerID,
		OwnerName:   ownerID,
		ClientID:    clientID,
		ClientName:  clientID,
		Description: "visit " + id,
	}
}
