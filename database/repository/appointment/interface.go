// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"

	"calendo/database"
	"calendo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no slot matches a lookup.
	ErrNotFound = errors.New("appointment not found")
	// ErrConditionFailed is returned when a conditional write matched nothing.
	ErrConditionFailed = errors.New("conditional update did not match")
)

// AppointmentRepository is the slot store. Every method honours a transaction
// started by WithTransaction when called with the context it hands out.
type AppointmentRepository interface {
	GetAll(ctx context.Context, filter models.SlotFilter) ([]models.Slot, error)
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	GetByWindow(ctx context.Context, start, end string) (*models.Slot, error)
	GetByBookingID(ctx context.Context, bookingID string) (*models.Slot, error)
	GetInRange(ctx context.Context, from, to string) ([]models.Slot, error)
	GetOverlapping(ctx context.Context, start, end string) ([]models.Slot, error)
	// CountGeneratedInRange counts slots created by month generation that
	// start in [from, to). Dedicated and backfilled slots are not counted.
	CountGeneratedInRange(ctx context.Context, from, to string) (int64, error)

	CreateMany(ctx context.Context, slots []models.Slot) error
	// ClaimCapacity appends booking to the slot only while the slot has
	// capacity left and neither the booking's worker nor its client is on it.
	ClaimCapacity(ctx context.Context, slotID string, booking models.Booking) (*models.Slot, error)
	// ReplaceVersioned writes slot back only if the stored version still
	// equals slot.Version. Derived fields are refreshed before writing.
	ReplaceVersioned(ctx context.Context, slot *models.Slot) error
	UpdateFields(ctx context.Context, id string, update models.SlotUpdate) (*models.Slot, error)
	DeleteByID(ctx context.Context, id string) error
	// DeleteVersioned deletes the slot only if it is still at version.
	DeleteVersioned(ctx context.Context, id string, version int) error
	DeleteEmptyAvailableOverlapping(ctx context.Context, start, end string) (int64, error)
	// LockWorkers writes each worker's lock document. Two transactions that
	// lock the same worker conflict, and only one of them commits.
	LockWorkers(ctx context.Context, workerIDs ...string) error

	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	EnsureIndexes(ctx context.Context) error
}

type mongoAppointmentRepo struct {
	coll  *mongo.Collection
	locks *mongo.Collection
}

// NewMongoAppointmentRepo constructs a MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	return &mongoAppointmentRepo{
		coll:  database.DB().Collection("appointments"),
		locks: database.DB().Collection("worker_locks"),
	}
}
