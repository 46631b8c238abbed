package scheduling

import (
	"time"

	appointmentRepo "calendo/database/repository/appointment"
	userRepo "calendo/database/repository/user"

	"go.uber.org/zap"
)

// DefaultSlotCapacity is used when no worker exists at generation time.
const DefaultSlotCapacity = 3

// Engine owns slot generation, booking, reassignment and reschedule. It holds
// no per-request state and is safe for concurrent use.
type Engine struct {
	Repo            appointmentRepo.AppointmentRepository
	Users           userRepo.UserRepository
	Workers         *WorkerDirectory
	Logger          *zap.Logger
	Location        *time.Location
	DefaultCapacity int
	Template        SlotTemplate
	// Now is the clock relocation uses to skip past slots.
	Now func() time.Time
}

func NewEngine(
	repo appointmentRepo.AppointmentRepository,
	users userRepo.UserRepository,
	workers *WorkerDirectory,
	logger *zap.Logger,
	loc *time.Location,
	defaultCapacity int,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultSlotCapacity
	}
	return &Engine{
		Repo:            repo,
		Users:           users,
		Workers:         workers,
		Logger:          logger,
		Location:        loc,
		DefaultCapacity: defaultCapacity,
		Template:        DefaultTemplate(),
		Now:             time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
