package scheduling

import (
	"context"
	"errors"
	"sort"
	"strings"

	userRepo "calendo/database/repository/user"
	"calendo/models"
	"calendo/utils"

	"go.uber.org/zap"
)

type OutcomeKind string

const (
	OutcomeReassigned OutcomeKind = "reassigned"
	OutcomeRelocated  OutcomeKind = "relocated"
	OutcomeUnresolved OutcomeKind = "unresolved"
)

// ReassignOutcome records what happened to one booking of the absent worker.
type ReassignOutcome struct {
	BookingID     string      `json:"bookingId"`
	Outcome       OutcomeKind `json:"outcome"`
	ClientID      string      `json:"clientId"`
	ClientName    string      `json:"clientName"`
	Description   string      `json:"description"`
	FromSlotID    string      `json:"fromSlotId"`
	ToSlotID      string      `json:"toSlotId,omitempty"`
	FromOwnerID   string      `json:"fromOwnerId"`
	ToOwnerID     string      `json:"toOwnerId,omitempty"`
	ToOwnerName   string      `json:"toOwnerName,omitempty"`
	OriginalStart string      `json:"originalStart"`
	OriginalEnd   string      `json:"originalEnd"`
	Start         string      `json:"start,omitempty"`
	End           string      `json:"end,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}

// ReassignResult satisfies len(Outcomes) == len(Resolved) + len(Unresolved).
type ReassignResult struct {
	Outcomes       []ReassignOutcome
	Resolved       []ReassignOutcome
	Unresolved     []ReassignOutcome
	UpdatedSlots   []models.Slot
	RemovedSlotIDs []string
}

func (r *ReassignResult) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Outcome == kind {
			n++
		}
	}
	return n
}

func (r *ReassignResult) add(o ReassignOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Outcome == OutcomeUnresolved {
		r.Unresolved = append(r.Unresolved, o)
	} else {
		r.Resolved = append(r.Resolved, o)
	}
}

type ownedBooking struct {
	slotID    string
	bookingID string
	start     string
	end       string
}

// Reassign moves every booking owned by sickWorkerID to another worker. A
// booking is first handed to a free worker in place; failing that it is
// relocated to the earliest available window a worker is free for; failing
// that it stays where it is and is reported as unresolved. All writes happen
// in one transaction.
func (e *Engine) Reassign(ctx context.Context, sickWorkerID string) (*ReassignResult, error) {
	sick := strings.TrimSpace(sickWorkerID)
	if sick == "" {
		return nil, invalidInput("sickWorkerId is required")
	}

	knownUser := true
	if _, err := e.Users.GetByID(ctx, sick); err != nil {
		if !errors.Is(err, userRepo.ErrNotFound) {
			return nil, persistence("load worker", err)
		}
		knownUser = false
	}

	workers, err := e.directory(ctx)
	if err != nil {
		return nil, err
	}
	nowStr := utils.FormatCanonical(e.now().In(e.Location))

	var result *ReassignResult
	err = e.Repo.WithTransaction(ctx, func(tx context.Context) error {
		slots, err := e.Repo.GetAll(tx, models.SlotFilter{})
		if err != nil {
			return persistence("load slots", err)
		}
		p := newPlan(slots)
		owned := bookingsOwnedBy(p, sick)
		if len(owned) == 0 && !knownUser {
			return notFound(CodeWorkerNotFound, "worker "+sick+" does not exist")
		}

		res := &ReassignResult{Outcomes: []ReassignOutcome{}, Resolved: []ReassignOutcome{}, Unresolved: []ReassignOutcome{}}
		for _, ob := range owned {
			res.add(e.rehome(p, ob, workers, sick, nowStr))
		}
		if err := p.apply(tx, e.Repo); err != nil {
			return err
		}
		res.UpdatedSlots = p.changed()
		res.RemovedSlotIDs = p.removedIDs()
		result = res
		return nil
	})
	if err != nil {
		return nil, storeError("reassignment transaction", err)
	}

	e.Logger.Info("Reassigned worker bookings",
		zap.String("workerId", sick),
		zap.Int("total", len(result.Outcomes)),
		zap.Int("reassigned", result.Count(OutcomeReassigned)),
		zap.Int("relocated", result.Count(OutcomeRelocated)),
		zap.Int("unresolved", result.Count(OutcomeUnresolved)))
	for _, u := range result.Unresolved {
		e.Logger.Warn("Booking left with unavailable worker",
			zap.String("bookingId", u.BookingID), zap.String("slotId", u.FromSlotID))
	}
	return result, nil
}

func bookingsOwnedBy(p *plan, workerID string) []ownedBooking {
	var out []ownedBooking
	for _, s := range p.live() {
		for _, b := range s.Bookings {
			if b.OwnerID != workerID {
				continue
			}
			start, end := b.Window(*s)
			out = append(out, ownedBooking{slotID: s.ID, bookingID: b.ID, start: start, end: end})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		return out[i].end < out[j].end
	})
	return out
}

func (e *Engine) rehome(p *plan, ob ownedBooking, workers []models.Worker, sick, now string) ReassignOutcome {
	slot := p.get(ob.slotID)
	idx := slot.FindBooking(ob.bookingID)
	b := slot.Bookings[idx]
	out := ReassignOutcome{
		BookingID:     b.ID,
		ClientID:      b.ClientID,
		ClientName:    b.ClientName,
		Description:   b.Description,
		FromSlotID:    slot.ID,
		FromOwnerID:   b.OwnerID,
		OriginalStart: ob.start,
		OriginalEnd:   ob.end,
	}
	set := p.bookings(b.ID)

	// Same window, different worker.
	for _, w := range workers {
		if w.ID == sick || !set.workerFree(w.ID, ob.start, ob.end) {
			continue
		}
		slot.Bookings[idx].OwnerID = w.ID
		slot.Bookings[idx].OwnerName = w.Name
		slot.Refresh()
		p.touch(slot.ID)
		p.assign(w.ID)
		out.Outcome = OutcomeReassigned
		out.ToSlotID, out.ToOwnerID, out.ToOwnerName = slot.ID, w.ID, w.Name
		out.Start, out.End = ob.start, ob.end
		return out
	}

	// Another window.
	duration, err := utils.WindowMinutes(ob.start, ob.end)
	if err == nil && duration > 0 {
		for _, cand := range p.live() {
			if cand.ID == slot.ID || !cand.IsAvailable() || cand.Start < now ||
				utils.Overlaps(cand.Start, cand.End, ob.start, ob.end) {
				continue
			}
			cs := cand.Start
			ce, err := utils.AddMinutes(cs, duration)
			if err != nil || !set.clientFree(b.ClientID, cs, ce) {
				continue
			}
			for _, w := range workers {
				if w.ID == sick || !set.workerFree(w.ID, cs, ce) {
					continue
				}
				moved := p.release(slot, idx)
				moved.OwnerID, moved.OwnerName = w.ID, w.Name
				p.assign(w.ID)

				dest := cand
				if ce <= cand.End {
					attachBooking(cand, moved, cs, ce)
					p.touch(cand.ID)
				} else {
					dest = p.addDedicated(moved, cs, ce, slot.Description)
					p.clearAvailable(cs, ce)
				}
				out.Outcome = OutcomeRelocated
				out.ToSlotID, out.ToOwnerID, out.ToOwnerName = dest.ID, w.ID, w.Name
				out.Start, out.End = cs, ce
				return out
			}
		}
	}

	out.Outcome = OutcomeUnresolved
	out.Reason = "no other worker is free for this booking or any available slot"
	return out
}
