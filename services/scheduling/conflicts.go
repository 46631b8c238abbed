package scheduling

import (
	"calendo/models"
	"calendo/utils"
)

// bookingSet is a view over slots used to answer "is this worker / client
// free in a window". Bookings listed in ignore are treated as absent.
type bookingSet struct {
	slots  []*models.Slot
	ignore map[string]bool
}

func newBookingSet(slots []*models.Slot, ignore ...string) bookingSet {
	set := bookingSet{slots: slots, ignore: make(map[string]bool, len(ignore))}
	for _, id := range ignore {
		set.ignore[id] = true
	}
	return set
}

func slotPointers(slots []models.Slot) []*models.Slot {
	out := make([]*models.Slot, len(slots))
	for i := range slots {
		out[i] = &slots[i]
	}
	return out
}

func (s bookingSet) each(start, end string, fn func(b models.Booking) bool) {
	for _, slot := range s.slots {
		if slot == nil || !utils.Overlaps(slot.Start, slot.End, start, end) {
			continue
		}
		for _, b := range slot.Bookings {
			if s.ignore[b.ID] {
				continue
			}
			bs, be := b.Window(*slot)
			if utils.Overlaps(bs, be, start, end) && !fn(b) {
				return
			}
		}
	}
}

// busyOwners returns the workers holding a booking that overlaps [start, end).
func (s bookingSet) busyOwners(start, end string) map[string]bool {
	busy := map[string]bool{}
	s.each(start, end, func(b models.Booking) bool {
		busy[b.OwnerID] = true
		return true
	})
	return busy
}

func (s bookingSet) workerFree(workerID, start, end string) bool {
	free := true
	s.each(start, end, func(b models.Booking) bool {
		if b.OwnerID == workerID {
			free = false
		}
		return free
	})
	return free
}

func (s bookingSet) clientFree(clientID, start, end string) bool {
	free := true
	s.each(start, end, func(b models.Booking) bool {
		if b.ClientID == clientID {
			free = false
		}
		return free
	})
	return free
}

// firstFree picks the first worker in directory order that is not busy and
// not excluded.
func firstFree(workers []models.Worker, busy map[string]bool, exclude string) (models.Worker, bool) {
	for _, w := range workers {
		if w.ID == exclude || busy[w.ID] {
			continue
		}
		return w, true
	}
	return models.Worker{}, false
}

func findWorker(workers []models.Worker, id string) (models.Worker, bool) {
	for _, w := range workers {
		if w.ID == id {
			return w, true
		}
	}
	return models.Worker{}, false
}

// detachBooking removes the booking at idx and gives its capacity back.
func detachBooking(slot *models.Slot, idx int) models.Booking {
	b := slot.Bookings[idx]
	slot.Bookings = append(slot.Bookings[:idx:idx], slot.Bookings[idx+1:]...)
	if slot.RemainingCapacity < slot.Capacity {
		slot.RemainingCapacity++
	}
	slot.Refresh()
	return b
}

// attachBooking places b on slot for [start, end), recording a narrowed
// window only when it differs from the slot's own.
func attachBooking(slot *models.Slot, b models.Booking, start, end string) models.Booking {
	b.Start, b.End = "", ""
	if start != slot.Start || end != slot.End {
		b.Start, b.End = start, end
	}
	slot.Bookings = append(slot.Bookings, b)
	if slot.RemainingCapacity > 0 {
		slot.RemainingCapacity--
	}
	slot.Refresh()
	return b
}
