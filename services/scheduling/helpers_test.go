package scheduling_test

import (
	"errors"
	"testing"

	"calendo/models"
	"calendo/services/scheduling"
	"calendo/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, code scheduling.Code) *scheduling.Error {
	t.Helper()
	require.Error(t, err)
	var se *scheduling.Error
	require.True(t, errors.As(err, &se), "expected *scheduling.Error, got %T: %v", err, err)
	assert.Equal(t, code, se.Code, se.Error())
	return se
}

func strPtr(s string) *string { return &s }

// assertInvariants checks capacity bounds, calendar consistency and that no
// worker or client holds overlapping bookings.
func assertInvariants(t *testing.T, slots []models.Slot) {
	t.Helper()
	type held struct{ start, end, id string }
	byOwner := map[string][]held{}
	byClient := map[string][]held{}
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.RemainingCapacity, 0, "slot %s", s.ID)
		assert.LessOrEqual(t, s.RemainingCapacity, s.Capacity, "slot %s", s.ID)
		if s.RemainingCapacity > 0 {
			assert.Equal(t, models.CalendarAvailable, s.CalendarID, "slot %s", s.ID)
		} else {
			assert.Equal(t, models.CalendarBooked, s.CalendarID, "slot %s", s.ID)
		}
		for _, b := range s.Bookings {
			start, end := b.Window(s)
			byOwner[b.OwnerID] = append(byOwner[b.OwnerID], held{start, end, b.ID})
			byClient[b.ClientID] = append(byClient[b.ClientID], held{start, end, b.ID})
		}
	}
	for _, group := range []map[string][]held{byOwner, byClient} {
		for who, list := range group {
			for i := range list {
				for j := i + 1; j < len(list); j++ {
					assert.False(t, utils.Overlaps(list[i].start, list[i].end, list[j].start, list[j].end),
						"%s holds overlapping bookings %s and %s", who, list[i].id, list[j].id)
				}
			}
		}
	}
}

func findSlot(slots []models.Slot, id string) (models.Slot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return models.Slot{}, false
}
