package scheduling_test

import (
	"context"
	"testing"

	appointmentRepo "calendo/database/repository/appointment"
	"calendo/models"
	"calendo/services/scheduling"
	"calendo/testfixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownedBy(slots []models.Slot, workerID string) []models.Booking {
	var out []models.Booking
	for _, s := range slots {
		for _, b := range s.Bookings {
			if b.OwnerID == workerID {
				out = append(out, b)
			}
		}
	}
	return out
}

func TestReassignInPlace(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", "2030-01-07 10:00", "2030-01-07 11:00", 3, testfixtures.Booking("b1", "w1", "c1")))

	res, err := fx.Engine.Reassign(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	out := res.Outcomes[0]
	assert.Equal(t, scheduling.OutcomeReassigned, out.Outcome)
	assert.Equal(t, "w2", out.ToOwnerID)
	assert.Equal(t, "s1", out.ToSlotID)
	assert.Equal(t, "2030-01-07 10:00", out.Start)

	slots := fx.Slots.All()
	assert.Empty(t, ownedBy(slots, "w1"))
	moved := ownedBy(slots, "w2")
	require.Len(t, moved, 1)
	assert.Equal(t, "b1", moved[0].ID)
	assert.Equal(t, "c1", moved[0].ClientID)
	assert.Equal(t, "visit b1", moved[0].Description)
	assert.Equal(t, "Ben", moved[0].OwnerName)
	require.Len(t, res.UpdatedSlots, 1)
	assertInvariants(t, slots)
}

func TestReassignSkipsWorkersBusyInOverlap(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(
		testfixtures.Slot("s1", "2030-01-07 10:00", "2030-01-07 11:00", 3, testfixtures.Booking("b1", "w1", "c1")),
		testfixtures.Slot("s2", "2030-01-07 10:30", "2030-01-07 11:30", 1, testfixtures.Booking("b2", "w2", "c2")),
	)

	res, err := fx.Engine.Reassign(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, res.Resolved, 1)
	assert.Equal(t, "w3", res.Resolved[0].ToOwnerID)
	assertInvariants(t, fx.Slots.All())
}

func TestReassignRelocatesWhenNobodyIsFree(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"), testfixtures.Worker("w2", "Ben"))
	fx.Slots.Seed(
		testfixtures.Slot("a", "2030-01-07 10:00", "2030-01-07 11:00", 2,
			testfixtures.Booking("b1", "w1", "c1"), testfixtures.Booking("b2", "w2", "c2")),
		testfixtures.Slot("b", "2030-01-07 12:00", "2030-01-07 13:00", 2),
	)

	res, err := fx.Engine.Reassign(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	out := res.Outcomes[0]
	assert.Equal(t, scheduling.OutcomeRelocated, out.Outcome)
	assert.Equal(t, "b", out.ToSlotID)
	assert.Equal(t, "w2", out.ToOwnerID)
	assert.Equal(t, "2030-01-07 12:00", out.Start)
	assert.Equal(t, "2030-01-07 13:00", out.End)
	assert.Equal(t, "2030-01-07 10:00", out.OriginalStart)

	slots := fx.Slots.All()
	a, ok := findSlot(slots, "a")
	require.True(t, ok)
	require.Len(t, a.Bookings, 1)
	assert.Equal(t, "b2", a.Bookings[0].ID)
	assert.Equal(t, 1, a.RemainingCapacity)
	assert.Equal(t, models.CalendarAvailable, a.CalendarID)

	b, ok := findSlot(slots, "b")
	require.True(t, ok)
	require.Len(t, b.Bookings, 1)
	assert.Equal(t, "b1", b.Bookings[0].ID)
	assert.Equal(t, "c1", b.Bookings[0].ClientID)
	assert.Empty(t, b.Bookings[0].Start, "full-window booking records no narrowed window")
	assert.Equal(t, 1, b.RemainingCapacity)
	assertInvariants(t, slots)
}

func TestReassignRelocatesIntoDedicatedSlot(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"), testfixtures.Worker("w2", "Ben"))
	long := testfixtures.Slot("d", "2030-01-07 10:00", "2030-01-07 12:00", 1, testfixtures.Booking("b1", "w1", "c1"))
	long.Dedicated = true
	fx.Slots.Seed(
		long,
		testfixtures.Slot("e", "2030-01-07 10:00", "2030-01-07 12:00", 1, testfixtures.Booking("b2", "w2", "c2")),
		testfixtures.Slot("f", "2030-01-07 14:00", "2030-01-07 15:00", 2),
		testfixtures.Slot("g", "2030-01-07 15:00", "2030-01-07 16:00", 2),
	)

	res, err := fx.Engine.Reassign(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, res.Resolved, 1)
	out := res.Resolved[0]
	assert.Equal(t, scheduling.OutcomeRelocated, out.Outcome)
	assert.Equal(t, "2030-01-07 14:00", out.Start)
	assert.Equal(t, "2030-01-07 16:00", out.End)
	assert.ElementsMatch(t, []string{"d", "f", "g"}, res.RemovedSlotIDs)

	slots := fx.Slots.All()
	require.Len(t, slots, 2)
	dest, ok := findSlot(slots, out.ToSlotID)
	require.True(t, ok)
	assert.True(t, dest.Dedicated)
	assert.Equal(t, "2030-01-07 14:00", dest.Start)
	assert.Equal(t, "2030-01-07 16:00", dest.End)
	assert.Equal(t, models.CalendarBooked, dest.CalendarID)
	assert.Equal(t, "Booked Appointment with Ben", dest.Title)
	require.Len(t, dest.Bookings, 1)
	assert.Equal(t, "b1", dest.Bookings[0].ID)
	assertInvariants(t, slots)
}

func TestReassignLeavesUnplaceableBookingInPlace(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"))
	fx.Slots.Seed(
		testfixtures.Slot("s1", "2030-01-07 10:00", "2030-01-07 11:00", 1, testfixtures.Booking("b1", "w1", "c1")),
		testfixtures.Slot("s2", "2030-01-07 12:00", "2030-01-07 13:00", 1),
	)

	res, err := fx.Engine.Reassign(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	assert.Empty(t, res.Resolved)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "b1", res.Unresolved[0].BookingID)
	assert.NotEmpty(t, res.Unresolved[0].Reason)

	kept := ownedBy(fx.Slots.All(), "w1")
	require.Len(t, kept, 1)
	assert.Equal(t, "b1", kept[0].ID)
}

func TestReassignIgnoresPastSlots(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"), testfixtures.Worker("w2", "Ben"))
	fx.Slots.Seed(
		testfixtures.Slot("a", "2030-01-07 10:00", "2030-01-07 11:00", 2,
			testfixtures.Booking("b1", "w1", "c1"), testfixtures.Booking("b2", "w2", "c2")),
		testfixtures.Slot("past", "2029-12-31 10:00", "2029-12-31 11:00", 2),
	)

	res, err := fx.Engine.Reassign(context.Background(), "w1")
	require.NoError(t, err)
	assert.Len(t, res.Unresolved, 1)
}

func TestReassignConservesBookings(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"), testfixtures.Worker("w2", "Ben"))
	fx.Slots.Seed(
		testfixtures.Slot("s1", "2030-01-07 09:00", "2030-01-07 10:00", 2, testfixtures.Booking("b1", "w1", "c1")),
		testfixtures.Slot("s2", "2030-01-07 10:00", "2030-01-07 11:00", 2,
			testfixtures.Booking("b2", "w1", "c2"), testfixtures.Booking("b3", "w2", "c3")),
		testfixtures.Slot("s3", "2030-01-07 11:00", "2030-01-07 12:00", 2,
			testfixtures.Booking("b4", "w1", "c4"), testfixtures.Booking("b5", "w2", "c5")),
	)
	before := len(ownedBy(fx.Slots.All(), "w1"))

	res, err := fx.Engine.Reassign(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, before, len(res.Outcomes))
	assert.Equal(t, len(res.Outcomes),
		res.Count(scheduling.OutcomeReassigned)+res.Count(scheduling.OutcomeRelocated)+res.Count(scheduling.OutcomeUnresolved))
	assert.Equal(t, len(res.Outcomes), len(res.Resolved)+len(res.Unresolved))

	total := 0
	for _, s := range fx.Slots.All() {
		total += len(s.Bookings)
	}
	assert.Equal(t, 5, total)
	assert.Len(t, ownedBy(fx.Slots.All(), "w1"), len(res.Unresolved))
	assertInvariants(t, fx.Slots.All())
}

func TestReassignValidation(t *testing.T) {
	fx := threeWorkers()
	ctx := context.Background()

	_, err := fx.Engine.Reassign(ctx, "  ")
	requireCode(t, err, scheduling.CodeInvalidInput)

	_, err = fx.Engine.Reassign(ctx, "nobody")
	requireCode(t, err, scheduling.CodeWorkerNotFound)

	res, err := fx.Engine.Reassign(ctx, "w3")
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes)
}

func TestReassignRollsBackOnVersionConflict(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", "2030-01-07 10:00", "2030-01-07 11:00", 3, testfixtures.Booking("b1", "w1", "c1")))
	fx.Slots.Fail["ReplaceVersioned"] = appointmentRepo.ErrConditionFailed

	_, err := fx.Engine.Reassign(context.Background(), "w1")
	se := requireCode(t, err, scheduling.CodeConcurrentModification)
	assert.Equal(t, scheduling.KindConflict, se.Kind)

	kept := ownedBy(fx.Slots.All(), "w1")
	require.Len(t, kept, 1)
}
