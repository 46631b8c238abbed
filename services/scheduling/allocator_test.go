package scheduling_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	appointmentRepo "calendo/database/repository/appointment"
	"calendo/models"
	"calendo/services/scheduling"
	"calendo/testfixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nineAM = "2030-01-07 09:00"
	tenAM  = "2030-01-07 10:00"
)

func threeWorkers() *testfixtures.Scheduling {
	return testfixtures.NewScheduling(
		testfixtures.Worker("w1", "Ann"),
		testfixtures.Worker("w2", "Ben"),
		testfixtures.Worker("w3", "Cid"),
	)
}

// frontDesk books on behalf of named clients.
var frontDesk = scheduling.Caller{UserID: "desk", Role: models.RoleWorker}

func book(fx *testfixtures.Scheduling, clientID string) (*scheduling.BookResult, error) {
	return fx.Engine.Book(context.Background(),
		scheduling.BookRequest{Start: nineAM, End: tenAM, ClientID: clientID},
		frontDesk)
}

func TestBookDecrementsCapacity(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 3))

	res, err := fx.Engine.Book(context.Background(), scheduling.BookRequest{
		Start:       "2030-01-07T09:00:00Z",
		End:         "2030-01-07T10:00:00Z",
		Description: strPtr("checkup"),
	}, scheduling.Caller{UserID: "c1", Role: models.RoleUser})
	require.NoError(t, err)

	assert.Equal(t, "s1", res.Slot.ID)
	assert.Equal(t, 2, res.Slot.RemainingCapacity)
	assert.Equal(t, models.CalendarAvailable, res.Slot.CalendarID)
	assert.Equal(t, models.TitleAvailable, res.Slot.Title)
	assert.Equal(t, "w1", res.Booking.OwnerID)
	assert.Equal(t, "Ann", res.Booking.OwnerName)
	assert.Equal(t, "c1", res.Booking.ClientID)
	assert.Equal(t, "checkup", res.Booking.Description)
	assert.Equal(t, []string{"c1"}, res.Slot.SharedWith)
}

func TestBookUntilFullThenConflict(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 3))

	var owners []string
	for i := 1; i <= 3; i++ {
		res, err := book(fx, fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		owners = append(owners, res.Booking.OwnerID)
	}
	assert.Equal(t, []string{"w1", "w2", "w3"}, owners)

	stored, err := fx.Slots.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.RemainingCapacity)
	assert.Equal(t, models.CalendarBooked, stored.CalendarID)
	assert.Equal(t, models.TitleFullyBooked, stored.Title)

	_, err = book(fx, "c4")
	se := requireCode(t, err, scheduling.CodeNoWorkerAvailable)
	assert.Equal(t, 409, se.Kind.HTTPStatus())
	assertInvariants(t, fx.Slots.All())
}

func TestBookSingleCapacityTitleNamesWorker(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"))
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 1))

	res, err := book(fx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CalendarBooked, res.Slot.CalendarID)
	assert.Equal(t, "Booked Appointment with Ann", res.Slot.Title)
}

func TestBookSameClientTwice(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 3))

	_, err := book(fx, "c1")
	require.NoError(t, err)
	_, err = book(fx, "c1")
	requireCode(t, err, scheduling.CodeDuplicateBooking)

	stored, _ := fx.Slots.GetByID(context.Background(), "s1")
	assert.Equal(t, 2, stored.RemainingCapacity)
}

func TestBookRejectsClientOverlapElsewhere(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(
		testfixtures.Slot("s1", nineAM, tenAM, 3),
		testfixtures.Slot("other", "2030-01-07 09:30", "2030-01-07 10:30", 1, testfixtures.Booking("b0", "w2", "c1")),
	)
	_, err := book(fx, "c1")
	requireCode(t, err, scheduling.CodeDuplicateBooking)
}

func TestBookSkipsWorkerBusyInOverlappingSlot(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(
		testfixtures.Slot("s1", nineAM, tenAM, 3),
		testfixtures.Slot("other", "2030-01-07 09:30", "2030-01-07 10:30", 1, testfixtures.Booking("b0", "w1", "x")),
	)
	res, err := book(fx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "w2", res.Booking.OwnerID)
	assertInvariants(t, fx.Slots.All())
}

func TestBookNarrowedBookingOnlyBlocksItsOwnWindow(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"))
	narrowed := testfixtures.Booking("b0", "w1", "x")
	narrowed.Start, narrowed.End = "2030-01-07 08:00", "2030-01-07 08:30"
	fx.Slots.Seed(
		testfixtures.Slot("s1", nineAM, tenAM, 1),
		testfixtures.Slot("early", "2030-01-07 08:00", "2030-01-07 09:30", 2, narrowed),
	)
	res, err := book(fx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "w1", res.Booking.OwnerID)
}

func TestBookClientIdentity(t *testing.T) {
	fx := threeWorkers()
	require.NoError(t, fx.Users.Create(context.Background(), &models.User{ID: "u-maya", FirstName: "Maya", Role: models.RoleUser}))
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 3))
	ctx := context.Background()

	// A guest cannot claim someone else's identity.
	guest, err := fx.Engine.Book(ctx, scheduling.BookRequest{Start: nineAM, End: tenAM, ClientID: "u-maya"}, scheduling.Caller{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(guest.Booking.ClientID, "guest-"))
	assert.Equal(t, "Guest", guest.Booking.ClientName)

	maya := scheduling.Caller{UserID: "u-maya", Role: models.RoleUser}
	named, err := fx.Engine.Book(ctx, scheduling.BookRequest{Start: nineAM, End: tenAM}, maya)
	require.NoError(t, err)
	assert.Equal(t, "u-maya", named.Booking.ClientID)
	assert.Equal(t, "Maya", named.Booking.ClientName)

	// Neither can a signed-in client; the request still counts as Maya's.
	_, err = fx.Engine.Book(ctx, scheduling.BookRequest{Start: nineAM, End: tenAM, ClientID: "walk-in"}, maya)
	requireCode(t, err, scheduling.CodeDuplicateBooking)

	explicit, err := fx.Engine.Book(ctx, scheduling.BookRequest{
		Start: nineAM, End: tenAM, ClientID: "walk-in", ClientName: strPtr("  Rae "),
	}, frontDesk)
	require.NoError(t, err)
	assert.Equal(t, "walk-in", explicit.Booking.ClientID)
	assert.Equal(t, "Rae", explicit.Booking.ClientName)
}

func TestBookInputAndLookupFailures(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 3))
	ctx := context.Background()

	_, err := fx.Engine.Book(ctx, scheduling.BookRequest{End: tenAM}, scheduling.Caller{})
	requireCode(t, err, scheduling.CodeInvalidInput)

	_, err = fx.Engine.Book(ctx, scheduling.BookRequest{Start: "tomorrow", End: tenAM}, scheduling.Caller{})
	requireCode(t, err, scheduling.CodeInvalidInput)

	_, err = fx.Engine.Book(ctx, scheduling.BookRequest{Start: tenAM, End: nineAM}, scheduling.Caller{})
	requireCode(t, err, scheduling.CodeInvalidInput)

	_, err = fx.Engine.Book(ctx, scheduling.BookRequest{Start: "2030-01-07 11:00", End: "2030-01-07 12:00"}, scheduling.Caller{})
	se := requireCode(t, err, scheduling.CodeSlotNotFound)
	assert.Equal(t, scheduling.KindNotFound, se.Kind)
}

func TestBookReportsWhyClaimFailed(t *testing.T) {
	fx := threeWorkers()
	exhausted := testfixtures.Slot("s1", nineAM, tenAM, 1)
	exhausted.RemainingCapacity = 0
	fx.Slots.Seed(exhausted)

	_, err := book(fx, "c1")
	requireCode(t, err, scheduling.CodeSlotFullyBooked)

	fx = threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 3))
	fx.Slots.Fail["ClaimCapacity"] = appointmentRepo.ErrConditionFailed
	_, err = book(fx, "c1")
	requireCode(t, err, scheduling.CodeConcurrentModification)
}

func TestBookPersistenceFailureIsUnexpected(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Fail["GetByWindow"] = errors.New("connection reset")

	_, err := book(fx, "c1")
	se := requireCode(t, err, scheduling.CodePersistenceError)
	assert.Equal(t, scheduling.KindUnexpected, se.Kind)
	assert.Equal(t, 500, se.Kind.HTTPStatus())
}

func TestBookConcurrentCallersNeverOversubscribe(t *testing.T) {
	fx := threeWorkers()
	fx.Slots.Seed(testfixtures.Slot("s1", nineAM, tenAM, 3))

	const callers = 24
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := book(fx, fmt.Sprintf("client-%d", i))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes++
		}(i)
	}
	wg.Wait()

	require.GreaterOrEqual(t, successes, 1)
	require.LessOrEqual(t, successes, 3)
	for _, err := range failures {
		var se *scheduling.Error
		require.True(t, errors.As(err, &se))
		assert.Equal(t, scheduling.KindConflict, se.Kind, se.Error())
	}

	stored, err := fx.Slots.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3-successes, stored.RemainingCapacity)
	assert.Len(t, stored.Bookings, successes)
	assertInvariants(t, fx.Slots.All())
}

func TestBookOverlappingSlotsNeverShareAWorker(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"))
	fx.Slots.Seed(
		testfixtures.Slot("grid", nineAM, tenAM, 1),
		testfixtures.Slot("late", "2030-01-07 09:30", "2030-01-07 10:30", 1),
	)

	requests := []scheduling.BookRequest{
		{Start: nineAM, End: tenAM, ClientID: "c1"},
		{Start: "2030-01-07 09:30", End: "2030-01-07 10:30", ClientID: "c2"},
	}
	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req scheduling.BookRequest) {
			defer wg.Done()
			_, errs[i] = fx.Engine.Book(context.Background(), req, frontDesk)
		}(i, req)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	require.Len(t, failed, 1)
	requireCode(t, failed[0], scheduling.CodeNoWorkerAvailable)
	assert.Equal(t, 1, fx.Slots.LockCount("w1"))
	assertInvariants(t, fx.Slots.All())
}
