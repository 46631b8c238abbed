package models

import "time"

// CalendarID is the calendar a slot is rendered in. It is derived from the
// remaining capacity and never set on its own.
type CalendarID string

const (
	CalendarAvailable CalendarID = "available"
	CalendarBooked    CalendarID = "booked"
)

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityInternal Visibility = "internal"
)

const (
	TitleAvailable    = "Available Slot"
	TitleFullyBooked  = "Fully Booked"
	TitleBookedPrefix = "Booked Appointment"
)

// Slot is a bookable window holding a capacity counter and the bookings made
// against it. Start and End use the canonical "2006-01-02 15:04" layout.
type Slot struct {
	ID                string     `bson:"id" json:"id"`
	Title             string     `bson:"title" json:"title"`
	Description       string     `bson:"description" json:"description"`
	Start             string     `bson:"start" json:"start"`
	End               string     `bson:"end" json:"end"`
	CalendarID        CalendarID `bson:"calendarId" json:"calendarId"`
	Capacity          int        `bson:"capacity" json:"capacity"`
	RemainingCapacity int        `bson:"remainingCapacity" json:"remainingCapacity"`
	Bookings          []Booking  `bson:"bookings" json:"bookings"`
	SharedWith        []string   `bson:"sharedWith" json:"sharedWith"`
	Visibility        Visibility `bson:"visibility" json:"visibility"`
	Dedicated         bool       `bson:"dedicated,omitempty" json:"dedicated,omitempty"` // created for a single off-grid booking
	Generated         bool       `bson:"generated,omitempty" json:"generated,omitempty"` // created by month generation
	Version           int        `bson:"version" json:"version"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Booking is one client's claim on one worker within a slot. Start and End
// are only set when the booking is narrower than its slot.
type Booking struct {
	ID          string    `bson:"id" json:"id"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	OwnerName   string    `bson:"ownerName" json:"ownerName"`
	ClientID    string    `bson:"clientId" json:"clientId"`
	ClientName  string    `bson:"clientName" json:"clientName"`
	Description string    `bson:"description" json:"description"`
	Start       string    `bson:"start,omitempty" json:"start,omitempty"`
	End         string    `bson:"end,omitempty" json:"end,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Window returns the effective window of b inside slot s.
func (b Booking) Window(s Slot) (string, string) {
	start, end := s.Start, s.End
	if b.Start != "" {
		start = b.Start
	}
	if b.End != "" {
		end = b.End
	}
	return start, end
}

// BookedTitle is the label used for a slot whose only booking is owned by ownerName.
func BookedTitle(ownerName string) string {
	if ownerName == "" {
		return TitleBookedPrefix
	}
	return TitleBookedPrefix + " with " + ownerName
}

// Refresh derives CalendarID, Title and SharedWith from the capacity counter
// and the bookings list.
func (s *Slot) Refresh() {
	if s.RemainingCapacity < 0 {
		s.RemainingCapacity = 0
	}
	switch {
	case s.RemainingCapacity > 0:
		s.CalendarID = CalendarAvailable
		s.Title = TitleAvailable
	case len(s.Bookings) == 1:
		s.CalendarID = CalendarBooked
		s.Title = BookedTitle(s.Bookings[0].OwnerName)
	default:
		s.CalendarID = CalendarBooked
		s.Title = TitleFullyBooked
	}

	shared := make([]string, 0, len(s.Bookings))
	seen := make(map[string]bool, len(s.Bookings))
	for _, b := range s.Bookings {
		if b.ClientID == "" || seen[b.ClientID] {
			continue
		}
		seen[b.ClientID] = true
		shared = append(shared, b.ClientID)
	}
	s.SharedWith = shared
}

func (s Slot) IsAvailable() bool {
	return s.CalendarID == CalendarAvailable && s.RemainingCapacity > 0
}

// FindBooking returns the index of the booking with the given id, or -1.
func (s Slot) FindBooking(bookingID string) int {
	for i, b := range s.Bookings {
		if b.ID == bookingID {
			return i
		}
	}
	return -1
}

func (s Slot) HasOwner(ownerID string) bool {
	for _, b := range s.Bookings {
		if b.OwnerID == ownerID {
			return true
		}
	}
	return false
}

func (s Slot) HasClient(clientID string) bool {
	for _, b := range s.Bookings {
		if b.ClientID == clientID {
			return true
		}
	}
	return false
}
