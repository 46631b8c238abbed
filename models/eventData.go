package models

// EventData is the calendar payload sent by the frontend when a slot is
// booked or an appointment is moved. CalendarID selects the operation.
type EventData struct {
	ID          string     `json:"id"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	CalendarID  CalendarID `json:"calendarId"`
	ClientID    string     `json:"clientId,omitempty"`
	ClientName  *string    `json:"clientName,omitempty"`
	Description *string    `json:"description,omitempty"`
}

// EventDataRequest wraps EventData the way the calendar client posts it.
type EventDataRequest struct {
	EventData *EventData `json:"eventData"`
}

// GenerateSlotsRequest asks for the slots of one month. Month is 1-12 unless
// ZeroBasedMonth is set, in which case it is 0-11.
type GenerateSlotsRequest struct {
	Year           *int `json:"year"`
	Month          *int `json:"month"`
	ZeroBasedMonth bool `json:"zeroBasedMonth,omitempty"`
}

type ReassignRequest struct {
	SickWorkerID string `json:"sickWorkerId"`
}

// SlotFilter narrows slot listings. Empty fields are ignored; From/To bound
// the slot start (inclusive / exclusive).
type SlotFilter struct {
	CalendarID CalendarID `form:"calendarId"`
	OwnerID    string     `form:"ownerId"`
	From       string     `form:"from"`
	To         string     `form:"to"`
}

// SlotUpdate carries the slot fields editable outside the booking flows.
type SlotUpdate struct {
	Description *string     `json:"description"`
	Visibility  *Visibility `json:"visibility" binding:"omitempty,oneof=public internal"`
}
