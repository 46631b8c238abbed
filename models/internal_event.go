package models

import "time"

// InternalEvent is a staff-only calendar entry that never takes bookings.
type InternalEvent struct {
	ID          string     `bson:"id" json:"id"`
	Title       string     `bson:"title" json:"title" binding:"required"`
	Description string     `bson:"description" json:"description" binding:"required"`
	Start       string     `bson:"start" json:"start" binding:"required"`
	End         string     `bson:"end" json:"end" binding:"required"`
	CalendarID  string     `bson:"calendarId,omitempty" json:"calendarId,omitempty"`
	OwnerID     string     `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	SharedWith  []string   `bson:"sharedWith" json:"sharedWith"`
	Visibility  Visibility `bson:"visibility" json:"visibility"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

type InternalEventUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Start       *string   `json:"start,omitempty"`
	End         *string   `json:"end,omitempty"`
	CalendarID  *string   `json:"calendarId,omitempty"`
	SharedWith  *[]string `json:"sharedWith,omitempty"`
}
