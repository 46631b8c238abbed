// models/user.go
package models

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// User represents a platform account. Workers are users with RoleWorker.
type User struct {
	ID        string    `bson:"id" json:"id"`
	FirstName string    `bson:"firstName" json:"firstName" binding:"required"`
	LastName  string    `bson:"lastName" json:"lastName" binding:"required"`
	Email     string    `bson:"email" json:"email" binding:"required,email"`
	Role      Role      `bson:"role" json:"role"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Worker is the directory view of a user who can own bookings.
type Worker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserUpdate carries the mutable user fields; nil fields are left untouched.
type UserUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Role      *Role   `json:"role,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}
