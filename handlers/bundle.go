package handlers

import (
	"calendo/services/events"
	"calendo/services/scheduling"
	"calendo/services/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Appointment endpoints
	ListAppointmentsHandler    gin.HandlerFunc
	GetAppointmentHandler      gin.HandlerFunc
	GenerateSlotsHandler       gin.HandlerFunc
	PatchAppointmentHandler    gin.HandlerFunc
	UpdateAppointmentHandler   gin.HandlerFunc
	DeleteAppointmentHandler   gin.HandlerFunc
	ReassignAppointmentHandler gin.HandlerFunc

	// Internal event endpoints
	ListEventsHandler  gin.HandlerFunc
	GetEventHandler    gin.HandlerFunc
	CreateEventHandler gin.HandlerFunc
	UpdateEventHandler gin.HandlerFunc
	DeleteEventHandler gin.HandlerFunc

	// User endpoints
	GetAllUsersHandler gin.HandlerFunc
	GetWorkersHandler  gin.HandlerFunc
	GetUserByIDHandler gin.HandlerFunc
	CreateUserHandler  gin.HandlerFunc
	UpdateUserHandler  gin.HandlerFunc
	DeleteUserHandler  gin.HandlerFunc
}

// NewHandlerBundle wires every handler to its service.
func NewHandlerBundle(engine *scheduling.Engine, userSvc user.UserService, eventSvc events.EventService) *HandlerBundle {
	ah := NewAppointmentHandler(engine)
	eh := NewEventHandler(eventSvc)
	uh := NewUserHandler(userSvc)

	return &HandlerBundle{
		ListAppointmentsHandler:    ah.ListAppointmentsHandler,
		GetAppointmentHandler:      ah.GetAppointmentHandler,
		GenerateSlotsHandler:       ah.GenerateSlotsHandler,
		PatchAppointmentHandler:    ah.PatchAppointmentHandler,
		UpdateAppointmentHandler:   ah.UpdateAppointmentHandler,
		DeleteAppointmentHandler:   ah.DeleteAppointmentHandler,
		ReassignAppointmentHandler: ah.ReassignHandler,

		ListEventsHandler:  eh.ListEventsHandler,
		GetEventHandler:    eh.GetEventHandler,
		CreateEventHandler: eh.CreateEventHandler,
		UpdateEventHandler: eh.UpdateEventHandler,
		DeleteEventHandler: eh.DeleteEventHandler,

		GetAllUsersHandler: uh.GetAllUsersHandler,
		GetWorkersHandler:  uh.GetWorkersHandler,
		GetUserByIDHandler: uh.GetUserByIDHandler,
		CreateUserHandler:  uh.CreateUserHandler,
		UpdateUserHandler:  uh.UpdateUserHandler,
		DeleteUserHandler:  uh.DeleteUserHandler,
	}
}
