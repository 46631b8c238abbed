package handlers

import (
	"net/http"

	"calendo/models"
	"calendo/services/events"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	EventService events.EventService
}

func NewEventHandler(svc events.EventService) *EventHandler {
	return &EventHandler{EventService: svc}
}

func (h *EventHandler) ListEventsHandler(c *gin.Context) {
	list, err := h.EventService.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(list), "data": list})
}

func (h *EventHandler) GetEventHandler(c *gin.Context) {
	event, err := h.EventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": event})
}

// CreateEventHandler handles POST /internal-events. The caller owns the event.
func (h *EventHandler) CreateEventHandler(c *gin.Context) {
	var event models.InternalEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	created, err := h.EventService.CreateEvent(c.Request.Context(), event, c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": created})
}

func (h *EventHandler) UpdateEventHandler(c *gin.Context) {
	var update models.InternalEventUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	event, err := h.EventService.UpdateEvent(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": event})
}

func (h *EventHandler) DeleteEventHandler(c *gin.Context) {
	if err := h.EventService.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Internal event deleted"})
}
