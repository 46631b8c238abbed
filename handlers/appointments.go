package handlers

import (
	"net/http"
	"strings"

	"calendo/models"
	"calendo/services/scheduling"
	"calendo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	Engine *scheduling.Engine
}

func NewAppointmentHandler(engine *scheduling.Engine) *AppointmentHandler {
	return &AppointmentHandler{Engine: engine}
}

// ListAppointmentsHandler handles GET /appointments.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	var filter models.SlotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	slots, err := h.Engine.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(slots), "data": slots})
}

// GetAppointmentHandler handles GET /appointments/:id.
func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	slot, err := h.Engine.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": slot})
}

// GenerateSlotsHandler handles POST /appointments. It answers 201 when the
// month was generated and 200 when its slots already existed.
func (h *AppointmentHandler) GenerateSlotsHandler(c *gin.Context) {
	var req models.GenerateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.Year == nil || req.Month == nil {
		badRequest(c, "Year and month are required", nil)
		return
	}
	month := *req.Month
	if req.ZeroBasedMonth {
		month++
	}

	res, err := h.Engine.GenerateMonth(c.Request.Context(), *req.Year, month)
	if err != nil {
		respondError(c, err)
		return
	}

	if !res.Created {
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Slots for this month already exist",
			"results": len(res.Slots),
			"data":    res.Slots,
		})
		return
	}
	getLogger(c).Info("Month generated", zap.Int("year", *req.Year), zap.Int("month", month), zap.Int("slots", len(res.Slots)))
	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Slots generated",
		"results": len(res.Slots),
		"data":    res.Slots,
	})
}

// PatchAppointmentHandler handles PATCH /appointments/:id. The calendar sends
// the event it dropped: an available event is booked, a booked one is moved.
func (h *AppointmentHandler) PatchAppointmentHandler(c *gin.Context) {
	var req models.EventDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.EventData == nil {
		badRequest(c, "eventData is required", nil)
		return
	}
	ev := req.EventData

	switch ev.CalendarID {
	case models.CalendarAvailable:
		h.book(c, ev)
	case models.CalendarBooked:
		h.reschedule(c, ev)
	default:
		badRequest(c, "eventData.calendarId must be available or booked", nil)
	}
}

func (h *AppointmentHandler) book(c *gin.Context, ev *models.EventData) {
	res, err := h.Engine.Book(c.Request.Context(), scheduling.BookRequest{
		Start:       ev.Start,
		End:         ev.End,
		ClientID:    ev.ClientID,
		ClientName:  ev.ClientName,
		Description: ev.Description,
	}, callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":      "success",
		"message":     "Appointment booked with " + res.Booking.OwnerName,
		"appointment": res.Slot,
		"booking":     res.Booking,
	})
}

// reschedule moves the booking named by the path id; eventData.id is used
// when the path carries none. Guests may book but never move bookings.
func (h *AppointmentHandler) reschedule(c *gin.Context, ev *models.EventData) {
	caller := callerFrom(c)
	if caller.UserID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "You must be logged in to move a booking", "")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		id = ev.ID
	}
	res, err := h.Engine.Reschedule(c.Request.Context(), scheduling.RescheduleRequest{
		ID:          id,
		Start:       ev.Start,
		End:         ev.End,
		Description: ev.Description,
		ClientName:  ev.ClientName,
	}, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"appointment": res.Slot,
		"booking":     res.Booking,
		"backfilled":  res.Backfilled,
	})
}

// UpdateAppointmentHandler handles PUT /appointments/:id for the fields that
// are not driven by booking.
func (h *AppointmentHandler) UpdateAppointmentHandler(c *gin.Context) {
	var update models.SlotUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	slot, err := h.Engine.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": slot})
}

// DeleteAppointmentHandler handles DELETE /appointments/:id.
func (h *AppointmentHandler) DeleteAppointmentHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Engine.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Appointment deleted", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Appointment deleted"})
}

// ReassignHandler handles PATCH /appointments/reassign/:id. A sickWorkerId
// in the body takes precedence over the path.
func (h *AppointmentHandler) ReassignHandler(c *gin.Context) {
	var req models.ReassignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body", err)
			return
		}
	}
	workerID := strings.TrimSpace(req.SickWorkerID)
	if workerID == "" {
		workerID = c.Param("id")
	}

	res, err := h.Engine.Reassign(c.Request.Context(), workerID)
	if err != nil {
		respondError(c, err)
		return
	}

	unresolved := res.Unresolved
	if unresolved == nil {
		unresolved = []scheduling.ReassignOutcome{}
	}
	updated := res.UpdatedSlots
	if updated == nil {
		updated = []models.Slot{}
	}
	removed := res.RemovedSlotIDs
	if removed == nil {
		removed = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"message":         "Appointments reassigned",
		"reassignedCount": len(res.Resolved),
		"unresolvedCount": len(res.Unresolved),
		"updatedEvents":   updated,
		"removedEventIds": removed,
		"unresolved":      unresolved,
	})
}
