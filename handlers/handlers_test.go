package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calendo/config"
	"calendo/services/events"
	"calendo/services/user"
	"calendo/testfixtures"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	fx     *testfixtures.Scheduling
}

// newTestServer mounts the bundle without auth; X-Test-User and X-Test-Role
// stand in for the identity the auth middleware would set.
func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"), testfixtures.Worker("w2", "Ben"))
	userSvc := &user.DefaultUserService{Repo: fx.Users, Workers: fx.Workers}
	eventSvc := events.NewEventService(testfixtures.NewMemoryEventRepo(), time.UTC, zap.NewNop())
	hb := NewHandlerBundle(fx.Engine, userSvc, eventSvc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			role := c.GetHeader("X-Test-Role")
			if role == "" {
				role = "user"
			}
			c.Set("userID", id)
			c.Set("role", role)
		}
		c.Next()
	})
	api := r.Group("/api/v1")
	api.GET("/appointments", hb.ListAppointmentsHandler)
	api.GET("/appointments/:id", hb.GetAppointmentHandler)
	api.POST("/appointments", hb.GenerateSlotsHandler)
	api.PATCH("/appointments/:id", hb.PatchAppointmentHandler)
	api.PUT("/appointments/:id", hb.UpdateAppointmentHandler)
	api.DELETE("/appointments/:id", hb.DeleteAppointmentHandler)
	api.PATCH("/appointments/reassign/:id", hb.ReassignAppointmentHandler)
	api.GET("/internal-events", hb.ListEventsHandler)
	api.POST("/internal-events", hb.CreateEventHandler)
	api.GET("/internal-events/:id", hb.GetEventHandler)
	api.GET("/users/workers", hb.GetWorkersHandler)
	api.GET("/users/:id", hb.GetUserByIDHandler)
	api.POST("/users", hb.CreateUserHandler)
	return &testServer{router: r, fx: fx}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func eventData(calendarID, start, end string, extra map[string]interface{}) map[string]interface{} {
	ev := map[string]interface{}{"calendarId": calendarID, "start": start, "end": end}
	for k, v := range extra {
		ev[k] = v
	}
	return map[string]interface{}{"eventData": ev}
}

func TestGenerateSlotsHandler(t *testing.T) {
	s := newTestServer()

	w, body := s.do(t, http.MethodPost, "/api/v1/appointments", gin.H{"year": 2030, "month": 0, "zeroBasedMonth": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 200, body["results"])

	w, body = s.do(t, http.MethodPost, "/api/v1/appointments", gin.H{"year": 2030, "month": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 200, body["results"])

	w, _ = s.do(t, http.MethodPost, "/api/v1/appointments", gin.H{"year": 2030})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/v1/appointments", gin.H{"year": 2030, "month": 13})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidInput", body["code"])
}

func TestPatchBooksAvailableSlot(t *testing.T) {
	s := newTestServer()
	s.fx.Slots.Seed(testfixtures.Slot("s1", "2030-01-07 09:00", "2030-01-07 10:00", 2))

	w, body := s.do(t, http.MethodPatch, "/api/v1/appointments/s1",
		eventData("available", "2030-01-07 09:00", "2030-01-07 10:00", map[string]interface{}{"clientName": "Zoe"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Appointment booked with Ann", body["message"])

	appointment := body["appointment"].(map[string]interface{})
	assert.EqualValues(t, 1, appointment["remainingCapacity"])
	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, "w1", booking["ownerId"])
	assert.Equal(t, "Zoe", booking["clientName"])

	w, _ = s.do(t, http.MethodPatch, "/api/v1/appointments/s1",
		eventData("available", "2030-01-07 09:00", "2030-01-07 10:00", nil), "X-Test-User", "u7")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = s.do(t, http.MethodPatch, "/api/v1/appointments/s1",
		eventData("available", "2030-01-07 09:00", "2030-01-07 10:00", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "fail", body["status"])
}

func TestPatchRejectsUnknownCalendar(t *testing.T) {
	s := newTestServer()

	w, _ := s.do(t, http.MethodPatch, "/api/v1/appointments/s1", eventData("holiday", "2030-01-07 09:00", "2030-01-07 10:00", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPatch, "/api/v1/appointments/s1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := s.do(t, http.MethodPatch, "/api/v1/appointments/s1", eventData("available", "2030-01-07 09:00", "2030-01-07 10:00", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SlotNotFound", body["code"])
}

func TestPatchReschedulesBookedEvent(t *testing.T) {
	s := newTestServer()
	d := testfixtures.Slot("d", "2030-01-07 14:00", "2030-01-07 15:00", 1, testfixtures.Booking("b1", "w1", "c1"))
	d.Dedicated = true
	s.fx.Slots.Seed(d)

	move := eventData("booked", "2030-01-07 16:00", "2030-01-07 17:00", nil)

	w, _ := s.do(t, http.MethodPatch, "/api/v1/appointments/b1", move)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := s.do(t, http.MethodPatch, "/api/v1/appointments/b1", move, "X-Test-User", "c2")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NotBookingClient", body["code"])

	w, body = s.do(t, http.MethodPatch, "/api/v1/appointments/b1", move, "X-Test-User", "c1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	appointment := body["appointment"].(map[string]interface{})
	assert.Equal(t, "2030-01-07 16:00", appointment["start"])
	assert.Equal(t, "booked", appointment["calendarId"])
	assert.Len(t, body["backfilled"], 2)

	w, body = s.do(t, http.MethodPatch, "/api/v1/appointments/missing", move, "X-Test-User", "a1", "X-Test-Role", "admin")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "AppointmentNotFound", body["code"])
}

func TestReassignHandler(t *testing.T) {
	s := newTestServer()
	s.fx.Slots.Seed(
		testfixtures.Slot("s1", "2030-01-07 10:00", "2030-01-07 11:00", 2,
			testfixtures.Booking("b1", "w1", "c1"), testfixtures.Booking("b2", "w2", "c2")),
	)

	w, body := s.do(t, http.MethodPatch, "/api/v1/appointments/reassign/w1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, body["reassignedCount"])
	assert.EqualValues(t, 1, body["unresolvedCount"])
	assert.Len(t, body["unresolved"], 1)
	assert.Len(t, body["updatedEvents"], 0)

	w, body = s.do(t, http.MethodPatch, "/api/v1/appointments/reassign/ignored", gin.H{"sickWorkerId": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "WorkerNotFound", body["code"])
}

func TestUpdateAndDeleteAppointment(t *testing.T) {
	s := newTestServer()
	s.fx.Slots.Seed(testfixtures.Slot("s1", "2030-01-07 09:00", "2030-01-07 10:00", 2))

	w, body := s.do(t, http.MethodPut, "/api/v1/appointments/s1", gin.H{"description": "front desk"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "front desk", body["data"].(map[string]interface{})["description"])

	w, _ = s.do(t, http.MethodPut, "/api/v1/appointments/s1", gin.H{"visibility": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/appointments/s1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/v1/appointments/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "AppointmentNotFound", body["code"])
}

func TestListAppointmentsFilters(t *testing.T) {
	s := newTestServer()
	s.fx.Slots.Seed(
		testfixtures.Slot("s1", "2030-01-07 09:00", "2030-01-07 10:00", 1),
		testfixtures.Slot("s2", "2030-01-07 10:00", "2030-01-07 11:00", 1, testfixtures.Booking("b1", "w1", "c1")),
	)

	w, body := s.do(t, http.MethodGet, "/api/v1/appointments?calendarId=booked", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, body["results"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/appointments?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductionHidesUnexpectedErrors(t *testing.T) {
	s := newTestServer()
	s.fx.Slots.Fail["GetAll"] = errors.New("connection refused")

	w, body := s.do(t, http.MethodGet, "/api/v1/appointments", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "PersistenceError", body["code"])
	assert.Contains(t, body["error"], "connection refused")

	prev := config.AppConfig.Env
	config.AppConfig.Env = "production"
	defer func() { config.AppConfig.Env = prev }()

	w, body = s.do(t, http.MethodGet, "/api/v1/appointments", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Something went very wrong!", body["message"])
	assert.NotContains(t, body, "code")
	assert.NotContains(t, body, "error")
}

func TestEventAndUserHandlers(t *testing.T) {
	s := newTestServer()

	w, body := s.do(t, http.MethodPost, "/api/v1/internal-events", gin.H{
		"title": "Standup", "description": "daily", "start": "2030-01-07 08:00", "end": "2030-01-07 08:15",
	}, "X-Test-User", "w1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body["data"].(map[string]interface{})
	assert.Equal(t, "w1", created["ownerId"])
	assert.Equal(t, "internal", created["visibility"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/internal-events/"+created["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/internal-events/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/v1/users/workers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["results"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/v1/users", gin.H{
		"firstName": "Cid", "lastName": "Ouma", "email": "cid@example.com", "role": "worker",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = s.do(t, http.MethodGet, "/api/v1/users/workers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["results"])

	w, _ = s.do(t, http.MethodPost, "/api/v1/users", gin.H{"firstName": "No", "lastName": "Mail"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
