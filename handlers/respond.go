package handlers

import (
	"errors"
	"net/http"

	"calendo/config"
	"calendo/models"
	"calendo/services/events"
	"calendo/services/scheduling"
	"calendo/services/user"
	"calendo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const genericFailure = "Something went very wrong!"

// classify maps any service error onto a status, a machine code and a
// client-facing message.
func classify(err error) (int, string, string) {
	var verr user.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, string(scheduling.CodeInvalidInput), verr.Error()
	}
	var everr events.ValidationError
	if errors.As(err, &everr) {
		return http.StatusBadRequest, string(scheduling.CodeInvalidInput), everr.Error()
	}
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "UserNotFound", err.Error()
	case errors.Is(err, events.ErrEventNotFound):
		return http.StatusNotFound, "EventNotFound", err.Error()
	}

	serr := scheduling.AsError(err)
	return serr.Kind.HTTPStatus(), string(serr.Code), serr.Message
}

// respondError writes the error body. Outside production the body also carries
// the code and the full error chain; in production unexpected failures are
// reported with a generic message only.
func respondError(c *gin.Context, err error) {
	status, code, message := classify(err)
	logger := getLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("code", code), zap.Error(err))
	} else {
		logger.Warn("Request rejected", zap.String("code", code), zap.Error(err))
	}

	body := gin.H{"status": utils.StatusText(status), "message": message}
	if config.IsProduction() {
		if status >= http.StatusInternalServerError {
			body["message"] = genericFailure
		}
	} else {
		body["code"] = code
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// badRequest reports a malformed body or query.
func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"status": "fail", "message": message}
	if err != nil && !config.IsProduction() {
		body["code"] = string(scheduling.CodeInvalidInput)
		body["error"] = err.Error()
	}
	getLogger(c).Warn(message, zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// callerFrom reads the identity set by the auth middleware. Anonymous
// requests yield a zero Caller.
func callerFrom(c *gin.Context) scheduling.Caller {
	return scheduling.Caller{
		UserID: c.GetString("userID"),
		Role:   models.Role(c.GetString("role")),
	}
}
