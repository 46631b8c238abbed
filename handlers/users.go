package handlers

import (
	"net/http"

	"calendo/models"
	"calendo/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{UserService: svc}
}

// GetAllUsersHandler handles GET /users.
func (h *UserHandler) GetAllUsersHandler(c *gin.Context) {
	users, err := h.UserService.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(users), "data": users})
}

// GetWorkersHandler handles GET /users/workers.
func (h *UserHandler) GetWorkersHandler(c *gin.Context) {
	workers, err := h.UserService.GetWorkers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(workers), "data": workers})
}

// GetUserByIDHandler handles GET /users/:id.
func (h *UserHandler) GetUserByIDHandler(c *gin.Context) {
	usr, err := h.UserService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": usr})
}

// CreateUserHandler handles POST /users.
func (h *UserHandler) CreateUserHandler(c *gin.Context) {
	var req models.User
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	created, err := h.UserService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": created})
}

// UpdateUserHandler handles PATCH /users/:id.
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	id := c.Param("id")
	var update models.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	updated, err := h.UserService.UpdateUser(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("User updated", zap.String("userID", id))
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}

// DeleteUserHandler handles DELETE /users/:id.
func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	if err := h.UserService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User deleted"})
}
