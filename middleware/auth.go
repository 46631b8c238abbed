package middleware

import (
	"context"
	"net/http"
	"strings"

	userRepo "calendo/database/repository/user"
	"calendo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func abortUnauthorized(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusUnauthorized, message, "")
}

// JWTAuthMiddleware resolves the bearer token to a stored, active user and
// sets userID and role in the context. The role always comes from the stored
// user, never from the token. With optional set, requests carrying no
// Authorization header pass through anonymously; a bad token is still rejected.
func JWTAuthMiddleware(users userRepo.UserRepository, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && optional {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		identity, err := utils.ExtractIdentity(tokenString)
		if err != nil {
			logger.Debug("Rejected bearer token", zap.Error(err))
			abortUnauthorized(c, "Invalid token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), utils.RepoTimeout)
		defer cancel()
		usr, err := users.GetByID(ctx, identity.UserID)
		if err != nil {
			logger.Warn("Token subject not found", zap.String("userID", identity.UserID), zap.Error(err))
			abortUnauthorized(c, "User not found")
			return
		}
		if !usr.Active {
			abortUnauthorized(c, "User is inactive")
			return
		}

		c.Set("userID", usr.ID)
		c.Set("role", string(usr.Role))
		c.Next()
	}
}
