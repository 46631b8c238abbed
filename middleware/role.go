package middleware

import (
	"net/http"

	"calendo/models"
	"calendo/utils"

	"github.com/gin-gonic/gin"
)

// RestrictTo lets the request through only when the authenticated role is one
// of roles. It must run after JWTAuthMiddleware.
func RestrictTo(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := models.Role(c.GetString("role"))
		if !allowed[role] {
			utils.JSONError(c, http.StatusForbidden, "You do not have permission to perform this action", "role "+string(role))
			return
		}
		c.Next()
	}
}
