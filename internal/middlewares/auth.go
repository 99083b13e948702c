package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware validates the bearer JWT and sets user_id/token_claims
// in the gin context for downstream handlers.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("Authorization header required"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("Invalid authorization header format"))
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("Token is required"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID.String())
		c.Set("token_claims", claims)
		c.Next()
	}
}

// OptionalAuth middleware - validates token if present but doesn't require it
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(token, jwtSecret)
		if err != nil {
			// Don't abort, just continue without user info
			c.Next()
			return
		}

		// Set user info in context if token is valid
		c.Set("user_id", claims.UserID.String())
		c.Set("token_claims", claims)

		c.Next()
	}
}

// RequireRoomMember aborts the request with 403 unless the authenticated
// user is the room's owner or a member. isMember is injected so this
// middleware doesn't need a direct service dependency; handlers wire it
// to CoordinationService.IsMember (or equivalent) at router setup time.
func RequireRoomMember(isMember func(ctx context.Context, roomID, userID uuid.UUID) (bool, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr, ok := c.Get("user_id")
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}
		userID, err := uuid.Parse(userIDStr.(string))
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid user id"))
			c.Abort()
			return
		}
		roomID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err, "invalid room id"))
			c.Abort()
			return
		}

		member, err := isMember(c.Request.Context(), roomID, userID)
		if err != nil {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("room"))
			c.Abort()
			return
		}
		if !member {
			c.JSON(http.StatusForbidden, dto.NewForbiddenError("이 방의 멤버가 아닙니다"))
			c.Abort()
			return
		}
		c.Next()
	}
}
