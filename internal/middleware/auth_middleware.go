package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	identityerrors "github.com/glbits/Rudraksha-Hospital-IMS/internal/identity/errors"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/shared/contextutil"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware resolves the bearer credential into the acting worker and
// stores it on the request context. Nothing downstream reads ambient global
// state; every service call receives the actor explicitly.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			errObj := identityerrors.ErrInvalidToken
			if err != nil && strings.Contains(err.Error(), "expired") {
				errObj = identityerrors.ErrTokenExpired
			}
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		workerID, ok := claims["worker_id"].(string)
		if !ok || workerID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Worker ID not found in token", nil)
			c.Abort()
			return
		}

		name, _ := claims["name"].(string)
		role, _ := claims["role"].(string)

		c.Set("worker_id", workerID)
		c.Set("worker_name", name)
		c.Set("role", role)

		ctx := contextutil.WithWorkerID(c.Request.Context(), workerID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
