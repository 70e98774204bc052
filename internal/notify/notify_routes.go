package notify

import (
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/events", middleware.AuthMiddleware(), h.Stream)
}
