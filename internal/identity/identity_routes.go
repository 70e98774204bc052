package identity

import (
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/middleware"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", middleware.RateLimitByIP(0.5, 5), h.Login)
		authGroup.POST("/refresh", h.RefreshToken)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", middleware.AuthMiddleware(), h.Me)
	}

	workerGroup := r.Group("/workers")
	workerGroup.Use(middleware.AuthMiddleware())
	{
		workerGroup.POST("", rbac.Authorize(rbacService, rbac.ResourceWorker, rbac.ActionCreate), h.RegisterWorker)
		workerGroup.GET("", rbac.Authorize(rbacService, rbac.ResourceWorker, rbac.ActionRead), h.ListWorkers)
	}
}
