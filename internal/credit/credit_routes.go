package credit

import (
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/middleware"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	creditGroup := r.Group("/credits")
	creditGroup.Use(middleware.AuthMiddleware())
	{
		creditGroup.GET("/me", rbac.Authorize(rbacService, rbac.ResourceCredit, rbac.ActionRead), h.GetMine)
		creditGroup.GET("/leaderboard", rbac.Authorize(rbacService, rbac.ResourceCredit, rbac.ActionRead), h.Leaderboard)
	}
}
