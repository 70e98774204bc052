package dispatch

import (
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/middleware"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	requestGroup := r.Group("/requests")
	requestGroup.Use(middleware.AuthMiddleware())
	{
		requestGroup.POST("",
			rbac.Authorize(rbacService, rbac.ResourceRequest, rbac.ActionCreate),
			middleware.RateLimitByWorker(1, 5),
			middleware.Idempotency(rdb),
			h.Create,
		)
		requestGroup.GET("/my", rbac.Authorize(rbacService, rbac.ResourceRequest, rbac.ActionRead), h.ListMine)
		requestGroup.GET("/pool", rbac.Authorize(rbacService, rbac.ResourceRequestPool, rbac.ActionRead), h.ListPool)
		requestGroup.PUT("/:id/accept",
			rbac.Authorize(rbacService, rbac.ResourceRequestPool, rbac.ActionClaim),
			middleware.RateLimitByWorker(2, 10),
			h.Accept,
		)
		requestGroup.PUT("/:id/complete",
			rbac.Authorize(rbacService, rbac.ResourceRequestPool, rbac.ActionClaim),
			middleware.RateLimitByWorker(2, 10),
			h.Complete,
		)
		requestGroup.DELETE("/:id",
			rbac.Authorize(rbacService, rbac.ResourceRequest, rbac.ActionDelete),
			middleware.RateLimitByWorker(1, 5),
			h.Cancel,
		)
	}
}
