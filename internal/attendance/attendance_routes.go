package attendance

import (
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/middleware"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	attendanceGroup := r.Group("/attendance")
	attendanceGroup.Use(middleware.AuthMiddleware())
	{
		attendanceGroup.GET("/status", h.GetStatus)
		attendanceGroup.POST("/clock-in",
			rbac.Authorize(rbacService, rbac.ResourceAttendance, rbac.ActionCreate),
			middleware.RateLimitByWorker(1, 3),
			h.ClockIn,
		)
		attendanceGroup.POST("/clock-out",
			rbac.Authorize(rbacService, rbac.ResourceAttendance, rbac.ActionCreate),
			middleware.RateLimitByWorker(1, 3),
			h.ClockOut,
		)
		attendanceGroup.POST("/manual-in",
			rbac.Authorize(rbacService, rbac.ResourceAttendanceAdmin, rbac.ActionManage),
			middleware.RateLimitByWorker(2, 10),
			h.ManualClockIn,
		)
		attendanceGroup.POST("/manual-out",
			rbac.Authorize(rbacService, rbac.ResourceAttendanceAdmin, rbac.ActionManage),
			middleware.RateLimitByWorker(2, 10),
			h.ManualClockOut,
		)
		attendanceGroup.GET("/all", rbac.Authorize(rbacService, rbac.ResourceAttendanceAdmin, rbac.ActionRead), h.GetAll)
	}
}
