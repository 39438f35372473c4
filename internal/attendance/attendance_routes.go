package attendance

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	clockEvents := r.Group("/clock-events")
	clockEvents.Use(middleware.AuthMiddleware())
	{
		clockEvents.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionRead), h.GetAll)
		clockEvents.POST("/clock-in", middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionCreate), h.ClockIn)
		clockEvents.POST("/clock-out", middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionCreate), h.ClockOut)
	}
}
