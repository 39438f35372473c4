package payperiod

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service, rdb *redis.Client) {
	periods := r.Group("/pay-periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionRead), h.GetAll)
		periods.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionRead), h.GetByID)
		periods.GET("/:id/totals", middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionRead), h.GetTotals)
		periods.GET("/:id/expense", middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionRead), h.GetExpense)
		periods.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionCreate), h.Create)
		periods.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionApprove), h.Transition)
		periods.POST("/:id/approve-entries", middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionApprove), h.ApproveEntries)
		periods.POST("/:id/finalize",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayPeriod, rbac.ActionFinalize),
			middleware.Idempotency(rdb),
			h.Finalize,
		)
	}
}
