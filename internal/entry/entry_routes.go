package entry

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	entries := r.Group("/entries")
	entries.Use(middleware.AuthMiddleware())
	{
		entries.GET("/period/:periodId", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionRead), h.GetByPeriod)
		entries.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionCreate), h.CreateManual)
		entries.POST("/approve", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionRead), h.ApproveOwn)
		entries.PATCH("/:id/override", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionOverride), h.Override)
	}
}
