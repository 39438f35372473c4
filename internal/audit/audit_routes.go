package audit

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	auditGroup := r.Group("/audit-events")
	auditGroup.Use(middleware.AuthMiddleware())
	{
		auditGroup.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceAudit, rbac.ActionRead), h.GetAll)
	}
}
