package paysync

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	sync := r.Group("/sync")
	sync.Use(middleware.AuthMiddleware())
	{
		sync.POST("/jobs/:periodId", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionSync), h.SyncJobs)
		sync.POST("/clock-events", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionSync), h.SyncClockEvents)
		sync.POST("/missed-days/:periodId", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionSync), h.SyncMissedDays)
		sync.GET("/missing-rates/:periodId", middleware.RBACAuthorize(rbacService, rbac.ResourcePayEntry, rbac.ActionRead), h.MissingRates)
	}
}
