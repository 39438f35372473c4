package rate

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	rates := r.Group("/rates")
	rates.Use(middleware.AuthMiddleware())
	{
		rates.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourcePayRate, rbac.ActionRead), handler.GetAll)
		rates.GET("/resolve", middleware.RBACAuthorize(rbacService, rbac.ResourcePayRate, rbac.ActionRead), handler.Resolve)
		rates.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourcePayRate, rbac.ActionCreate), handler.Create)
	}
}
