package middleware

import (
	"github.com/AnTengye/contractreview/backend/service"
	"github.com/gin-gonic/gin"
)

const workspaceKey = "workspace"

// Workspace resolves the tenant workspace once per request. It must run
// after AuthMiddleware.
func Workspace(registry *service.WorkspaceRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := GetTenant(c)
		if tenant == "" {
			tenant = DefaultTenant
		}
		c.Set(workspaceKey, registry.Get(tenant))
		c.Next()
	}
}

// GetWorkspace returns the workspace set by Workspace, or nil
func GetWorkspace(c *gin.Context) *service.Workspace {
	if v, ok := c.Get(workspaceKey); ok {
		if ws, ok := v.(*service.Workspace); ok {
			return ws
		}
	}
	return nil
}
