package router

import (
	"atlas/internal/handler"

	"github.com/gin-gonic/gin"
)

type SyncRouter struct {
	syncHandler *handler.SyncHandler
}

func NewSyncRouter(
	syncHandler *handler.SyncHandler,
) *SyncRouter {
	return &SyncRouter{
		syncHandler: syncHandler,
	}
}

func (sr *SyncRouter) RegisterRoutes(r *gin.Engine) {
	syncGroup := r.Group("/admin/sync")
	{
		syncGroup.POST("/tenants/:tenantID", sr.syncHandler.SyncTenant)
		syncGroup.POST("/nodes/:nodeID", sr.syncHandler.SyncNode)
	}
}
