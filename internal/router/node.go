package router

import (
	"atlas/internal/handler"

	"github.com/gin-gonic/gin"
)

type NodeRouter struct {
	nodeHandler *handler.NodeHandler
}

func NewNodeRouter(
	nodeHandler *handler.NodeHandler,
) *NodeRouter {
	return &NodeRouter{
		nodeHandler: nodeHandler,
	}
}

func (nr *NodeRouter) RegisterRoutes(r *gin.Engine) {
	nodes := r.Group("/admin/nodes")
	{
		nodes.GET("", nr.nodeHandler.List)
		nodes.POST("", nr.nodeHandler.Create)
		nodes.GET("/:nodeID", nr.nodeHandler.Get)
		nodes.PUT("/:nodeID", nr.nodeHandler.Update)
		nodes.DELETE("/:nodeID", nr.nodeHandler.Delete)
		nodes.GET("/:nodeID/ancestors", nr.nodeHandler.Ancestors)
		nodes.GET("/:nodeID/descendants", nr.nodeHandler.Descendants)
		nodes.GET("/:nodeID/breadcrumbs", nr.nodeHandler.Breadcrumbs)
	}
}
