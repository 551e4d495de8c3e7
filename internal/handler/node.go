package handler

import (
	"context"

	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	"atlas/internal/dto"
	cErr "atlas/internal/pkg/error"
	"atlas/internal/pkg/response"
	"atlas/internal/service"
	"atlas/internal/service/sync"
	"atlas/internal/telemetry"
	"atlas/utils/validate"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NodeHandler struct {
	trace            *telemetry.Trace
	hierarchyService *service.HierarchyService
	orchestrator     *sync.Orchestrator
}

func NewNodeHandler(
	trace *telemetry.Trace,
	hierarchyService *service.HierarchyService,
	orchestrator *sync.Orchestrator,
) *NodeHandler {
	return &NodeHandler{
		trace:            trace,
		hierarchyService: hierarchyService,
		orchestrator:     orchestrator,
	}
}

// Create 建立地理節點
// @Summary 建立地理節點（型別/父子規則/租戶檢查後寫入）
// @Tags Admin-Node
// @Accept json
// @Produce json
// @Param body body dto.CreateNodeDto true "節點資訊"
// @Success 201 {object} dto.NodeResponseDto
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/nodes [post]
func (h *NodeHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.CreateNodeDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	tenantID, err := primitive.ObjectIDFromHex(req.TenantID)
	if err != nil {
		end(err)
		response.AbortWithError(c, cErr.BadRequestParams("tenantID is not a valid ObjectID"))
		return
	}

	input := service.CreateNodeInput{
		TenantID: tenantID,
		Name:     req.Name,
		Slug:     req.Slug,
		Code:     req.Code,
		Type:     req.Type,
		Status:   core.NodeStatus(req.Status),
		Metadata: req.Metadata,
	}
	if req.ParentID != "" {
		parentID, parseErr := primitive.ObjectIDFromHex(req.ParentID)
		if parseErr != nil {
			end(parseErr)
			response.AbortWithError(c, cErr.BadRequestParams("parentID is not a valid ObjectID"))
			return
		}
		input.ParentID = &parentID
	}
	if req.Location != nil {
		input.Location = &model.GeoLocation{
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
			Address: req.Location.Address,
		}
	}

	node, err := h.hierarchyService.CreateNode(ctx, input)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, toNodeResponse(node))
}

// List 租戶節點列表
// @Summary 取得租戶下的節點（depth 升冪；可依型別過濾）
// @Tags Admin-Node
// @Produce json
// @Param tenantID query string true "Tenant ID"
// @Param type query string false "節點型別"
// @Success 200 {array} dto.NodeResponseDto
// @Failure 400 {object} map[string]string
// @Router /admin/nodes [get]
func (h *NodeHandler) List(c *gin.Context) {
	ctx, span, end := h.trace.WithSpan(c)
	defer end(nil)

	tenantID, err := primitive.ObjectIDFromHex(c.Query("tenantID"))
	if err != nil {
		end(err)
		response.AbortWithError(c, cErr.BadRequestParams("tenantID is not a valid ObjectID"))
		return
	}
	nodeType := core.NodeType(c.Query("type"))

	var nodes []*model.GeoNode
	if nodeType != "" {
		nodes, err = h.hierarchyService.ListNodes(ctx, tenantID, nodeType)
	} else {
		nodes, err = h.hierarchyService.ListNodesByTenant(ctx, tenantID)
	}
	h.trace.ApplyTraceAttributes(span, core.TraceNodeMeta{
		TenantID: tenantID.Hex(),
		NodeType: string(nodeType),
	})
	if err != nil {
		end(err)
		response.AbortWithError(c, cErr.InternalServer(err.Error()))
		return
	}
	response.Success(c, toNodeResponseList(nodes))
}

// Get 取得節點
// @Summary 取得單一節點
// @Tags Admin-Node
// @Produce json
// @Param nodeID path string true "Node ID"
// @Success 200 {object} dto.NodeResponseDto
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/nodes/{nodeID} [get]
func (h *NodeHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "nodeID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	node, err := h.hierarchyService.GetNodeByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, cErr.InternalServer(err.Error()))
		return
	}
	if node == nil {
		response.AbortWithError(c, cErr.NotFound("node not found"))
		return
	}
	response.Success(c, toNodeResponse(node))
}

// Update 更新節點
// @Summary 更新節點欄位並重新同步外部系統
// @Tags Admin-Node
// @Accept json
// @Produce json
// @Param nodeID path string true "Node ID"
// @Param body body dto.UpdateNodeDto true "節點更新資訊"
// @Success 200 {object} dto.NodeResponseDto
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/nodes/{nodeID} [put]
func (h *NodeHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "nodeID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	var req dto.UpdateNodeDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	input := service.UpdateNodeInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Code:     req.Code,
		Metadata: req.Metadata,
	}
	if req.Status != nil {
		status := core.NodeStatus(*req.Status)
		input.Status = &status
	}
	if req.Location != nil {
		input.Location = &model.GeoLocation{
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
			Address: req.Location.Address,
		}
	}

	node, err := h.hierarchyService.UpdateNode(ctx, id, input)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	// 欄位變更後把該節點重推到外部系統
	h.orchestrator.SyncSingleNode(ctx, id)

	response.Success(c, toNodeResponse(node))
}

// Delete 刪除節點
// @Summary 刪除節點（連同子孫），並清理外部系統
// @Tags Admin-Node
// @Produce json
// @Param nodeID path string true "Node ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/nodes/{nodeID} [delete]
func (h *NodeHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "nodeID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	deleted, err := h.hierarchyService.DeleteNodeCascade(ctx, id)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	// 本地刪除成功後逐一清理外部系統；外部失敗不回滾本地
	for _, node := range deleted {
		h.orchestrator.DeleteNodeFromSystems(ctx, node.ID, node.TenantID)
	}

	response.Success(c, gin.H{"deleted": len(deleted)})
}

// Ancestors 祖先鏈
// @Summary 取得節點祖先（root 起、不含自身；節點不存在回空陣列）
// @Tags Admin-Node
// @Produce json
// @Param nodeID path string true "Node ID"
// @Success 200 {array} dto.NodeResponseDto
// @Failure 400 {object} map[string]string
// @Router /admin/nodes/{nodeID}/ancestors [get]
func (h *NodeHandler) Ancestors(c *gin.Context) {
	h.listRelated(c, h.hierarchyService.GetAncestors)
}

// Descendants 子孫
// @Summary 取得節點全部子孫（BFS、不含自身）
// @Tags Admin-Node
// @Produce json
// @Param nodeID path string true "Node ID"
// @Success 200 {array} dto.NodeResponseDto
// @Failure 400 {object} map[string]string
// @Router /admin/nodes/{nodeID}/descendants [get]
func (h *NodeHandler) Descendants(c *gin.Context) {
	h.listRelated(c, h.hierarchyService.GetDescendants)
}

// Breadcrumbs 麵包屑
// @Summary 取得節點麵包屑（root → 自身）
// @Tags Admin-Node
// @Produce json
// @Param nodeID path string true "Node ID"
// @Success 200 {array} dto.BreadcrumbDto
// @Failure 400 {object} map[string]string
// @Router /admin/nodes/{nodeID}/breadcrumbs [get]
func (h *NodeHandler) Breadcrumbs(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "nodeID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	crumbs, err := h.hierarchyService.GetBreadcrumbs(ctx, id)
	if err != nil {
		response.AbortWithError(c, cErr.InternalServer(err.Error()))
		return
	}
	out := make([]dto.BreadcrumbDto, 0, len(crumbs))
	for _, crumb := range crumbs {
		out = append(out, toBreadcrumbDto(crumb))
	}
	response.Success(c, out)
}

func (h *NodeHandler) listRelated(
	c *gin.Context,
	listFn func(ctx context.Context, nodeID primitive.ObjectID) ([]*model.GeoNode, error),
) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	id, cause, respErr := validate.ParseObjectID(c, "nodeID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	nodes, err := listFn(ctx, id)
	if err != nil {
		response.AbortWithError(c, cErr.InternalServer(err.Error()))
		return
	}
	response.Success(c, toNodeResponseList(nodes))
}

func toBreadcrumbDto(crumb model.Breadcrumb) dto.BreadcrumbDto {
	return dto.BreadcrumbDto{
		ID:    crumb.ID.Hex(),
		Name:  crumb.Name,
		Slug:  crumb.Slug,
		Type:  crumb.Type,
		Depth: crumb.Depth,
	}
}

func toNodeResponse(node *model.GeoNode) dto.NodeResponseDto {
	res := dto.NodeResponseDto{
		ID:        node.ID.Hex(),
		TenantID:  node.TenantID.Hex(),
		Name:      node.Name,
		Slug:      node.Slug,
		Code:      node.Code,
		Type:      node.Type,
		Depth:     node.Depth,
		Status:    string(node.Status),
		Metadata:  node.Metadata,
		CreatedAt: node.CreatedAt,
		UpdatedAt: node.UpdatedAt,
	}
	if node.ParentID != nil {
		res.ParentID = node.ParentID.Hex()
	}
	res.Breadcrumbs = make([]dto.BreadcrumbDto, 0, len(node.Breadcrumbs))
	for _, crumb := range node.Breadcrumbs {
		res.Breadcrumbs = append(res.Breadcrumbs, toBreadcrumbDto(crumb))
	}
	if node.Location != nil {
		res.Location = &dto.LocationDto{
			Lat:     node.Location.Lat,
			Lng:     node.Location.Lng,
			Address: node.Location.Address,
		}
	}
	return res
}

func toNodeResponseList(nodes []*model.GeoNode) []dto.NodeResponseDto {
	out := make([]dto.NodeResponseDto, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, toNodeResponse(node))
	}
	return out
}
