package service

import (
	"context"
	"errors"
	"fmt"

	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	cErr "atlas/internal/pkg/error"
	"atlas/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NodeRepository 節點持久層的最小介面（測試以 in-memory 實作替換）
type NodeRepository interface {
	Create(contextValue context.Context, node *model.GeoNode) (*model.GeoNode, error)
	GetByID(contextValue context.Context, nodeIdentifier primitive.ObjectID) (*model.GeoNode, error)
	ListByTenant(contextValue context.Context, tenantIdentifier primitive.ObjectID) ([]*model.GeoNode, error)
	ListByParent(contextValue context.Context, tenantIdentifier, parentIdentifier primitive.ObjectID) ([]*model.GeoNode, error)
	List(contextValue context.Context, filter bson.M) ([]*model.GeoNode, error)
	UpdateByID(contextValue context.Context, nodeIdentifier primitive.ObjectID, update bson.M) (int64, error)
	DeleteByID(contextValue context.Context, nodeIdentifier primitive.ObjectID) error
}

// CreateNodeInput 建立節點的輸入。Depth 一律由規則表推導，不接受外部指定。
type CreateNodeInput struct {
	TenantID primitive.ObjectID
	Name     string
	Slug     string
	Code     string
	Type     core.NodeType
	ParentID *primitive.ObjectID
	Location *model.GeoLocation
	Status   core.NodeStatus
	Metadata map[string]any
}

// UpdateNodeInput 可更新的節點欄位（nil 表示不動）
type UpdateNodeInput struct {
	Name     *string
	Slug     *string
	Code     *string
	Status   *core.NodeStatus
	Location *model.GeoLocation
	Metadata map[string]any
}

// HierarchyService 維護五層地理樹的不變量：
// 父子型別規則、depth 推導、breadcrumbs 物化、祖先/子孫走訪。
type HierarchyService struct {
	trace    *telemetry.Trace
	nodeRepo NodeRepository
}

func NewHierarchyService(trace *telemetry.Trace, nodeRepo NodeRepository) *HierarchyService {
	return &HierarchyService{trace: trace, nodeRepo: nodeRepo}
}

// ValidateParentChild 回傳 parentType 底下是否允許掛 childType。
// 未知的 parentType 一律 false（fail closed）。
func ValidateParentChild(parentType, childType core.NodeType) bool {
	rule, ok := core.RuleFor(parentType)
	if !ok || rule.AllowedChildType == nil {
		return false
	}
	return *rule.AllowedChildType == childType
}

// CreateNode 依序驗證後建立節點。每個檢查對應一個獨立的錯誤條件：
// 未知型別 → 缺父 → 多餘的父 → 父不存在 → 型別不符 → 跨租戶。
func (s *HierarchyService) CreateNode(ctx context.Context, input CreateNodeInput) (*model.GeoNode, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	rule, ok := core.RuleFor(input.Type)
	if !ok {
		return nil, cErr.UnknownNodeType(fmt.Sprintf("unknown node type %q", input.Type))
	}
	if rule.AllowedParentType != nil && input.ParentID == nil {
		return nil, cErr.MissingParent(fmt.Sprintf("node type %s requires a parent of type %s", input.Type, *rule.AllowedParentType))
	}
	if rule.AllowedParentType == nil && input.ParentID != nil {
		return nil, cErr.UnexpectedParent(fmt.Sprintf("node type %s is a root type and cannot have a parent", input.Type))
	}

	var breadcrumbs []model.Breadcrumb
	if input.ParentID != nil {
		parent, err := s.nodeRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, cErr.ParentNotFound(fmt.Sprintf("parent node %s not found", input.ParentID.Hex()))
			}
			return nil, cErr.DatabaseError("database GetByID error")
		}
		if !ValidateParentChild(parent.Type, input.Type) {
			expected := "none"
			if rule.AllowedParentType != nil {
				expected = string(*rule.AllowedParentType)
			}
			return nil, cErr.InvalidHierarchy(fmt.Sprintf("node type %s cannot be a child of %s (expected parent type %s)", input.Type, parent.Type, expected))
		}
		if parent.TenantID != input.TenantID {
			return nil, cErr.CrossTenantParent(fmt.Sprintf("parent node %s belongs to another tenant", parent.ID.Hex()))
		}

		parentBreadcrumbs, err := s.GetBreadcrumbs(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		breadcrumbs = parentBreadcrumbs
	}

	status := input.Status
	if status == "" {
		status = core.NodeStatusActive
	}

	node := &model.GeoNode{
		ID:       primitive.NewObjectID(),
		TenantID: input.TenantID,
		Name:     input.Name,
		Slug:     input.Slug,
		Code:     input.Code,
		Type:     input.Type,
		Depth:    rule.Depth, // 由規則表決定，絕不信任輸入
		ParentID: input.ParentID,
		Location: input.Location,
		Status:   status,
		Metadata: input.Metadata,
	}
	node.Breadcrumbs = append(breadcrumbs, node.Summary())

	created, err := s.nodeRepo.Create(ctx, node)
	if err != nil {
		end(err)
		return nil, cErr.DatabaseError("database CreateNode error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceNodeMeta{
		NodeID:   created.ID.Hex(),
		TenantID: created.TenantID.Hex(),
		NodeType: string(created.Type),
		Depth:    created.Depth,
	})
	return created, nil
}

// GetNodeByID 讀取單一節點；找不到回傳 nil, nil（讀取操作不擲錯）
func (s *HierarchyService) GetNodeByID(ctx context.Context, nodeID primitive.ObjectID) (*model.GeoNode, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	node, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, cErr.DatabaseError("database GetNodeByID error")
	}
	return node, nil
}

// GetAncestors 回傳 root → 直接父節點的有序祖先鏈，不含自身。
// 根節點或不存在的節點都回空集合。
func (s *HierarchyService) GetAncestors(ctx context.Context, nodeID primitive.ObjectID) ([]*model.GeoNode, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	ancestors := []*model.GeoNode{}
	currentID := nodeID
	for {
		current, err := s.nodeRepo.GetByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				break
			}
			return nil, cErr.DatabaseError("database GetAncestors error")
		}
		// 往前插入，維持 root → self 排列
		ancestors = append([]*model.GeoNode{current}, ancestors...)
		if current.ParentID == nil {
			break
		}
		currentID = *current.ParentID
	}
	// 走訪包含自身，最後丟棄（GetAncestors 不含參數節點本身）
	if len(ancestors) > 0 {
		ancestors = ancestors[:len(ancestors)-1]
	}

	s.trace.ApplyTraceAttributes(span, core.TraceNodeMeta{NodeID: nodeID.Hex(), ResultCount: len(ancestors)})
	return ancestors, nil
}

// GetDescendants 以 BFS 回傳全部傳遞子孫（不保證順序）。
// 樹的不變量（單一父、depth 嚴格遞增）保證不會有環，毋需防護。
func (s *HierarchyService) GetDescendants(ctx context.Context, nodeID primitive.ObjectID) ([]*model.GeoNode, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	root, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []*model.GeoNode{}, nil
		}
		return nil, cErr.DatabaseError("database GetDescendants error")
	}

	descendants := []*model.GeoNode{}
	queue := []primitive.ObjectID{root.ID}
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		children, listError := s.nodeRepo.ListByParent(ctx, root.TenantID, head)
		if listError != nil {
			return nil, cErr.DatabaseError("database ListByParent error")
		}
		for _, child := range children {
			descendants = append(descendants, child)
			queue = append(queue, child.ID)
		}
	}

	s.trace.ApplyTraceAttributes(span, core.TraceNodeMeta{NodeID: nodeID.Hex(), ResultCount: len(descendants)})
	return descendants, nil
}

// GetBreadcrumbs 回傳 root → self 的摘要鏈（= GetAncestors + 自身）。
// 不存在的節點回空集合。
func (s *HierarchyService) GetBreadcrumbs(ctx context.Context, nodeID primitive.ObjectID) ([]model.Breadcrumb, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	node, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []model.Breadcrumb{}, nil
		}
		return nil, cErr.DatabaseError("database GetBreadcrumbs error")
	}

	ancestors, err := s.GetAncestors(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	breadcrumbs := make([]model.Breadcrumb, 0, len(ancestors)+1)
	for _, ancestor := range ancestors {
		breadcrumbs = append(breadcrumbs, ancestor.Summary())
	}
	breadcrumbs = append(breadcrumbs, node.Summary())
	return breadcrumbs, nil
}

// ListNodesByTenant 列出租戶全部節點，depth 升冪（orchestrator 依賴父先於子）
func (s *HierarchyService) ListNodesByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*model.GeoNode, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	nodes, err := s.nodeRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, cErr.DatabaseError("database ListNodesByTenant error")
	}
	return nodes, nil
}

// ListNodes admin 列表查詢
func (s *HierarchyService) ListNodes(ctx context.Context, tenantID primitive.ObjectID, nodeType core.NodeType) ([]*model.GeoNode, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	filter := bson.M{"tenantId": tenantID}
	if nodeType != "" {
		filter["type"] = nodeType
	}
	nodes, err := s.nodeRepo.List(ctx, filter)
	if err != nil {
		return nil, cErr.DatabaseError("database ListNodes error")
	}
	return nodes, nil
}

// UpdateNode 更新節點自身欄位。改名不回填子孫的 breadcrumbs（建立時快照）。
func (s *HierarchyService) UpdateNode(ctx context.Context, nodeID primitive.ObjectID, input UpdateNodeInput) (*model.GeoNode, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	set := bson.M{}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Slug != nil {
		set["slug"] = *input.Slug
	}
	if input.Code != nil {
		set["code"] = *input.Code
	}
	if input.Status != nil {
		set["status"] = *input.Status
	}
	if input.Location != nil {
		set["location"] = input.Location
	}
	if input.Metadata != nil {
		set["metadata"] = input.Metadata
	}
	if len(set) == 0 {
		return nil, cErr.BadRequestBody("no updatable fields provided")
	}

	if _, err := s.nodeRepo.UpdateByID(ctx, nodeID, bson.M{"$set": set}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("node not found")
		}
		return nil, cErr.DatabaseError("database UpdateNode error")
	}

	updated, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, cErr.DatabaseError("database GetByID error")
	}
	return updated, nil
}

// DeleteNodeCascade 刪除節點與其全部子孫（子孫先刪），回傳被刪除的節點集合，
// 供呼叫端對每個節點發動外部系統的 best-effort 移除。目錄刪除成功與否
// 不取決於外部系統的刪除結果。
func (s *HierarchyService) DeleteNodeCascade(ctx context.Context, nodeID primitive.ObjectID) ([]*model.GeoNode, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	node, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("node not found")
		}
		return nil, cErr.DatabaseError("database GetByID error")
	}

	descendants, err := s.GetDescendants(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	// 深的先刪，避免中途失敗留下斷鏈的中間層
	for i := len(descendants) - 1; i >= 0; i-- {
		if deleteError := s.nodeRepo.DeleteByID(ctx, descendants[i].ID); deleteError != nil {
			return nil, cErr.DatabaseError("database DeleteByID error")
		}
	}
	if deleteError := s.nodeRepo.DeleteByID(ctx, node.ID); deleteError != nil {
		return nil, cErr.DatabaseError("database DeleteByID error")
	}

	deleted := append(descendants, node)
	s.trace.ApplyTraceAttributes(span, core.TraceNodeMeta{NodeID: nodeID.Hex(), ResultCount: len(deleted)})
	return deleted, nil
}
