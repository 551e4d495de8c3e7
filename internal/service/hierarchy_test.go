package service

import (
	"context"
	"sort"
	"testing"

	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	cErr "atlas/internal/pkg/error"
	"atlas/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memoryNodeRepository 測試用的 in-memory NodeRepository
type memoryNodeRepository struct {
	nodes map[primitive.ObjectID]*model.GeoNode
}

func newMemoryNodeRepository() *memoryNodeRepository {
	return &memoryNodeRepository{nodes: map[primitive.ObjectID]*model.GeoNode{}}
}

func (r *memoryNodeRepository) Create(_ context.Context, node *model.GeoNode) (*model.GeoNode, error) {
	if node.ID.IsZero() {
		node.ID = primitive.NewObjectID()
	}
	copied := *node
	r.nodes[node.ID] = &copied
	return node, nil
}

func (r *memoryNodeRepository) GetByID(_ context.Context, id primitive.ObjectID) (*model.GeoNode, error) {
	node, ok := r.nodes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *node
	return &copied, nil
}

func (r *memoryNodeRepository) ListByTenant(_ context.Context, tenantID primitive.ObjectID) ([]*model.GeoNode, error) {
	var out []*model.GeoNode
	for _, node := range r.nodes {
		if node.TenantID == tenantID {
			copied := *node
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out, nil
}

func (r *memoryNodeRepository) ListByParent(_ context.Context, tenantID, parentID primitive.ObjectID) ([]*model.GeoNode, error) {
	var out []*model.GeoNode
	for _, node := range r.nodes {
		if node.TenantID == tenantID && node.ParentID != nil && *node.ParentID == parentID {
			copied := *node
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryNodeRepository) List(_ context.Context, filter bson.M) ([]*model.GeoNode, error) {
	var out []*model.GeoNode
	for _, node := range r.nodes {
		if tenantID, ok := filter["tenantId"].(primitive.ObjectID); ok && node.TenantID != tenantID {
			continue
		}
		if nodeType, ok := filter["type"].(core.NodeType); ok && node.Type != nodeType {
			continue
		}
		copied := *node
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memoryNodeRepository) UpdateByID(_ context.Context, id primitive.ObjectID, update bson.M) (int64, error) {
	node, ok := r.nodes[id]
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	if set, ok := update["$set"].(bson.M); ok {
		if v, ok := set["name"].(string); ok {
			node.Name = v
		}
		if v, ok := set["slug"].(string); ok {
			node.Slug = v
		}
		if v, ok := set["code"].(string); ok {
			node.Code = v
		}
		if v, ok := set["status"].(core.NodeStatus); ok {
			node.Status = v
		}
		if v, ok := set["location"].(*model.GeoLocation); ok {
			node.Location = v
		}
		if v, ok := set["metadata"].(map[string]any); ok {
			node.Metadata = v
		}
	}
	return 1, nil
}

func (r *memoryNodeRepository) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	delete(r.nodes, id)
	return nil
}

func newTestHierarchyService() (*HierarchyService, *memoryNodeRepository) {
	repo := newMemoryNodeRepository()
	return NewHierarchyService(&telemetry.Trace{}, repo), repo
}

// 建立 CITY → DISTRICT → ZONE → FACILITY → ASSET 五層測試資料
func buildChain(t *testing.T, s *HierarchyService, tenantID primitive.ObjectID) []*model.GeoNode {
	t.Helper()
	ctx := context.Background()

	city, err := s.CreateNode(ctx, CreateNodeInput{
		TenantID: tenantID, Name: "Riyadh", Slug: "riyadh", Type: core.NodeTypeCity,
	})
	require.NoError(t, err)

	chain := []*model.GeoNode{city}
	levels := []struct {
		nodeType core.NodeType
		name     string
		slug     string
	}{
		{core.NodeTypeDistrict, "Olaya", "olaya"},
		{core.NodeTypeZone, "Olaya North", "olaya-north"},
		{core.NodeTypeFacility, "Warehouse 7", "warehouse-7"},
		{core.NodeTypeAsset, "Forklift 3", "forklift-3"},
	}
	for _, level := range levels {
		parent := chain[len(chain)-1]
		node, err := s.CreateNode(ctx, CreateNodeInput{
			TenantID: tenantID, Name: level.name, Slug: level.slug,
			Type: level.nodeType, ParentID: &parent.ID,
		})
		require.NoError(t, err)
		chain = append(chain, node)
	}
	return chain
}

func TestValidateParentChild(t *testing.T) {
	cases := []struct {
		parent  core.NodeType
		child   core.NodeType
		allowed bool
	}{
		{core.NodeTypeCity, core.NodeTypeDistrict, true},
		{core.NodeTypeDistrict, core.NodeTypeZone, true},
		{core.NodeTypeZone, core.NodeTypeFacility, true},
		{core.NodeTypeFacility, core.NodeTypeAsset, true},
		{core.NodeTypeCity, core.NodeTypeZone, false},
		{core.NodeTypeDistrict, core.NodeTypeCity, false},
		{core.NodeTypeAsset, core.NodeTypeAsset, false},
		{core.NodeType("PLANET"), core.NodeTypeCity, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, ValidateParentChild(tc.parent, tc.child),
			"%s -> %s", tc.parent, tc.child)
	}
}

func TestCreateNode_DepthFollowsType(t *testing.T) {
	s, _ := newTestHierarchyService()
	chain := buildChain(t, s, primitive.NewObjectID())

	for i, node := range chain {
		assert.Equal(t, i, node.Depth)
	}
}

func TestCreateNode_UnknownType(t *testing.T) {
	s, _ := newTestHierarchyService()

	_, err := s.CreateNode(context.Background(), CreateNodeInput{
		TenantID: primitive.NewObjectID(), Name: "x", Slug: "x", Type: core.NodeType("COUNTRY"),
	})
	require.Error(t, err)
	appErr, ok := err.(*cErr.Error)
	require.True(t, ok)
	assert.Equal(t, cErr.UNKNOWN_NODE_TYPE, appErr.ErrorCode())
}

func TestCreateNode_RootWithParent(t *testing.T) {
	s, _ := newTestHierarchyService()
	parentID := primitive.NewObjectID()

	_, err := s.CreateNode(context.Background(), CreateNodeInput{
		TenantID: primitive.NewObjectID(), Name: "x", Slug: "x",
		Type: core.NodeTypeCity, ParentID: &parentID,
	})
	require.Error(t, err)
	assert.Equal(t, cErr.UNEXPECTED_PARENT, err.(*cErr.Error).ErrorCode())
}

func TestCreateNode_NonRootWithoutParent(t *testing.T) {
	s, _ := newTestHierarchyService()

	_, err := s.CreateNode(context.Background(), CreateNodeInput{
		TenantID: primitive.NewObjectID(), Name: "x", Slug: "x", Type: core.NodeTypeDistrict,
	})
	require.Error(t, err)
	assert.Equal(t, cErr.MISSING_PARENT, err.(*cErr.Error).ErrorCode())
}

func TestCreateNode_ParentNotFound(t *testing.T) {
	s, _ := newTestHierarchyService()
	ghost := primitive.NewObjectID()

	_, err := s.CreateNode(context.Background(), CreateNodeInput{
		TenantID: primitive.NewObjectID(), Name: "x", Slug: "x",
		Type: core.NodeTypeDistrict, ParentID: &ghost,
	})
	require.Error(t, err)
	assert.Equal(t, cErr.PARENT_NOT_FOUND, err.(*cErr.Error).ErrorCode())
}

func TestCreateNode_WrongParentType(t *testing.T) {
	s, _ := newTestHierarchyService()
	tenantID := primitive.NewObjectID()
	chain := buildChain(t, s, tenantID)
	city := chain[0]

	// ZONE 直接掛在 CITY 下
	_, err := s.CreateNode(context.Background(), CreateNodeInput{
		TenantID: tenantID, Name: "x", Slug: "x",
		Type: core.NodeTypeZone, ParentID: &city.ID,
	})
	require.Error(t, err)
	appErr := err.(*cErr.Error)
	assert.Equal(t, cErr.INVALID_HIERARCHY, appErr.ErrorCode())
	assert.Contains(t, appErr.ErrorDesc(), string(core.NodeTypeDistrict))
}

func TestCreateNode_CrossTenantParent(t *testing.T) {
	s, _ := newTestHierarchyService()
	chain := buildChain(t, s, primitive.NewObjectID())
	city := chain[0]

	_, err := s.CreateNode(context.Background(), CreateNodeInput{
		TenantID: primitive.NewObjectID(), Name: "x", Slug: "x",
		Type: core.NodeTypeDistrict, ParentID: &city.ID,
	})
	require.Error(t, err)
	assert.Equal(t, cErr.CROSS_TENANT_PARENT, err.(*cErr.Error).ErrorCode())
}

func TestCreateNode_BreadcrumbsMaterialized(t *testing.T) {
	s, _ := newTestHierarchyService()
	chain := buildChain(t, s, primitive.NewObjectID())
	asset := chain[len(chain)-1]

	require.Len(t, asset.Breadcrumbs, 5)
	for i, crumb := range asset.Breadcrumbs {
		assert.Equal(t, i, crumb.Depth)
		assert.Equal(t, chain[i].ID, crumb.ID)
		assert.Equal(t, chain[i].Name, crumb.Name)
	}
}

func TestGetAncestors(t *testing.T) {
	s, _ := newTestHierarchyService()
	chain := buildChain(t, s, primitive.NewObjectID())
	ctx := context.Background()

	ancestors, err := s.GetAncestors(ctx, chain[4].ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 4)
	for i, ancestor := range ancestors {
		assert.Equal(t, chain[i].ID, ancestor.ID)
	}

	// 根節點沒有祖先
	ancestors, err = s.GetAncestors(ctx, chain[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ancestors)

	// 不存在的節點回空集合而非錯誤
	ancestors, err = s.GetAncestors(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestGetDescendants(t *testing.T) {
	s, _ := newTestHierarchyService()
	tenantID := primitive.NewObjectID()
	chain := buildChain(t, s, tenantID)
	ctx := context.Background()

	// city 下再掛一個 district，確認 BFS 不只走單鏈
	_, err := s.CreateNode(ctx, CreateNodeInput{
		TenantID: tenantID, Name: "Malaz", Slug: "malaz",
		Type: core.NodeTypeDistrict, ParentID: &chain[0].ID,
	})
	require.NoError(t, err)

	descendants, err := s.GetDescendants(ctx, chain[0].ID)
	require.NoError(t, err)
	assert.Len(t, descendants, 5)

	// 葉節點沒有子孫；不存在的節點回空集合
	descendants, err = s.GetDescendants(ctx, chain[4].ID)
	require.NoError(t, err)
	assert.Empty(t, descendants)

	descendants, err = s.GetDescendants(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, descendants)
}

func TestGetBreadcrumbs(t *testing.T) {
	s, _ := newTestHierarchyService()
	chain := buildChain(t, s, primitive.NewObjectID())
	ctx := context.Background()

	crumbs, err := s.GetBreadcrumbs(ctx, chain[2].ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 3)
	for i := 1; i < len(crumbs); i++ {
		assert.Greater(t, crumbs[i].Depth, crumbs[i-1].Depth)
	}
	assert.Equal(t, chain[2].ID, crumbs[len(crumbs)-1].ID)

	crumbs, err = s.GetBreadcrumbs(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, crumbs)
}

func TestUpdateNode_DoesNotTouchChildBreadcrumbs(t *testing.T) {
	s, _ := newTestHierarchyService()
	chain := buildChain(t, s, primitive.NewObjectID())
	ctx := context.Background()

	newName := "Riyadh Metro Area"
	_, err := s.UpdateNode(ctx, chain[0].ID, UpdateNodeInput{Name: &newName})
	require.NoError(t, err)

	// 子孫的 breadcrumbs 是建立時的快照，改名不回填
	child, err := s.GetNodeByID(ctx, chain[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Riyadh", child.Breadcrumbs[0].Name)
}

func TestUpdateNode_NoFields(t *testing.T) {
	s, _ := newTestHierarchyService()
	chain := buildChain(t, s, primitive.NewObjectID())

	_, err := s.UpdateNode(context.Background(), chain[0].ID, UpdateNodeInput{})
	require.Error(t, err)
	assert.Equal(t, cErr.BAD_REQUEST_BODY, err.(*cErr.Error).ErrorCode())
}

func TestDeleteNodeCascade(t *testing.T) {
	s, repo := newTestHierarchyService()
	tenantID := primitive.NewObjectID()
	chain := buildChain(t, s, tenantID)
	ctx := context.Background()

	deleted, err := s.DeleteNodeCascade(ctx, chain[1].ID)
	require.NoError(t, err)
	assert.Len(t, deleted, 4) // district + zone + facility + asset

	// city 留著，其餘清空
	assert.Len(t, repo.nodes, 1)
	_, ok := repo.nodes[chain[0].ID]
	assert.True(t, ok)

	// 不存在的節點報 NOT_FOUND
	_, err = s.DeleteNodeCascade(ctx, primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, cErr.NOT_FOUND, err.(*cErr.Error).ErrorCode())
}

func TestGetNodeByID_Missing(t *testing.T) {
	s, _ := newTestHierarchyService()

	node, err := s.GetNodeByID(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, node)
}
