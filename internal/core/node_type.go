package core

// ─── Geo Hierarchy Types ───────────────────────────────────────────────────────

// NodeType 地理層級節點型別，固定五層
type NodeType string

const (
	NodeTypeCity     NodeType = "CITY"
	NodeTypeDistrict NodeType = "DISTRICT"
	NodeTypeZone     NodeType = "ZONE"
	NodeTypeFacility NodeType = "FACILITY"
	NodeTypeAsset    NodeType = "ASSET"
)

// NodeTypes 依 depth 排序的所有節點型別
var NodeTypes = []NodeType{
	NodeTypeCity,
	NodeTypeDistrict,
	NodeTypeZone,
	NodeTypeFacility,
	NodeTypeAsset,
}

// HierarchyRule 單一型別的層級規則：深度、允許的父型別、允許的子型別
type HierarchyRule struct {
	Depth             int
	AllowedParentType *NodeType
	AllowedChildType  *NodeType
}

// HierarchyRules 靜態規則表。五層是一條鏈，不是 DAG：
// 每層恰好一個允許的父型別與一個允許的子型別。
var HierarchyRules = map[NodeType]HierarchyRule{
	NodeTypeCity:     {Depth: 0, AllowedParentType: nil, AllowedChildType: nodeTypePtr(NodeTypeDistrict)},
	NodeTypeDistrict: {Depth: 1, AllowedParentType: nodeTypePtr(NodeTypeCity), AllowedChildType: nodeTypePtr(NodeTypeZone)},
	NodeTypeZone:     {Depth: 2, AllowedParentType: nodeTypePtr(NodeTypeDistrict), AllowedChildType: nodeTypePtr(NodeTypeFacility)},
	NodeTypeFacility: {Depth: 3, AllowedParentType: nodeTypePtr(NodeTypeZone), AllowedChildType: nodeTypePtr(NodeTypeAsset)},
	NodeTypeAsset:    {Depth: 4, AllowedParentType: nodeTypePtr(NodeTypeFacility), AllowedChildType: nil},
}

func nodeTypePtr(t NodeType) *NodeType {
	return &t
}

// RuleFor 查詢型別規則；未知型別回傳 ok=false（fail closed）
func RuleFor(nodeType NodeType) (HierarchyRule, bool) {
	rule, ok := HierarchyRules[nodeType]
	return rule, ok
}

// NodeStatus 節點狀態
type NodeStatus string

const (
	NodeStatusActive   NodeStatus = "active"
	NodeStatusInactive NodeStatus = "inactive"
)
