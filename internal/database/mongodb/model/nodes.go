package model

import (
	"time"

	"atlas/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Breadcrumb 建立節點時就物化的祖先摘要（root → self），之後不隨改名重算
type Breadcrumb struct {
	ID    primitive.ObjectID `json:"id" bson:"id"`
	Name  string             `json:"name" bson:"name"`
	Slug  string             `json:"slug" bson:"slug"`
	Type  core.NodeType      `json:"type" bson:"type"`
	Depth int                `json:"depth" bson:"depth"`
}

// GeoLocation 節點座標/地址，core 不解譯內容
type GeoLocation struct {
	Lat     float64 `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty" bson:"lng,omitempty"`
	Address string  `json:"address,omitempty" bson:"address,omitempty"`
}

type GeoNode struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id"`
	TenantID    primitive.ObjectID  `json:"tenantId" bson:"tenantId"`
	Name        string              `json:"name" bson:"name"`
	Slug        string              `json:"slug" bson:"slug"`
	Code        string              `json:"code,omitempty" bson:"code,omitempty"`
	Type        core.NodeType       `json:"type" bson:"type"`
	Depth       int                 `json:"depth" bson:"depth"`
	ParentID    *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Breadcrumbs []Breadcrumb        `json:"breadcrumbs" bson:"breadcrumbs"`
	Location    *GeoLocation        `json:"location,omitempty" bson:"location,omitempty"`
	Status      core.NodeStatus     `json:"status" bson:"status"`
	Metadata    map[string]any      `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Summary 回傳此節點自身的 breadcrumb 摘要
func (node *GeoNode) Summary() Breadcrumb {
	return Breadcrumb{
		ID:    node.ID,
		Name:  node.Name,
		Slug:  node.Slug,
		Type:  node.Type,
		Depth: node.Depth,
	}
}

var GeoNodeIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "parentId", Value: 1}},
		Options: options.Index().SetName("idx_tenantId_parentId"),
	},
	{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().SetName("idx_tenantId_type"),
	},
	{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "depth", Value: 1}},
		Options: options.Index().SetName("idx_tenantId_depth"),
	},
	{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "slug", Value: 1}},
		Options: options.Index().SetName("idx_tenantId_slug"),
	},
	{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("idx_tenantId_status"),
	},
}
