package dto

import (
	"time"

	"atlas/internal/core"
)

// 建立地理節點
type CreateNodeDto struct {
	TenantID string         `json:"tenantID" binding:"required"`          // 租戶 ID（hex）
	Name     string         `json:"name" binding:"required"`              // 顯示名稱
	Slug     string         `json:"slug" binding:"required"`              // URL slug
	Code     string         `json:"code,omitempty"`                       // 內部編號
	Type     core.NodeType  `json:"type" binding:"required"`              // CITY/DISTRICT/ZONE/FACILITY/ASSET
	ParentID string         `json:"parentID,omitempty"`                   // 父節點 ID（CITY 不可帶）
	Location *LocationDto   `json:"location,omitempty"`                   // 地理座標
	Status   string         `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// 更新地理節點（nil 欄位不動）
type UpdateNodeDto struct {
	Name     *string        `json:"name,omitempty"`
	Slug     *string        `json:"slug,omitempty"`
	Code     *string        `json:"code,omitempty"`
	Status   *string        `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
	Location *LocationDto   `json:"location,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type LocationDto struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type BreadcrumbDto struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Slug  string        `json:"slug"`
	Type  core.NodeType `json:"type"`
	Depth int           `json:"depth"`
}

type NodeResponseDto struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenantID"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Code        string          `json:"code,omitempty"`
	Type        core.NodeType   `json:"type"`
	Depth       int             `json:"depth"`
	ParentID    string          `json:"parentID,omitempty"`
	Breadcrumbs []BreadcrumbDto `json:"breadcrumbs"`
	Location    *LocationDto    `json:"location,omitempty"`
	Status      string          `json:"status"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
