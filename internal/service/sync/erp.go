package sync

import (
	"net/http"

	"atlas/config"
	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	"atlas/internal/telemetry"
)

// ERPAdapter ERP 目標。層級在 ERP 端有對應的組織結構，
// 父節點必須先同步（orchestrator 的 depth 升冪順序即為此而存在）。
type ERPAdapter struct {
	*httpAdapter
}

func NewERPAdapter(conf *config.Configuration, client *http.Client, trace *telemetry.Trace) *ERPAdapter {
	target := conf.Sync.ERP
	profile := Profile{
		Target:           core.SyncTargetERP,
		BaseURL:          target.BaseURL,
		CorrelationField: core.CorrelationFieldERP,
		KindByType: map[core.NodeType]ResourceKind{
			core.NodeTypeCity:     {Name: "Company", Path: "/api/resource/Company"},
			core.NodeTypeDistrict: {Name: "Department", Path: "/api/resource/Department"},
			core.NodeTypeZone:     {Name: "CostCenter", Path: "/api/resource/Cost Center"},
			core.NodeTypeFacility: {Name: "Warehouse", Path: "/api/resource/Warehouse"},
			core.NodeTypeAsset:    {Name: "Asset", Path: "/api/resource/Asset"},
		},
		Authorize: func(request *http.Request) {
			request.Header.Set("Authorization", "token "+target.APIKey)
		},
		Payload: erpPayload,
	}
	return &ERPAdapter{newHTTPAdapter(profile, client, trace, syncTimeout(conf))}
}

func erpPayload(node *model.GeoNode, kind ResourceKind) map[string]any {
	payload := map[string]any{
		"name":     node.Name,
		"disabled": node.Status != core.NodeStatusActive,
	}
	if node.Code != "" {
		payload["code"] = node.Code
	}
	// ERP 端的父連結也用我們的 node id 當外部參照
	if node.ParentID != nil {
		payload["parent_ref"] = node.ParentID.Hex()
	}
	return payload
}
