package sync

import (
	"net/http"

	"atlas/config"
	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	"atlas/internal/telemetry"
)

// ContentAdapter CMS 目標。城市/行政區/分區/據點各對應一種 page collection；
// ASSET 在內容系統沒有對應頁面，略過。
type ContentAdapter struct {
	*httpAdapter
}

func NewContentAdapter(conf *config.Configuration, client *http.Client, trace *telemetry.Trace) *ContentAdapter {
	target := conf.Sync.Content
	profile := Profile{
		Target:           core.SyncTargetContent,
		BaseURL:          target.BaseURL,
		CorrelationField: core.CorrelationFieldContent,
		KindByType: map[core.NodeType]ResourceKind{
			core.NodeTypeCity:     {Name: "city-page", Path: "/api/city-pages"},
			core.NodeTypeDistrict: {Name: "district-page", Path: "/api/district-pages"},
			core.NodeTypeZone:     {Name: "zone-page", Path: "/api/zone-pages"},
			core.NodeTypeFacility: {Name: "facility-page", Path: "/api/facility-pages"},
		},
		Authorize: func(request *http.Request) {
			request.Header.Set("Authorization", "Bearer "+target.APIKey)
		},
		Payload: contentPayload,
	}
	return &ContentAdapter{newHTTPAdapter(profile, client, trace, syncTimeout(conf))}
}

func contentPayload(node *model.GeoNode, kind ResourceKind) map[string]any {
	payload := map[string]any{
		"title":  node.Name,
		"slug":   node.Slug,
		"status": string(node.Status),
	}
	// CMS 頁面的麵包屑導覽直接用建立時物化的快照
	crumbs := make([]map[string]any, 0, len(node.Breadcrumbs))
	for _, crumb := range node.Breadcrumbs {
		crumbs = append(crumbs, map[string]any{
			"name": crumb.Name,
			"slug": crumb.Slug,
			"type": string(crumb.Type),
		})
	}
	payload["breadcrumbs"] = crumbs
	return payload
}
