package sync

import (
	"net/http"

	"atlas/config"
	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	"atlas/internal/telemetry"
)

// FleetAdapter 車隊/物流目標。上三層都是地理範圍（place/zone），
// 據點對應 fleet，資產對應 vehicle。
type FleetAdapter struct {
	*httpAdapter
}

func NewFleetAdapter(conf *config.Configuration, client *http.Client, trace *telemetry.Trace) *FleetAdapter {
	target := conf.Sync.Fleet
	profile := Profile{
		Target:           core.SyncTargetFleet,
		CorrelationField: core.CorrelationFieldFleet,
		BaseURL:          target.BaseURL,
		KindByType: map[core.NodeType]ResourceKind{
			core.NodeTypeCity:     {Name: "place", Path: "/v1/places"},
			core.NodeTypeDistrict: {Name: "place", Path: "/v1/places"},
			core.NodeTypeZone:     {Name: "zone", Path: "/v1/zones"},
			core.NodeTypeFacility: {Name: "fleet", Path: "/v1/fleets"},
			core.NodeTypeAsset:    {Name: "vehicle", Path: "/v1/vehicles"},
		},
		Authorize: func(request *http.Request) {
			request.Header.Set("Authorization", "Bearer "+target.APIKey)
		},
		Payload: fleetPayload,
	}
	return &FleetAdapter{newHTTPAdapter(profile, client, trace, syncTimeout(conf))}
}

func fleetPayload(node *model.GeoNode, kind ResourceKind) map[string]any {
	payload := map[string]any{
		"name":   node.Name,
		"status": string(node.Status),
	}
	if node.Location != nil {
		payload["latitude"] = node.Location.Lat
		payload["longitude"] = node.Location.Lng
		if node.Location.Address != "" {
			payload["address"] = node.Location.Address
		}
	}
	return payload
}
