package dto

// 單一目標系統的同步統計
type SyncTargetStatsDto struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// 全量同步結果（target → 統計）
type SyncResultDto struct {
	TenantID string                        `json:"tenantID"`
	Targets  map[string]SyncTargetStatsDto `json:"targets"`
}

// 單節點同步結果
type SyncNodeResultDto struct {
	NodeID  string   `json:"nodeID"`
	Targets []string `json:"targets"` // 實際完成同步的目標
}
