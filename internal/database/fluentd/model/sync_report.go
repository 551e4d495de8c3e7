package model

type SyncReportTarget struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// SyncReport 一輪全量同步結束後發往 log pipeline 的彙總
type SyncReport struct {
	RunID       string                      `json:"run_id"`
	TenantID    string                      `json:"tenant_id"`
	ProjectName string                      `json:"project_name,omitempty"`
	NodeCount   int                         `json:"node_count"`
	DurationMs  int64                       `json:"duration_ms"`
	Targets     map[string]SyncReportTarget `json:"targets"`
	Version     string                      `json:"version,omitempty"`
	LoggedAt    string                      `json:"logged_at"`
}
