package core

// ─── Sync Targets ──────────────────────────────────────────────────────────────

// SyncTarget 外部同步系統識別
type SyncTarget string

const (
	SyncTargetContent  SyncTarget = "content"
	SyncTargetERP      SyncTarget = "erp"
	SyncTargetFleet    SyncTarget = "fleet"
	SyncTargetIdentity SyncTarget = "identity"
)

// SyncTargets 全部同步目標（固定順序，僅影響輸出排列，不影響語意）
var SyncTargets = []SyncTarget{
	SyncTargetContent,
	SyncTargetERP,
	SyncTargetFleet,
	SyncTargetIdentity,
}

// 各目標在外部系統存放 node id 的關聯欄位名
const (
	CorrelationFieldContent = "atlas_node_id"
	CorrelationFieldERP     = "external_ref"
	CorrelationFieldFleet   = "internal_id"
)
