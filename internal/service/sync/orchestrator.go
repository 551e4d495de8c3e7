package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"atlas/internal/core"
	"atlas/internal/database/fluentd/model"
	geomodel "atlas/internal/database/mongodb/model"
	"atlas/internal/telemetry"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SyncStats 單一目標在一輪同步內的累計結果
type SyncStats struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// HierarchySyncResult 全量同步的唯一輸出：每個目標一份統計。
// 一輪跑完即丟，重跑可再推導，不落地。
type HierarchySyncResult map[core.SyncTarget]*SyncStats

// NodeSource orchestrator 取得節點集合的來源（HierarchyService 實作）
type NodeSource interface {
	ListNodesByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*geomodel.GeoNode, error)
	GetNodeByID(ctx context.Context, nodeID primitive.ObjectID) (*geomodel.GeoNode, error)
}

// ReportSink 每輪同步完發一筆報告到 log pipeline（fluentd LogRepository 實作）
type ReportSink interface {
	LogSyncReport(ctx context.Context, report model.SyncReport) error
}

// Orchestrator 把整棵樹推進所有外部目標。
// 統計是顯式帶著走的值，不是全域狀態；任何一個 (node, target) 的失敗
// 都只記錄，不中斷整輪。
type Orchestrator struct {
	logger   *zap.Logger
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	nodes    NodeSource
	adapters []Adapter
	reports  ReportSink
}

func NewOrchestrator(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	nodes NodeSource,
	adapters []Adapter,
	reports ReportSink,
) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		trace:    trace,
		metric:   metric,
		nodes:    nodes,
		adapters: adapters,
		reports:  reports,
	}
}

// SyncFullHierarchy 依 depth 升冪同步租戶全部節點（父先於子，
// ERP 這類在外部端也有父子關係的目標才能掛得上去）。
// 沒有錯誤回傳路徑：一律跑完並回報每個目標的成敗統計。
func (o *Orchestrator) SyncFullHierarchy(ctx context.Context, tenantID primitive.ObjectID) HierarchySyncResult {
	ctx, span, end := o.trace.WithSpan(ctx, string(core.SpanSyncFullHierarchy))
	defer end(nil)

	runID := uuid.NewString()
	startedAt := time.Now()
	result := o.newResult()

	nodes, err := o.nodes.ListNodesByTenant(ctx, tenantID)
	if err != nil {
		// 連節點都拿不到：對每個目標記一筆失敗後回報
		o.logger.Error("full sync aborted before first node: list nodes failed",
			zap.String("runId", runID),
			zap.String("tenantId", tenantID.Hex()),
			zap.Error(err),
		)
		for _, stats := range result {
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %s", tenantID.Hex(), err.Error()))
		}
		return result
	}

	// 來源已照 depth 排序，這裡仍保證不變量成立
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Depth < nodes[j].Depth })

	for _, node := range nodes {
		for _, adapter := range o.adapters {
			o.attemptUpsert(ctx, adapter, node, result)
		}
	}

	o.trace.ApplyTraceAttributes(span, core.TraceSyncRunMeta{
		RunID:     runID,
		TenantID:  tenantID.Hex(),
		NodeCount: len(nodes),
	})
	o.logger.Info("full hierarchy sync finished",
		zap.String("runId", runID),
		zap.String("tenantId", tenantID.Hex()),
		zap.Int("nodes", len(nodes)),
		zap.Duration("duration", time.Since(startedAt)),
	)
	o.observeRun(ctx, runID, tenantID.Hex(), len(nodes), startedAt, result)
	return result
}

// SyncSingleNode 單點同步，回傳成功的目標名單。
// 節點不存在是 logged no-op，不報錯、無副作用。
func (o *Orchestrator) SyncSingleNode(ctx context.Context, nodeID primitive.ObjectID) []core.SyncTarget {
	ctx, span, end := o.trace.WithSpan(ctx, string(core.SpanSyncSingleNode))
	defer end(nil)

	succeeded := []core.SyncTarget{}
	node, err := o.nodes.GetNodeByID(ctx, nodeID)
	if err != nil || node == nil {
		o.logger.Warn("single node sync skipped: node not found",
			zap.String("nodeId", nodeID.Hex()),
			zap.Error(err),
		)
		return succeeded
	}

	for _, adapter := range o.adapters {
		upsertResult, upsertError := adapter.Upsert(ctx, node)
		if upsertError != nil {
			o.logger.Warn("single node sync target failed",
				zap.String("nodeId", nodeID.Hex()),
				zap.String("target", string(adapter.Target())),
				zap.Error(upsertError),
			)
			o.countFail(adapter.Target())
			continue
		}
		if upsertResult.Outcome == OutcomeSynced {
			succeeded = append(succeeded, adapter.Target())
			o.countSuccess(adapter.Target())
		}
	}

	o.trace.ApplyTraceAttributes(span, core.TraceSyncRunMeta{
		RunID:  uuid.NewString(),
		NodeID: nodeID.Hex(),
		Synced: len(succeeded),
	})
	return succeeded
}

// DeleteNodeFromSystems 對外部系統的 best-effort 移除：
// content → ERP → fleet，逐目標獨立 catch，一個失敗不擋下一個。
// 識別系統沒有撤銷操作，刻意不嘗試。
func (o *Orchestrator) DeleteNodeFromSystems(ctx context.Context, nodeID, tenantID primitive.ObjectID) {
	ctx, _, end := o.trace.WithSpan(ctx, string(core.SpanSyncDeleteNode))
	defer end(nil)

	for _, adapter := range o.adapters {
		if adapter.Target() == core.SyncTargetIdentity {
			continue
		}
		if err := adapter.Delete(ctx, nodeID); err != nil {
			o.logger.Warn("external delete failed",
				zap.String("nodeId", nodeID.Hex()),
				zap.String("tenantId", tenantID.Hex()),
				zap.String("target", string(adapter.Target())),
				zap.Error(err),
			)
		}
	}
}

func (o *Orchestrator) attemptUpsert(ctx context.Context, adapter Adapter, node *geomodel.GeoNode, result HierarchySyncResult) {
	stats := result[adapter.Target()]
	upsertResult, err := adapter.Upsert(ctx, node)
	if err != nil {
		stats.Failed++
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %s", node.ID.Hex(), err.Error()))
		o.countFail(adapter.Target())
		o.logger.Warn("node sync target failed",
			zap.String("nodeId", node.ID.Hex()),
			zap.String("target", string(adapter.Target())),
			zap.Error(err),
		)
		return
	}
	if upsertResult.Outcome == OutcomeSynced {
		stats.Synced++
		o.countSuccess(adapter.Target())
	}
	// skipped（未設定或型別無對應）不計成功也不計失敗
}

func (o *Orchestrator) newResult() HierarchySyncResult {
	result := make(HierarchySyncResult, len(o.adapters))
	for _, adapter := range o.adapters {
		result[adapter.Target()] = &SyncStats{Errors: []string{}}
	}
	return result
}

func (o *Orchestrator) countSuccess(target core.SyncTarget) {
	if o.metric != nil && o.metric.SyncSuccessTotal != nil {
		o.metric.SyncSuccessTotal.WithLabelValues(string(target)).Inc()
	}
}

func (o *Orchestrator) countFail(target core.SyncTarget) {
	if o.metric != nil && o.metric.SyncFailTotal != nil {
		o.metric.SyncFailTotal.WithLabelValues(string(target)).Inc()
	}
}

func (o *Orchestrator) observeRun(ctx context.Context, runID, tenantID string, nodeCount int, startedAt time.Time, result HierarchySyncResult) {
	duration := time.Since(startedAt)
	if o.metric != nil && o.metric.SyncRunDuration != nil {
		o.metric.SyncRunDuration.WithLabelValues().Observe(duration.Seconds())
	}
	if o.reports == nil {
		return
	}

	report := model.SyncReport{
		RunID:      runID,
		TenantID:   tenantID,
		NodeCount:  nodeCount,
		DurationMs: duration.Milliseconds(),
		Targets:    map[string]model.SyncReportTarget{},
	}
	for target, stats := range result {
		report.Targets[string(target)] = model.SyncReportTarget{
			Synced: stats.Synced,
			Failed: stats.Failed,
			Errors: stats.Errors,
		}
	}
	if err := o.reports.LogSyncReport(ctx, report); err != nil {
		o.logger.Warn("sync report emit failed", zap.String("runId", runID), zap.Error(err))
	}
}
