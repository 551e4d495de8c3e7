package sync

import (
	"context"
	"errors"
	"testing"

	"atlas/internal/core"
	fluentdModel "atlas/internal/database/fluentd/model"
	"atlas/internal/database/mongodb/model"
	"atlas/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// stubAdapter 以函式樁出單一目標的行為
type stubAdapter struct {
	target core.SyncTarget
	upsert func(node *model.GeoNode) (*UpsertResult, error)
	delete func(nodeID primitive.ObjectID) error

	upsertCalls int
	deleteCalls int
}

func (a *stubAdapter) Target() core.SyncTarget { return a.target }

func (a *stubAdapter) Upsert(_ context.Context, node *model.GeoNode) (*UpsertResult, error) {
	a.upsertCalls++
	return a.upsert(node)
}

func (a *stubAdapter) Delete(_ context.Context, nodeID primitive.ObjectID) error {
	a.deleteCalls++
	if a.delete != nil {
		return a.delete(nodeID)
	}
	return nil
}

func syncedAdapter(target core.SyncTarget) *stubAdapter {
	return &stubAdapter{
		target: target,
		upsert: func(*model.GeoNode) (*UpsertResult, error) {
			return &UpsertResult{Outcome: OutcomeSynced}, nil
		},
	}
}

func skippedAdapter(target core.SyncTarget) *stubAdapter {
	return &stubAdapter{
		target: target,
		upsert: func(*model.GeoNode) (*UpsertResult, error) {
			return &UpsertResult{Outcome: OutcomeSkipped}, nil
		},
	}
}

// stubNodeSource 固定節點集合
type stubNodeSource struct {
	nodes   []*model.GeoNode
	listErr error
}

func (s *stubNodeSource) ListNodesByTenant(context.Context, primitive.ObjectID) ([]*model.GeoNode, error) {
	return s.nodes, s.listErr
}

func (s *stubNodeSource) GetNodeByID(_ context.Context, nodeID primitive.ObjectID) (*model.GeoNode, error) {
	for _, node := range s.nodes {
		if node.ID == nodeID {
			return node, nil
		}
	}
	return nil, nil
}

type stubReportSink struct {
	reports []fluentdModel.SyncReport
}

func (s *stubReportSink) LogSyncReport(_ context.Context, report fluentdModel.SyncReport) error {
	s.reports = append(s.reports, report)
	return nil
}

func testNodes(count int) []*model.GeoNode {
	nodes := make([]*model.GeoNode, 0, count)
	for i := 0; i < count; i++ {
		nodes = append(nodes, &model.GeoNode{
			ID:       primitive.NewObjectID(),
			TenantID: primitive.NewObjectID(),
			Name:     "node",
			Type:     core.NodeTypes[i%len(core.NodeTypes)],
			Depth:    i % len(core.NodeTypes),
		})
	}
	return nodes
}

func newTestOrchestrator(source NodeSource, sink ReportSink, adapters ...Adapter) *Orchestrator {
	return NewOrchestrator(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, source, adapters, sink)
}

func TestSyncFullHierarchy_PerTargetStats(t *testing.T) {
	nodes := testNodes(3)
	failing := &stubAdapter{
		target: core.SyncTargetERP,
		upsert: func(node *model.GeoNode) (*UpsertResult, error) {
			if node.ID == nodes[1].ID {
				return nil, errors.New("erp down")
			}
			return &UpsertResult{Outcome: OutcomeSynced}, nil
		},
	}
	content := skippedAdapter(core.SyncTargetContent) // 未設定：全部 skipped
	fleet := syncedAdapter(core.SyncTargetFleet)

	sink := &stubReportSink{}
	o := newTestOrchestrator(&stubNodeSource{nodes: nodes}, sink, content, failing, fleet)

	result := o.SyncFullHierarchy(context.Background(), primitive.NewObjectID())

	// skipped 不算成功也不算失敗
	assert.Equal(t, 0, result[core.SyncTargetContent].Synced)
	assert.Equal(t, 0, result[core.SyncTargetContent].Failed)

	// 一個節點失敗不影響其餘節點與其他目標
	assert.Equal(t, 2, result[core.SyncTargetERP].Synced)
	assert.Equal(t, 1, result[core.SyncTargetERP].Failed)
	require.Len(t, result[core.SyncTargetERP].Errors, 1)
	assert.Contains(t, result[core.SyncTargetERP].Errors[0], nodes[1].ID.Hex())

	assert.Equal(t, 3, result[core.SyncTargetFleet].Synced)
	assert.Equal(t, 0, result[core.SyncTargetFleet].Failed)

	// 每個 adapter 對每個節點都被呼叫到（不因失敗中斷）
	assert.Equal(t, 3, content.upsertCalls)
	assert.Equal(t, 3, failing.upsertCalls)
	assert.Equal(t, 3, fleet.upsertCalls)

	// 每輪發出一筆同步報告
	require.Len(t, sink.reports, 1)
	assert.Equal(t, 3, sink.reports[0].NodeCount)
	assert.Equal(t, 1, sink.reports[0].Targets[string(core.SyncTargetERP)].Failed)
}

func TestSyncFullHierarchy_DepthAscending(t *testing.T) {
	// 故意亂序，orchestrator 必須照 depth 重排
	nodes := testNodes(5)
	nodes[0].Depth, nodes[4].Depth = 4, 0

	var seen []int
	recorder := &stubAdapter{
		target: core.SyncTargetERP,
		upsert: func(node *model.GeoNode) (*UpsertResult, error) {
			seen = append(seen, node.Depth)
			return &UpsertResult{Outcome: OutcomeSynced}, nil
		},
	}
	o := newTestOrchestrator(&stubNodeSource{nodes: nodes}, &stubReportSink{}, recorder)

	o.SyncFullHierarchy(context.Background(), primitive.NewObjectID())

	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
}

func TestSyncFullHierarchy_ListFailure(t *testing.T) {
	o := newTestOrchestrator(
		&stubNodeSource{listErr: errors.New("mongo unreachable")},
		&stubReportSink{},
		syncedAdapter(core.SyncTargetContent),
		syncedAdapter(core.SyncTargetERP),
	)

	result := o.SyncFullHierarchy(context.Background(), primitive.NewObjectID())

	for _, target := range []core.SyncTarget{core.SyncTargetContent, core.SyncTargetERP} {
		assert.Equal(t, 0, result[target].Synced)
		assert.Equal(t, 1, result[target].Failed)
		require.Len(t, result[target].Errors, 1)
	}
}

func TestSyncSingleNode(t *testing.T) {
	nodes := testNodes(1)
	failing := &stubAdapter{
		target: core.SyncTargetFleet,
		upsert: func(*model.GeoNode) (*UpsertResult, error) {
			return nil, errors.New("fleet down")
		},
	}
	o := newTestOrchestrator(
		&stubNodeSource{nodes: nodes},
		&stubReportSink{},
		syncedAdapter(core.SyncTargetContent),
		skippedAdapter(core.SyncTargetERP),
		failing,
	)

	targets := o.SyncSingleNode(context.Background(), nodes[0].ID)

	// 只回報真正完成同步的目標：skipped 與 failed 都不在名單
	assert.Equal(t, []core.SyncTarget{core.SyncTargetContent}, targets)
}

func TestSyncSingleNode_MissingNode(t *testing.T) {
	adapter := syncedAdapter(core.SyncTargetContent)
	o := newTestOrchestrator(&stubNodeSource{}, &stubReportSink{}, adapter)

	targets := o.SyncSingleNode(context.Background(), primitive.NewObjectID())

	assert.Empty(t, targets)
	assert.Equal(t, 0, adapter.upsertCalls)
}

func TestDeleteNodeFromSystems_SkipsIdentity(t *testing.T) {
	content := syncedAdapter(core.SyncTargetContent)
	erp := &stubAdapter{
		target: core.SyncTargetERP,
		upsert: func(*model.GeoNode) (*UpsertResult, error) { return &UpsertResult{Outcome: OutcomeSynced}, nil },
		delete: func(primitive.ObjectID) error { return errors.New("erp down") },
	}
	fleet := syncedAdapter(core.SyncTargetFleet)
	identity := syncedAdapter(core.SyncTargetIdentity)

	o := newTestOrchestrator(&stubNodeSource{}, &stubReportSink{}, content, erp, fleet, identity)

	// ERP 刪除失敗不會擋住 fleet；identity 沒有刪除語意
	o.DeleteNodeFromSystems(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())

	assert.Equal(t, 1, content.deleteCalls)
	assert.Equal(t, 1, erp.deleteCalls)
	assert.Equal(t, 1, fleet.deleteCalls)
	assert.Equal(t, 0, identity.deleteCalls)
}
