package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atlas/config"
	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	"atlas/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Auth   string
}

// fakeTarget 模擬外部系統：search 回傳固定結果，記錄所有請求
type fakeTarget struct {
	server   *httptest.Server
	requests []recordedRequest
	hits     []map[string]any // search 回傳的 data
	status   int              // 非 GET 請求的回應碼，0 = 200
}

func newFakeTarget() *fakeTarget {
	target := &fakeTarget{}
	target.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&recorded.Body)
		}
		target.requests = append(target.requests, recorded)

		if target.status != 0 {
			w.WriteHeader(target.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{"data": target.hits})
		case http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "ext-123"})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	return target
}

func (target *fakeTarget) close() { target.server.Close() }

func contentConf(baseURL string) *config.Configuration {
	return &config.Configuration{
		Sync: config.Sync{
			TimeoutMs: 2000,
			Content:   config.SyncTargetConfig{BaseURL: baseURL, APIKey: "cms-key"},
		},
	}
}

func cityNode() *model.GeoNode {
	node := &model.GeoNode{
		ID:       primitive.NewObjectID(),
		TenantID: primitive.NewObjectID(),
		Name:     "Riyadh",
		Slug:     "riyadh",
		Type:     core.NodeTypeCity,
		Status:   core.NodeStatusActive,
	}
	node.Breadcrumbs = []model.Breadcrumb{node.Summary()}
	return node
}

func TestUpsert_CreatesWhenSearchEmpty(t *testing.T) {
	target := newFakeTarget()
	defer target.close()

	adapter := NewContentAdapter(contentConf(target.server.URL), target.server.Client(), &telemetry.Trace{})
	node := cityNode()

	result, err := adapter.Upsert(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, result.Outcome)
	assert.Equal(t, "ext-123", result.ExternalID)

	require.Len(t, target.requests, 2)
	search, create := target.requests[0], target.requests[1]

	assert.Equal(t, http.MethodGet, search.Method)
	assert.Equal(t, "/api/city-pages", search.Path)
	assert.Contains(t, search.Query, core.CorrelationFieldContent+"="+node.ID.Hex())

	assert.Equal(t, http.MethodPost, create.Method)
	assert.Equal(t, "Bearer cms-key", create.Auth)
	assert.Equal(t, node.ID.Hex(), create.Body[core.CorrelationFieldContent])
	assert.Equal(t, "Riyadh", create.Body["title"])
}

func TestUpsert_UpdatesWhenSearchHits(t *testing.T) {
	target := newFakeTarget()
	defer target.close()
	target.hits = []map[string]any{{"id": "page-9"}}

	adapter := NewContentAdapter(contentConf(target.server.URL), target.server.Client(), &telemetry.Trace{})

	result, err := adapter.Upsert(context.Background(), cityNode())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, result.Outcome)
	assert.Equal(t, "page-9", result.ExternalID)

	require.Len(t, target.requests, 2)
	update := target.requests[1]
	assert.Equal(t, http.MethodPatch, update.Method)
	assert.Equal(t, "/api/city-pages/page-9", update.Path)
}

func TestUpsert_SkippedWhenUnconfigured(t *testing.T) {
	adapter := NewContentAdapter(contentConf(""), http.DefaultClient, &telemetry.Trace{})

	result, err := adapter.Upsert(context.Background(), cityNode())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestUpsert_SkippedWhenTypeUnmapped(t *testing.T) {
	target := newFakeTarget()
	defer target.close()

	adapter := NewContentAdapter(contentConf(target.server.URL), target.server.Client(), &telemetry.Trace{})

	// 內容系統沒有 ASSET 對應，應該是 no-op 而非錯誤
	node := cityNode()
	node.Type = core.NodeTypeAsset

	result, err := adapter.Upsert(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Empty(t, target.requests)
}

func TestUpsert_ErrorOnBadStatus(t *testing.T) {
	target := newFakeTarget()
	defer target.close()
	target.status = http.StatusBadGateway

	adapter := NewContentAdapter(contentConf(target.server.URL), target.server.Client(), &telemetry.Trace{})

	_, err := adapter.Upsert(context.Background(), cityNode())
	require.Error(t, err)
}

func TestDelete_WalksKindsUntilFirstHit(t *testing.T) {
	hitPath := "/api/district-pages"
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.Path})
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			if r.URL.Path == hitPath {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"id": "d-1"}}})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewContentAdapter(contentConf(server.URL), server.Client(), &telemetry.Trace{})

	err := adapter.Delete(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)

	// city 未命中 → district 命中 → 刪除後停止，不再試 zone/facility
	require.Len(t, requests, 3)
	assert.Equal(t, "/api/city-pages", requests[0].Path)
	assert.Equal(t, hitPath, requests[1].Path)
	assert.Equal(t, http.MethodDelete, requests[2].Method)
	assert.Equal(t, hitPath+"/d-1", requests[2].Path)
}

func TestDelete_AllMissIsNoop(t *testing.T) {
	target := newFakeTarget()
	defer target.close()

	adapter := NewContentAdapter(contentConf(target.server.URL), target.server.Client(), &telemetry.Trace{})

	err := adapter.Delete(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)

	// 四種 page collection 都查過、沒有任何刪除請求
	assert.Len(t, target.requests, 4)
	for _, request := range target.requests {
		assert.Equal(t, http.MethodGet, request.Method)
	}
}
