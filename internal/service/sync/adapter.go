package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	cErr "atlas/internal/pkg/error"
	"atlas/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome 單次 upsert 的結果分類
type Outcome string

const (
	OutcomeSynced  Outcome = "synced"
	OutcomeSkipped Outcome = "skipped" // 未設定或型別無對應，屬 no-op 成功，不算失敗
)

type UpsertResult struct {
	Outcome    Outcome
	Kind       string
	ExternalID string
}

// Adapter 外部系統同步的統一契約。
// Upsert 必須冪等（search-then-upsert 收斂到單一外部資源）；
// Delete 找不到資源時靜默成功。任一實作的錯誤只代表自身目標。
type Adapter interface {
	Target() core.SyncTarget
	Upsert(ctx context.Context, node *model.GeoNode) (*UpsertResult, error)
	Delete(ctx context.Context, nodeID primitive.ObjectID) error
}

// ResourceKind 目標系統中某節點型別對應的資源種類與路徑
type ResourceKind struct {
	Name string
	Path string // 相對 BaseURL 的 collection 路徑，例如 "/api/resource/Company"
}

// Profile 把四個幾乎相同的 adapter 收斂成一份設定：
// 對應表、關聯欄位、認證方式、payload 形狀皆為資料而非程式。
type Profile struct {
	Target           core.SyncTarget
	BaseURL          string
	CorrelationField string
	KindByType       map[core.NodeType]ResourceKind
	Authorize        func(request *http.Request)
	Payload          func(node *model.GeoNode, kind ResourceKind) map[string]any
}

// Configured BaseURL 缺失即視為「同步停用」
func (profile Profile) Configured() bool {
	return strings.TrimSpace(profile.BaseURL) != ""
}

// httpAdapter 泛用 REST adapter：
// 以關聯欄位搜尋既有資源，有則更新、無則建立。
type httpAdapter struct {
	profile Profile
	client  *http.Client
	trace   *telemetry.Trace
	timeout time.Duration
}

func newHTTPAdapter(profile Profile, client *http.Client, trace *telemetry.Trace, timeout time.Duration) *httpAdapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpAdapter{profile: profile, client: client, trace: trace, timeout: timeout}
}

func (a *httpAdapter) Target() core.SyncTarget {
	return a.profile.Target
}

func (a *httpAdapter) Upsert(ctx context.Context, node *model.GeoNode) (_ *UpsertResult, returnedError error) {
	ctx, span, end := a.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meta := core.TraceSyncAttemptMeta{
		Target:   string(a.profile.Target),
		NodeID:   node.ID.Hex(),
		NodeType: string(node.Type),
	}

	if !a.profile.Configured() {
		meta.Outcome = string(OutcomeSkipped)
		a.trace.ApplyTraceAttributes(span, meta)
		return &UpsertResult{Outcome: OutcomeSkipped}, nil
	}
	kind, ok := a.profile.KindByType[node.Type]
	if !ok {
		meta.Outcome = string(OutcomeSkipped)
		a.trace.ApplyTraceAttributes(span, meta)
		return &UpsertResult{Outcome: OutcomeSkipped}, nil
	}
	meta.Kind = kind.Name

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	existingID, err := a.search(ctx, kind, node.ID.Hex())
	if err != nil {
		return nil, err
	}

	payload := a.profile.Payload(node, kind)
	payload[a.profile.CorrelationField] = node.ID.Hex()

	var externalID string
	if existingID != "" {
		if err := a.update(ctx, kind, existingID, payload); err != nil {
			return nil, err
		}
		externalID = existingID
	} else {
		createdID, createError := a.create(ctx, kind, payload)
		if createError != nil {
			return nil, createError
		}
		externalID = createdID
	}

	meta.Outcome = string(OutcomeSynced)
	meta.ExternalID = externalID
	a.trace.ApplyTraceAttributes(span, meta)
	return &UpsertResult{Outcome: OutcomeSynced, Kind: kind.Name, ExternalID: externalID}, nil
}

// Delete 以關聯欄位搜尋後移除。節點原本落在哪個資源種類沒有持久化，
// 因此依型別順序逐一嘗試，刪到第一個命中為止；全部未命中是靜默 no-op。
func (a *httpAdapter) Delete(ctx context.Context, nodeID primitive.ObjectID) (returnedError error) {
	ctx, span, end := a.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if !a.profile.Configured() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var lastError error
	tried := map[string]bool{}
	for _, nodeType := range core.NodeTypes {
		kind, ok := a.profile.KindByType[nodeType]
		if !ok || tried[kind.Path] {
			continue
		}
		tried[kind.Path] = true

		existingID, searchError := a.search(ctx, kind, nodeID.Hex())
		if searchError != nil {
			lastError = searchError
			continue
		}
		if existingID == "" {
			continue
		}
		if deleteError := a.remove(ctx, kind, existingID); deleteError != nil {
			lastError = deleteError
			continue
		}
		a.trace.ApplyTraceAttributes(span, core.TraceSyncAttemptMeta{
			Target:     string(a.profile.Target),
			NodeID:     nodeID.Hex(),
			Kind:       kind.Name,
			ExternalID: existingID,
			Outcome:    "deleted",
		})
		return nil
	}
	return lastError
}

// ─── HTTP round-trips ──────────────────────────────────────────────────────────

type searchHit struct {
	ID any `json:"id"`
}

type searchEnvelope struct {
	Data []searchHit `json:"data"`
}

func (a *httpAdapter) search(ctx context.Context, kind ResourceKind, nodeID string) (string, error) {
	endpoint := fmt.Sprintf("%s%s?%s=%s", a.profile.BaseURL, kind.Path, a.profile.CorrelationField, url.QueryEscape(nodeID))
	body, err := a.roundTrip(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	var envelope searchEnvelope
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&envelope); err != nil {
		return "", cErr.ExternalResponseFormatError(fmt.Sprintf("%s: decode search response failed", a.profile.Target))
	}
	if len(envelope.Data) == 0 || envelope.Data[0].ID == nil {
		return "", nil
	}
	return fmt.Sprint(envelope.Data[0].ID), nil
}

func (a *httpAdapter) create(ctx context.Context, kind ResourceKind, payload map[string]any) (string, error) {
	body, err := a.roundTrip(ctx, http.MethodPost, a.profile.BaseURL+kind.Path, payload)
	if err != nil {
		return "", err
	}

	var created searchHit
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&created); err != nil {
		return "", cErr.ExternalResponseFormatError(fmt.Sprintf("%s: decode create response failed", a.profile.Target))
	}
	return fmt.Sprint(created.ID), nil
}

func (a *httpAdapter) update(ctx context.Context, kind ResourceKind, externalID string, payload map[string]any) error {
	_, err := a.roundTrip(ctx, http.MethodPatch, a.profile.BaseURL+kind.Path+"/"+url.PathEscape(externalID), payload)
	return err
}

func (a *httpAdapter) remove(ctx context.Context, kind ResourceKind, externalID string) error {
	_, err := a.roundTrip(ctx, http.MethodDelete, a.profile.BaseURL+kind.Path+"/"+url.PathEscape(externalID), nil)
	return err
}

func (a *httpAdapter) roundTrip(ctx context.Context, method, endpoint string, payload map[string]any) ([]byte, error) {
	var requestBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, cErr.InternalServer("marshal sync payload failed")
		}
		requestBody = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, requestBody)
	if err != nil {
		return nil, cErr.InternalServer("create http request failed")
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if a.profile.Authorize != nil {
		a.profile.Authorize(request)
	}

	response, err := a.client.Do(request)
	if err != nil {
		return nil, cErr.ExternalRequestError(fmt.Sprintf("%s: request failed: %v", a.profile.Target, err))
	}
	defer response.Body.Close()

	raw, _ := io.ReadAll(response.Body)
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, cErr.ExternalRequestError(fmt.Sprintf("%s: %s %s → %s %s",
			a.profile.Target, method, endpoint, response.Status, strings.TrimSpace(string(raw))))
	}
	return raw, nil
}
