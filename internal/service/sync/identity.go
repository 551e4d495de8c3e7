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

	"atlas/config"
	"atlas/internal/core"
	"atlas/internal/database/mongodb/model"
	cErr "atlas/internal/pkg/error"
	"atlas/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdentityAdapter 去中心化識別目標，兩段式協定：
// 先確保節點有 DID（以 node id 搜尋，無則建立），
// 再簽發把該 DID 綁到層級位置的 verifiable credential。
// 簽發端沒有冪等保證，每次同步都重新簽發。
type IdentityAdapter struct {
	conf    config.IdentitySyncConfig
	client  *http.Client
	trace   *telemetry.Trace
	timeout time.Duration
}

func NewIdentityAdapter(conf *config.Configuration, client *http.Client, trace *telemetry.Trace) *IdentityAdapter {
	return &IdentityAdapter{
		conf:    conf.Sync.Identity,
		client:  client,
		trace:   trace,
		timeout: syncTimeout(conf),
	}
}

func (a *IdentityAdapter) Target() core.SyncTarget {
	return core.SyncTargetIdentity
}

func (a *IdentityAdapter) configured() bool {
	return strings.TrimSpace(a.conf.BaseURL) != ""
}

func (a *IdentityAdapter) Upsert(ctx context.Context, node *model.GeoNode) (_ *UpsertResult, returnedError error) {
	ctx, span, end := a.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	meta := core.TraceSyncAttemptMeta{
		Target:   string(core.SyncTargetIdentity),
		NodeID:   node.ID.Hex(),
		NodeType: string(node.Type),
	}

	if !a.configured() {
		meta.Outcome = string(OutcomeSkipped)
		a.trace.ApplyTraceAttributes(span, meta)
		return &UpsertResult{Outcome: OutcomeSkipped}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	did, err := a.ensureDID(ctx, node)
	if err != nil {
		return nil, err
	}
	if err := a.issueCredential(ctx, node, did); err != nil {
		return nil, err
	}

	meta.Outcome = string(OutcomeSynced)
	meta.ExternalID = did
	a.trace.ApplyTraceAttributes(span, meta)
	return &UpsertResult{Outcome: OutcomeSynced, Kind: "did", ExternalID: did}, nil
}

// Delete 識別系統沒有可用的撤銷操作，刻意維持不對稱：
// 目錄刪除節點時不嘗試撤銷 DID/credential。
func (a *IdentityAdapter) Delete(ctx context.Context, nodeID primitive.ObjectID) error {
	return nil
}

// ensureDID 以 node id 搜尋既有 DID，無則建立（這一半是冪等的）
func (a *IdentityAdapter) ensureDID(ctx context.Context, node *model.GeoNode) (string, error) {
	searchURL := fmt.Sprintf("%s/dids?ref=%s", a.conf.BaseURL, url.QueryEscape(node.ID.Hex()))
	raw, err := a.roundTrip(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Data []struct {
			DID string `json:"did"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", cErr.ExternalResponseFormatError("identity: decode did search response failed")
	}
	if len(envelope.Data) > 0 && envelope.Data[0].DID != "" {
		return envelope.Data[0].DID, nil
	}

	raw, err = a.roundTrip(ctx, http.MethodPost, a.conf.BaseURL+"/dids", map[string]any{
		"ref":    node.ID.Hex(),
		"method": "key",
	})
	if err != nil {
		return "", err
	}
	var created struct {
		DID string `json:"did"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.DID == "" {
		return "", cErr.ExternalResponseFormatError("identity: decode did create response failed")
	}
	return created.DID, nil
}

// issueCredential 簽發綁定層級位置的 credential（每次同步都簽發新的一張）
func (a *IdentityAdapter) issueCredential(ctx context.Context, node *model.GeoNode, did string) error {
	ancestors := make([]map[string]any, 0, len(node.Breadcrumbs))
	for _, crumb := range node.Breadcrumbs {
		if crumb.ID == node.ID {
			continue
		}
		ancestors = append(ancestors, map[string]any{
			"name":  crumb.Name,
			"type":  string(crumb.Type),
			"depth": crumb.Depth,
		})
	}

	subject := map[string]any{
		"id":        did,
		"nodeId":    node.ID.Hex(),
		"name":      node.Name,
		"type":      string(node.Type),
		"depth":     node.Depth,
		"ancestors": ancestors,
	}
	if node.Location != nil {
		subject["location"] = map[string]any{
			"lat": node.Location.Lat,
			"lng": node.Location.Lng,
		}
	}

	_, err := a.roundTrip(ctx, http.MethodPost, a.conf.BaseURL+"/credentials/issue", map[string]any{
		"issuer":            a.conf.IssuerID,
		"type":              "GeoHierarchyCredential",
		"credentialSubject": subject,
	})
	return err
}

func (a *IdentityAdapter) roundTrip(ctx context.Context, method, endpoint string, payload map[string]any) ([]byte, error) {
	var requestBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, cErr.InternalServer("marshal identity payload failed")
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
	request.Header.Set("Authorization", "Bearer "+a.conf.APIKey)

	response, err := a.client.Do(request)
	if err != nil {
		return nil, cErr.ExternalRequestError(fmt.Sprintf("identity: request failed: %v", err))
	}
	defer response.Body.Close()

	raw, _ := io.ReadAll(response.Body)
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, cErr.ExternalRequestError(fmt.Sprintf("identity: %s %s → %s %s",
			method, endpoint, response.Status, strings.TrimSpace(string(raw))))
	}
	return raw, nil
}
