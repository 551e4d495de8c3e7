package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atlas/config"
	"atlas/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func identityConf(baseURL string) *config.Configuration {
	return &config.Configuration{
		Sync: config.Sync{
			TimeoutMs: 2000,
			Identity:  config.IdentitySyncConfig{BaseURL: baseURL, APIKey: "id-key", IssuerID: "did:key:issuer"},
		},
	}
}

func TestIdentityUpsert_CreatesDIDAndIssues(t *testing.T) {
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&recorded.Body)
		}
		requests = append(requests, recorded)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/dids":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
		case r.Method == http.MethodPost && r.URL.Path == "/dids":
			_ = json.NewEncoder(w).Encode(map[string]any{"did": "did:key:z6node"})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	adapter := NewIdentityAdapter(identityConf(server.URL), server.Client(), &telemetry.Trace{})
	node := cityNode()

	result, err := adapter.Upsert(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, result.Outcome)
	assert.Equal(t, "did:key:z6node", result.ExternalID)

	// search → create DID → issue credential
	require.Len(t, requests, 3)
	issue := requests[2]
	assert.Equal(t, "/credentials/issue", issue.Path)
	assert.Equal(t, "Bearer id-key", issue.Auth)
	assert.Equal(t, "did:key:issuer", issue.Body["issuer"])
	assert.Equal(t, "GeoHierarchyCredential", issue.Body["type"])

	subject, ok := issue.Body["credentialSubject"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, node.ID.Hex(), subject["nodeId"])
	// breadcrumbs 含自身，credential 的 ancestors 不含
	assert.Empty(t, subject["ancestors"])
}

func TestIdentityUpsert_ReusesExistingDID(t *testing.T) {
	var issueCount, createCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/dids":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"did": "did:key:existing"}}})
		case r.Method == http.MethodPost && r.URL.Path == "/dids":
			createCount++
			_ = json.NewEncoder(w).Encode(map[string]any{"did": "did:key:new"})
		case r.URL.Path == "/credentials/issue":
			issueCount++
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	adapter := NewIdentityAdapter(identityConf(server.URL), server.Client(), &telemetry.Trace{})

	result, err := adapter.Upsert(context.Background(), cityNode())
	require.NoError(t, err)
	assert.Equal(t, "did:key:existing", result.ExternalID)
	assert.Equal(t, 0, createCount)
	// DID 冪等，但 credential 每次同步都重新簽發
	assert.Equal(t, 1, issueCount)
}

func TestIdentityUpsert_SkippedWhenUnconfigured(t *testing.T) {
	adapter := NewIdentityAdapter(identityConf(""), http.DefaultClient, &telemetry.Trace{})

	result, err := adapter.Upsert(context.Background(), cityNode())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestIdentityDelete_Noop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	adapter := NewIdentityAdapter(identityConf(server.URL), server.Client(), &telemetry.Trace{})

	assert.NoError(t, adapter.Delete(context.Background(), primitive.NewObjectID()))
}
