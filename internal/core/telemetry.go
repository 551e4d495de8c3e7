package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest        TraceSpanName = "http_request"
	SpanLoggerMiddleware   TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware     TraceSpanName = "cors_middleware"
	SpanResponseMiddleware TraceSpanName = "response_middleware"
	SpanSyncFullHierarchy  TraceSpanName = "sync_full_hierarchy"
	SpanSyncSingleNode     TraceSpanName = "sync_single_node"
	SpanSyncDeleteNode     TraceSpanName = "sync_delete_node"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal   MetricName = "requests_total"
	MetricHttpRequestDuration MetricName = "request_duration_seconds"
	MetricHttpSuccessTotal    MetricName = "request_success_total"
	MetricHttpFailTotal       MetricName = "request_fail_total"
	MetricSyncSuccessTotal    MetricName = "sync_success_total"
	MetricSyncFailTotal       MetricName = "sync_fail_total"
	MetricSyncRunDuration     MetricName = "sync_run_duration_seconds"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
	MetricLabelTarget   MetricLabelName = "target"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

// 供 hierarchy service 的節點操作使用
type TraceNodeMeta struct {
	NodeID      string  `trace:"node.id,omitempty"`
	TenantID    string  `trace:"node.tenant_id,omitempty"`
	NodeType    string  `trace:"node.type,omitempty"`
	Depth       int     `trace:"node.depth,omitempty"`
	ParentID    string  `trace:"node.parent_id,omitempty"`
	ResultCount int     `trace:"result.count,omitempty"`
	Error       *string `trace:"error,omitempty"`
}

// 供 sync orchestrator 使用
type TraceSyncRunMeta struct {
	RunID     string `trace:"sync.run_id"`
	TenantID  string `trace:"sync.tenant_id,omitempty"`
	NodeID    string `trace:"sync.node_id,omitempty"`
	NodeCount int    `trace:"sync.node_count,omitempty"`
	Synced    int    `trace:"sync.synced,omitempty"`
	Failed    int    `trace:"sync.failed,omitempty"`
}

// 供單次 adapter 呼叫使用
type TraceSyncAttemptMeta struct {
	Target     string `trace:"sync.target"`
	NodeID     string `trace:"sync.node_id"`
	NodeType   string `trace:"sync.node_type"`
	Kind       string `trace:"sync.external_kind,omitempty"`
	ExternalID string `trace:"sync.external_id,omitempty"`
	Outcome    string `trace:"sync.outcome"` // "synced" / "skipped" / "failed"
}

// 供 Redis 同步鎖使用
type TraceSyncLockMeta struct {
	TenantID string `trace:"lock.tenant_id"`
	TTLSec   int64  `trace:"lock.ttl_sec,omitempty"`
	Acquired bool   `trace:"lock.acquired"`
	Op       string `trace:"lock.op"` // "acquire" / "release"
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanKind          string `trace:"span.kind"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}

type TraceRequestLogMeta struct {
	RequestID   string `trace:"http.request.request_id"`
	Path        string `trace:"http.request.path"`
	Method      string `trace:"http.request.method"`
	ProjectName string `trace:"project.name"`
	Body        string `trace:"http.request.body,omitempty"`
	IPHash      string `trace:"http.request.net.peer.ip_hash"`
	UserAgent   string `trace:"http.request.user_agent"`
	Version     string `trace:"log.version"`
	RequestTS   string `trace:"http.request_ts"`
	LoggedAt    string `trace:"http.logged_at"`
}

type TraceResponseLogMeta struct {
	RequestID   string `trace:"http.request.request_id"`
	ProjectName string `trace:"project.name"`
	Code        int    `trace:"http.response.code"`
	StatusCode  int    `trace:"http.response.status_code"`
	Body        string `trace:"http.response.body,omitempty"`
	Error       string `trace:"http.response.error_message,omitempty"`
	Version     string `trace:"log.version"`
	ResponseTS  string `trace:"http.request_ts"`
	LoggedAt    string `trace:"http.logged_at"`
}
