package config

// SyncTargetConfig 單一外部系統的連線設定。
// BaseURL 或憑證缺一即視為「未設定」，該目標在整輪同步中為 no-op。
type SyncTargetConfig struct {
	BaseURL string `mapstructure:"BASE_URL" json:"base_url" yaml:"base_url"`
	APIKey  string `mapstructure:"API_KEY" json:"api_key" yaml:"api_key"`
}

// IdentitySyncConfig 識別系統（DID/VC）設定，多一個簽發者識別
type IdentitySyncConfig struct {
	BaseURL  string `mapstructure:"BASE_URL" json:"base_url" yaml:"base_url"`
	APIKey   string `mapstructure:"API_KEY" json:"api_key" yaml:"api_key"`
	IssuerID string `mapstructure:"ISSUER_ID" json:"issuer_id" yaml:"issuer_id"`
}

type Sync struct {
	// 單次 adapter 呼叫的逾時（毫秒），0 採預設 10000
	TimeoutMs int `mapstructure:"TIMEOUT_MS" json:"timeout_ms" yaml:"timeout_ms"`
	// 每租戶全量同步鎖的 TTL（秒），0 採預設 1800
	LockTTLSec int64 `mapstructure:"LOCK_TTL_SEC" json:"lock_ttl_sec" yaml:"lock_ttl_sec"`
	// cron spec（含秒欄位），空字串表示不排程
	CronSpec string `mapstructure:"CRON_SPEC" json:"cron_spec" yaml:"cron_spec"`

	Content  SyncTargetConfig   `mapstructure:"CONTENT" json:"content" yaml:"content"`
	ERP      SyncTargetConfig   `mapstructure:"ERP" json:"erp" yaml:"erp"`
	Fleet    SyncTargetConfig   `mapstructure:"FLEET" json:"fleet" yaml:"fleet"`
	Identity IdentitySyncConfig `mapstructure:"IDENTITY" json:"identity" yaml:"identity"`
}
