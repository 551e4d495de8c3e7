package sync

import (
	"time"

	"atlas/config"
	fluentdRepo "atlas/internal/database/fluentd/repository"
	"atlas/internal/service"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewContentAdapter,
	NewERPAdapter,
	NewFleetAdapter,
	NewIdentityAdapter,
	ProvideAdapters,
	NewOrchestrator,
	wire.Bind(new(NodeSource), new(*service.HierarchyService)),
	wire.Bind(new(ReportSink), new(*fluentdRepo.LogRepository)),
)

// ProvideAdapters 固定順序組裝四個目標（順序只影響輸出排列）
func ProvideAdapters(
	content *ContentAdapter,
	erp *ERPAdapter,
	fleet *FleetAdapter,
	identity *IdentityAdapter,
) []Adapter {
	return []Adapter{content, erp, fleet, identity}
}

// syncTimeout 單次 adapter 呼叫的逾時
func syncTimeout(conf *config.Configuration) time.Duration {
	if conf.Sync.TimeoutMs > 0 {
		return time.Duration(conf.Sync.TimeoutMs) * time.Millisecond
	}
	return 10 * time.Second
}
