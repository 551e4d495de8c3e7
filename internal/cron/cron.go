package cron

import (
	"context"

	"atlas/config"
	"atlas/internal/database/mongodb/model"
	mongoRepo "atlas/internal/database/mongodb/repository"
	redisRepo "atlas/internal/database/redis/repository"
	syncService "atlas/internal/service/sync"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron)

type Cron struct {
	logger       *zap.Logger
	server       *cron.Cron
	config       *config.Configuration
	tenantRepo   *mongoRepo.TenantRepository
	syncLockRepo *redisRepo.SyncLockRepository
	orchestrator *syncService.Orchestrator
}

// NewCron .
func NewCron(
	logger *zap.Logger,
	config *config.Configuration,
	tenantRepo *mongoRepo.TenantRepository,
	syncLockRepo *redisRepo.SyncLockRepository,
	orchestrator *syncService.Orchestrator,
) *Cron {
	server := cron.New(
		cron.WithSeconds(),
	)

	return &Cron{
		logger:       logger,
		server:       server,
		config:       config,
		tenantRepo:   tenantRepo,
		syncLockRepo: syncLockRepo,
		orchestrator: orchestrator,
	}
}

func (c *Cron) Run() error {
	spec := c.config.Sync.CronSpec
	if spec == "" {
		spec = "0 0 3 * * *"
	}
	if _, err := c.server.AddFunc(spec, c.syncAllTenants); err != nil {
		return err
	}

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	c.server.Stop()
	return nil
}

// syncAllTenants 對每個 active 租戶跑一次全量同步。
// 取不到鎖代表有人正在同步，略過該租戶。
func (c *Cron) syncAllTenants() {
	ctx := context.Background()

	tenants, err := c.tenantRepo.List(ctx, bson.M{"status": "active"})
	if err != nil {
		c.logger.Error("[Cron] list tenants failed", zap.Error(err))
		return
	}

	for _, tenant := range tenants {
		c.syncTenant(ctx, tenant)
	}
}

func (c *Cron) syncTenant(ctx context.Context, tenant *model.Tenant) {
	if err := c.syncLockRepo.Acquire(ctx, tenant.ID, c.config.Sync.LockTTLSec); err != nil {
		if err == redisRepo.ErrSyncLockHeld {
			c.logger.Info("[Cron] sync already running, skip tenant",
				zap.String("tenantId", tenant.ID.Hex()))
			return
		}
		c.logger.Error("[Cron] acquire sync lock failed",
			zap.String("tenantId", tenant.ID.Hex()), zap.Error(err))
		return
	}
	defer c.syncLockRepo.Release(ctx, tenant.ID)

	result := c.orchestrator.SyncFullHierarchy(ctx, tenant.ID)
	for target, stats := range result {
		c.logger.Info("[Cron] tenant sync finished",
			zap.String("tenantId", tenant.ID.Hex()),
			zap.String("target", string(target)),
			zap.Int("synced", stats.Synced),
			zap.Int("failed", stats.Failed),
		)
	}
}
