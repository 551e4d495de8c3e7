package command

import (
	"context"

	"atlas/config"
	redisRepo "atlas/internal/database/redis/repository"
	syncService "atlas/internal/service/sync"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type SyncFullHandler struct {
	logger       *zap.Logger
	config       *config.Configuration
	syncLockRepo *redisRepo.SyncLockRepository
	orchestrator *syncService.Orchestrator
}

func NewSyncFullHandler(
	logger *zap.Logger,
	config *config.Configuration,
	syncLockRepo *redisRepo.SyncLockRepository,
	orchestrator *syncService.Orchestrator,
) *SyncFullHandler {
	return &SyncFullHandler{
		logger:       logger,
		config:       config,
		syncLockRepo: syncLockRepo,
		orchestrator: orchestrator,
	}
}

// Run 以命令列觸發單一租戶的全量同步
func (handler *SyncFullHandler) Run(cmd *cobra.Command, tenantHex string) {
	ctx := context.Background()

	tenantID, err := primitive.ObjectIDFromHex(tenantHex)
	if err != nil {
		cmd.PrintErrf("invalid tenant id %q: %v\n", tenantHex, err)
		return
	}

	if err := handler.syncLockRepo.Acquire(ctx, tenantID, handler.config.Sync.LockTTLSec); err != nil {
		if err == redisRepo.ErrSyncLockHeld {
			cmd.PrintErrf("sync already running for tenant %s\n", tenantHex)
			return
		}
		cmd.PrintErrf("acquire sync lock failed: %v\n", err)
		return
	}
	defer handler.syncLockRepo.Release(ctx, tenantID)

	result := handler.orchestrator.SyncFullHierarchy(ctx, tenantID)
	for target, stats := range result {
		cmd.Printf("%s: synced=%d failed=%d\n", target, stats.Synced, stats.Failed)
		for _, message := range stats.Errors {
			cmd.Printf("  %s\n", message)
		}
	}
}
