package handler

import (
	"atlas/config"
	redisRepo "atlas/internal/database/redis/repository"
	"atlas/internal/dto"
	cErr "atlas/internal/pkg/error"
	"atlas/internal/pkg/response"
	"atlas/internal/service/sync"
	"atlas/internal/telemetry"
	"atlas/utils/validate"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	trace        *telemetry.Trace
	config       *config.Configuration
	orchestrator *sync.Orchestrator
	syncLockRepo *redisRepo.SyncLockRepository
}

func NewSyncHandler(
	trace *telemetry.Trace,
	config *config.Configuration,
	orchestrator *sync.Orchestrator,
	syncLockRepo *redisRepo.SyncLockRepository,
) *SyncHandler {
	return &SyncHandler{
		trace:        trace,
		config:       config,
		orchestrator: orchestrator,
		syncLockRepo: syncLockRepo,
	}
}

// SyncTenant 全量同步
// @Summary 觸發租戶的全量階層同步（同租戶同時間只允許一個）
// @Tags Admin-Sync
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} dto.SyncResultDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/sync/tenants/{tenantID} [post]
func (h *SyncHandler) SyncTenant(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	tenantID, cause, respErr := validate.ParseObjectID(c, "tenantID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.syncLockRepo.Acquire(ctx, tenantID, h.config.Sync.LockTTLSec); err != nil {
		if err == redisRepo.ErrSyncLockHeld {
			end(err)
			response.AbortWithError(c, cErr.SyncAlreadyRunning("sync already running for tenant "+tenantID.Hex()))
			return
		}
		end(err)
		response.AbortWithError(c, cErr.DatabaseError(err.Error()))
		return
	}
	defer h.syncLockRepo.Release(ctx, tenantID)

	result := h.orchestrator.SyncFullHierarchy(ctx, tenantID)

	res := dto.SyncResultDto{
		TenantID: tenantID.Hex(),
		Targets:  map[string]dto.SyncTargetStatsDto{},
	}
	for target, stats := range result {
		res.Targets[string(target)] = dto.SyncTargetStatsDto{
			Synced: stats.Synced,
			Failed: stats.Failed,
			Errors: stats.Errors,
		}
	}
	response.Success(c, res)
}

// SyncNode 單節點同步
// @Summary 重新同步單一節點到所有目標系統
// @Tags Admin-Sync
// @Produce json
// @Param nodeID path string true "Node ID"
// @Success 200 {object} dto.SyncNodeResultDto
// @Failure 400 {object} map[string]string
// @Router /admin/sync/nodes/{nodeID} [post]
func (h *SyncHandler) SyncNode(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	nodeID, cause, respErr := validate.ParseObjectID(c, "nodeID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	targets := h.orchestrator.SyncSingleNode(ctx, nodeID)
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, string(target))
	}
	response.Success(c, dto.SyncNodeResultDto{
		NodeID:  nodeID.Hex(),
		Targets: names,
	})
}
