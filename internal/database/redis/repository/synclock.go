package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atlas/internal/core"
	client "atlas/internal/database/client"
	"atlas/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SyncLockRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
}

func NewSyncLockRepository(trace *telemetry.Trace, client *client.RedisClient) *SyncLockRepository {
	return &SyncLockRepository{trace: trace, client: client.Client()}
}

var ErrSyncLockHeld = errors.New("sync already running for tenant")

// Acquire 為租戶取得全量同步鎖：SETNX + TTL。
// 已有人持鎖回傳 ErrSyncLockHeld。TTL 是單純的保險，正常路徑由 Release 歸還。
func (repository *SyncLockRepository) Acquire(
	contextValue context.Context,
	tenantIdentifier primitive.ObjectID,
	timeToLiveSeconds int64,
) (returnedError error) {

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	if timeToLiveSeconds <= 0 {
		timeToLiveSeconds = 1800
	}

	traceMetadata := core.TraceSyncLockMeta{
		TenantID: tenantIdentifier.Hex(),
		TTLSec:   timeToLiveSeconds,
		Op:       "acquire",
	}

	redisKey := repository.buildKey(tenantIdentifier)
	expirationDuration := time.Duration(timeToLiveSeconds) * time.Second

	wasSet, setError := repository.client.SetNX(contextValue, redisKey, time.Now().UTC().Unix(), expirationDuration).Result()
	if setError != nil {
		returnedError = setError
		return returnedError
	}
	traceMetadata.Acquired = wasSet
	repository.trace.ApplyTraceAttributes(span, traceMetadata)

	if !wasSet {
		returnedError = ErrSyncLockHeld
		return returnedError
	}
	return nil
}

// Release 歸還鎖（跑完或失敗都要歸還；TTL 只兜底 crash 的情況）
func (repository *SyncLockRepository) Release(
	contextValue context.Context,
	tenantIdentifier primitive.ObjectID,
) (returnedError error) {

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceSyncLockMeta{
		TenantID: tenantIdentifier.Hex(),
		Op:       "release",
	})

	redisKey := repository.buildKey(tenantIdentifier)
	returnedError = repository.client.Del(contextValue, redisKey).Err()
	return returnedError
}

// IsHeld 查詢租戶是否有同步執行中（cron 端略過用）
func (repository *SyncLockRepository) IsHeld(
	contextValue context.Context,
	tenantIdentifier primitive.ObjectID,
) (held bool, returnedError error) {

	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	redisKey := repository.buildKey(tenantIdentifier)
	count, existsError := repository.client.Exists(contextValue, redisKey).Result()
	if existsError != nil {
		returnedError = existsError
		return false, returnedError
	}
	return count > 0, nil
}

// buildKey 建構同步鎖用的 Redis key
func (r *SyncLockRepository) buildKey(tenantID primitive.ObjectID) string {
	return fmt.Sprintf("%s:%s:%s", core.RedisKeyServerName, core.RedisKeySyncLock, tenantID.Hex())
}
