package repository

import (
	"github.com/google/wire"
)

// 統一管理所有 Redis repository
type RedisRepository struct {
	syncLockRepo *SyncLockRepository
}

// 建立 Redis repository 物件
func NewRedisRepository(
	syncLockRepo *SyncLockRepository,
) *RedisRepository {
	return &RedisRepository{
		syncLockRepo: syncLockRepo,
	}
}

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewSyncLockRepository,
	NewRedisRepository)
