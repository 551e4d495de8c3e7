package database

import (
	client "atlas/internal/database/client"
	fluentdRepo "atlas/internal/database/fluentd/repository"
	mongoRepo "atlas/internal/database/mongodb/repository"
	redisRepo "atlas/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)
