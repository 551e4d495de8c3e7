package core

import "go.mongodb.org/mongo-driver/bson"

// ─── Database Types ────────────────────────────────────────────────────────────

// DatabaseType defines the type of database
type DatabaseType string

const (
	Mongo DatabaseType = "mongo"
	Redis DatabaseType = "redis"
)

// Databases contains all supported database types
var Databases = []DatabaseType{Mongo, Redis}

type MongoDatabaseName string
type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────
const (
	MongoDBAtlas MongoDatabaseName = "atlas"
)

// MongoDB collections
const (
	MongoCollectionTenants  MongoCollection = "tenants"
	MongoCollectionGeoNodes MongoCollection = "geo_nodes"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyServerName RedisKey = "atlas"     // 伺服器名稱（key 前綴）
	RedisKeySyncLock   RedisKey = "sync_lock" // 每租戶全量同步鎖
)

const (
	FluentdRequest    FluentdSubTag = "request_log"
	FluentdResponse   FluentdSubTag = "response_log"
	FluentdSyncReport FluentdSubTag = "atlas_sync_report"
)

type ListOptions struct {
	Filter bson.M `json:"filter,omitempty" bson:"filter,omitempty"`
	Page   int64  `json:"page,omitempty" bson:"page,omitempty"`
	Size   int64  `json:"size,omitempty" bson:"size,omitempty"`
}
