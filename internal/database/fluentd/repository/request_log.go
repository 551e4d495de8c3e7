package repository

import (
	"context"
	"encoding/json"
	"time"

	"atlas/config"
	"atlas/internal/core"
	"atlas/internal/database/client"
	"atlas/internal/database/fluentd/model"
)

// LogRepository 統一負責發送 Request/Response/SyncReport Log 到 Fluentd
type LogRepository struct {
	fluentdClient *client.FluentdClient
	projectName   string
	version       string
}

func NewLogRepository(config *config.Configuration, client *client.FluentdClient) *LogRepository {
	version := "1.0.0"
	if config.App.Version != "" {
		version = config.App.Version
	}
	return &LogRepository{fluentdClient: client, projectName: config.App.Name, version: version}
}

func (repository *LogRepository) LogRequest(ctx context.Context, req model.RequestLog) error {
	if req.LoggedAt == "" {
		req.LoggedAt = time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC")
	}
	if req.Version == "" {
		req.Version = repository.version
	}
	return repository.post(ctx, string(core.FluentdRequest), req)
}

func (repository *LogRepository) LogResponse(ctx context.Context, resp model.ResponseLog) error {
	if resp.LoggedAt == "" {
		resp.LoggedAt = time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC")
	}
	if resp.Version == "" {
		resp.Version = repository.version
	}
	return repository.post(ctx, string(core.FluentdResponse), resp)
}

// LogSyncReport 一輪同步一筆，orchestrator 跑完即發
func (repository *LogRepository) LogSyncReport(ctx context.Context, report model.SyncReport) error {
	if report.LoggedAt == "" {
		report.LoggedAt = time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC")
	}
	if report.Version == "" {
		report.Version = repository.version
	}
	if report.ProjectName == "" {
		report.ProjectName = repository.projectName
	}
	return repository.post(ctx, string(core.FluentdSyncReport), report)
}

func (repository *LogRepository) post(ctx context.Context, tag string, record any) error {
	b, _ := json.Marshal(record)
	var fluentdMessage map[string]any
	_ = json.Unmarshal(b, &fluentdMessage)
	return repository.fluentdClient.Post(ctx, tag, fluentdMessage)
}
