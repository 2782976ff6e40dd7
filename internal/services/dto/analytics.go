package dto

import (
	"miaoyou_backend/internal/analytics"
	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
)

type DailyStatsQuery struct {
	StartDate string `form:"start_date" validate:"omitempty,is-date"`
	EndDate   string `form:"end_date" validate:"omitempty,is-date"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=366"`
}

type SummaryQuery struct {
	StartDate string `form:"start_date" validate:"omitempty,is-date"`
	EndDate   string `form:"end_date" validate:"omitempty,is-date"`
}

type TopContentQuery struct {
	Date  string `form:"date" validate:"omitempty,is-date"`
	Type  string `form:"type" validate:"omitempty,max=32"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

type DailyStatsResponse struct {
	Data []models.DailyStats `json:"data"`
}

type TopContentResponse struct {
	Date  string                    `json:"date"`
	Type  string                    `json:"type"`
	Items []repositories.TopContent `json:"items"`
}

// RealtimeResponse - статистика, посчитанная по живому журналу без сохранения
type RealtimeResponse struct {
	Statistics analytics.DailyStatistics `json:"statistics"`
}

type LogDatesResponse struct {
	Kind  string   `json:"kind"`
	Dates []string `json:"dates"`
}

type RunAnalyticsResponse struct {
	Date       string                     `json:"date"`
	Processed  bool                       `json:"processed"`
	Statistics *analytics.DailyStatistics `json:"statistics,omitempty"`
}

type CleanupResponse struct {
	RetentionDays  int   `json:"retention_days"`
	DeletedFiles   int   `json:"deleted_files,omitempty"`
	DeletedRecords int64 `json:"deleted_records,omitempty"`
	DeletedDaily   int64 `json:"deleted_daily_stats,omitempty"`
}
