package dto

import "ai-knowledge-bot/internal/pkg/logger"

type LogListResponse struct {
	Items  []logger.LogEntry `json:"items"`
	Level  string            `json:"level,omitempty"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	LoadedSessions int    `json:"loaded_sessions"`
}
