package ports

import (
	"context"
	"time"
)

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// DTO одного запуска пайплайна
type Run struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"session_id"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	Transcript     string    `json:"transcript"`
	TranslatedText string    `json:"translated_text"`
	Status         string    `json:"status"`
	FailedStage    string    `json:"failed_stage,omitempty"`
	Error          string    `json:"error,omitempty"`
	AudioURL       *string   `json:"audio_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Репозиторий Postgres
type RunRepo interface {
	Create(ctx context.Context, run Run) (int64, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Run, error)
}

type HistoryService interface {
	Record(ctx context.Context, run Run)
	List(ctx context.Context, sessionID string) ([]Run, error)
}
