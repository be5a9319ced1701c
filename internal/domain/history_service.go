package domain

import (
	"context"

	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_translator/internal/ports"
)

const historyLimit = 20

type historyService struct {
	repo ports.RunRepo
	log  *zap.Logger
}

func NewHistoryService(repo ports.RunRepo, log *zap.Logger) ports.HistoryService {
	return &historyService{repo: repo, log: log}
}

// Record не возвращает ошибку: история вторична по отношению к пайплайну.
func (s *historyService) Record(ctx context.Context, run ports.Run) {
	id, err := s.repo.Create(ctx, run)
	if err != nil {
		s.log.Warn("save run failed", zap.String("session", run.SessionID), zap.Error(err))
		return
	}
	s.log.Debug("run saved", zap.Int64("id", id))
}

func (s *historyService) List(ctx context.Context, sessionID string) ([]ports.Run, error) {
	return s.repo.ListBySession(ctx, sessionID, historyLimit)
}
