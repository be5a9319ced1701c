package error_notificator

import (
	"context"

	"go.uber.org/zap"
)

// Service всегда пишет ошибку в лог; infra (Telegram) необязателен.
type Service struct {
	infra Notificator
	log   *zap.Logger
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	return &Service{infra: infra, log: log}
}

func (s *Service) Notify(ctx context.Context, sessionID string, err error, details string) error {
	s.log.Error("pipeline failure",
		zap.String("session", sessionID),
		zap.String("details", details),
		zap.Error(err),
	)

	if s.infra == nil {
		return nil
	}
	if sendErr := s.infra.Notify(ctx, sessionID, err, details); sendErr != nil {
		s.log.Warn("admin notify failed", zap.Error(sendErr))
		return sendErr
	}
	return nil
}
