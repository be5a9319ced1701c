package ports

import "context"

// ArchiveService складывает входное и синтезированное аудио в бакет.
type ArchiveService interface {
	ObjectKey(sessionID, kind, suffix string) string
	SaveInput(ctx context.Context, sessionID string, data []byte, suffix string) (string, error)
	SaveOutput(ctx context.Context, sessionID string, data []byte) (string, error)
}
