package domain

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/voice_translator/internal/ports"
)

type archiveService struct {
	client ports.S3Client
}

func NewArchiveService(client ports.S3Client) ports.ArchiveService {
	return &archiveService{client: client}
}

// ObjectKey — путь в бакете
func (s *archiveService) ObjectKey(sessionID, kind, suffix string) string {
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s/%s/%s/%s%s", date, sessionID, kind, uuid.NewString(), suffix)
}

func (s *archiveService) SaveInput(ctx context.Context, sessionID string, data []byte, suffix string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID required")
	}
	key := s.ObjectKey(sessionID, "input", suffix)
	return s.client.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), inputContentType(suffix))
}

func (s *archiveService) SaveOutput(ctx context.Context, sessionID string, data []byte) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID required")
	}
	key := s.ObjectKey(sessionID, "output", ".mp3")
	return s.client.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), "audio/mpeg")
}

func inputContentType(suffix string) string {
	switch suffix {
	case ".mp3":
		return "audio/mpeg"
	case ".webm":
		return "audio/webm"
	case ".ogg":
		return "audio/ogg"
	}
	return "audio/wav"
}
