package capture

import (
	"context"
	"errors"
)

var (
	ErrEmptyAudio        = errors.New("empty audio")
	ErrUnsupportedFormat = errors.New("unsupported audio format, expected wav or mp3")
)

type Source int

const (
	SourceRecording Source = iota
	SourceUpload
)

func (s Source) String() string {
	if s == SourceUpload {
		return "upload"
	}
	return "recording"
}

// Archiver — необязательная копия входного аудио во внешнее хранилище.
type Archiver interface {
	SaveInput(ctx context.Context, sessionID string, data []byte, suffix string) (string, error)
}
