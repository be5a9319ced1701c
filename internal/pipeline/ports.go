package pipeline

import (
	"context"
	"errors"

	"github.com/Vovarama1992/voice_translator/internal/ports"
)

var (
	ErrNoAudio         = errors.New("no captured audio")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrRunInProgress   = errors.New("pipeline already running for this session")
	ErrEmptyTranscript = errors.New("no speech recognized")
)

type Transcriber interface {
	Transcribe(ctx context.Context, filePath, language string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, source, target, text string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Notifier interface {
	Notify(ctx context.Context, sessionID string, err error, details string) error
}

type OutputArchiver interface {
	SaveOutput(ctx context.Context, sessionID string, data []byte) (string, error)
}

type RunRecorder interface {
	Record(ctx context.Context, run ports.Run)
}
