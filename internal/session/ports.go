package session

import (
	"context"
	"errors"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/languages"
)

var ErrNotFound = errors.New("session not found")

// State — всё, что живёт в рамках одной пользовательской сессии.
type State struct {
	ID string `json:"id"`

	AudioFilePath string `json:"audio_file_path,omitempty"`
	AudioSuffix   string `json:"audio_suffix,omitempty"`

	Transcript     string `json:"transcript"`
	TranslatedText string `json:"translated_text"`
	AudioOutput    []byte `json:"audio_output,omitempty"`

	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`

	// текст последней ошибки пайплайна, показывается пользователю
	LastError string `json:"last_error,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func New(id string) *State {
	return &State{
		ID:         id,
		SourceLang: languages.DefaultSource(),
		TargetLang: languages.DefaultTarget(),
		UpdatedAt:  time.Now(),
	}
}

func (s *State) HasAudio() bool {
	return s.AudioFilePath != ""
}

// Clone — глубокая копия, сторы не должны делить буфер с вызывающим.
func (s *State) Clone() *State {
	c := *s
	if s.AudioOutput != nil {
		c.AudioOutput = append([]byte(nil), s.AudioOutput...)
	}
	return &c
}

type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, st *State) error
	Delete(ctx context.Context, id string) error
}

// Sweeper — стор без собственного TTL; просроченные сессии забирает фоновая задача.
type Sweeper interface {
	Sweep(ctx context.Context, olderThan time.Duration) ([]*State, error)
}
