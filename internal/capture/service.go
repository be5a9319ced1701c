package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_translator/internal/session"
)

type Service struct {
	dir     string
	archive Archiver
	log     *zap.Logger
}

// NewService: dir пустой — системный tmp. archive может быть nil.
func NewService(dir string, archive Archiver, log *zap.Logger) *Service {
	return &Service{
		dir:     dir,
		archive: archive,
		log:     log,
	}
}

// Capture пишет буфер в новый временный файл, кладёт путь в сессию
// и удаляет файл предыдущего захвата.
func (s *Service) Capture(
	ctx context.Context,
	st *session.State,
	src Source,
	data []byte,
	filename string,
	contentType string,
) error {
	if len(data) == 0 {
		return ErrEmptyAudio
	}

	var suffix string
	switch src {
	case SourceUpload:
		sfx, err := uploadSuffix(filename, data)
		if err != nil {
			return err
		}
		suffix = sfx
	default:
		suffix = recordingSuffix(contentType, data)
	}

	path, err := s.writeTemp(data, suffix)
	if err != nil {
		return err
	}

	prev := st.AudioFilePath
	st.AudioFilePath = path
	st.AudioSuffix = suffix
	// ошибка прошлого запуска к новому входу не относится
	st.LastError = ""

	if prev != "" && prev != path {
		s.remove(prev)
	}

	s.log.Info("audio captured",
		zap.String("session", st.ID),
		zap.String("source", src.String()),
		zap.String("suffix", suffix),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
	)

	if s.archive != nil {
		url, err := s.archive.SaveInput(ctx, st.ID, data, suffix)
		if err != nil {
			s.log.Warn("archive input failed", zap.String("session", st.ID), zap.Error(err))
		} else {
			s.log.Debug("input archived", zap.String("url", url))
		}
	}

	return nil
}

// Release удаляет текущий временный файл сессии.
func (s *Service) Release(st *session.State) {
	if st.AudioFilePath == "" {
		return
	}
	s.remove(st.AudioFilePath)
	st.AudioFilePath = ""
	st.AudioSuffix = ""
}

func (s *Service) Read(st *session.State) ([]byte, error) {
	if st.AudioFilePath == "" {
		return nil, ErrEmptyAudio
	}
	data, err := os.ReadFile(st.AudioFilePath)
	if err != nil {
		return nil, fmt.Errorf("read captured audio: %w", err)
	}
	return data, nil
}

func (s *Service) writeTemp(data []byte, suffix string) (string, error) {
	f, err := os.CreateTemp(s.dir, "capture-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func (s *Service) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("remove temp audio failed", zap.String("path", path), zap.Error(err))
	}
}

// Touch продлевает жизнь файла захвата: PurgeStale смотрит на mtime,
// а живая сессия может гонять пайплайн по одному захвату сколько угодно.
func (s *Service) Touch(st *session.State) {
	if st.AudioFilePath == "" {
		return
	}
	now := time.Now()
	if err := os.Chtimes(st.AudioFilePath, now, now); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("touch temp audio failed", zap.String("path", st.AudioFilePath), zap.Error(err))
	}
}

// PurgeStale удаляет файлы захвата, к которым не обращались дольше olderThan.
// Нужна для сессий, которые истекли в Redis и уже не вызовут Release.
func (s *Service) PurgeStale(olderThan time.Duration) (int, error) {
	dir := s.dir
	if dir == "" {
		dir = os.TempDir()
	}

	matches, err := filepath.Glob(filepath.Join(dir, "capture-*"))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}
