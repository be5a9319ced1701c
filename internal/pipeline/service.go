package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_translator/internal/languages"
	"github.com/Vovarama1992/voice_translator/internal/metrics"
	"github.com/Vovarama1992/voice_translator/internal/ports"
	"github.com/Vovarama1992/voice_translator/internal/session"
)

const DefaultStageTimeout = 60 * time.Second

type Deps struct {
	STT        Transcriber
	Translator Translator
	TTS        Synthesizer

	// необязательные
	Notifier Notifier
	Archive  OutputArchiver
	History  RunRecorder
	Metrics  *metrics.Metrics
}

type Service struct {
	stt        Transcriber
	translator Translator
	tts        Synthesizer
	notifier   Notifier
	archive    OutputArchiver
	history    RunRecorder
	metrics    *metrics.Metrics

	timeout time.Duration
	log     *zap.Logger

	// один запуск на сессию
	runs *session.Locks
}

func NewService(d Deps, stageTimeout time.Duration, log *zap.Logger) *Service {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return &Service{
		stt:        d.STT,
		translator: d.Translator,
		tts:        d.TTS,
		notifier:   d.Notifier,
		archive:    d.Archive,
		history:    d.History,
		metrics:    d.Metrics,
		timeout:    stageTimeout,
		log:        log,
		runs:       session.NewLocks(),
	}
}

// Run выполняет transcribe → translate → synthesize и меняет st по ходу.
// Стадии строго последовательны, первая ошибка останавливает запуск;
// результаты завершённых стадий остаются в st.
func (s *Service) Run(ctx context.Context, st *session.State, source, target string) Result {
	if !st.HasAudio() {
		return Result{Err: ErrNoAudio}
	}

	srcCode, ok := languages.Code(source)
	if !ok {
		return Result{Err: fmt.Errorf("%w: %q", ErrUnknownLanguage, source)}
	}
	if !languages.Valid(target) {
		return Result{Err: fmt.Errorf("%w: %q", ErrUnknownLanguage, target)}
	}

	unlock, ok := s.runs.TryLock(st.ID)
	if !ok {
		return Result{Err: ErrRunInProgress}
	}
	defer unlock()

	start := time.Now()
	s.log.Info("pipeline start",
		zap.String("session", st.ID),
		zap.String("source", source),
		zap.String("target", target),
	)

	st.SourceLang = source
	st.TargetLang = target
	st.LastError = ""

	var res Result

	// 1. Transcription
	tr := s.stage(StageTranscribe, func() StageResult {
		c, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		text, err := s.stt.Transcribe(c, st.AudioFilePath, languages.TranscriptionHint(srcCode))
		text = strings.TrimSpace(text)
		if err == nil && text == "" {
			err = ErrEmptyTranscript
		}
		return StageResult{Text: text, Err: err}
	})
	res.Stages = append(res.Stages, tr)
	if !tr.OK() {
		return s.fail(ctx, st, res, tr)
	}
	// новый транскрипт делает прошлый перевод и аудио недействительными
	st.Transcript = tr.Text
	st.TranslatedText = ""
	st.AudioOutput = nil

	// 2. Translation
	tl := s.stage(StageTranslate, func() StageResult {
		c, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		text, err := s.translator.Translate(c, source, target, st.Transcript)
		return StageResult{Text: strings.TrimSpace(text), Err: err}
	})
	res.Stages = append(res.Stages, tl)
	if !tl.OK() {
		return s.fail(ctx, st, res, tl)
	}
	st.TranslatedText = tl.Text

	// 3. Text-to-Speech
	sy := s.stage(StageSynthesize, func() StageResult {
		c, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		audio, err := s.tts.Synthesize(c, st.TranslatedText)
		return StageResult{Audio: audio, Err: err}
	})
	res.Stages = append(res.Stages, sy)
	if !sy.OK() {
		return s.fail(ctx, st, res, sy)
	}
	st.AudioOutput = sy.Audio

	if s.archive != nil {
		url, err := s.archive.SaveOutput(ctx, st.ID, sy.Audio)
		if err != nil {
			s.log.Warn("archive output failed", zap.String("session", st.ID), zap.Error(err))
		} else {
			res.AudioURL = url
		}
	}

	if s.metrics != nil {
		s.metrics.PipelineRuns.WithLabelValues("succeeded").Inc()
	}
	s.record(ctx, st, res)

	s.log.Info("pipeline done",
		zap.String("session", st.ID),
		zap.Duration("took", time.Since(start)),
	)
	return res
}

func (s *Service) stage(name Stage, fn func() StageResult) StageResult {
	start := time.Now()
	r := fn()
	r.Stage = name
	r.Took = time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveStage(string(name), r.Took, r.Err)
	}
	s.log.Debug("stage finished",
		zap.String("stage", string(name)),
		zap.Duration("took", r.Took),
		zap.Error(r.Err),
	)
	return r
}

func (s *Service) fail(ctx context.Context, st *session.State, res Result, failed StageResult) Result {
	res.FailedStage = failed.Stage
	res.Err = failed.Err
	st.LastError = res.Message()

	if s.metrics != nil {
		s.metrics.PipelineRuns.WithLabelValues("failed").Inc()
	}
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, st.ID, failed.Err, "stage: "+string(failed.Stage))
	}
	s.record(ctx, st, res)
	return res
}

func (s *Service) record(ctx context.Context, st *session.State, res Result) {
	if s.history == nil {
		return
	}

	run := ports.Run{
		SessionID:  st.ID,
		SourceLang: st.SourceLang,
		TargetLang: st.TargetLang,
		Status:     ports.RunStatusSucceeded,
		CreatedAt:  time.Now(),
	}
	// в историю попадает только то, что получено в этом запуске
	for _, sr := range res.Stages {
		if !sr.OK() {
			continue
		}
		switch sr.Stage {
		case StageTranscribe:
			run.Transcript = sr.Text
		case StageTranslate:
			run.TranslatedText = sr.Text
		}
	}
	if !res.Succeeded() {
		run.Status = ports.RunStatusFailed
		run.FailedStage = string(res.FailedStage)
		run.Error = res.Err.Error()
	}
	if res.AudioURL != "" {
		url := res.AudioURL
		run.AudioURL = &url
	}

	// запись истории не должна обрываться вместе с запросом
	s.history.Record(context.WithoutCancel(ctx), run)
}
