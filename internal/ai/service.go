package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tiktoken "github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var ErrEmptyTranslation = errors.New("model returned empty translation")

const translatePrompt = "You are a professional translator. Translate this from %[1]s to %[2]s.\n" +
	"Script: Use the native script of the %[2]s language.\n" +
	"Context: Use natural, conversational tones.\n" +
	"Return ONLY the translated text.\n\n%[3]s"

func RenderPrompt(source, target, text string) string {
	return fmt.Sprintf(translatePrompt, source, target, text)
}

type TranslationService struct {
	client          Completer
	countTokens     TokenCounter
	maxPromptTokens int
	log             *zap.Logger
}

func NewTranslationService(client Completer, counter TokenCounter, maxPromptTokens int, log *zap.Logger) *TranslationService {
	return &TranslationService{
		client:          client,
		countTokens:     counter,
		maxPromptTokens: maxPromptTokens,
		log:             log,
	}
}

func (s *TranslationService) Translate(ctx context.Context, source, target, text string) (string, error) {
	start := time.Now()
	prompt := RenderPrompt(source, target, text)

	if s.countTokens != nil && s.maxPromptTokens > 0 {
		n, err := s.countTokens(prompt)
		switch {
		case err != nil:
			s.log.Warn("token count unavailable", zap.Error(err))
		case n > s.maxPromptTokens:
			return "", fmt.Errorf("transcript too long: %d prompt tokens, limit %d", n, s.maxPromptTokens)
		}
	}

	reply, err := s.client.GetCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	s.log.Info("translation done",
		zap.String("source", source),
		zap.String("target", target),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return "", fmt.Errorf("gpt: %w (%s)", err, analyzeOpenAIError(err))
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyTranslation
	}
	return reply, nil
}

// NewTiktokenCounter — счётчик токенов для модели. Словарь BPE грузится
// лениво при первом вызове.
func NewTiktokenCounter(model string) TokenCounter {
	var (
		once sync.Once
		enc  *tiktoken.Tiktoken
		err  error
	)
	return func(text string) (int, error) {
		once.Do(func() {
			enc, err = tiktoken.EncodingForModel(model)
			if err != nil {
				enc, err = tiktoken.GetEncoding("o200k_base")
			}
		})
		if err != nil {
			return 0, fmt.Errorf("tokenizer init: %w", err)
		}
		return len(enc.Encode(text, nil, nil)), nil
	}
}
