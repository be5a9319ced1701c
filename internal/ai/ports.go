package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

type Completer interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Translator переводит транскрипт между языками реестра (по отображаемым именам).
type Translator interface {
	Translate(ctx context.Context, source, target, text string) (string, error)
}

// TokenCounter считает токены промпта; nil отключает проверку бюджета.
type TokenCounter func(text string) (int, error)
