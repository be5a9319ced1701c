package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIConfig struct {
	APIKey string
	// BaseURL пустой — api.openai.com
	BaseURL string

	ChatModel string
	STTModel  string
	TTSModel  openai.SpeechModel
	Voice     openai.SpeechVoice
}

type OpenAIClient struct {
	client    *openai.Client
	chatModel string
	sttModel  string
	ttsModel  openai.SpeechModel
	voice     openai.SpeechVoice
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	c := &OpenAIClient{
		client:    openai.NewClientWithConfig(oc),
		chatModel: cfg.ChatModel,
		sttModel:  cfg.STTModel,
		ttsModel:  cfg.TTSModel,
		voice:     cfg.Voice,
	}
	if c.chatModel == "" {
		c.chatModel = openai.GPT4oMini
	}
	if c.sttModel == "" {
		c.sttModel = openai.Whisper1
	}
	if c.ttsModel == "" {
		c.ttsModel = openai.TTSModel1
	}
	if c.voice == "" {
		c.voice = openai.VoiceAlloy
	}
	return c
}

func (c *OpenAIClient) ChatModel() string { return c.chatModel }

// GetCompletion — детерминированная генерация. Temperature с omitempty,
// поэтому ноль передаём как наименьшее ненулевое значение.
func (c *OpenAIClient) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe: голос → текст. language пустой — Whisper определит сам.
func (c *OpenAIClient) Transcribe(ctx context.Context, filePath, language string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		FilePath: filePath,
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper: %w (%s)", err, analyzeOpenAIError(err))
	}
	return resp.Text, nil
}

// Synthesize: текст → mp3.
func (c *OpenAIClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.ttsModel,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("tts: %w (%s)", err, analyzeOpenAIError(err))
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read tts body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("tts: empty audio")
	}
	return data, nil
}

// диагностика ошибок OpenAI
func analyzeOpenAIError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return "invalid OpenAI API key"
		case 404:
			return "model not found"
		case 429:
			return "OpenAI rate limit exceeded"
		case 400:
			return "bad request to OpenAI"
		case 500, 502, 503:
			return "OpenAI internal error"
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("OpenAI request failed with status %d", reqErr.HTTPStatusCode)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "OpenAI request timed out"
	}
	return "unknown OpenAI error"
}
