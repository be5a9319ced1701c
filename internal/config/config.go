package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI     = "openai"
	ProviderDeepgram   = "deepgram"
	ProviderElevenLabs = "elevenlabs"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY not set")

type Config struct {
	Port string

	OpenAIKey     string
	OpenAIBaseURL string

	STTProvider       string
	TTSProvider       string
	DeepgramKey       string
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	TmpDir          string
	StageTimeout    time.Duration
	MaxPromptTokens int

	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseURL string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Insecure  bool // http вместо https, для локального MinIO

	TelegramToken       string
	TelegramAdminChatID int64

	TranslatePerMinute int
}

// Load читает конфиг из окружения процесса.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

func LoadFrom(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:              env("PORT", "8080"),
		OpenAIKey:         env("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     env("OPENAI_BASE_URL", ""),
		STTProvider:       strings.ToLower(env("STT_PROVIDER", ProviderOpenAI)),
		TTSProvider:       strings.ToLower(env("TTS_PROVIDER", ProviderOpenAI)),
		DeepgramKey:       env("DEEPGRAM_API_KEY", ""),
		ElevenLabsKey:     env("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: env("ELEVENLABS_VOICE_ID", ""),
		TmpDir:            env("TMP_DIR", ""),
		RedisAddr:         env("REDIS_ADDR", ""),
		RedisPassword:     env("REDIS_PASSWORD", ""),
		DatabaseURL:       env("DATABASE_URL", ""),
		S3Endpoint:        env("S3_ENDPOINT", ""),
		S3AccessKey:       env("S3_ACCESS_KEY", ""),
		S3SecretKey:       env("S3_SECRET_KEY", ""),
		S3Bucket:          env("S3_BUCKET", ""),
		S3Region:          env("S3_REGION", ""),
		TelegramToken:     env("TELEGRAM_BOT_TOKEN", ""),
	}

	if cfg.OpenAIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var err error
	if cfg.StageTimeout, err = time.ParseDuration(env("STAGE_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("STAGE_TIMEOUT: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(env("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(env("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.MaxPromptTokens, err = strconv.Atoi(env("TRANSLATE_MAX_PROMPT_TOKENS", "16000")); err != nil {
		return nil, fmt.Errorf("TRANSLATE_MAX_PROMPT_TOKENS: %w", err)
	}
	if cfg.S3Insecure, err = strconv.ParseBool(env("S3_INSECURE", "false")); err != nil {
		return nil, fmt.Errorf("S3_INSECURE: %w", err)
	}
	if cfg.TranslatePerMinute, err = strconv.Atoi(env("TRANSLATE_RATE_LIMIT", "10")); err != nil {
		return nil, fmt.Errorf("TRANSLATE_RATE_LIMIT: %w", err)
	}
	if v := env("TELEGRAM_ADMIN_CHAT_ID", ""); v != "" {
		if cfg.TelegramAdminChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.STTProvider {
	case ProviderOpenAI:
	case ProviderDeepgram:
		if c.DeepgramKey == "" {
			return errors.New("STT_PROVIDER=deepgram requires DEEPGRAM_API_KEY")
		}
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STTProvider)
	}

	switch c.TTSProvider {
	case ProviderOpenAI:
	case ProviderElevenLabs:
		if c.ElevenLabsKey == "" {
			return errors.New("TTS_PROVIDER=elevenlabs requires ELEVENLABS_API_KEY")
		}
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
	}

	if c.StageTimeout <= 0 {
		return errors.New("STAGE_TIMEOUT must be positive")
	}
	if c.TelegramToken != "" && c.TelegramAdminChatID == 0 {
		return errors.New("TELEGRAM_BOT_TOKEN requires TELEGRAM_ADMIN_CHAT_ID")
	}
	return nil
}

func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}
