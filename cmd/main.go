package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voice_translator/internal/ai"
	"github.com/Vovarama1992/voice_translator/internal/capture"
	"github.com/Vovarama1992/voice_translator/internal/config"
	"github.com/Vovarama1992/voice_translator/internal/delivery"
	"github.com/Vovarama1992/voice_translator/internal/domain"
	"github.com/Vovarama1992/voice_translator/internal/error_notificator"
	"github.com/Vovarama1992/voice_translator/internal/infra"
	"github.com/Vovarama1992/voice_translator/internal/metrics"
	"github.com/Vovarama1992/voice_translator/internal/pipeline"
	"github.com/Vovarama1992/voice_translator/internal/ports"
	"github.com/Vovarama1992/voice_translator/internal/session"
	"github.com/Vovarama1992/voice_translator/internal/speech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// =========================================================================
	// SESSIONS
	// =========================================================================

	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions, err = session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err != nil {
			log.Fatalf("failed to init redis sessions: %v", err)
		}
	} else {
		sessions = session.NewMemoryStore()
	}

	// =========================================================================
	// INFRASTRUCTURE (optional)
	// =========================================================================

	var archive ports.ArchiveService
	if cfg.S3Enabled() {
		s3Client, err := infra.NewS3Client(ctx, infra.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Insecure:  cfg.S3Insecure,
		})
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		archive = domain.NewArchiveService(s3Client)
	}

	var history ports.HistoryService
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping failed: %v", err)
		}
		if err := infra.EnsureRunsSchema(ctx, db); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		history = domain.NewHistoryService(infra.NewRunRepo(db), baseLogger)
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errInfra error_notificator.Notificator
	if cfg.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("failed to init telegram notifier: %v", err)
		}
		errInfra = error_notificator.NewInfra(bot, cfg.TelegramAdminChatID)
	}
	errService := error_notificator.NewService(errInfra, baseLogger)

	// =========================================================================
	// CLIENTS (STT / LLM / TTS)
	// =========================================================================

	openAIClient := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
	})

	var stt speech.STTClient = openAIClient // Whisper
	if cfg.STTProvider == config.ProviderDeepgram {
		stt = ai.NewDeepgramClient(cfg.DeepgramKey, "")
	}

	var tts speech.TTSClient = openAIClient
	if cfg.TTSProvider == config.ProviderElevenLabs {
		tts = speech.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID, "")
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	speechService := speech.NewService(stt, tts)
	translator := ai.NewTranslationService(
		openAIClient,
		ai.NewTiktokenCounter(openAIClient.ChatModel()),
		cfg.MaxPromptTokens,
		baseLogger,
	)

	captureService := capture.NewService(cfg.TmpDir, archive, baseLogger)

	pipelineService := pipeline.NewService(pipeline.Deps{
		STT:        speechService,
		Translator: translator,
		TTS:        speechService,
		Notifier:   errService,
		Archive:    archive,
		History:    history,
		Metrics:    m,
	}, cfg.StageTimeout, baseLogger)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	handler := delivery.NewHandler(sessions, captureService, pipelineService, history, m, zl)
	delivery.RegisterRoutes(r, handler, sessions, delivery.RouteConfig{
		SessionTTL:         cfg.SessionTTL,
		TranslatePerMinute: cfg.TranslatePerMinute,
	}, zl)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			ctx := context.Background()

			if sw, ok := sessions.(session.Sweeper); ok {
				expired, err := sw.Sweep(ctx, cfg.SessionTTL)
				if err != nil {
					log.Printf("[cleanup-sessions] error: %v", err)
				}
				for _, st := range expired {
					captureService.Release(st)
				}
				if len(expired) > 0 {
					log.Printf("[cleanup-sessions] expired %d sessions", len(expired))
				}
			}

			removed, err := captureService.PurgeStale(cfg.SessionTTL)
			if err != nil {
				log.Printf("[cleanup-audio] error: %v", err)
			} else if removed > 0 {
				log.Printf("[cleanup-audio] removed %d stale temp files", removed)
			}
		}
	}()

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "voice_translator",
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
