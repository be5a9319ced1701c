package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Vovarama1992/voice_translator/internal/session"
)

type RouteConfig struct {
	SessionTTL time.Duration
	// запусков пайплайна в минуту с одного IP, 0 — без лимита
	TranslatePerMinute int
}

func RegisterRoutes(
	r chi.Router,
	h *Handler,
	sessions session.Store,
	cfg RouteConfig,
	log *logger.ZapLogger,
) {
	r.Group(func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			SessionMiddleware(sessions, cfg.SessionTTL, log),
		)

		// --- страница и состояние ---
		pr.Get("/", h.Index)
		pr.Get("/languages", h.Languages)
		pr.Get("/state", h.State)
		pr.Get("/history", h.History)

		// --- захват аудио ---
		pr.Post("/audio/record", h.Record)
		pr.Post("/audio/upload", h.Upload)
		pr.Get("/audio/input", h.InputAudio)

		// --- пайплайн ---
		translate := http.HandlerFunc(h.Translate)
		if cfg.TranslatePerMinute > 0 {
			pr.With(httprate.LimitByIP(cfg.TranslatePerMinute, time.Minute)).Post("/translate", translate)
		} else {
			pr.Post("/translate", translate)
		}

		// --- результат ---
		pr.Get("/audio/output", h.OutputAudio)
		pr.Get("/download", h.Download)
		pr.Post("/reset", h.Reset)
	})
}
