package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voice_translator/internal/capture"
	"github.com/Vovarama1992/voice_translator/internal/languages"
	"github.com/Vovarama1992/voice_translator/internal/metrics"
	"github.com/Vovarama1992/voice_translator/internal/pipeline"
	"github.com/Vovarama1992/voice_translator/internal/ports"
	"github.com/Vovarama1992/voice_translator/internal/presentation"
	"github.com/Vovarama1992/voice_translator/internal/session"
)

const (
	maxAudioBytes = 25 << 20 // лимит Whisper
	formOverhead  = 1 << 20  // заголовки и границы multipart
)

type Handler struct {
	sessions session.Store
	capture  *capture.Service
	pipeline *pipeline.Service
	history  ports.HistoryService
	metrics  *metrics.Metrics
	log      *logger.ZapLogger

	locks *session.Locks
}

// history и metrics могут быть nil.
func NewHandler(
	sessions session.Store,
	captureSvc *capture.Service,
	pipelineSvc *pipeline.Service,
	history ports.HistoryService,
	m *metrics.Metrics,
	log *logger.ZapLogger,
) *Handler {
	return &Handler{
		sessions: sessions,
		capture:  captureSvc,
		pipeline: pipelineSvc,
		history:  history,
		metrics:  m,
		log:      log,
		locks:    session.NewLocks(),
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := presentation.Render(w, presentation.NewView(st)); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "render page", Error: err})
	}
}

func (h *Handler) Languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages":      languages.All(),
		"default_source": languages.DefaultSource(),
		"default_target": languages.DefaultTarget(),
	})
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presentation.NewView(sessionFrom(r)))
}

// Record принимает буфер с рекордера: сырое тело или multipart-поле file.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var (
		data        []byte
		contentType = r.Header.Get("Content-Type")
		err         error
	)

	if mt, _, _ := mime.ParseMediaType(contentType); mt == "multipart/form-data" {
		data, _, contentType, err = readFormFile(w, r)
	} else {
		data, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
	}
	if err != nil {
		http.Error(w, "failed to read audio: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.store(w, r, capture.SourceRecording, data, "", contentType)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	data, filename, contentType, err := readFormFile(w, r)
	if err != nil {
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.store(w, r, capture.SourceUpload, data, filename, contentType)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request, src capture.Source, data []byte, filename, contentType string) {
	st, unlock, ok := h.lock(w, r)
	if !ok {
		return
	}
	defer unlock()

	if err := h.capture.Capture(r.Context(), st, src, data, filename, contentType); err != nil {
		if h.metrics != nil {
			h.metrics.CaptureRejects.Inc()
		}
		switch {
		case errors.Is(err, capture.ErrUnsupportedFormat):
			http.Error(w, "Error: "+err.Error(), http.StatusUnsupportedMediaType)
		case errors.Is(err, capture.ErrEmptyAudio):
			http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		default:
			h.log.Log(logger.LogEntry{Level: "error", Message: "capture failed", Error: err})
			http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if h.metrics != nil {
		h.metrics.AudioCaptured.WithLabelValues(src.String()).Inc()
	}

	if !h.save(r.Context(), w, st) {
		return
	}
	h.respond(w, r, st, http.StatusOK)
}

type translateRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Source = r.FormValue("source")
		req.Target = r.FormValue("target")
	}

	st, unlock, ok := h.lock(w, r)
	if !ok {
		return
	}
	defer unlock()

	if req.Source == "" {
		req.Source = st.SourceLang
	}
	if req.Target == "" {
		req.Target = st.TargetLang
	}

	// запуск нельзя прервать со стороны клиента: стадии ограничены своими таймаутами
	ctx := context.WithoutCancel(r.Context())

	h.capture.Touch(st)
	res := h.pipeline.Run(ctx, st, req.Source, req.Target)
	if !res.Started() {
		switch {
		case errors.Is(res.Err, pipeline.ErrNoAudio), errors.Is(res.Err, pipeline.ErrUnknownLanguage):
			http.Error(w, res.Err.Error(), http.StatusBadRequest)
		case errors.Is(res.Err, pipeline.ErrRunInProgress):
			http.Error(w, res.Err.Error(), http.StatusConflict)
		default:
			http.Error(w, res.Err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if !h.save(ctx, w, st) {
		return
	}

	status := http.StatusOK
	if !res.Succeeded() {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "pipeline stopped at " + string(res.FailedStage),
			Error:   res.Err,
		})
		status = http.StatusBadGateway
	}
	h.respond(w, r, st, status)
}

func (h *Handler) InputAudio(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r)
	data, err := h.capture.Read(st)
	if err != nil {
		http.Error(w, "no captured audio", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", inputMIME(st.AudioSuffix))
	_, _ = w.Write(data)
}

func (h *Handler) OutputAudio(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r)
	if len(st.AudioOutput) == 0 {
		http.Error(w, "no synthesized audio", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", presentation.DownloadMIME)
	_, _ = w.Write(st.AudioOutput)
}

// Download отдаёт ровно те байты, что вернул синтез.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r)
	if len(st.AudioOutput) == 0 {
		http.Error(w, "no synthesized audio", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", presentation.DownloadMIME)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": presentation.DownloadFilename,
	}))
	_, _ = w.Write(st.AudioOutput)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	st, unlock, ok := h.lock(w, r)
	if !ok {
		return
	}
	defer unlock()

	h.capture.Release(st)
	fresh := session.New(st.ID)
	if !h.save(r.Context(), w, fresh) {
		return
	}
	h.respond(w, r, fresh, http.StatusOK)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusOK, []ports.Run{})
		return
	}

	runs, err := h.history.List(r.Context(), sessionFrom(r).ID)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []ports.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// lock захватывает сессию и перечитывает её: пока запрос шёл, состояние
// мог сохранить соседний запрос той же сессии.
func (h *Handler) lock(w http.ResponseWriter, r *http.Request) (*session.State, func(), bool) {
	id := sessionFrom(r).ID

	unlock, ok := h.locks.TryLock(id)
	if !ok {
		http.Error(w, pipeline.ErrRunInProgress.Error(), http.StatusConflict)
		return nil, nil, false
	}

	st, err := h.sessions.Get(r.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		st = session.New(id)
	case err != nil:
		unlock()
		h.log.Log(logger.LogEntry{Level: "error", Message: "session load failed", Error: err})
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return nil, nil, false
	}
	return st, unlock, true
}

func (h *Handler) save(ctx context.Context, w http.ResponseWriter, st *session.State) bool {
	if err := h.sessions.Save(ctx, st); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "session save failed", Error: err})
		http.Error(w, "failed to save session: "+err.Error(), http.StatusInternalServerError)
		return false
	}
	return true
}

// respond: форма из браузера уходит обратно на страницу, остальное — JSON.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, st *session.State, status int) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, status, presentation.NewView(st))
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func readFormFile(w http.ResponseWriter, r *http.Request) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+formOverhead)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		return nil, "", "", err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		return nil, "", "", err
	}
	if len(data) > maxAudioBytes {
		return nil, "", "", errors.New("file too large")
	}
	return data, header.Filename, header.Header.Get("Content-Type"), nil
}

func inputMIME(suffix string) string {
	switch suffix {
	case capture.SuffixMP3:
		return "audio/mpeg"
	case capture.SuffixWebM:
		return "audio/webm"
	case capture.SuffixOgg:
		return "audio/ogg"
	}
	return "audio/wav"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
