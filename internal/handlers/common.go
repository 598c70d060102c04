package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lehigh-university-libraries/photobooth/internal/booth"
	"github.com/lehigh-university-libraries/photobooth/internal/export"
	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
	"github.com/lehigh-university-libraries/photobooth/internal/storage"
)

// maxFrameBytes caps a single uploaded preview frame
const maxFrameBytes = 10 * 1024 * 1024

type Handler struct {
	sessionStore *storage.SessionStore
	open         framesource.Opener
	saver        export.Saver
	stripsDir    string
	options      booth.Options
}

// New builds the HTTP handler. Sessions acquire their camera from open;
// saved strips go through saver and are served back from stripsDir.
func New(open framesource.Opener, saver export.Saver, stripsDir string, options booth.Options) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		open:         open,
		saver:        saver,
		stripsDir:    stripsDir,
		options:      options,
	}
}

// Routes returns the service router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", h.HandleListSessions)
		r.Post("/", h.HandleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleSessionDetail)
			r.Delete("/", h.HandleDeleteSession)
			r.Post("/frames", h.HandleFrame)
			r.Post("/capture", h.HandleCapture)
			r.Post("/retake", h.HandleRetake)
			r.Get("/strip.png", h.HandleDownload)
			r.Post("/save", h.HandleSave)
			r.Get("/events", h.HandleEvents)
		})
	})

	r.Get("/strips/{filename}", h.HandleStrip)
	return r
}

// Close releases every session's camera.
func (h *Handler) Close() {
	h.sessionStore.CloseAll()
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*booth.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
