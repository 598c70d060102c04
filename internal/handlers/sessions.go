package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/photobooth/internal/booth"
	"github.com/lehigh-university-libraries/photobooth/internal/models"
)

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.GetAll()
	sessionList := make([]models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		sessionList = append(sessionList, session.View())
	}
	h.writeJSON(w, sessionList)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := booth.New(r.Context(), h.open, h.options)
	if err != nil {
		if errors.Is(err, booth.ErrFrameSourceUnavailable) {
			h.writeError(w, "Failed to access camera. Please ensure you have granted camera permissions.", http.StatusServiceUnavailable)
			return
		}
		h.writeError(w, "Failed to start session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.sessionStore.Set(session)

	slog.Info("Session created", "session_id", session.ID())
	h.writeJSONStatus(w, http.StatusCreated, session.View())
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, session.View())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.sessionStore.Delete(session.ID())
	w.WriteHeader(http.StatusNoContent)
}
