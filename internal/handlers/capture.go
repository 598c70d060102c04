package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/photobooth/internal/booth"
	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
	"github.com/lehigh-university-libraries/photobooth/internal/models"
)

type captureResponse struct {
	Captured bool               `json:"captured"`
	Error    string             `json:"error,omitempty"`
	Session  models.SessionView `json:"session"`
}

// HandleCapture runs one countdown and snapshot. The request stays open for
// the length of the countdown.
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	captured, err := session.Capture(r.Context())
	resp := captureResponse{Captured: captured}
	code := http.StatusOK

	switch {
	case err == nil:
	case errors.Is(err, booth.ErrFrameSourceUnavailable):
		code = http.StatusServiceUnavailable
	case errors.Is(err, framesource.ErrNoFrame):
		code = http.StatusConflict
	case errors.Is(err, booth.ErrClosed):
		code = http.StatusGone
	default:
		code = http.StatusInternalServerError
	}
	if err != nil {
		slog.Error("Capture failed", "session_id", session.ID(), "err", err)
		resp.Error = err.Error()
	}

	resp.Session = session.View()
	h.writeJSONStatus(w, code, resp)
}

func (h *Handler) HandleRetake(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	if err := session.Retake(r.Context()); err != nil {
		switch {
		case errors.Is(err, booth.ErrCompositionInFlight), errors.Is(err, booth.ErrCaptureInFlight):
			h.writeError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, booth.ErrFrameSourceUnavailable):
			h.writeError(w, "Failed to restart camera. Please refresh the page.", http.StatusServiceUnavailable)
		default:
			h.writeError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	h.writeJSON(w, session.View())
}

// HandleDownload streams the strip as a PNG attachment.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	blob, err := session.Export()
	if err != nil {
		if errors.Is(err, booth.ErrNotReviewing) {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", blob.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+blob.Filename+`"`)
	if _, err := w.Write(blob.Data); err != nil {
		slog.Error("Unable to write strip", "session_id", session.ID(), "err", err)
	}
}

// HandleSave stores the strip in the output directory, for kiosks that
// print or collect strips on the host.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	blob, err := session.Export()
	if err != nil {
		if errors.Is(err, booth.ErrNotReviewing) {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := h.saver.Save(r.Context(), blob); err != nil {
		h.writeError(w, "Failed to save strip: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSONStatus(w, http.StatusCreated, map[string]any{
		"filename": blob.Filename,
		"url":      "/strips/" + blob.Filename,
		"message":  "Saved!",
	})
}
