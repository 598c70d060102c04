package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
)

// HandleFrame accepts the client's current preview frame, either as a
// multipart "frame" field or as a raw image body.
func (h *Handler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	pushed, ok := session.Source().(*framesource.Pushed)
	if !ok {
		h.writeError(w, "Session camera does not accept uploaded frames", http.StatusConflict)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFrameBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("frame")
		if err != nil {
			h.writeError(w, "Failed to read frame: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body = file
	}

	data, err := io.ReadAll(body)
	if err != nil {
		h.writeError(w, "Failed to read frame contents: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		h.writeError(w, "Frame is not an image: "+mimeType, http.StatusUnsupportedMediaType)
		return
	}

	img, err := pushed.PushEncoded(data)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Debug("Frame received", "session_id", session.ID(), "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	w.WriteHeader(http.StatusNoContent)
}
