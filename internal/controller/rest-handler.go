package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lessonplay/server/internal/service/playback"
	"github.com/lessonplay/server/internal/shell"
	"github.com/lessonplay/server/pkg/rest"
)

type resolveVideoRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type resolveVideoResponse struct {
	URL      string `json:"url"`
	Kind     string `json:"kind"`
	Verified bool   `json:"verified"`
}

func (c controller) resolveVideo(w http.ResponseWriter, r *http.Request) {
	var req resolveVideoRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.DebugContext(r.Context(), "failed to validate request", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resolveResp, err := c.playbackService.Resolve(r.Context(), &playback.ResolveParams{
		URL: req.URL,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to resolve video", "error", err)
		rest.WriteJSON(w, http.StatusBadGateway, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resolveVideoResponse{
		URL:      resolveResp.URL,
		Kind:     resolveResp.Kind,
		Verified: resolveResp.Verified,
	}})
}

func (c controller) embedVideo(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file-id")
	viewer := r.URL.Query().Get("viewer")

	html, err := shell.SecureEmbedHTML(fileID, viewer)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to render embed", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Options", "SAMEORIGIN")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
