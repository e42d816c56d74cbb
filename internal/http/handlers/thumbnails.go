package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/thumbgen"
)

type generateRequest struct {
	Title       string `json:"title"`
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	ColorScheme string `json:"color_scheme"`
	TextOverlay bool   `json:"text_overlay"`
}

// Generate accepts a generation request and runs the workflow synchronously.
// Only actionable failures (bad input, insufficient credits, stale session)
// are surfaced with precise messages; provider and storage failures collapse
// into one generic message so internals don't leak.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid inputs passed.")
		return
	}

	thumbnail, err := a.Generator.Generate(r.Context(), userID, thumbgen.GenerateParams{
		Title:       req.Title,
		Style:       domain.Style(req.Style),
		AspectRatio: domain.AspectRatio(req.AspectRatio),
		ColorScheme: domain.ColorScheme(req.ColorScheme),
		UserPrompt:  req.Prompt,
		TextOverlay: req.TextOverlay,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidParameter):
			a.error(w, http.StatusBadRequest, invalidParameterMessage(err))
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusUnauthorized, "User not found, please login again.")
		case errors.Is(err, domain.ErrInsufficientCredits):
			a.error(w, http.StatusPaymentRequired, "Insufficient credits")
		default:
			a.Logger.Error().Err(err).Str("user_id", userID).Msg("generate: workflow failed")
			a.error(w, http.StatusInternalServerError, "Failed to generate thumbnail. Please try again.")
		}
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"message":   "Thumbnail Generated",
		"thumbnail": toThumbnailDTO(thumbnail),
	})
}

// Delete removes an owned thumbnail. Non-owned or unknown ids both report
// not found, so nothing about other users' records is revealed.
func (a *App) Delete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid thumbnail ID")
		return
	}

	if err := a.Thumbnails.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Thumbnail not found")
			return
		}
		a.Logger.Error().Err(err).Msg("delete: failed")
		a.error(w, http.StatusInternalServerError, "Failed to delete thumbnail")
		return
	}

	a.json(w, http.StatusOK, map[string]string{"message": "Thumbnail deleted successfully"})
}

// TogglePublished flips an owned thumbnail in and out of the community
// listing.
func (a *App) TogglePublished(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid thumbnail ID")
		return
	}

	thumbnail, err := a.Thumbnails.TogglePublished(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Thumbnail not found")
			return
		}
		a.Logger.Error().Err(err).Msg("toggle published: failed")
		a.error(w, http.StatusInternalServerError, "Failed to update thumbnail")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"thumbnail": toThumbnailDTO(thumbnail)})
}

// Community returns the read-only cross-user view of published thumbnails.
func (a *App) Community(w http.ResponseWriter, r *http.Request) {
	thumbnails, err := a.Thumbnails.ListPublished(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("community: list failed")
		a.error(w, http.StatusInternalServerError, "Failed to fetch thumbnails")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"thumbnails": toThumbnailDTOs(thumbnails)})
}

// invalidParameterMessage extracts the user-facing part of a validation
// error, which is always wrapped as "invalid parameter: <message>".
func invalidParameterMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, domain.ErrInvalidParameter.Error()+": "); i >= 0 {
		return msg[i+len(domain.ErrInvalidParameter.Error())+2:]
	}
	return "Invalid inputs passed."
}
