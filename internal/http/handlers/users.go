package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
)

// MyThumbnails lists the caller's own thumbnails, newest first.
func (a *App) MyThumbnails(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	thumbnails, err := a.Thumbnails.ListByOwner(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("my thumbnails: list failed")
		a.error(w, http.StatusInternalServerError, "Failed to fetch thumbnails")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"thumbnails": toThumbnailDTOs(thumbnails)})
}

// MyThumbnail returns a single owned thumbnail.
func (a *App) MyThumbnail(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid thumbnail ID")
		return
	}

	thumbnail, err := a.Thumbnails.GetForOwner(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Thumbnail not found")
			return
		}
		a.Logger.Error().Err(err).Msg("my thumbnail: fetch failed")
		a.error(w, http.StatusInternalServerError, "Failed to fetch thumbnail")
		return
	}
	a.json(w, http.StatusOK, toThumbnailDTO(thumbnail))
}

// Credits returns the caller's current balance.
func (a *App) Credits(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "User not found")
			return
		}
		a.Logger.Error().Err(err).Msg("credits: fetch failed")
		a.error(w, http.StatusInternalServerError, "Failed to fetch credits")
		return
	}
	a.json(w, http.StatusOK, map[string]int{"credits": user.Credits})
}
