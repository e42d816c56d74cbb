package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"server/internal/auth"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/thumbgen"
)

// Generator runs the credit-metered generation workflow. Satisfied by
// *thumbgen.Service; stubbed in tests.
type Generator interface {
	Generate(ctx context.Context, userID string, p thumbgen.GenerateParams) (*domain.Thumbnail, error)
}

// App is the dependency container shared by all HTTP handlers. Everything is
// constructed once at process start and injected; handlers hold no globals.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Sessions   *scs.SessionManager
	Users      domain.UserRepository
	Thumbnails domain.ThumbnailRepository
	Generator  Generator
	Google     *auth.GoogleProvider
	GeoIP      geoip.CountryResolver
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"message": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// clientCountry resolves the caller's country for audit logs. Best effort:
// returns "" when no resolver is configured or the lookup fails.
func (a *App) clientCountry(r *http.Request) string {
	if a.GeoIP == nil {
		return ""
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	country, err := a.GeoIP.CountryCode(ip)
	if err != nil {
		return ""
	}
	return country
}

type thumbnailDTO struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Style        string    `json:"style"`
	AspectRatio  string    `json:"aspect_ratio"`
	ColorScheme  string    `json:"color_scheme,omitempty"`
	UserPrompt   string    `json:"user_prompt,omitempty"`
	TextOverlay  bool      `json:"text_overlay"`
	PromptUsed   string    `json:"prompt_used,omitempty"`
	ImageURL     string    `json:"image_url"`
	IsGenerating bool      `json:"isGenerating"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toThumbnailDTO(t *domain.Thumbnail) thumbnailDTO {
	return thumbnailDTO{
		ID:           t.ID,
		UserID:       t.UserID,
		Title:        t.Title,
		Style:        string(t.Style),
		AspectRatio:  string(t.AspectRatio),
		ColorScheme:  string(t.ColorScheme),
		UserPrompt:   t.UserPrompt,
		TextOverlay:  t.TextOverlay,
		PromptUsed:   t.PromptUsed,
		ImageURL:     t.ImageURL,
		IsGenerating: t.IsGenerating,
		IsPublished:  t.IsPublished,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toThumbnailDTOs(items []domain.Thumbnail) []thumbnailDTO {
	out := make([]thumbnailDTO, len(items))
	for i := range items {
		out[i] = toThumbnailDTO(&items[i])
	}
	return out
}
