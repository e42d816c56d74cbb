package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/middleware"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out.Message
}

func TestGenerateSuccess(t *testing.T) {
	app := newTestApp(t)
	gen := &stubGenerator{thumbnail: &domain.Thumbnail{
		ID:          uuid.NewString(),
		UserID:      "user-1",
		Title:       "Epic Reveal",
		Style:       domain.StyleBoldGraphic,
		AspectRatio: domain.AspectLandscape,
		ImageURL:    "https://cdn.example.com/thumbnails/x.png",
		IsPublished: true,
	}}
	app.Generator = gen

	rec := httptest.NewRecorder()
	body := `{"title":"Epic Reveal","style":"Bold & Graphic","aspect_ratio":"16:9"}`
	app.Generate(rec, authedRequest(http.MethodPost, "/api/v1/thumbnail/generate", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gen.lastUser != "user-1" {
		t.Fatalf("generator user = %q", gen.lastUser)
	}
	var out struct {
		Message   string       `json:"message"`
		Thumbnail thumbnailDTO `json:"thumbnail"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Message != "Thumbnail Generated" {
		t.Fatalf("message = %q", out.Message)
	}
	if out.Thumbnail.UserID != "user-1" || out.Thumbnail.ImageURL == "" {
		t.Fatalf("unexpected thumbnail payload: %+v", out.Thumbnail)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "validation failure",
			err:         fmt.Errorf("%w: Title and style are required", domain.ErrInvalidParameter),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Title and style are required",
		},
		{
			name:        "stale session",
			err:         domain.ErrNotFound,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "User not found, please login again.",
		},
		{
			name:        "insufficient credits",
			err:         domain.ErrInsufficientCredits,
			wantStatus:  http.StatusPaymentRequired,
			wantMessage: "Insufficient credits",
		},
		{
			name:        "provider failure stays generic",
			err:         errors.New("gemini: upstream exploded"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to generate thumbnail. Please try again.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			app.Generator = &stubGenerator{err: tc.err}

			rec := httptest.NewRecorder()
			body := `{"title":"Epic Reveal","style":"Bold & Graphic"}`
			app.Generate(rec, authedRequest(http.MethodPost, "/api/v1/thumbnail/generate", body))

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := decodeMessage(t, rec); got != tc.wantMessage {
				t.Fatalf("message = %q, want %q", got, tc.wantMessage)
			}
		})
	}
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Generate(rec, authedRequest(http.MethodPost, "/api/v1/thumbnail/generate", "{not json"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "Invalid inputs passed." {
		t.Fatalf("message = %q", got)
	}
}

func thumbnailRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Delete("/thumbnail/delete/{id}", app.Delete)
	r.Patch("/thumbnail/toggle-published/{id}", app.TogglePublished)
	r.Get("/thumbnail/{id}", app.MyThumbnail)
	return r
}

func TestDeleteRejectsInvalidID(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	thumbnailRouter(app).ServeHTTP(rec, authedRequest(http.MethodDelete, "/thumbnail/delete/not-a-uuid", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "Invalid thumbnail ID" {
		t.Fatalf("message = %q", got)
	}
}

func TestDeleteUnknownOrUnownedReportsNotFound(t *testing.T) {
	app := newTestApp(t)
	app.Thumbnails = &stubThumbnailRepo{deleteErr: domain.ErrNotFound}

	rec := httptest.NewRecorder()
	target := "/thumbnail/delete/" + uuid.NewString()
	thumbnailRouter(app).ServeHTTP(rec, authedRequest(http.MethodDelete, target, ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "Thumbnail not found" {
		t.Fatalf("message = %q", got)
	}
}

func TestDeleteOwnedThumbnail(t *testing.T) {
	app := newTestApp(t)
	repo := &stubThumbnailRepo{}
	app.Thumbnails = repo

	rec := httptest.NewRecorder()
	id := uuid.NewString()
	thumbnailRouter(app).ServeHTTP(rec, authedRequest(http.MethodDelete, "/thumbnail/delete/"+id, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(repo.deletedIDs) != 1 || repo.deletedIDs[0] != id {
		t.Fatalf("deleted ids = %v", repo.deletedIDs)
	}
}

func TestTogglePublishedNotFound(t *testing.T) {
	app := newTestApp(t)
	app.Thumbnails = &stubThumbnailRepo{toggleErr: domain.ErrNotFound}

	rec := httptest.NewRecorder()
	target := "/thumbnail/toggle-published/" + uuid.NewString()
	thumbnailRouter(app).ServeHTTP(rec, authedRequest(http.MethodPatch, target, ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTogglePublishedReturnsUpdatedRecord(t *testing.T) {
	app := newTestApp(t)
	id := uuid.NewString()
	app.Thumbnails = &stubThumbnailRepo{toggled: &domain.Thumbnail{ID: id, UserID: "user-1", IsPublished: false}}

	rec := httptest.NewRecorder()
	thumbnailRouter(app).ServeHTTP(rec, authedRequest(http.MethodPatch, "/thumbnail/toggle-published/"+id, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Thumbnail thumbnailDTO `json:"thumbnail"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Thumbnail.ID != id || out.Thumbnail.IsPublished {
		t.Fatalf("unexpected thumbnail: %+v", out.Thumbnail)
	}
}

func TestCommunityListsPublished(t *testing.T) {
	app := newTestApp(t)
	app.Thumbnails = &stubThumbnailRepo{published: []domain.Thumbnail{
		{ID: uuid.NewString(), UserID: "a", IsPublished: true},
		{ID: uuid.NewString(), UserID: "b", IsPublished: true},
	}}

	rec := httptest.NewRecorder()
	app.Community(rec, httptest.NewRequest(http.MethodGet, "/api/v1/thumbnail/community", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Thumbnails []thumbnailDTO `json:"thumbnails"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Thumbnails) != 2 {
		t.Fatalf("len(thumbnails) = %d, want 2", len(out.Thumbnails))
	}
}

func TestMyThumbnailNotFoundForForeignRecord(t *testing.T) {
	app := newTestApp(t)
	app.Thumbnails = &stubThumbnailRepo{owned: map[string]*domain.Thumbnail{}}

	rec := httptest.NewRecorder()
	thumbnailRouter(app).ServeHTTP(rec, authedRequest(http.MethodGet, "/thumbnail/"+uuid.NewString(), ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
