package handlers

import (
	"context"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/thumbgen"
)

type stubUserRepo struct {
	users   map[string]*domain.User
	created []*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.users[u.ID] = u
	r.created = append(r.created, u)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) ReserveCredits(_ context.Context, userID string, amount int) (int, error) {
	u, ok := r.users[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if u.Credits < amount {
		return 0, domain.ErrInsufficientCredits
	}
	u.Credits -= amount
	return u.Credits, nil
}

func (r *stubUserRepo) RefundCredits(_ context.Context, userID string, amount int) error {
	if u, ok := r.users[userID]; ok {
		u.Credits += amount
	}
	return nil
}

type stubThumbnailRepo struct {
	deleteErr  error
	toggleErr  error
	toggled    *domain.Thumbnail
	published  []domain.Thumbnail
	listErr    error
	owned      map[string]*domain.Thumbnail
	deletedIDs []string
}

func (r *stubThumbnailRepo) CreatePending(context.Context, *domain.Thumbnail) error { return nil }
func (r *stubThumbnailRepo) MarkCompleted(context.Context, string, string) error    { return nil }
func (r *stubThumbnailRepo) MarkFailed(context.Context, string) error               { return nil }

func (r *stubThumbnailRepo) GetForOwner(_ context.Context, id, _ string) (*domain.Thumbnail, error) {
	if t, ok := r.owned[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubThumbnailRepo) ListByOwner(context.Context, string) ([]domain.Thumbnail, error) {
	return r.published, r.listErr
}

func (r *stubThumbnailRepo) ListPublished(context.Context) ([]domain.Thumbnail, error) {
	return r.published, r.listErr
}

func (r *stubThumbnailRepo) Delete(_ context.Context, id, _ string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *stubThumbnailRepo) TogglePublished(_ context.Context, _, _ string) (*domain.Thumbnail, error) {
	if r.toggleErr != nil {
		return nil, r.toggleErr
	}
	return r.toggled, nil
}

type stubGenerator struct {
	thumbnail *domain.Thumbnail
	err       error
	lastUser  string
	lastParam thumbgen.GenerateParams
}

func (g *stubGenerator) Generate(_ context.Context, userID string, p thumbgen.GenerateParams) (*domain.Thumbnail, error) {
	g.lastUser = userID
	g.lastParam = p
	if g.err != nil {
		return nil, g.err
	}
	return g.thumbnail, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	return &App{
		Config:     &infra.Config{ClientURL: "http://localhost:5173"},
		Logger:     zerolog.Nop(),
		Sessions:   scs.New(),
		Users:      newStubUserRepo(),
		Thumbnails: &stubThumbnailRepo{},
		Generator:  &stubGenerator{},
	}
}
