package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// ThumbnailRepositoryPG implements domain.ThumbnailRepository backed by PostgreSQL.
type ThumbnailRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewThumbnailRepository creates a new ThumbnailRepositoryPG.
func NewThumbnailRepository(pool *pgxpool.Pool) *ThumbnailRepositoryPG {
	return &ThumbnailRepositoryPG{pool: pool}
}

const thumbnailColumns = `id, user_id, title, style, aspect_ratio, color_scheme, user_prompt,
text_overlay, prompt_used, image_url, is_generating, is_published, created_at, updated_at`

// CreatePending inserts a record in the generating state, before the provider
// is called. A crash mid-workflow leaves a discoverable stuck record instead
// of silently losing the request.
func (r *ThumbnailRepositoryPG) CreatePending(ctx context.Context, t *domain.Thumbnail) error {
	query := `
INSERT INTO thumbnails (id, user_id, title, style, aspect_ratio, color_scheme, user_prompt,
                        text_overlay, prompt_used, image_url, is_generating, is_published)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', true, $10)
RETURNING created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Style,
		t.AspectRatio,
		t.ColorScheme,
		t.UserPrompt,
		t.TextOverlay,
		t.PromptUsed,
		t.IsPublished,
	)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("insert thumbnail: %w", err)
	}
	t.IsGenerating = true
	t.ImageURL = ""
	return nil
}

// MarkCompleted records the final image URL and clears the generating flag.
// Calling it twice leaves the same observable state.
func (r *ThumbnailRepositoryPG) MarkCompleted(ctx context.Context, id, imageURL string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE thumbnails
SET image_url = $2, is_generating = false, updated_at = now()
WHERE id = $1;
`, id, imageURL)
	if err != nil {
		return fmt.Errorf("mark thumbnail completed: %w", err)
	}
	return nil
}

// MarkFailed clears the generating flag without setting an image URL. The
// record survives as a visible failed attempt. Idempotent.
func (r *ThumbnailRepositoryPG) MarkFailed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE thumbnails
SET is_generating = false, updated_at = now()
WHERE id = $1;
`, id)
	if err != nil {
		return fmt.Errorf("mark thumbnail failed: %w", err)
	}
	return nil
}

// GetForOwner fetches a thumbnail only when it belongs to ownerID.
func (r *ThumbnailRepositoryPG) GetForOwner(ctx context.Context, id, ownerID string) (*domain.Thumbnail, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+thumbnailColumns+` FROM thumbnails WHERE id = $1 AND user_id = $2`, id, ownerID)
	return scanThumbnail(row)
}

// ListByOwner returns all thumbnails of one user, newest first.
func (r *ThumbnailRepositoryPG) ListByOwner(ctx context.Context, ownerID string) ([]domain.Thumbnail, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+thumbnailColumns+` FROM thumbnails WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	defer rows.Close()
	return collectThumbnails(rows)
}

// ListPublished returns the community view: every published thumbnail across
// all owners, newest first.
func (r *ThumbnailRepositoryPG) ListPublished(ctx context.Context) ([]domain.Thumbnail, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+thumbnailColumns+` FROM thumbnails WHERE is_published ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list published thumbnails: %w", err)
	}
	defer rows.Close()
	return collectThumbnails(rows)
}

// Delete removes a thumbnail owned by ownerID. A mismatch on either field is
// reported as domain.ErrNotFound so record existence is not leaked.
func (r *ThumbnailRepositoryPG) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM thumbnails WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TogglePublished flips the published flag of an owned thumbnail and returns
// the updated record.
func (r *ThumbnailRepositoryPG) TogglePublished(ctx context.Context, id, ownerID string) (*domain.Thumbnail, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE thumbnails
SET is_published = NOT is_published, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING `+thumbnailColumns+`;
`, id, ownerID)
	return scanThumbnail(row)
}

func scanThumbnail(row pgx.Row) (*domain.Thumbnail, error) {
	var t domain.Thumbnail
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Style, &t.AspectRatio, &t.ColorScheme, &t.UserPrompt,
		&t.TextOverlay, &t.PromptUsed, &t.ImageURL, &t.IsGenerating, &t.IsPublished,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func collectThumbnails(rows pgx.Rows) ([]domain.Thumbnail, error) {
	var items []domain.Thumbnail
	for rows.Next() {
		t, err := scanThumbnail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.ThumbnailRepository = (*ThumbnailRepositoryPG)(nil)
