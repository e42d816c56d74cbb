// Package thumbgen implements the credit-metered thumbnail generation
// workflow: reserve credits, build the prompt, call the provider, upload the
// artifact, and reconcile credits and record state on every failure path.
package thumbgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/genai"
)

// CreditLedger is the atomic balance contract the workflow relies on.
type CreditLedger interface {
	ReserveCredits(ctx context.Context, userID string, amount int) (int, error)
	RefundCredits(ctx context.Context, userID string, amount int) error
}

// RecordStore covers the lifecycle transitions of a thumbnail record.
type RecordStore interface {
	CreatePending(ctx context.Context, t *domain.Thumbnail) error
	MarkCompleted(ctx context.Context, id, imageURL string) error
	MarkFailed(ctx context.Context, id string) error
}

// ImageProvider is the external generative model, treated as an opaque
// remote function.
type ImageProvider interface {
	GenerateImage(ctx context.Context, req genai.ImageRequest) ([]byte, error)
}

// ArtifactUploader persists an image payload and returns a stable URL.
type ArtifactUploader interface {
	Upload(ctx context.Context, payload []byte) (string, error)
}

// GenerateParams are the user-supplied inputs of one generation request.
type GenerateParams struct {
	Title       string
	Style       domain.Style
	AspectRatio domain.AspectRatio
	ColorScheme domain.ColorScheme
	UserPrompt  string
	TextOverlay bool
}

// Service sequences one generation request end to end. All collaborators are
// injected once at construction; the service holds no other state, so it is
// safe for concurrent use.
type Service struct {
	ledger   CreditLedger
	records  RecordStore
	provider ImageProvider
	uploader ArtifactUploader
	logger   infra.Logger
}

// NewService wires the workflow with its collaborators.
func NewService(ledger CreditLedger, records RecordStore, provider ImageProvider, uploader ArtifactUploader, logger infra.Logger) *Service {
	return &Service{
		ledger:   ledger,
		records:  records,
		provider: provider,
		uploader: uploader,
		logger:   logger,
	}
}

// Generate runs the workflow for one request.
//
// Ordering is deliberate: the pending record is created immediately after the
// credit reservation and before the slow provider call, so the debit and the
// record are never separated by externally-dependent work. Every failure
// after the reservation refunds the full cost and marks the record failed;
// at most one debit and at most one refund happen per request.
func (s *Service) Generate(ctx context.Context, userID string, p GenerateParams) (*domain.Thumbnail, error) {
	if err := validateParams(&p); err != nil {
		return nil, err
	}

	if _, err := s.ledger.ReserveCredits(ctx, userID, domain.GenerationCost); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(p.Title, p.Style, p.AspectRatio, p.ColorScheme, p.UserPrompt)

	record := &domain.Thumbnail{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       p.Title,
		Style:       p.Style,
		AspectRatio: p.AspectRatio,
		ColorScheme: p.ColorScheme,
		UserPrompt:  p.UserPrompt,
		TextOverlay: p.TextOverlay,
		PromptUsed:  prompt,
		IsPublished: true,
	}
	if err := s.records.CreatePending(ctx, record); err != nil {
		s.refund(ctx, userID)
		return nil, fmt.Errorf("create pending record: %w", err)
	}

	payload, err := s.provider.GenerateImage(ctx, genai.ImageRequest{
		Prompt:      prompt,
		AspectRatio: p.AspectRatio,
	})
	if err != nil {
		s.compensate(ctx, userID, record.ID)
		return nil, fmt.Errorf("generate image: %w", err)
	}

	url, err := s.uploader.Upload(ctx, payload)
	if err != nil {
		s.compensate(ctx, userID, record.ID)
		return nil, fmt.Errorf("upload image: %w", err)
	}

	if err := s.records.MarkCompleted(ctx, record.ID, url); err != nil {
		s.compensate(ctx, userID, record.ID)
		return nil, fmt.Errorf("complete record: %w", err)
	}

	record.ImageURL = url
	record.IsGenerating = false
	return record, nil
}

// compensate performs the uniform post-reservation failure action: refund
// the reserved credits and leave the record behind as a visible failed
// attempt. Compensation errors are logged, never surfaced; the original
// failure is what the caller needs to see.
func (s *Service) compensate(ctx context.Context, userID, recordID string) {
	s.refund(ctx, userID)
	if err := s.records.MarkFailed(ctx, recordID); err != nil {
		s.logger.Error().Err(err).Str("thumbnail_id", recordID).Msg("thumbgen: failed to mark record failed")
	}
}

func (s *Service) refund(ctx context.Context, userID string) {
	if err := s.ledger.RefundCredits(ctx, userID, domain.GenerationCost); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("thumbgen: failed to refund credits")
	}
}

func validateParams(p *GenerateParams) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || p.Style == "" {
		return fmt.Errorf("%w: Title and style are required", domain.ErrInvalidParameter)
	}
	if !ValidStyle(p.Style) {
		return fmt.Errorf("%w: Invalid style selected", domain.ErrInvalidParameter)
	}
	if !ValidColorScheme(p.ColorScheme) {
		return fmt.Errorf("%w: Invalid color scheme selected", domain.ErrInvalidParameter)
	}
	if !domain.ValidAspectRatio(p.AspectRatio) {
		return fmt.Errorf("%w: Invalid aspect ratio selected", domain.ErrInvalidParameter)
	}
	if p.AspectRatio == "" {
		p.AspectRatio = domain.DefaultAspectRatio
	}
	return nil
}
