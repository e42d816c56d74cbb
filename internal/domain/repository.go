package domain

import "context"

// UserRepository defines access methods for user accounts, including the
// credit ledger operations used by the generation workflow.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ReserveCredits decrements the balance by amount only when the current
	// balance covers it, as a single conditional update. It returns the
	// remaining balance, ErrInsufficientCredits when the balance is too low,
	// or ErrNotFound when the account no longer exists.
	ReserveCredits(ctx context.Context, userID string, amount int) (int, error)

	// RefundCredits unconditionally increments the balance by amount.
	RefundCredits(ctx context.Context, userID string, amount int) error
}

// ThumbnailRepository defines persistence for thumbnail records.
type ThumbnailRepository interface {
	CreatePending(ctx context.Context, t *Thumbnail) error

	// MarkCompleted and MarkFailed are the only legal terminal transitions
	// for a pending record. Both are idempotent.
	MarkCompleted(ctx context.Context, id, imageURL string) error
	MarkFailed(ctx context.Context, id string) error

	GetForOwner(ctx context.Context, id, ownerID string) (*Thumbnail, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Thumbnail, error)
	ListPublished(ctx context.Context) ([]Thumbnail, error)
	Delete(ctx context.Context, id, ownerID string) error
	TogglePublished(ctx context.Context, id, ownerID string) (*Thumbnail, error)
}
