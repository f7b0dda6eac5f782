// Package repository defines the narrow persistence interfaces consumed by
// the conflict engine and sync coordinator (spec §4.1). Concrete backends
// live in the postgres, sqlite, and memory sub-packages; callers depend only
// on these interfaces.
package repository

import (
	"context"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
)

// Notes is the note-kind repository.
type Notes interface {
	Get(ctx context.Context, userID, id int64) (*domain.Note, bool, error)
	ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Note, error)
	Create(ctx context.Context, userID int64, payload domain.Payload) (*domain.Note, error)
	Update(ctx context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Note, error)
	SoftDelete(ctx context.Context, userID, id int64) (*domain.Note, error)
	Exists(ctx context.Context, userID, id int64) (bool, error)
}

// Folders is the folder-kind repository.
type Folders interface {
	Get(ctx context.Context, userID, id int64) (*domain.Folder, bool, error)
	ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Folder, error)
	Create(ctx context.Context, userID int64, payload domain.Payload) (*domain.Folder, error)
	Update(ctx context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Folder, error)
	SoftDelete(ctx context.Context, userID, id int64) (*domain.Folder, error)
	Exists(ctx context.Context, userID, id int64) (bool, error)
}

// Reviews is the review-kind repository.
type Reviews interface {
	Get(ctx context.Context, userID, id int64) (*domain.Review, bool, error)
	ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Review, error)
	Create(ctx context.Context, userID int64, payload domain.Payload) (*domain.Review, error)
	Update(ctx context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Review, error)
	SoftDelete(ctx context.Context, userID, id int64) (*domain.Review, error)
	Exists(ctx context.Context, userID, id int64) (bool, error)
}

// Repository aggregates the three kind-specific repositories. Components
// that need cross-kind access (sync coordinator, conflict engine's parent
// checks) depend on this; kind-specific code can depend on the narrower
// interfaces above.
type Repository interface {
	Notes() Notes
	Folders() Folders
	Reviews() Reviews
}
