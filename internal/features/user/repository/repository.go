package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
)

var (
	ErrNotFound = errors.New("user not found")

	// ErrBadCursor marks a pagination cursor that is malformed or was issued
	// for a different sort specification.
	ErrBadCursor = errors.New("invalid pagination cursor")
)

// NativePage is one page of raw documents as returned by the store, before
// any post-filtering. HasMore reflects the native result size only.
type NativePage struct {
	Docs       []models.UserDocument
	NextCursor string
	HasMore    bool
}

// SearchField is a document field the prefix search fans out over.
type SearchField string

const (
	SearchFieldName     SearchField = "first_name"
	SearchFieldUsername SearchField = "username"
	SearchFieldAddress  SearchField = "bep20_address"
)

// UserRepository is the document-store capability set the admin console
// consumes: point reads, predicate/sort/cursor pagination, narrow partial
// updates, an atomic multi-document delete and a single-document watch.
// Documents are created by the bot; this side never inserts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.UserDocument, error)

	// FetchPage runs the store-native part of a browse-mode list query:
	// address/pending predicates, sort, cursor, limit. Cross-field filters
	// stay out, they are post-filters by contract.
	FetchPage(ctx context.Context, q models.ListQuery, pageSize int) (*NativePage, error)

	// SearchPrefix returns every document whose field starts with term.
	// Full-collection read, no pagination.
	SearchPrefix(ctx context.Context, field SearchField, term string) ([]models.UserDocument, error)

	// ScanAll reads the whole collection. Bounded only by the bot's user
	// count; callers document this as a scale limit.
	ScanAll(ctx context.Context) ([]models.UserDocument, error)

	MarkRewardPaid(ctx context.Context, id string, at time.Time) error
	ReleaseReferralRewards(ctx context.Context, id string, at time.Time) error

	// DeleteAll removes the given documents in one all-or-nothing batch and
	// returns the number deleted. Partial deletion is never observable.
	DeleteAll(ctx context.Context, ids []string) (int, error)

	// Watch streams the document's current state and every subsequent change
	// until ctx is cancelled; the returned channel is closed on release.
	Watch(ctx context.Context, id string) (<-chan models.UserDocument, error)
}
