package store

import (
	"context"
	"time"

	"github.com/foundly/foundly-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
//
// Every status transition is a guarded conditional update keyed on the
// expected prior status, so concurrent callers and retries are safe without
// explicit locking. Multi-step sequences (strong-match side effects, claim
// approval) run inside a single transaction per call.
type Store interface {
	Users() Users
	LostItems() LostItems
	FoundItems() FoundItems
	Matches() Matches
	Claims() Claims
	Notifications() Notifications
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
}

type LostItems interface {
	Create(ctx context.Context, it *model.LostItem) (*model.LostItem, error)
	GetByID(ctx context.Context, itemID string) (*model.LostItem, error)
	ListByUser(ctx context.Context, userID string) ([]*model.LostItem, error)
	// ListOpen returns items still in Lost status matching the optional
	// filters, newest first, plus the unpaginated total.
	ListOpen(ctx context.Context, q model.ListQuery) ([]*model.LostItem, int, error)
	// FindCandidates returns open lost items eligible for scoring against a
	// found report: same category, date within q.Days, locations containing
	// one another in either direction. is_public is not consulted here.
	FindCandidates(ctx context.Context, q model.CandidateQuery) ([]*model.LostItem, error)
	// FindClaimable locates the caller's oldest open lost item whose category
	// matches and whose name or location textually overlaps the found report.
	// Returns model.ErrNotFound when the user has no eligible report.
	FindClaimable(ctx context.Context, userID, category, name, location string) (*model.LostItem, error)
	// Update applies the patch only while the item is owned by userID and
	// still in Lost status; model.ErrNotFound otherwise.
	Update(ctx context.Context, itemID, userID string, p model.LostItemPatch) error
	Delete(ctx context.Context, itemID, userID string) error
	// TransitionStatus flips the status only if it currently equals from.
	// The bool reports whether the update applied; a no-op is not an error.
	TransitionStatus(ctx context.Context, itemID string, from, to model.LostItemStatus) (bool, error)
}

type FoundItems interface {
	Create(ctx context.Context, it *model.FoundItem) (*model.FoundItem, error)
	GetByID(ctx context.Context, itemID string) (*model.FoundItem, error)
	ListByUser(ctx context.Context, userID string) ([]*model.FoundItem, error)
	// ListPublic returns Reported items whose privacy window has lapsed
	// (is_public), matching the optional filters, newest first, plus total.
	ListPublic(ctx context.Context, q model.ListQuery) ([]*model.FoundItem, int, error)
	FindCandidates(ctx context.Context, q model.CandidateQuery) ([]*model.FoundItem, error)
	Update(ctx context.Context, itemID, userID string, p model.FoundItemPatch) error
	Delete(ctx context.Context, itemID, userID string) error
	TransitionStatus(ctx context.Context, itemID string, from, to model.FoundItemStatus) (bool, error)
	// PublishExpired flips is_public on every private item whose match window
	// ended at or before now, returning the number of rows published.
	PublishExpired(ctx context.Context, now time.Time) (int64, error)
}

type Matches interface {
	GetByID(ctx context.Context, matchID string) (*model.Match, error)
	// FindByPair returns the existing match for the pair regardless of status,
	// or model.ErrNotFound.
	FindByPair(ctx context.Context, lostItemID, foundItemID string) (*model.Match, error)
	// Create inserts a bare Pending match (the manual-claim path).
	Create(ctx context.Context, m *model.Match) (*model.Match, error)
	// CreateWithEffects records one strong match atomically: the match row,
	// its notifications, and the guarded Lost->Matched / Reported->Matched
	// item transitions all commit or none do.
	CreateWithEffects(ctx context.Context, m *model.Match, notifs []*model.Notification) (*model.Match, error)
	ListForUser(ctx context.Context, userID string) ([]*model.MatchDetail, error)
	// Reject applies the terminal Pending->Rejected transition; the bool
	// reports whether this call performed it.
	Reject(ctx context.Context, matchID string) (bool, error)
}

type Claims interface {
	// RecordApproval persists a successful verification atomically: the claim
	// row, the Pending->Approved flip of every pending match on the found
	// item, the Reported/Matched->Returned and Lost/Matched->Claimed item
	// transitions, and both notifications.
	RecordApproval(ctx context.Context, c *model.Claim, notifs []*model.Notification) (*model.Claim, error)
	ListMadeBy(ctx context.Context, userID string) ([]*model.ClaimDetail, error)
	ListReceived(ctx context.Context, userID string) ([]*model.ClaimDetail, error)
	GetByID(ctx context.Context, claimID, userID string) (*model.ClaimDetail, error)
}

type Notifications interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, notificationID, userID string) error
	DeleteAll(ctx context.Context, userID string) error
}
