package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/services"
	"github.com/foundly/foundly-server/internal/store"
	"github.com/foundly/foundly-server/internal/store/sqlite"
)

type fixture struct {
	store  store.Store
	users  *services.UserService
	items  *services.ItemService
	match  *services.MatchService
	claims *services.ClaimService
	notifs *services.NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := sqlite.Bootstrap(context.Background(), filepath.Join(t.TempDir(), "foundly.db"))
	require.NoError(t, err)
	matcher := services.NewMatchService(s, zerolog.Nop())
	return &fixture{
		store:  s,
		users:  services.NewUserService(s),
		items:  services.NewItemService(s, matcher, 24*time.Hour),
		match:  matcher,
		claims: services.NewClaimService(s),
		notifs: services.NewNotificationService(s),
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), &model.User{
		Username: name,
		Email:    name + "@example.edu",
		Phone:    "555-0142",
	})
	require.NoError(t, err)
	return u
}

func lostPhone(userID string) *model.LostItem {
	return &model.LostItem{
		UserID:      userID,
		Name:        "iPhone 13",
		Category:    "Electronics",
		Description: "black phone with a cracked corner",
		Location:    "Main Library",
		LostDate:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func foundPhone(userID string) *model.FoundItem {
	return &model.FoundItem{
		UserID:        userID,
		Name:          "iPhone 13 Pro",
		Category:      "Electronics",
		Description:   "black phone, cracked near the camera",
		Location:      "Main Library 2nd Floor",
		FoundDate:     time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		Question1:     "What is the lock screen wallpaper?",
		Question2:     "What sticker is on the case?",
		Answer1Secret: "Mountain Lake",
		Answer2Secret: "a small bee",
	}
}

func TestReportLostTriggersStrongMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")

	found, matched, err := f.items.ReportFound(ctx, foundPhone(finder.UserID))
	require.NoError(t, err)
	assert.Zero(t, matched)
	assert.False(t, found.IsPublic)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), found.MatchWindowEnd, time.Minute)

	lost, matched, err := f.items.ReportLost(ctx, lostPhone(owner.UserID))
	require.NoError(t, err)
	assert.Equal(t, 1, matched)

	gotLost, err := f.items.GetLost(ctx, lost.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.LostStatusMatched, gotLost.Status)
	gotFound, err := f.items.GetFound(ctx, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundStatusMatched, gotFound.Status)

	matches, err := f.match.MyMatches(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, model.MatchStatusPending, matches[0].Match.Status)
	assert.Equal(t, model.MatchSourceAutomatic, matches[0].Match.Source)
	assert.GreaterOrEqual(t, matches[0].Match.Score, 70)

	// Both parties got a match alert naming their item and the score.
	ownerNotifs, err := f.notifs.ListUnread(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, ownerNotifs, 1)
	assert.Contains(t, ownerNotifs[0].Message, "iPhone 13")
	assert.Equal(t, model.NotificationTypeMatchAlert, ownerNotifs[0].Type)
	finderNotifs, err := f.notifs.ListUnread(ctx, finder.UserID)
	require.NoError(t, err)
	require.Len(t, finderNotifs, 1)
	assert.Contains(t, finderNotifs[0].Message, "iPhone 13 Pro")
}

func TestReportFoundMatchesExistingLost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")

	_, matched, err := f.items.ReportLost(ctx, lostPhone(owner.UserID))
	require.NoError(t, err)
	assert.Zero(t, matched)

	_, matched, err = f.items.ReportFound(ctx, foundPhone(finder.UserID))
	require.NoError(t, err)
	assert.Equal(t, 1, matched)
}

func TestWeakPairCreatesNoMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")

	fi := foundPhone(finder.UserID)
	// Passes the coarse candidate filter but scores well below 70.
	fi.Name = "Samsung charger"
	fi.Description = ""
	fi.Location = "Main Library entrance"
	_, _, err := f.items.ReportFound(ctx, fi)
	require.NoError(t, err)

	li := lostPhone(owner.UserID)
	li.Description = ""
	_, matched, err := f.items.ReportLost(ctx, li)
	require.NoError(t, err)
	assert.Zero(t, matched)

	matches, err := f.match.MyMatches(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReportValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")

	li := lostPhone(owner.UserID)
	li.Category = ""
	_, _, err := f.items.ReportLost(ctx, li)
	assert.ErrorIs(t, err, model.ErrValidation)

	fi := foundPhone(owner.UserID)
	fi.Answer2Secret = ""
	_, _, err = f.items.ReportFound(ctx, fi)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestPublicClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")
	stranger := f.user(t, "stranger")

	fi := foundPhone(finder.UserID)
	// Off-window date so the automatic matcher stays quiet.
	fi.FoundDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	found, _, err := f.items.ReportFound(ctx, fi)
	require.NoError(t, err)

	// No lost report yet: actionable rejection.
	res, err := f.match.CreatePublicClaim(ctx, stranger.UserID, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", res.Status)
	assert.Contains(t, res.Reason, "report your lost item first")

	// The finder cannot claim their own find.
	res, err = f.match.CreatePublicClaim(ctx, finder.UserID, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", res.Status)

	li := lostPhone(owner.UserID)
	// Claimability requires the lost report to contain the find's name or
	// location, so the owner's report names the fuller model.
	li.Name = "iPhone 13 Pro Max"
	li.LostDate = time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	_, _, err = f.items.ReportLost(ctx, li)
	require.NoError(t, err)

	res, err = f.match.CreatePublicClaim(ctx, owner.UserID, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "match_created", res.Status)
	require.NotEmpty(t, res.MatchID)

	m, err := f.store.Matches().GetByID(ctx, res.MatchID)
	require.NoError(t, err)
	assert.Equal(t, 60, m.Score)
	assert.Equal(t, model.MatchSourceManualClaim, m.Source)
	assert.Equal(t, model.MatchStatusPending, m.Status)

	// Items do not move on the public-claim path.
	gotFound, err := f.items.GetFound(ctx, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundStatusReported, gotFound.Status)

	// Claiming again returns the same match, no duplicate.
	dup, err := f.match.CreatePublicClaim(ctx, owner.UserID, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "match_exists", dup.Status)
	assert.Equal(t, res.MatchID, dup.MatchID)

	// Unknown found item is a declined operation, not an error.
	res, err = f.match.CreatePublicClaim(ctx, owner.UserID, "no-such-item")
	require.NoError(t, err)
	assert.Equal(t, "rejected", res.Status)
}

func TestPublicClaimResolvedItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")

	li := lostPhone(owner.UserID)
	li.Name = "iPhone 13 Pro Max"
	li.LostDate = time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	_, _, err := f.items.ReportLost(ctx, li)
	require.NoError(t, err)

	for _, to := range []model.FoundItemStatus{model.FoundStatusMatched, model.FoundStatusReturned} {
		fi := foundPhone(finder.UserID)
		fi.FoundDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		found, _, err := f.items.ReportFound(ctx, fi)
		require.NoError(t, err)

		applied, err := f.store.FoundItems().TransitionStatus(ctx, found.ItemID, model.FoundStatusReported, to)
		require.NoError(t, err)
		require.True(t, applied)

		// An item that already moved past Reported takes no new claims.
		res, err := f.match.CreatePublicClaim(ctx, owner.UserID, found.ItemID)
		require.NoError(t, err)
		assert.Equal(t, "rejected", res.Status)
		assert.Contains(t, res.Reason, "no longer available")
		assert.Empty(t, res.MatchID)
	}
}

func TestVerifyClaimSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")

	found, _, err := f.items.ReportFound(ctx, foundPhone(finder.UserID))
	require.NoError(t, err)
	_, _, err = f.items.ReportLost(ctx, lostPhone(owner.UserID))
	require.NoError(t, err)

	matches, err := f.match.MyMatches(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	matchID := matches[0].Match.MatchID

	// Casing and stray whitespace must not fail verification.
	out, err := f.claims.VerifyClaim(ctx, matchID, owner.UserID, "  mountain lake ", "A small bee")
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Status)
	require.NotNil(t, out.Contact)
	assert.Equal(t, finder.UserID, out.Contact.UserID)
	assert.Equal(t, finder.Phone, out.Contact.Phone)
	require.NotNil(t, out.Claim)

	gotFound, err := f.items.GetFound(ctx, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundStatusReturned, gotFound.Status)
	gotLost, err := f.items.GetLost(ctx, matches[0].LostItem.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.LostStatusClaimed, gotLost.Status)

	m, err := f.store.Matches().GetByID(ctx, matchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusApproved, m.Status)

	// Loser's approval notice carries the finder's number inline.
	ownerNotifs, err := f.notifs.List(ctx, owner.UserID)
	require.NoError(t, err)
	var approval *model.Notification
	for _, n := range ownerNotifs {
		if n.Type == model.NotificationTypeClaimApproved {
			approval = n
		}
	}
	require.NotNil(t, approval)
	assert.Contains(t, approval.Message, finder.Phone)

	// A second attempt on the resolved match is declined without side effects.
	out, err = f.claims.VerifyClaim(ctx, matchID, owner.UserID, "mountain lake", "a small bee")
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.Status)
	assert.Nil(t, out.Contact)
}

func TestVerifyClaimFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")

	found, _, err := f.items.ReportFound(ctx, foundPhone(finder.UserID))
	require.NoError(t, err)
	_, _, err = f.items.ReportLost(ctx, lostPhone(owner.UserID))
	require.NoError(t, err)

	matches, err := f.match.MyMatches(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	matchID := matches[0].Match.MatchID

	out, err := f.claims.VerifyClaim(ctx, matchID, owner.UserID, "sunset beach", "a small bee")
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.Status)
	assert.Contains(t, out.Reason, "Verification failed")
	assert.Nil(t, out.Contact)
	assert.Nil(t, out.Claim)

	m, err := f.store.Matches().GetByID(ctx, matchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusRejected, m.Status)

	// Items keep their Matched status and no claim rows exist.
	gotFound, err := f.items.GetFound(ctx, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundStatusMatched, gotFound.Status)
	made, err := f.claims.MyClaims(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Empty(t, made)

	// Rejected is terminal.
	out, err = f.claims.VerifyClaim(ctx, matchID, owner.UserID, "mountain lake", "a small bee")
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.Status)
}

func TestVerifyClaimThresholdBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")

	fi := foundPhone(finder.UserID)
	// "abcde" vs "abcgh" share 2 of 8 bigram slots: similarity exactly 0.5,
	// which sits on the inclusive side of the approval boundary.
	fi.Answer1Secret = "abcd"
	fi.Answer2Secret = "abcde"
	_, _, err := f.items.ReportFound(ctx, fi)
	require.NoError(t, err)
	_, _, err = f.items.ReportLost(ctx, lostPhone(owner.UserID))
	require.NoError(t, err)

	matches, err := f.match.MyMatches(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	out, err := f.claims.VerifyClaim(ctx, matches[0].Match.MatchID, owner.UserID, "abcd", "abcgh")
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Status)
	assert.NotNil(t, out.Contact)
}

func TestVerifyClaimWrongClaimant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	finder := f.user(t, "finder")
	stranger := f.user(t, "stranger")

	_, _, err := f.items.ReportFound(ctx, foundPhone(finder.UserID))
	require.NoError(t, err)
	_, _, err = f.items.ReportLost(ctx, lostPhone(owner.UserID))
	require.NoError(t, err)

	matches, err := f.match.MyMatches(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	_, err = f.claims.VerifyClaim(ctx, matches[0].Match.MatchID, stranger.UserID, "mountain lake", "a small bee")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestVerifyClaimUnknownMatch(t *testing.T) {
	f := newFixture(t)
	_, err := f.claims.VerifyClaim(context.Background(), "no-such-match", "someone", "a", "b")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
