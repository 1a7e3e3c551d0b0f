// Package storetest provides a driver-agnostic compliance suite for
// store.Store implementations. Each backend's tests call RunComplianceSuite
// with a factory that yields a fresh, schema-applied store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-server/internal/match"
	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// Factory returns an empty store with the schema applied. Each subtest gets
// its own instance so state never leaks between cases.
type Factory func(t *testing.T) store.Store

// RunComplianceSuite runs every behavioral contract a backend must honor.
func RunComplianceSuite(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("LostItemCRUD", func(t *testing.T) { testLostItemCRUD(t, newStore(t)) })
	t.Run("FoundItemCRUD", func(t *testing.T) { testFoundItemCRUD(t, newStore(t)) })
	t.Run("Candidates", func(t *testing.T) { testCandidates(t, newStore(t)) })
	t.Run("CandidateSuperset", func(t *testing.T) { testCandidateSuperset(t, newStore(t)) })
	t.Run("MatchEffects", func(t *testing.T) { testMatchEffects(t, newStore(t)) })
	t.Run("MatchReject", func(t *testing.T) { testMatchReject(t, newStore(t)) })
	t.Run("ClaimApproval", func(t *testing.T) { testClaimApproval(t, newStore(t)) })
	t.Run("PrivacyWindow", func(t *testing.T) { testPrivacyWindow(t, newStore(t)) })
	t.Run("Notifications", func(t *testing.T) { testNotifications(t, newStore(t)) })
	t.Run("FindClaimable", func(t *testing.T) { testFindClaimable(t, newStore(t)) })
}

func newUser(t *testing.T, s store.Store, name string) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &model.User{
		Username: name,
		Email:    name + "@example.edu",
		Phone:    "555-0100",
		APIKey:   "key-" + uuid.New().String(),
	})
	require.NoError(t, err)
	return u
}

func newLost(t *testing.T, s store.Store, userID string, mutate func(*model.LostItem)) *model.LostItem {
	t.Helper()
	it := &model.LostItem{
		UserID:      userID,
		Name:        "Blue Hydro Flask",
		Category:    "Bottles",
		Description: "navy 32oz flask with stickers",
		Location:    "Science Library study room",
		LostDate:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(it)
	}
	out, err := s.LostItems().Create(context.Background(), it)
	require.NoError(t, err)
	return out
}

func newFound(t *testing.T, s store.Store, userID string, mutate func(*model.FoundItem)) *model.FoundItem {
	t.Helper()
	it := &model.FoundItem{
		UserID:         userID,
		Name:           "Blue Hydro Flask",
		Category:       "Bottles",
		Description:    "navy water flask covered in stickers",
		Location:       "Science Library",
		FoundDate:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Question1:      "What color is the cap?",
		Question2:      "Name one sticker on it",
		Answer1Secret:  "black",
		Answer2Secret:  "octopus",
		MatchWindowEnd: time.Now().UTC().Add(24 * time.Hour),
	}
	if mutate != nil {
		mutate(it)
	}
	out, err := s.FoundItems().Create(context.Background(), it)
	require.NoError(t, err)
	return out
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "casey")

	got, err := s.Users().Get(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "casey", got.Username)
	assert.Equal(t, "casey@example.edu", got.Email)

	byKey, err := s.Users().GetByAPIKey(ctx, u.APIKey)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, byKey.UserID)

	_, err = s.Users().Get(ctx, uuid.New().String())
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.Users().GetByAPIKey(ctx, "no-such-key")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testLostItemCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner")
	other := newUser(t, s, "other")

	it := newLost(t, s, owner.UserID, func(li *model.LostItem) {
		li.ImageURLs = []string{"https://img.example/flask.jpg"}
	})
	assert.Equal(t, model.LostStatusLost, it.Status)
	assert.NotEmpty(t, it.ItemID)

	got, err := s.LostItems().GetByID(ctx, it.ItemID)
	require.NoError(t, err)
	assert.Equal(t, it.Name, got.Name)
	assert.Equal(t, []string{"https://img.example/flask.jpg"}, got.ImageURLs)

	mine, err := s.LostItems().ListByUser(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	// Edits are owner-scoped and only allowed while still open.
	desc := "navy flask, dented base"
	err = s.LostItems().Update(ctx, it.ItemID, other.UserID, model.LostItemPatch{Description: &desc})
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = s.LostItems().Update(ctx, it.ItemID, owner.UserID, model.LostItemPatch{Description: &desc})
	require.NoError(t, err)
	got, err = s.LostItems().GetByID(ctx, it.ItemID)
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)

	applied, err := s.LostItems().TransitionStatus(ctx, it.ItemID, model.LostStatusLost, model.LostStatusMatched)
	require.NoError(t, err)
	assert.True(t, applied)

	err = s.LostItems().Update(ctx, it.ItemID, owner.UserID, model.LostItemPatch{Description: &desc})
	assert.ErrorIs(t, err, model.ErrNotFound)
	err = s.LostItems().Delete(ctx, it.ItemID, owner.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Transition with wrong prior status is a no-op, not an error.
	applied, err = s.LostItems().TransitionStatus(ctx, it.ItemID, model.LostStatusLost, model.LostStatusClaimed)
	require.NoError(t, err)
	assert.False(t, applied)

	open := newLost(t, s, owner.UserID, nil)
	require.NoError(t, s.LostItems().Delete(ctx, open.ItemID, owner.UserID))
	_, err = s.LostItems().GetByID(ctx, open.ItemID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testFoundItemCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	finder := newUser(t, s, "finder")

	it := newFound(t, s, finder.UserID, nil)
	assert.Equal(t, model.FoundStatusReported, it.Status)
	assert.False(t, it.IsPublic)

	got, err := s.FoundItems().GetByID(ctx, it.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "black", got.Answer1Secret)
	assert.Equal(t, "octopus", got.Answer2Secret)
	assert.WithinDuration(t, it.MatchWindowEnd, got.MatchWindowEnd, time.Second)

	loc := "Science Library front desk"
	require.NoError(t, s.FoundItems().Update(ctx, it.ItemID, finder.UserID, model.FoundItemPatch{Location: &loc}))
	got, err = s.FoundItems().GetByID(ctx, it.ItemID)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location)

	applied, err := s.FoundItems().TransitionStatus(ctx, it.ItemID, model.FoundStatusReported, model.FoundStatusMatched)
	require.NoError(t, err)
	assert.True(t, applied)
	err = s.FoundItems().Delete(ctx, it.ItemID, finder.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testCandidates(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner")

	inWindow := newLost(t, s, owner.UserID, nil)
	newLost(t, s, owner.UserID, func(li *model.LostItem) {
		li.LostDate = li.LostDate.AddDate(0, 0, -10) // outside the window
	})
	newLost(t, s, owner.UserID, func(li *model.LostItem) {
		li.Category = "Electronics"
	})
	newLost(t, s, owner.UserID, func(li *model.LostItem) {
		li.Location = "East Gym locker room"
	})

	q := model.CandidateQuery{
		Category: "Bottles",
		Location: "Science Library",
		Date:     time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Days:     5,
	}
	got, err := s.LostItems().FindCandidates(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inWindow.ItemID, got[0].ItemID)

	// Location containment works in both directions.
	q.Location = "Science Library 2nd floor"
	got, err = s.LostItems().FindCandidates(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, got)

	q.Location = "Library"
	got, err = s.LostItems().FindCandidates(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

// testCandidateSuperset pins the filter's looseness relative to the scorer:
// the 5-day window outlasts the scorer's 3-day proximity bonus, and substring
// containment admits every pair whose locations share enough to score. Pairs
// the scorer rates strong must come back from FindCandidates.
func testCandidateSuperset(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner")

	baseFound := func() *model.FoundItem {
		return &model.FoundItem{
			Name:        "Blue Hydro Flask",
			Category:    "Bottles",
			Description: "navy water flask covered in stickers",
			Location:    "Science Library",
			FoundDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		}
	}

	cases := []struct {
		name  string
		lost  func(*model.LostItem)
		found func(*model.FoundItem)
	}{
		{"matching reports", nil, nil},
		{
			// Day four earns no date points from the scorer but stays
			// inside the query window.
			"short name, day four",
			nil,
			func(fi *model.FoundItem) {
				fi.Name = "Hydro Flask"
				fi.FoundDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
			},
		},
		{
			// The finder's location contains the owner's full phrase.
			"verbose finder location",
			nil,
			func(fi *model.FoundItem) {
				fi.Location = "Science Library study room, 2nd carrel"
				fi.Description = "navy flask covered in travel stickers"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lost := newLost(t, s, owner.UserID, tc.lost)
			fi := baseFound()
			if tc.found != nil {
				tc.found(fi)
			}
			require.GreaterOrEqual(t, match.Score(lost, fi), match.StrongThreshold,
				"fixture pair must rate strong")

			got, err := s.LostItems().FindCandidates(ctx, model.CandidateQuery{
				Category: fi.Category,
				Location: fi.Location,
				Date:     fi.FoundDate,
				Days:     5,
			})
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, li := range got {
				ids = append(ids, li.ItemID)
			}
			assert.Contains(t, ids, lost.ItemID)
		})
	}
}

func testMatchEffects(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner")
	finder := newUser(t, s, "finder")
	lost := newLost(t, s, owner.UserID, nil)
	found := newFound(t, s, finder.UserID, nil)

	notifs := []*model.Notification{
		{UserID: owner.UserID, Message: "possible match found", Type: model.NotificationTypeMatchAlert},
		{UserID: finder.UserID, Message: "possible match found", Type: model.NotificationTypeMatchAlert},
	}
	m, err := s.Matches().CreateWithEffects(ctx, &model.Match{
		LostItemID:  lost.ItemID,
		FoundItemID: found.ItemID,
		Score:       88,
	}, notifs)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusPending, m.Status)
	assert.Equal(t, model.MatchSourceAutomatic, m.Source)

	gotLost, err := s.LostItems().GetByID(ctx, lost.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.LostStatusMatched, gotLost.Status)
	gotFound, err := s.FoundItems().GetByID(ctx, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundStatusMatched, gotFound.Status)

	for _, uid := range []string{owner.UserID, finder.UserID} {
		n, err := s.Notifications().CountUnread(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	pair, err := s.Matches().FindByPair(ctx, lost.ItemID, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, m.MatchID, pair.MatchID)

	details, err := s.Matches().ListForUser(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, lost.ItemID, details[0].LostItem.ItemID)
	assert.Equal(t, found.ItemID, details[0].FoundItem.ItemID)

	// A second strong match for the same found item records fine and leaves
	// the already-Matched statuses alone.
	lost2 := newLost(t, s, owner.UserID, nil)
	_, err = s.Matches().CreateWithEffects(ctx, &model.Match{
		LostItemID:  lost2.ItemID,
		FoundItemID: found.ItemID,
		Score:       75,
	}, nil)
	require.NoError(t, err)
	gotFound, err = s.FoundItems().GetByID(ctx, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundStatusMatched, gotFound.Status)
}

func testMatchReject(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner")
	finder := newUser(t, s, "finder")
	lost := newLost(t, s, owner.UserID, nil)
	found := newFound(t, s, finder.UserID, nil)

	m, err := s.Matches().Create(ctx, &model.Match{
		LostItemID:  lost.ItemID,
		FoundItemID: found.ItemID,
		Score:       60,
		Source:      model.MatchSourceManualClaim,
	})
	require.NoError(t, err)

	applied, err := s.Matches().Reject(ctx, m.MatchID)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := s.Matches().GetByID(ctx, m.MatchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusRejected, got.Status)

	// Rejected is terminal.
	applied, err = s.Matches().Reject(ctx, m.MatchID)
	require.NoError(t, err)
	assert.False(t, applied)
}

func testClaimApproval(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner")
	finder := newUser(t, s, "finder")
	lost := newLost(t, s, owner.UserID, nil)
	found := newFound(t, s, finder.UserID, nil)

	m, err := s.Matches().CreateWithEffects(ctx, &model.Match{
		LostItemID:  lost.ItemID,
		FoundItemID: found.ItemID,
		Score:       90,
	}, nil)
	require.NoError(t, err)

	cl, err := s.Claims().RecordApproval(ctx, &model.Claim{
		LostItemID:     lost.ItemID,
		FoundItemID:    found.ItemID,
		ClaimantID:     owner.UserID,
		AnswerAttempt1: "black",
		AnswerAttempt2: "octopus",
	}, []*model.Notification{
		{UserID: finder.UserID, Message: "your found item was claimed", Type: model.NotificationTypeClaimApproved},
		{UserID: owner.UserID, Message: "claim approved", Type: model.NotificationTypeClaimApproved},
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.MatchStatusApproved), cl.Status)

	gotMatch, err := s.Matches().GetByID(ctx, m.MatchID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusApproved, gotMatch.Status)

	gotLost, err := s.LostItems().GetByID(ctx, lost.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.LostStatusClaimed, gotLost.Status)
	gotFound, err := s.FoundItems().GetByID(ctx, found.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.FoundStatusReturned, gotFound.Status)

	made, err := s.Claims().ListMadeBy(ctx, owner.UserID)
	require.NoError(t, err)
	require.Len(t, made, 1)
	assert.Equal(t, finder.UserID, made[0].Counterparty.UserID)

	received, err := s.Claims().ListReceived(ctx, finder.UserID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, owner.UserID, received[0].Counterparty.UserID)

	byID, err := s.Claims().GetByID(ctx, cl.ClaimID, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, cl.ClaimID, byID.Claim.ClaimID)

	stranger := newUser(t, s, "stranger")
	_, err = s.Claims().GetByID(ctx, cl.ClaimID, stranger.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testPrivacyWindow(t *testing.T, s store.Store) {
	ctx := context.Background()
	finder := newUser(t, s, "finder")
	now := time.Now().UTC()

	expired := newFound(t, s, finder.UserID, func(fi *model.FoundItem) {
		fi.MatchWindowEnd = now.Add(-time.Hour)
	})
	active := newFound(t, s, finder.UserID, func(fi *model.FoundItem) {
		fi.Name = "Red Umbrella"
		fi.MatchWindowEnd = now.Add(23 * time.Hour)
	})

	n, err := s.FoundItems().PublishExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.FoundItems().GetByID(ctx, expired.ItemID)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)
	got, err = s.FoundItems().GetByID(ctx, active.ItemID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)

	// The sweep is idempotent.
	n, err = s.FoundItems().PublishExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	pub, total, err := s.FoundItems().ListPublic(ctx, model.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pub, 1)
	assert.Equal(t, expired.ItemID, pub[0].ItemID)
}

func testNotifications(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "recipient")

	first, err := s.Notifications().Create(ctx, &model.Notification{
		UserID:  u.UserID,
		Message: "possible match found",
		Type:    model.NotificationTypeMatchAlert,
	})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusUnread, first.Status)

	_, err = s.Notifications().Create(ctx, &model.Notification{
		UserID:  u.UserID,
		Message: "claim approved",
		Type:    model.NotificationTypeClaimApproved,
	})
	require.NoError(t, err)

	all, err := s.Notifications().ListByUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Notifications().MarkRead(ctx, first.NotificationID, u.UserID))
	unread, err := s.Notifications().ListUnread(ctx, u.UserID)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	count, err := s.Notifications().CountUnread(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	other := newUser(t, s, "other")
	err = s.Notifications().MarkRead(ctx, first.NotificationID, other.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Notifications().MarkAllRead(ctx, u.UserID))
	count, err = s.Notifications().CountUnread(ctx, u.UserID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, s.Notifications().Delete(ctx, first.NotificationID, u.UserID))
	require.NoError(t, s.Notifications().DeleteAll(ctx, u.UserID))
	all, err = s.Notifications().ListByUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testFindClaimable(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner")

	_, err := s.LostItems().FindClaimable(ctx, owner.UserID, "Bottles", "Blue Hydro Flask", "Science Library")
	assert.ErrorIs(t, err, model.ErrNotFound)

	older := newLost(t, s, owner.UserID, nil)
	newLost(t, s, owner.UserID, nil)

	got, err := s.LostItems().FindClaimable(ctx, owner.UserID, "Bottles", "Blue Hydro Flask 32oz", "Science Library")
	require.NoError(t, err)
	assert.Equal(t, older.ItemID, got.ItemID)

	// Category must match exactly.
	_, err = s.LostItems().FindClaimable(ctx, owner.UserID, "Electronics", "Blue Hydro Flask", "Science Library")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
