package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foundly/foundly-server/internal/match"
	"github.com/foundly/foundly-server/internal/metrics"
	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// manualClaimScore is the fixed score assigned to matches seeded through the
// public-claim path. It is a provenance marker ("manually claimed, not yet
// verified"), not a similarity measurement; match_source distinguishes the
// two paths for downstream consumers.
const manualClaimScore = 60

// candidateWindowDays bounds the candidate query. It is deliberately looser
// than the scorer's 3-day date signal so the pre-filter can never drop a pair
// the scorer would rate strongly.
const candidateWindowDays = 5

// PublicClaimResult is the structured outcome of the public-claim path.
type PublicClaimResult struct {
	Status  string `json:"status"` // match_created | match_exists | rejected
	Reason  string `json:"reason,omitempty"`
	MatchID string `json:"matchId,omitempty"`
}

// MatchService runs the automatic matcher on new reports and seeds manual
// matches from public claims.
type MatchService struct {
	store store.Store
	log   zerolog.Logger
}

func NewMatchService(s store.Store, log zerolog.Logger) *MatchService {
	return &MatchService{store: s, log: log}
}

// OnLostItemCreated scores the new lost report against open found reports and
// records every strong match. Each candidate's side effects (match row, two
// notifications, guarded status transitions) commit in their own transaction,
// so one candidate failing does not roll back the others. Returns the number
// of matches recorded.
func (s *MatchService) OnLostItemCreated(ctx context.Context, lost *model.LostItem) (int, error) {
	candidates, err := s.store.FoundItems().FindCandidates(ctx, model.CandidateQuery{
		Category: lost.Category,
		Location: lost.Location,
		Date:     lost.LostDate,
		Days:     candidateWindowDays,
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, found := range candidates {
		score := match.Score(lost, found)
		if score < match.StrongThreshold {
			continue
		}
		if err := s.recordStrongMatch(ctx, lost, found, score); err != nil {
			s.log.Error().Err(err).
				Str("lostItemId", lost.ItemID).
				Str("foundItemId", found.ItemID).
				Msg("failed to record strong match")
			continue
		}
		created++
	}
	return created, nil
}

// OnFoundItemCreated is the mirror path for a new found report. The candidate
// query ignores is_public on purpose: matching must see items still inside
// their privacy window.
func (s *MatchService) OnFoundItemCreated(ctx context.Context, found *model.FoundItem) (int, error) {
	candidates, err := s.store.LostItems().FindCandidates(ctx, model.CandidateQuery{
		Category: found.Category,
		Location: found.Location,
		Date:     found.FoundDate,
		Days:     candidateWindowDays,
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, lost := range candidates {
		score := match.Score(lost, found)
		if score < match.StrongThreshold {
			continue
		}
		if err := s.recordStrongMatch(ctx, lost, found, score); err != nil {
			s.log.Error().Err(err).
				Str("lostItemId", lost.ItemID).
				Str("foundItemId", found.ItemID).
				Msg("failed to record strong match")
			continue
		}
		created++
	}
	return created, nil
}

func (s *MatchService) recordStrongMatch(ctx context.Context, lost *model.LostItem, found *model.FoundItem, score int) error {
	notifs := []*model.Notification{
		{
			UserID:  lost.UserID,
			Message: fmt.Sprintf("Possible match found for your lost item %q (%d%% similarity). Check your matches to review it.", lost.Name, score),
			Type:    model.NotificationTypeMatchAlert,
		},
		{
			UserID:  found.UserID,
			Message: fmt.Sprintf("The item you found, %q, may belong to someone (%d%% similarity). Check your matches to review it.", found.Name, score),
			Type:    model.NotificationTypeMatchAlert,
		},
	}
	_, err := s.store.Matches().CreateWithEffects(ctx, &model.Match{
		LostItemID:  lost.ItemID,
		FoundItemID: found.ItemID,
		Score:       score,
		Source:      model.MatchSourceAutomatic,
	}, notifs)
	if err == nil {
		metrics.MatchesCreated.WithLabelValues(string(model.MatchSourceAutomatic)).Inc()
	}
	return err
}

// CreatePublicClaim associates the caller's own open lost report with a
// public found item, bypassing the scorer. It only seeds a Pending match for
// later quiz verification; no statuses move and no notifications are emitted
// here. Rejections carry an actionable reason for the caller.
func (s *MatchService) CreatePublicClaim(ctx context.Context, userID, foundItemID string) (*PublicClaimResult, error) {
	found, err := s.store.FoundItems().GetByID(ctx, foundItemID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return &PublicClaimResult{Status: "rejected", Reason: "This found item is no longer available."}, nil
		}
		return nil, err
	}
	if found.Status != model.FoundStatusReported {
		return &PublicClaimResult{Status: "rejected", Reason: "This found item is no longer available."}, nil
	}
	if found.UserID == userID {
		return &PublicClaimResult{Status: "rejected", Reason: "You cannot claim an item you reported yourself."}, nil
	}

	lost, err := s.store.LostItems().FindClaimable(ctx, userID, found.Category, found.Name, found.Location)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return &PublicClaimResult{Status: "rejected", Reason: "Please report your lost item first so we can match it against this find."}, nil
		}
		return nil, err
	}

	if existing, err := s.store.Matches().FindByPair(ctx, lost.ItemID, found.ItemID); err == nil {
		return &PublicClaimResult{Status: "match_exists", MatchID: existing.MatchID}, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	m, err := s.store.Matches().Create(ctx, &model.Match{
		LostItemID:  lost.ItemID,
		FoundItemID: found.ItemID,
		Score:       manualClaimScore,
		Source:      model.MatchSourceManualClaim,
	})
	if err != nil {
		return nil, err
	}
	metrics.MatchesCreated.WithLabelValues(string(model.MatchSourceManualClaim)).Inc()
	return &PublicClaimResult{Status: "match_created", MatchID: m.MatchID}, nil
}

// MyMatches returns matches on the caller's lost reports, with both items.
func (s *MatchService) MyMatches(ctx context.Context, userID string) ([]*model.MatchDetail, error) {
	return s.store.Matches().ListForUser(ctx, userID)
}
