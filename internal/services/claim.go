package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/foundly/foundly-server/internal/match"
	"github.com/foundly/foundly-server/internal/metrics"
	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// claimThreshold is the minimum normalized answer similarity for approval.
// The boundary is inclusive: exactly 0.5 approves. Fuzzy comparison tolerates
// typos and casing while still requiring a substantively correct answer.
const claimThreshold = 0.5

// ClaimOutcome is the structured result of a verification attempt. Contact is
// set only on approval; no other path ever discloses the finder's record.
type ClaimOutcome struct {
	Status  string       `json:"status"` // approved | rejected
	Reason  string       `json:"reason,omitempty"`
	Contact *model.User  `json:"contact,omitempty"`
	Claim   *model.Claim `json:"claim,omitempty"`
}

// ClaimService verifies ownership claims against the finder's security
// questions and finalizes the match on success.
type ClaimService struct {
	store store.Store
}

func NewClaimService(s store.Store) *ClaimService {
	return &ClaimService{store: s}
}

// VerifyClaim runs the quiz for a pending match. Both submitted answers must
// reach the similarity threshold against the stored secrets. Failure rejects
// the match (guarded, Pending only) and creates no claim row; success records
// the claim, flips the match and both items, notifies both parties, and
// returns the finder's contact record.
func (s *ClaimService) VerifyClaim(ctx context.Context, matchID, claimantID, answer1, answer2 string) (*ClaimOutcome, error) {
	m, err := s.store.Matches().GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != model.MatchStatusPending {
		return &ClaimOutcome{Status: "rejected", Reason: "This match has already been resolved."}, nil
	}

	lost, err := s.store.LostItems().GetByID(ctx, m.LostItemID)
	if err != nil {
		return nil, err
	}
	if lost.UserID != claimantID {
		return nil, errors.Wrap(model.ErrValidation, "only the lost item's owner can answer this quiz")
	}
	found, err := s.store.FoundItems().GetByID(ctx, m.FoundItemID)
	if err != nil {
		return nil, err
	}

	s1 := match.Similarity(normalizeAnswer(answer1), normalizeAnswer(found.Answer1Secret))
	s2 := match.Similarity(normalizeAnswer(answer2), normalizeAnswer(found.Answer2Secret))
	if s1 < claimThreshold || s2 < claimThreshold {
		if _, err := s.store.Matches().Reject(ctx, matchID); err != nil {
			return nil, err
		}
		metrics.ClaimsVerified.WithLabelValues("rejected").Inc()
		return &ClaimOutcome{Status: "rejected", Reason: "Verification failed. Your answers did not match the finder's records."}, nil
	}

	finder, err := s.store.Users().Get(ctx, found.UserID)
	if err != nil {
		return nil, err
	}

	notifs := []*model.Notification{
		{
			UserID:  found.UserID,
			Message: fmt.Sprintf("Your found item %q has been claimed. Please arrange the handover with its owner.", found.Name),
			Type:    model.NotificationTypeClaimApproved,
		},
		{
			UserID:  claimantID,
			Message: fmt.Sprintf("Your claim for %q was approved! Contact the finder at %s to arrange pickup.", found.Name, finder.Phone),
			Type:    model.NotificationTypeClaimApproved,
		},
	}
	cl, err := s.store.Claims().RecordApproval(ctx, &model.Claim{
		LostItemID:     m.LostItemID,
		FoundItemID:    m.FoundItemID,
		ClaimantID:     claimantID,
		AnswerAttempt1: answer1,
		AnswerAttempt2: answer2,
	}, notifs)
	if err != nil {
		return nil, err
	}

	metrics.ClaimsVerified.WithLabelValues("approved").Inc()
	return &ClaimOutcome{Status: "approved", Contact: finder, Claim: cl}, nil
}

func (s *ClaimService) MyClaims(ctx context.Context, userID string) ([]*model.ClaimDetail, error) {
	return s.store.Claims().ListMadeBy(ctx, userID)
}

func (s *ClaimService) ReceivedClaims(ctx context.Context, userID string) ([]*model.ClaimDetail, error) {
	return s.store.Claims().ListReceived(ctx, userID)
}

func (s *ClaimService) GetClaim(ctx context.Context, claimID, userID string) (*model.ClaimDetail, error) {
	return s.store.Claims().GetByID(ctx, claimID, userID)
}

func normalizeAnswer(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}
