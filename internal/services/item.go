package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// ItemService handles lost/found report intake, listings, and owner edits.
// New reports are handed to the matcher after creation.
type ItemService struct {
	store       store.Store
	matcher     *MatchService
	matchWindow time.Duration
}

func NewItemService(s store.Store, matcher *MatchService, matchWindow time.Duration) *ItemService {
	return &ItemService{store: s, matcher: matcher, matchWindow: matchWindow}
}

// ReportLost persists a lost-item report and runs the automatic matcher.
// The returned count is how many strong matches were recorded immediately.
func (s *ItemService) ReportLost(ctx context.Context, it *model.LostItem) (*model.LostItem, int, error) {
	if err := validateLost(it); err != nil {
		return nil, 0, err
	}
	created, err := s.store.LostItems().Create(ctx, it)
	if err != nil {
		return nil, 0, err
	}
	matched, err := s.matcher.OnLostItemCreated(ctx, created)
	if err != nil {
		return nil, 0, err
	}
	return created, matched, nil
}

// ReportFound persists a found-item report. The item starts private; the
// privacy window ends matchWindow after creation, when the sweep publishes it.
func (s *ItemService) ReportFound(ctx context.Context, it *model.FoundItem) (*model.FoundItem, int, error) {
	if err := validateFound(it); err != nil {
		return nil, 0, err
	}
	it.IsPublic = false
	it.MatchWindowEnd = time.Now().UTC().Add(s.matchWindow)
	created, err := s.store.FoundItems().Create(ctx, it)
	if err != nil {
		return nil, 0, err
	}
	matched, err := s.matcher.OnFoundItemCreated(ctx, created)
	if err != nil {
		return nil, 0, err
	}
	return created, matched, nil
}

func (s *ItemService) GetLost(ctx context.Context, itemID string) (*model.LostItem, error) {
	return s.store.LostItems().GetByID(ctx, itemID)
}

func (s *ItemService) GetFound(ctx context.Context, itemID string) (*model.FoundItem, error) {
	return s.store.FoundItems().GetByID(ctx, itemID)
}

// ListOpenLost returns open lost reports for browsing, with optional filters.
func (s *ItemService) ListOpenLost(ctx context.Context, q model.ListQuery) ([]*model.LostItem, int, error) {
	return s.store.LostItems().ListOpen(ctx, q)
}

// ListPublicFound returns found reports whose privacy window has lapsed.
// Items still inside the window never appear here.
func (s *ItemService) ListPublicFound(ctx context.Context, q model.ListQuery) ([]*model.FoundItem, int, error) {
	return s.store.FoundItems().ListPublic(ctx, q)
}

func (s *ItemService) MyLostItems(ctx context.Context, userID string) ([]*model.LostItem, error) {
	return s.store.LostItems().ListByUser(ctx, userID)
}

func (s *ItemService) MyFoundItems(ctx context.Context, userID string) ([]*model.FoundItem, error) {
	return s.store.FoundItems().ListByUser(ctx, userID)
}

// UpdateLost applies an owner edit; allowed only while the item is still open.
func (s *ItemService) UpdateLost(ctx context.Context, itemID, userID string, p model.LostItemPatch) error {
	return s.store.LostItems().Update(ctx, itemID, userID, p)
}

func (s *ItemService) UpdateFound(ctx context.Context, itemID, userID string, p model.FoundItemPatch) error {
	return s.store.FoundItems().Update(ctx, itemID, userID, p)
}

func (s *ItemService) DeleteLost(ctx context.Context, itemID, userID string) error {
	return s.store.LostItems().Delete(ctx, itemID, userID)
}

func (s *ItemService) DeleteFound(ctx context.Context, itemID, userID string) error {
	return s.store.FoundItems().Delete(ctx, itemID, userID)
}

func validateLost(it *model.LostItem) error {
	switch {
	case it.UserID == "":
		return errors.Wrap(model.ErrValidation, "userId is required")
	case it.Name == "":
		return errors.Wrap(model.ErrValidation, "name is required")
	case it.Category == "":
		return errors.Wrap(model.ErrValidation, "category is required")
	case it.Location == "":
		return errors.Wrap(model.ErrValidation, "location is required")
	case it.LostDate.IsZero():
		return errors.Wrap(model.ErrValidation, "lostDate is required")
	}
	return nil
}

func validateFound(it *model.FoundItem) error {
	switch {
	case it.UserID == "":
		return errors.Wrap(model.ErrValidation, "userId is required")
	case it.Name == "":
		return errors.Wrap(model.ErrValidation, "name is required")
	case it.Category == "":
		return errors.Wrap(model.ErrValidation, "category is required")
	case it.Location == "":
		return errors.Wrap(model.ErrValidation, "location is required")
	case it.FoundDate.IsZero():
		return errors.Wrap(model.ErrValidation, "foundDate is required")
	case it.Question1 == "" || it.Question2 == "":
		return errors.Wrap(model.ErrValidation, "both security questions are required")
	case it.Answer1Secret == "" || it.Answer2Secret == "":
		return errors.Wrap(model.ErrValidation, "both security answers are required")
	}
	return nil
}
