package model

import "time"

// LostItemStatus tracks a lost report through its lifecycle.
// Transitions: Lost -> Matched -> Claimed. Items are editable only while Lost.
type LostItemStatus string

const (
	LostStatusLost    LostItemStatus = "Lost"
	LostStatusMatched LostItemStatus = "Matched"
	LostStatusClaimed LostItemStatus = "Claimed"
)

// FoundItemStatus tracks a found report through its lifecycle.
// Transitions: Reported -> Matched -> Returned. Items are editable only while Reported.
type FoundItemStatus string

const (
	FoundStatusReported FoundItemStatus = "Reported"
	FoundStatusMatched  FoundItemStatus = "Matched"
	FoundStatusReturned FoundItemStatus = "Returned"
)

// MatchStatus is the verification state of a proposed pairing.
// Approved and Rejected are terminal.
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "Pending"
	MatchStatusApproved MatchStatus = "Approved"
	MatchStatusRejected MatchStatus = "Rejected"
)

// MatchSource records which path created a match. Automatic matches carry a
// computed similarity score; manual-claim matches carry the fixed unverified
// score and only signal user intent.
type MatchSource string

const (
	MatchSourceAutomatic   MatchSource = "automatic"
	MatchSourceManualClaim MatchSource = "manual-claim"
)

// Notification type tags and read state.
const (
	NotificationTypeMatchAlert    = "match-alert"
	NotificationTypeClaimApproved = "claim_approved"

	NotificationStatusUnread = "unread"
	NotificationStatusRead   = "read"
)

// User is an account record. Email and phone are the contact details disclosed
// to a verified claimant.
type User struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	APIKey       string    `json:"-"`
	CreationTime time.Time `json:"creationTime"`
}

// LostItem is a report filed by the owner of a missing item.
type LostItem struct {
	ItemID       string         `json:"itemId"`
	UserID       string         `json:"userId"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	Description  string         `json:"description"`
	Location     string         `json:"location"`
	LostDate     time.Time      `json:"lostDate"`
	ImageURLs    []string       `json:"imageUrls,omitempty"`
	Status       LostItemStatus `json:"status"`
	CreationTime time.Time      `json:"creationTime"`
}

// FoundItem is a report filed by a finder. The two security answers are
// verification secrets: they are stored in recoverable form and compared by
// normalized similarity, never exact equality, so they must be treated as
// sensitive plaintext and are excluded from all JSON output.
type FoundItem struct {
	ItemID         string          `json:"itemId"`
	UserID         string          `json:"userId"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	FoundDate      time.Time       `json:"foundDate"`
	ImageURLs      []string        `json:"imageUrls,omitempty"`
	Question1      string          `json:"question1"`
	Question2      string          `json:"question2"`
	Answer1Secret  string          `json:"-"`
	Answer2Secret  string          `json:"-"`
	IsPublic       bool            `json:"isPublic"`
	MatchWindowEnd time.Time       `json:"matchWindowEnd"`
	Status         FoundItemStatus `json:"status"`
	CreationTime   time.Time       `json:"creationTime"`
}

// Match is a proposed lost/found pairing awaiting verification.
type Match struct {
	MatchID      string      `json:"matchId"`
	LostItemID   string      `json:"lostItemId"`
	FoundItemID  string      `json:"foundItemId"`
	Score        int         `json:"matchScore"`
	Source       MatchSource `json:"matchSource"`
	Status       MatchStatus `json:"status"`
	CreationTime time.Time   `json:"creationTime"`
}

// MatchDetail is the joined view returned to the owner of the lost side.
type MatchDetail struct {
	Match     Match      `json:"match"`
	LostItem  *LostItem  `json:"lostItem,omitempty"`
	FoundItem *FoundItem `json:"foundItem,omitempty"`
}

// Claim is the auditable record of a successful ownership verification.
// Claims are only written on quiz success, so Status is always Approved.
type Claim struct {
	ClaimID        string    `json:"claimId"`
	LostItemID     string    `json:"lostItemId"`
	FoundItemID    string    `json:"foundItemId"`
	ClaimantID     string    `json:"claimantId"`
	AnswerAttempt1 string    `json:"answerAttempt1"`
	AnswerAttempt2 string    `json:"answerAttempt2"`
	Status         string    `json:"status"`
	CreationTime   time.Time `json:"creationTime"`
}

// ClaimDetail joins a claim with both items and the counterparty's contact.
type ClaimDetail struct {
	Claim        Claim      `json:"claim"`
	LostItem     *LostItem  `json:"lostItem,omitempty"`
	FoundItem    *FoundItem `json:"foundItem,omitempty"`
	Counterparty *User      `json:"counterparty,omitempty"`
}

// Notification is an append-only user-facing event record. Only its read
// status ever changes after creation.
type Notification struct {
	NotificationID string    `json:"notificationId"`
	UserID         string    `json:"userId"`
	Message        string    `json:"message"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	CreationTime   time.Time `json:"creationTime"`
}

// LostItemPatch carries the optional fields an owner may change while the
// item is still in Lost status. Nil fields are left untouched.
type LostItemPatch struct {
	Description *string
	Location    *string
	LostDate    *time.Time
}

// FoundItemPatch is the found-side counterpart, applicable while Reported.
type FoundItemPatch struct {
	Description *string
	Location    *string
	FoundDate   *time.Time
}

// CandidateQuery bounds the scorer's search space. The filter is deliberately
// looser than the scorer's own checks (5-day window vs 3, substring overlap vs
// token overlap) so it never excludes a pair the scorer would rank strongly.
type CandidateQuery struct {
	Category string
	Location string
	Date     time.Time
	Days     int
}

// ListQuery captures pagination and the optional search filters for item
// listings.
type ListQuery struct {
	Name     string
	Category string
	Location string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
