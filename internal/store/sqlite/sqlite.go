// Package sqlite provides the SQLite-backed store used for local development
// and tests. It is cgo-free (modernc driver) and applies the same embedded
// schema as the Postgres driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// Open opens (or creates) a SQLite database at the given path with WAL mode
// and foreign keys enabled.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Cross-connection in-process writes serialize poorly in SQLite; a single
	// connection avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap opens the database and applies the embedded schema.
func Bootstrap(ctx context.Context, path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range store.DDLStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &sqStore{db: db} }

type sqStore struct{ db *sql.DB }

func (s *sqStore) Users() store.Users                 { return &users{db: s.db} }
func (s *sqStore) LostItems() store.LostItems         { return &lostItems{db: s.db} }
func (s *sqStore) FoundItems() store.FoundItems       { return &foundItems{db: s.db} }
func (s *sqStore) Matches() store.Matches             { return &matches{db: s.db} }
func (s *sqStore) Claims() store.Claims               { return &claims{db: s.db} }
func (s *sqStore) Notifications() store.Notifications { return &notifications{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	apiKey := sql.NullString{}
	if m.APIKey != "" {
		apiKey = sql.NullString{String: m.APIKey, Valid: true}
	}
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, username, email, phone, api_key, creation_time)
        VALUES (?,?,?,?,?,?)
    `, out.UserID, out.Username, out.Email, out.Phone, apiKey, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, username, email, phone, creation_time
        FROM users WHERE user_id=?
    `, userID)
	return scanUser(row)
}

func (u *users) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, username, email, phone, creation_time
        FROM users WHERE api_key=?
    `, apiKey)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	if err := row.Scan(&out.UserID, &out.Username, &out.Email, &out.Phone, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// --- Lost items ---

type lostItems struct{ db *sql.DB }

const lostCols = `item_id, user_id, item_name, category, description, lost_location, lost_date, image_urls, status, creation_time`

func (l *lostItems) Create(ctx context.Context, it *model.LostItem) (*model.LostItem, error) {
	out := *it
	if out.ItemID == "" {
		out.ItemID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = model.LostStatusLost
	}
	out.CreationTime = time.Now().UTC()
	urls, err := json.Marshal(out.ImageURLs)
	if err != nil {
		return nil, err
	}
	_, err = l.db.ExecContext(ctx, `
        INSERT INTO lost_items (`+lostCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, out.ItemID, out.UserID, out.Name, out.Category, out.Description, out.Location, out.LostDate, string(urls), out.Status, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *lostItems) GetByID(ctx context.Context, itemID string) (*model.LostItem, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+lostCols+` FROM lost_items WHERE item_id=?`, itemID)
	return scanLost(row)
}

func (l *lostItems) ListByUser(ctx context.Context, userID string) ([]*model.LostItem, error) {
	rows, err := l.db.QueryContext(ctx, `
        SELECT `+lostCols+` FROM lost_items WHERE user_id=? ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collectLost(rows)
}

func (l *lostItems) ListOpen(ctx context.Context, q model.ListQuery) ([]*model.LostItem, int, error) {
	where, args := buildItemFilter("item_name", "lost_location", "lost_date", `status='Lost'`, q)

	var total int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lost_items WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + lostCols + ` FROM lost_items WHERE ` + where + ` ORDER BY creation_time DESC LIMIT ? OFFSET ?`
	args = append(args, pageLimit(q), q.Offset)
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectLost(rows)
	return out, total, err
}

func (l *lostItems) FindCandidates(ctx context.Context, q model.CandidateQuery) ([]*model.LostItem, error) {
	from, to := dateWindow(q)
	rows, err := l.db.QueryContext(ctx, `
        SELECT `+lostCols+` FROM lost_items
        WHERE status='Lost'
          AND category=?
          AND lost_date BETWEEN ? AND ?
          AND (lost_location LIKE '%'||?||'%' OR ? LIKE '%'||lost_location||'%')
    `, q.Category, from, to, q.Location, q.Location)
	if err != nil {
		return nil, err
	}
	return collectLost(rows)
}

func (l *lostItems) FindClaimable(ctx context.Context, userID, category, name, location string) (*model.LostItem, error) {
	row := l.db.QueryRowContext(ctx, `
        SELECT `+lostCols+` FROM lost_items
        WHERE user_id=? AND category=? AND status='Lost'
          AND (item_name LIKE '%'||?||'%' OR lost_location LIKE '%'||?||'%')
        ORDER BY creation_time ASC LIMIT 1
    `, userID, category, name, location)
	return scanLost(row)
}

func (l *lostItems) Update(ctx context.Context, itemID, userID string, p model.LostItemPatch) error {
	set, args := buildPatch(p.Description, p.Location, "lost_location", p.LostDate, "lost_date")
	if set == "" {
		return nil
	}
	args = append(args, itemID, userID)
	res, err := l.db.ExecContext(ctx, `UPDATE lost_items SET `+set+` WHERE item_id=? AND user_id=? AND status='Lost'`, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (l *lostItems) Delete(ctx context.Context, itemID, userID string) error {
	res, err := l.db.ExecContext(ctx, `
        DELETE FROM lost_items WHERE item_id=? AND user_id=? AND status='Lost'
    `, itemID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (l *lostItems) TransitionStatus(ctx context.Context, itemID string, from, to model.LostItemStatus) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
        UPDATE lost_items SET status=? WHERE item_id=? AND status=?
    `, to, itemID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanLost(row *sql.Row) (*model.LostItem, error) {
	var it model.LostItem
	var urls string
	if err := row.Scan(&it.ItemID, &it.UserID, &it.Name, &it.Category, &it.Description, &it.Location, &it.LostDate, &urls, &it.Status, &it.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	_ = json.Unmarshal([]byte(urls), &it.ImageURLs)
	return &it, nil
}

func collectLost(rows *sql.Rows) ([]*model.LostItem, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.LostItem
	for rows.Next() {
		var it model.LostItem
		var urls string
		if err := rows.Scan(&it.ItemID, &it.UserID, &it.Name, &it.Category, &it.Description, &it.Location, &it.LostDate, &urls, &it.Status, &it.CreationTime); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(urls), &it.ImageURLs)
		out = append(out, &it)
	}
	return out, rows.Err()
}

// --- Found items ---

type foundItems struct{ db *sql.DB }

const foundCols = `item_id, user_id, item_name, category, description, found_location, found_date, image_urls, question1, question2, answer1_secret, answer2_secret, is_public, match_window_end, status, creation_time`

func (f *foundItems) Create(ctx context.Context, it *model.FoundItem) (*model.FoundItem, error) {
	out := *it
	if out.ItemID == "" {
		out.ItemID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = model.FoundStatusReported
	}
	out.CreationTime = time.Now().UTC()
	urls, err := json.Marshal(out.ImageURLs)
	if err != nil {
		return nil, err
	}
	_, err = f.db.ExecContext(ctx, `
        INSERT INTO found_items (`+foundCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.ItemID, out.UserID, out.Name, out.Category, out.Description, out.Location, out.FoundDate, string(urls),
		out.Question1, out.Question2, out.Answer1Secret, out.Answer2Secret, out.IsPublic, out.MatchWindowEnd, out.Status, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *foundItems) GetByID(ctx context.Context, itemID string) (*model.FoundItem, error) {
	row := f.db.QueryRowContext(ctx, `SELECT `+foundCols+` FROM found_items WHERE item_id=?`, itemID)
	return scanFound(row)
}

func (f *foundItems) ListByUser(ctx context.Context, userID string) ([]*model.FoundItem, error) {
	rows, err := f.db.QueryContext(ctx, `
        SELECT `+foundCols+` FROM found_items WHERE user_id=? ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collectFound(rows)
}

func (f *foundItems) ListPublic(ctx context.Context, q model.ListQuery) ([]*model.FoundItem, int, error) {
	where, args := buildItemFilter("item_name", "found_location", "found_date", `status='Reported' AND is_public=TRUE`, q)

	var total int
	if err := f.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM found_items WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + foundCols + ` FROM found_items WHERE ` + where + ` ORDER BY creation_time DESC LIMIT ? OFFSET ?`
	args = append(args, pageLimit(q), q.Offset)
	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectFound(rows)
	return out, total, err
}

// FindCandidates intentionally ignores is_public: the automatic matcher must
// see items still inside their privacy window.
func (f *foundItems) FindCandidates(ctx context.Context, q model.CandidateQuery) ([]*model.FoundItem, error) {
	from, to := dateWindow(q)
	rows, err := f.db.QueryContext(ctx, `
        SELECT `+foundCols+` FROM found_items
        WHERE status='Reported'
          AND category=?
          AND found_date BETWEEN ? AND ?
          AND (found_location LIKE '%'||?||'%' OR ? LIKE '%'||found_location||'%')
    `, q.Category, from, to, q.Location, q.Location)
	if err != nil {
		return nil, err
	}
	return collectFound(rows)
}

func (f *foundItems) Update(ctx context.Context, itemID, userID string, p model.FoundItemPatch) error {
	set, args := buildPatch(p.Description, p.Location, "found_location", p.FoundDate, "found_date")
	if set == "" {
		return nil
	}
	args = append(args, itemID, userID)
	res, err := f.db.ExecContext(ctx, `UPDATE found_items SET `+set+` WHERE item_id=? AND user_id=? AND status='Reported'`, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (f *foundItems) Delete(ctx context.Context, itemID, userID string) error {
	res, err := f.db.ExecContext(ctx, `
        DELETE FROM found_items WHERE item_id=? AND user_id=? AND status='Reported'
    `, itemID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (f *foundItems) TransitionStatus(ctx context.Context, itemID string, from, to model.FoundItemStatus) (bool, error) {
	res, err := f.db.ExecContext(ctx, `
        UPDATE found_items SET status=? WHERE item_id=? AND status=?
    `, to, itemID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (f *foundItems) PublishExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := f.db.ExecContext(ctx, `
        UPDATE found_items SET is_public=TRUE
        WHERE is_public=FALSE AND match_window_end <= ?
    `, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanFound(row *sql.Row) (*model.FoundItem, error) {
	var it model.FoundItem
	var urls string
	if err := row.Scan(&it.ItemID, &it.UserID, &it.Name, &it.Category, &it.Description, &it.Location, &it.FoundDate, &urls,
		&it.Question1, &it.Question2, &it.Answer1Secret, &it.Answer2Secret, &it.IsPublic, &it.MatchWindowEnd, &it.Status, &it.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	_ = json.Unmarshal([]byte(urls), &it.ImageURLs)
	return &it, nil
}

func collectFound(rows *sql.Rows) ([]*model.FoundItem, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.FoundItem
	for rows.Next() {
		var it model.FoundItem
		var urls string
		if err := rows.Scan(&it.ItemID, &it.UserID, &it.Name, &it.Category, &it.Description, &it.Location, &it.FoundDate, &urls,
			&it.Question1, &it.Question2, &it.Answer1Secret, &it.Answer2Secret, &it.IsPublic, &it.MatchWindowEnd, &it.Status, &it.CreationTime); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(urls), &it.ImageURLs)
		out = append(out, &it)
	}
	return out, rows.Err()
}

// --- Matches ---

type matches struct{ db *sql.DB }

const matchCols = `match_id, lost_item_id, found_item_id, match_score, match_source, status, creation_time`

func (m *matches) GetByID(ctx context.Context, matchID string) (*model.Match, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+matchCols+` FROM matches WHERE match_id=?`, matchID)
	return scanMatch(row)
}

func (m *matches) FindByPair(ctx context.Context, lostItemID, foundItemID string) (*model.Match, error) {
	row := m.db.QueryRowContext(ctx, `
        SELECT `+matchCols+` FROM matches
        WHERE lost_item_id=? AND found_item_id=?
        ORDER BY creation_time ASC LIMIT 1
    `, lostItemID, foundItemID)
	return scanMatch(row)
}

func (m *matches) Create(ctx context.Context, mm *model.Match) (*model.Match, error) {
	out := prepMatch(mm)
	_, err := m.db.ExecContext(ctx, `
        INSERT INTO matches (`+matchCols+`)
        VALUES (?,?,?,?,?,?,?)
    `, out.MatchID, out.LostItemID, out.FoundItemID, out.Score, out.Source, out.Status, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *matches) CreateWithEffects(ctx context.Context, mm *model.Match, notifs []*model.Notification) (*model.Match, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := prepMatch(mm)
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO matches (`+matchCols+`)
        VALUES (?,?,?,?,?,?,?)
    `, out.MatchID, out.LostItemID, out.FoundItemID, out.Score, out.Source, out.Status, out.CreationTime); err != nil {
		return nil, err
	}

	for _, n := range notifs {
		if err := insertNotification(ctx, tx, n); err != nil {
			return nil, err
		}
	}

	// First matched transition wins; later strong matches for the same item
	// are recorded without re-flipping the status.
	if _, err := tx.ExecContext(ctx, `
        UPDATE lost_items SET status='Matched' WHERE item_id=? AND status='Lost'
    `, out.LostItemID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE found_items SET status='Matched' WHERE item_id=? AND status='Reported'
    `, out.FoundItemID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *matches) ListForUser(ctx context.Context, userID string) ([]*model.MatchDetail, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT m.match_id, m.lost_item_id, m.found_item_id, m.match_score, m.match_source, m.status, m.creation_time,
               l.item_id, l.user_id, l.item_name, l.category, l.description, l.lost_location, l.lost_date, l.image_urls, l.status, l.creation_time,
               f.item_id, f.user_id, f.item_name, f.category, f.description, f.found_location, f.found_date, f.image_urls,
               f.question1, f.question2, f.is_public, f.match_window_end, f.status, f.creation_time
        FROM matches m
        JOIN lost_items l ON m.lost_item_id = l.item_id
        JOIN found_items f ON m.found_item_id = f.item_id
        WHERE l.user_id=?
        ORDER BY m.creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.MatchDetail
	for rows.Next() {
		var d model.MatchDetail
		var li model.LostItem
		var fi model.FoundItem
		var lURLs, fURLs string
		if err := rows.Scan(&d.Match.MatchID, &d.Match.LostItemID, &d.Match.FoundItemID, &d.Match.Score, &d.Match.Source, &d.Match.Status, &d.Match.CreationTime,
			&li.ItemID, &li.UserID, &li.Name, &li.Category, &li.Description, &li.Location, &li.LostDate, &lURLs, &li.Status, &li.CreationTime,
			&fi.ItemID, &fi.UserID, &fi.Name, &fi.Category, &fi.Description, &fi.Location, &fi.FoundDate, &fURLs,
			&fi.Question1, &fi.Question2, &fi.IsPublic, &fi.MatchWindowEnd, &fi.Status, &fi.CreationTime); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(lURLs), &li.ImageURLs)
		_ = json.Unmarshal([]byte(fURLs), &fi.ImageURLs)
		d.LostItem = &li
		d.FoundItem = &fi
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (m *matches) Reject(ctx context.Context, matchID string) (bool, error) {
	res, err := m.db.ExecContext(ctx, `
        UPDATE matches SET status='Rejected' WHERE match_id=? AND status='Pending'
    `, matchID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func prepMatch(mm *model.Match) *model.Match {
	out := *mm
	if out.MatchID == "" {
		out.MatchID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = model.MatchStatusPending
	}
	if out.Source == "" {
		out.Source = model.MatchSourceAutomatic
	}
	out.CreationTime = time.Now().UTC()
	return &out
}

func scanMatch(row *sql.Row) (*model.Match, error) {
	var out model.Match
	if err := row.Scan(&out.MatchID, &out.LostItemID, &out.FoundItemID, &out.Score, &out.Source, &out.Status, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// --- Claims ---

type claims struct{ db *sql.DB }

func (c *claims) RecordApproval(ctx context.Context, cl *model.Claim, notifs []*model.Notification) (*model.Claim, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := *cl
	if out.ClaimID == "" {
		out.ClaimID = uuid.New().String()
	}
	out.Status = string(model.MatchStatusApproved)
	out.CreationTime = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO claims (claim_id, lost_item_id, found_item_id, claimant_id, answer_attempt_1, answer_attempt_2, status, creation_time)
        VALUES (?,?,?,?,?,?,?,?)
    `, out.ClaimID, out.LostItemID, out.FoundItemID, out.ClaimantID, out.AnswerAttempt1, out.AnswerAttempt2, out.Status, out.CreationTime); err != nil {
		return nil, err
	}

	// Every still-pending match on this found item resolves with the claim.
	if _, err := tx.ExecContext(ctx, `
        UPDATE matches SET status='Approved' WHERE found_item_id=? AND status='Pending'
    `, out.FoundItemID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE found_items SET status='Returned' WHERE item_id=? AND status IN ('Reported','Matched')
    `, out.FoundItemID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE lost_items SET status='Claimed' WHERE item_id=? AND status IN ('Lost','Matched')
    `, out.LostItemID); err != nil {
		return nil, err
	}

	for _, n := range notifs {
		if err := insertNotification(ctx, tx, n); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

const claimDetailCols = `c.claim_id, c.lost_item_id, c.found_item_id, c.claimant_id, c.answer_attempt_1, c.answer_attempt_2, c.status, c.creation_time,
               l.item_id, l.user_id, l.item_name, l.category, l.description, l.lost_location, l.lost_date, l.image_urls, l.status, l.creation_time,
               f.item_id, f.user_id, f.item_name, f.category, f.description, f.found_location, f.found_date, f.image_urls,
               f.question1, f.question2, f.is_public, f.match_window_end, f.status, f.creation_time,
               u.user_id, u.username, u.email, u.phone, u.creation_time`

func (c *claims) ListMadeBy(ctx context.Context, userID string) ([]*model.ClaimDetail, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT `+claimDetailCols+`
        FROM claims c
        JOIN lost_items l ON c.lost_item_id = l.item_id
        JOIN found_items f ON c.found_item_id = f.item_id
        JOIN users u ON f.user_id = u.user_id
        WHERE c.claimant_id=?
        ORDER BY c.creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collectClaimDetails(rows)
}

func (c *claims) ListReceived(ctx context.Context, userID string) ([]*model.ClaimDetail, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT `+claimDetailCols+`
        FROM claims c
        JOIN lost_items l ON c.lost_item_id = l.item_id
        JOIN found_items f ON c.found_item_id = f.item_id
        JOIN users u ON c.claimant_id = u.user_id
        WHERE f.user_id=? AND c.claimant_id<>?
        ORDER BY c.creation_time DESC
    `, userID, userID)
	if err != nil {
		return nil, err
	}
	return collectClaimDetails(rows)
}

func (c *claims) GetByID(ctx context.Context, claimID, userID string) (*model.ClaimDetail, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT `+claimDetailCols+`
        FROM claims c
        JOIN lost_items l ON c.lost_item_id = l.item_id
        JOIN found_items f ON c.found_item_id = f.item_id
        JOIN users u ON f.user_id = u.user_id
        WHERE c.claim_id=? AND (c.claimant_id=? OR f.user_id=?)
    `, claimID, userID, userID)
	if err != nil {
		return nil, err
	}
	out, err := collectClaimDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, model.ErrNotFound
	}
	return out[0], nil
}

func collectClaimDetails(rows *sql.Rows) ([]*model.ClaimDetail, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.ClaimDetail
	for rows.Next() {
		var d model.ClaimDetail
		var li model.LostItem
		var fi model.FoundItem
		var u model.User
		var lURLs, fURLs string
		if err := rows.Scan(&d.Claim.ClaimID, &d.Claim.LostItemID, &d.Claim.FoundItemID, &d.Claim.ClaimantID,
			&d.Claim.AnswerAttempt1, &d.Claim.AnswerAttempt2, &d.Claim.Status, &d.Claim.CreationTime,
			&li.ItemID, &li.UserID, &li.Name, &li.Category, &li.Description, &li.Location, &li.LostDate, &lURLs, &li.Status, &li.CreationTime,
			&fi.ItemID, &fi.UserID, &fi.Name, &fi.Category, &fi.Description, &fi.Location, &fi.FoundDate, &fURLs,
			&fi.Question1, &fi.Question2, &fi.IsPublic, &fi.MatchWindowEnd, &fi.Status, &fi.CreationTime,
			&u.UserID, &u.Username, &u.Email, &u.Phone, &u.CreationTime); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(lURLs), &li.ImageURLs)
		_ = json.Unmarshal([]byte(fURLs), &fi.ImageURLs)
		d.LostItem = &li
		d.FoundItem = &fi
		d.Counterparty = &u
		out = append(out, &d)
	}
	return out, rows.Err()
}

// --- Notifications ---

type notifications struct{ db *sql.DB }

const notifCols = `notification_id, user_id, message, type, status, creation_time`

func (n *notifications) Create(ctx context.Context, m *model.Notification) (*model.Notification, error) {
	out := prepNotification(m)
	_, err := n.db.ExecContext(ctx, `
        INSERT INTO notifications (`+notifCols+`)
        VALUES (?,?,?,?,?,?)
    `, out.NotificationID, out.UserID, out.Message, out.Type, out.Status, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func insertNotification(ctx context.Context, tx *sql.Tx, m *model.Notification) error {
	out := prepNotification(m)
	_, err := tx.ExecContext(ctx, `
        INSERT INTO notifications (`+notifCols+`)
        VALUES (?,?,?,?,?,?)
    `, out.NotificationID, out.UserID, out.Message, out.Type, out.Status, out.CreationTime)
	return err
}

func prepNotification(m *model.Notification) *model.Notification {
	out := *m
	if out.NotificationID == "" {
		out.NotificationID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = model.NotificationStatusUnread
	}
	out.CreationTime = time.Now().UTC()
	return &out
}

func (n *notifications) ListByUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT `+notifCols+` FROM notifications WHERE user_id=? ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (n *notifications) ListUnread(ctx context.Context, userID string) ([]*model.Notification, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT `+notifCols+` FROM notifications WHERE user_id=? AND status='unread' ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (n *notifications) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := n.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM notifications WHERE user_id=? AND status='unread'
    `, userID).Scan(&count)
	return count, err
}

func (n *notifications) MarkRead(ctx context.Context, notificationID, userID string) error {
	res, err := n.db.ExecContext(ctx, `
        UPDATE notifications SET status='read' WHERE notification_id=? AND user_id=?
    `, notificationID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (n *notifications) MarkAllRead(ctx context.Context, userID string) error {
	_, err := n.db.ExecContext(ctx, `
        UPDATE notifications SET status='read' WHERE user_id=? AND status='unread'
    `, userID)
	return err
}

func (n *notifications) Delete(ctx context.Context, notificationID, userID string) error {
	res, err := n.db.ExecContext(ctx, `
        DELETE FROM notifications WHERE notification_id=? AND user_id=?
    `, notificationID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (n *notifications) DeleteAll(ctx context.Context, userID string) error {
	_, err := n.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id=?`, userID)
	return err
}

func collectNotifications(rows *sql.Rows) ([]*model.Notification, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.Notification
	for rows.Next() {
		var m model.Notification
		if err := rows.Scan(&m.NotificationID, &m.UserID, &m.Message, &m.Type, &m.Status, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- helpers ---

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func dateWindow(q model.CandidateQuery) (time.Time, time.Time) {
	days := q.Days
	if days <= 0 {
		days = 5
	}
	return q.Date.AddDate(0, 0, -days), q.Date.AddDate(0, 0, days)
}

func pageLimit(q model.ListQuery) int {
	if q.Limit <= 0 {
		return 20
	}
	return q.Limit
}

func buildItemFilter(nameCol, locCol, dateCol, base string, q model.ListQuery) (string, []interface{}) {
	conds := []string{base}
	var args []interface{}
	if q.Name != "" {
		conds = append(conds, nameCol+" LIKE '%'||?||'%'")
		args = append(args, q.Name)
	}
	if q.Category != "" {
		conds = append(conds, "category=?")
		args = append(args, q.Category)
	}
	if q.Location != "" {
		conds = append(conds, locCol+" LIKE '%'||?||'%'")
		args = append(args, q.Location)
	}
	if q.DateFrom != nil {
		conds = append(conds, dateCol+" >= ?")
		args = append(args, *q.DateFrom)
	}
	if q.DateTo != nil {
		conds = append(conds, dateCol+" <= ?")
		args = append(args, *q.DateTo)
	}
	return strings.Join(conds, " AND "), args
}

func buildPatch(desc, loc *string, locCol string, date *time.Time, dateCol string) (string, []interface{}) {
	var sets []string
	var args []interface{}
	if desc != nil {
		sets = append(sets, "description=?")
		args = append(args, *desc)
	}
	if loc != nil {
		sets = append(sets, locCol+"=?")
		args = append(args, *loc)
	}
	if date != nil {
		sets = append(sets, dateCol+"=?")
		args = append(args, *date)
	}
	return strings.Join(sets, ", "), args
}
