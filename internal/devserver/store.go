// Package devserver runs a local stand-in for the openRADIUS backend. It
// serves the same HTTP surface the console talks to in production, backed
// by a SQLite fixture database, so the TUI can be developed and demoed
// without a billing stack.
package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/openradius/radops/internal/api"
)

// Sentinel errors the handlers translate to HTTP statuses.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("username already taken")
)

// Store persists the fixture dataset.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenStore opens (creating if needed) the fixture database and brings it
// to the latest schema.
func OpenStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open fixture database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("fixture database ready", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// ListParams mirror the search endpoint's query string.
type ListParams struct {
	Page     int
	PageSize int // 0 means the whole collection
	Search   string
	Sort     string
	Desc     bool
	Status   api.SubscriberStatus
}

var subscriberSortColumns = map[string]string{
	"username": "username COLLATE NOCASE",
	"name":     "first_name || ' ' || last_name COLLATE NOCASE",
	"email":    "email COLLATE NOCASE",
	"plan":     "plan COLLATE NOCASE",
	"enabled":  "enabled",
	"balance":  "balance",
	"created":  "created_at",
}

var radiusSortColumns = map[string]string{
	"username": "username COLLATE NOCASE",
	"group":    "groupname COLLATE NOCASE",
	"framedIp": "framed_ip",
	"enabled":  "enabled",
	"expires":  "expires_at",
}

// escapeLike neutralizes LIKE metacharacters in a search term.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderClause maps a requested sort field through a whitelist. Unknown
// fields fall back to the default so a hand-edited URL cannot inject SQL.
func orderClause(columns map[string]string, field string, desc bool, fallback string) string {
	col, ok := columns[field]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	// Secondary key keeps paging deterministic under equal values.
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
}

func limitClause(p ListParams) (string, []any) {
	if p.PageSize <= 0 {
		return "", nil
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return " LIMIT ? OFFSET ?", []any{p.PageSize, (page - 1) * p.PageSize}
}

// ListSubscribers returns one page of the requested partition plus the
// total record count for that partition and search.
func (s *Store) ListSubscribers(ctx context.Context, p ListParams) ([]api.Subscriber, int, error) {
	where := "trashed_at IS NULL"
	if p.Status == api.StatusTrashed {
		where = "trashed_at IS NOT NULL"
	}
	args := []any{}

	if p.Search != "" {
		where += ` AND (username LIKE ? ESCAPE '\'
			OR first_name LIKE ? ESCAPE '\'
			OR last_name LIKE ? ESCAPE '\'
			OR email LIKE ? ESCAPE '\')`
		pat := "%" + escapeLike(p.Search) + "%"
		args = append(args, pat, pat, pat, pat)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscribers WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscribers: %w", err)
	}

	query := `SELECT id, username, first_name, last_name, email, plan,
		enabled, balance, created_at, trashed_at
		FROM subscribers WHERE ` + where
	query += orderClause(subscriberSortColumns, p.Sort, p.Desc, "created_at")
	limit, limitArgs := limitClause(p)
	query += limit
	args = append(args, limitArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query subscribers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []api.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(r rowScanner) (api.Subscriber, error) {
	var (
		sub     api.Subscriber
		trashed sql.NullTime
	)
	err := r.Scan(&sub.ID, &sub.Username, &sub.FirstName, &sub.LastName,
		&sub.Email, &sub.Plan, &sub.Enabled, &sub.Balance,
		&sub.CreatedAt, &trashed)
	if err != nil {
		return api.Subscriber{}, fmt.Errorf("scan subscriber: %w", err)
	}
	if trashed.Valid {
		t := trashed.Time
		sub.TrashedAt = &t
	}
	return sub, nil
}

// GetSubscriber looks a record up by id across both partitions.
func (s *Store) GetSubscriber(ctx context.Context, id string) (api.Subscriber, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, first_name, last_name, email, plan,
		enabled, balance, created_at, trashed_at
		FROM subscribers WHERE id = ?`, id)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Subscriber{}, ErrNotFound
	}
	if err != nil {
		return api.Subscriber{}, err
	}
	return sub, nil
}

// CreateSubscriber inserts a new active record.
func (s *Store) CreateSubscriber(ctx context.Context, in api.SubscriberInput) (api.Subscriber, error) {
	taken, err := s.usernameTaken(ctx, in.Username, "")
	if err != nil {
		return api.Subscriber{}, err
	}
	if taken {
		return api.Subscriber{}, ErrConflict
	}

	sub := api.Subscriber{
		ID:        uuid.NewString(),
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Plan:      in.Plan,
		Enabled:   in.Enabled,
		Balance:   in.Balance,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO subscribers
		(id, username, first_name, last_name, email, plan, enabled, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Username, sub.FirstName, sub.LastName, sub.Email,
		sub.Plan, sub.Enabled, sub.Balance, sub.CreatedAt)
	if err != nil {
		return api.Subscriber{}, fmt.Errorf("insert subscriber: %w", err)
	}
	return sub, nil
}

// UpdateSubscriber overwrites the editable fields of a record.
func (s *Store) UpdateSubscriber(ctx context.Context, id string, in api.SubscriberInput) (api.Subscriber, error) {
	taken, err := s.usernameTaken(ctx, in.Username, id)
	if err != nil {
		return api.Subscriber{}, err
	}
	if taken {
		return api.Subscriber{}, ErrConflict
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE subscribers SET username = ?, first_name = ?, last_name = ?,
		email = ?, plan = ?, enabled = ?, balance = ? WHERE id = ?`,
		in.Username, in.FirstName, in.LastName, in.Email, in.Plan,
		in.Enabled, in.Balance, id)
	if err != nil {
		return api.Subscriber{}, fmt.Errorf("update subscriber: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return api.Subscriber{}, ErrNotFound
	}
	return s.GetSubscriber(ctx, id)
}

func (s *Store) usernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscribers WHERE username = ? AND id != ?",
		username, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

// TrashSubscriber soft-deletes an active record; a second delete on an
// already-trashed record removes it for good.
func (s *Store) TrashSubscriber(ctx context.Context, id string) error {
	sub, err := s.GetSubscriber(ctx, id)
	if err != nil {
		return err
	}
	if sub.TrashedAt != nil {
		_, err := s.db.ExecContext(ctx, "DELETE FROM subscribers WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete subscriber: %w", err)
		}
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE subscribers SET trashed_at = ? WHERE id = ?",
		time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return fmt.Errorf("trash subscriber: %w", err)
	}
	return nil
}

// RestoreSubscriber moves a trashed record back to the active partition.
func (s *Store) RestoreSubscriber(ctx context.Context, id string) (api.Subscriber, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE subscribers SET trashed_at = NULL WHERE id = ? AND trashed_at IS NOT NULL", id)
	if err != nil {
		return api.Subscriber{}, fmt.Errorf("restore subscriber: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetSubscriber(ctx, id); err != nil {
			return api.Subscriber{}, err
		}
		return api.Subscriber{}, fmt.Errorf("subscriber not trashed")
	}
	return s.GetSubscriber(ctx, id)
}

// BulkSubscribers applies one action to each id independently. A failure
// on one record never rolls back the others.
func (s *Store) BulkSubscribers(ctx context.Context, action string, ids []string) (api.BulkResult, error) {
	result := api.BulkResult{Failed: map[string]string{}}

	for _, id := range ids {
		var err error
		switch action {
		case api.BulkEnable:
			err = s.setEnabled(ctx, id, true)
		case api.BulkDisable:
			err = s.setEnabled(ctx, id, false)
		case api.BulkDelete:
			err = s.TrashSubscriber(ctx, id)
		case api.BulkRestore:
			_, err = s.RestoreSubscriber(ctx, id)
		default:
			return api.BulkResult{}, fmt.Errorf("unknown bulk action %q", action)
		}
		if err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

func (s *Store) setEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE subscribers SET enabled = ? WHERE id = ?", enabled, id)
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRadiusUsers mirrors ListSubscribers for the RADIUS account table.
func (s *Store) ListRadiusUsers(ctx context.Context, p ListParams) ([]api.RadiusUser, int, error) {
	where := "1=1"
	args := []any{}
	if p.Search != "" {
		where += ` AND (username LIKE ? ESCAPE '\' OR groupname LIKE ? ESCAPE '\')`
		pat := "%" + escapeLike(p.Search) + "%"
		args = append(args, pat, pat)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM radius_users WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count radius users: %w", err)
	}

	query := `SELECT id, username, groupname, framed_ip, enabled, expires_at
		FROM radius_users WHERE ` + where
	query += orderClause(radiusSortColumns, p.Sort, p.Desc, "username COLLATE NOCASE")
	limit, limitArgs := limitClause(p)
	query += limit
	args = append(args, limitArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query radius users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []api.RadiusUser
	for rows.Next() {
		var u api.RadiusUser
		if err := rows.Scan(&u.ID, &u.Username, &u.GroupName, &u.FramedIP,
			&u.Enabled, &u.ExpiresAt); err != nil {
			return nil, 0, fmt.Errorf("scan radius user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate radius users: %w", err)
	}
	return users, total, nil
}

// UpdateRadiusUser overwrites the editable fields of a RADIUS account.
func (s *Store) UpdateRadiusUser(ctx context.Context, id string, in api.RadiusUserInput) (api.RadiusUser, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE radius_users SET username = ?, groupname = ?, framed_ip = ?,
		enabled = ?, expires_at = ? WHERE id = ?`,
		in.Username, in.GroupName, in.FramedIP, in.Enabled, in.ExpiresAt, id)
	if err != nil {
		return api.RadiusUser{}, fmt.Errorf("update radius user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return api.RadiusUser{}, ErrNotFound
	}

	var u api.RadiusUser
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, groupname, framed_ip, enabled, expires_at
		FROM radius_users WHERE id = ?`, id)
	if err := row.Scan(&u.ID, &u.Username, &u.GroupName, &u.FramedIP,
		&u.Enabled, &u.ExpiresAt); err != nil {
		return api.RadiusUser{}, fmt.Errorf("scan radius user: %w", err)
	}
	return u, nil
}

// DeleteRadiusUser removes a RADIUS account. There is no trash partition
// for accounts; deletion is final.
func (s *Store) DeleteRadiusUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM radius_users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete radius user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOperators returns the whole operator collection.
func (s *Store) ListOperators(ctx context.Context) ([]api.Operator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, role, enabled
		FROM operators ORDER BY last_name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("query operators: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ops []api.Operator
	for rows.Next() {
		var o api.Operator
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Email,
			&o.Role, &o.Enabled); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		ops = append(ops, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operators: %w", err)
	}
	return ops, nil
}

// GetPreference returns the stored layout payload for a table, or
// (nil, nil) when none has been saved.
func (s *Store) GetPreference(ctx context.Context, table string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM preferences WHERE table_name = ?", table).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preference: %w", err)
	}
	return []byte(payload), nil
}

// PutPreference stores the full layout payload for a table, replacing any
// previous value.
func (s *Store) PutPreference(ctx context.Context, table string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (table_name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(table_name) DO UPDATE SET payload = excluded.payload,
		updated_at = excluded.updated_at`,
		table, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store preference: %w", err)
	}
	return nil
}

// DeletePreference drops a table's saved layout. Deleting an absent row
// is not an error.
func (s *Store) DeletePreference(ctx context.Context, table string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM preferences WHERE table_name = ?", table); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return nil
}
