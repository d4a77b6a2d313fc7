// Package radacct reads live RADIUS sessions straight from the FreeRADIUS
// accounting database. The backend API does not expose online sessions;
// operators watch them from the same PostgreSQL tables the NAS fleet
// writes to, so the console connects directly.
package radacct

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"github.com/openradius/radops/internal/grid"
)

var _ grid.Row = Session{}

// Config holds the accounting database connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// Configured reports whether a connection is configured at all. The
// sessions table is optional; an unconfigured console simply hides it.
func (c Config) Configured() bool { return c.Host != "" && c.Database != "" }

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg Config) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Database, sslmode)
	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}

// Store reads the radacct table. Safe for concurrent use; database/sql
// pools underneath.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the accounting database and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !cfg.Configured() {
		return nil, fmt.Errorf("radacct: connection not configured")
	}

	logger.Debug("connecting to radacct",
		slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open radacct connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping radacct: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// NewStore wraps an existing connection. Tests use it with a mock.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the connection is still alive. Doctor uses it.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping radacct: %w", err)
	}
	return nil
}

const onlineSessionsQuery = `
	SELECT radacctid, username, nasipaddress,
	       COALESCE(framedipaddress, ''), COALESCE(callingstationid, ''),
	       acctstarttime,
	       COALESCE(acctinputoctets, 0), COALESCE(acctoutputoctets, 0)
	FROM radacct
	WHERE acctstoptime IS NULL
	ORDER BY acctstarttime DESC`

// OnlineSessions returns every session without a stop time, newest first.
// The set is bounded by concurrent subscribers, so the sessions table
// fetches it in full and filters client-side.
func (s *Store) OnlineSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, onlineSessionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query online sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.RadAcctID, &sess.Username, &sess.NASIPAddress,
			&sess.FramedIPAddress, &sess.CallingStationID,
			&sess.StartTime, &sess.InputOctets, &sess.OutputOctets,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	s.logger.Debug("loaded online sessions", slog.Int("count", len(sessions)))
	return sessions, nil
}

// Session is one in-flight RADIUS session. It feeds the sessions grid.
type Session struct {
	RadAcctID        int64
	Username         string
	NASIPAddress     string
	FramedIPAddress  string
	CallingStationID string
	StartTime        time.Time
	InputOctets      int64
	OutputOctets     int64
}

// RowID implements grid.Row.
func (s Session) RowID() string { return fmt.Sprintf("%d", s.RadAcctID) }

// Value implements grid.Row.
func (s Session) Value(field string) any {
	switch field {
	case "username":
		return s.Username
	case "nas":
		return s.NASIPAddress
	case "ip":
		return s.FramedIPAddress
	case "mac":
		return s.CallingStationID
	case "started":
		return s.StartTime
	case "in":
		return s.InputOctets
	case "out":
		return s.OutputOctets
	}
	return ""
}

// Cell implements grid.Row.
func (s Session) Cell(key string) string {
	switch key {
	case "started":
		return s.StartTime.Format("2006-01-02 15:04:05")
	case "in":
		return formatOctets(s.InputOctets)
	case "out":
		return formatOctets(s.OutputOctets)
	}
	v := s.Value(key)
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// formatOctets renders a byte count in the nearest binary unit.
func formatOctets(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for q := n / unit; q >= unit; q /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
