package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openradius/radops/internal/api"
)

// SeedData is the fixture dataset. A JSON file with the same shape can be
// passed to the devserver to override the built-in records.
type SeedData struct {
	Subscribers []api.Subscriber `json:"subscribers"`
	RadiusUsers []api.RadiusUser `json:"radiusUsers"`
	Operators   []api.Operator   `json:"operators"`
}

// LoadSeedFile reads a fixture override from disk.
func LoadSeedFile(path string) (SeedData, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied fixture path
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(data.Subscribers) == 0 {
		return SeedData{}, fmt.Errorf("seed file %s has no subscribers", path)
	}
	return data, nil
}

var (
	seedFirstNames = []string{
		"Alice", "Bruno", "Carla", "Dmitri", "Elena", "Farid", "Greta",
		"Hugo", "Iris", "Jonas", "Katya", "Liam", "Mina", "Noor", "Omar",
		"Priya", "Quentin", "Rosa", "Samir", "Tessa",
	}
	seedLastNames = []string{
		"Almeida", "Berg", "Castillo", "Dvorak", "Egede", "Fontaine",
		"Gruber", "Haddad", "Ishikawa", "Jansen", "Kovacs", "Lindqvist",
		"Moretti", "Novak", "Okafor", "Petrov", "Quiroga", "Rahimi",
		"Svensson", "Takacs",
	}
	seedPlans = []string{"fiber-100", "fiber-500", "dsl-20", "lte-50"}
)

// DefaultSeed builds the deterministic built-in dataset. It always
// contains John Doe, Jane Roe and Jan Doeven, the records the demo
// walkthrough searches for.
func DefaultSeed() SeedData {
	base := time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)

	subs := []api.Subscriber{
		{
			ID: "sub-doe", Username: "jdoe", FirstName: "John", LastName: "Doe",
			Email: "john.doe@example.net", Plan: "fiber-500", Enabled: true,
			Balance: 42.50, CreatedAt: base.AddDate(0, -14, 0),
		},
		{
			ID: "sub-roe", Username: "jroe", FirstName: "Jane", LastName: "Roe",
			Email: "jane.roe@example.net", Plan: "fiber-100", Enabled: true,
			Balance: 18.00, CreatedAt: base.AddDate(0, -10, 0),
		},
		{
			ID: "sub-doeven", Username: "jdoeven", FirstName: "Jan", LastName: "Doeven",
			Email: "jan.doeven@example.net", Plan: "dsl-20", Enabled: false,
			Balance: 0, CreatedAt: base.AddDate(0, -2, 0),
		},
	}

	for i := 0; i < 57; i++ {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[(i*7+3)%len(seedLastNames)]
		sub := api.Subscriber{
			ID:        fmt.Sprintf("sub-%03d", i+1),
			Username:  fmt.Sprintf("%s%s%02d", strings.ToLower(first[:1]), strings.ToLower(last), i+1),
			FirstName: first,
			LastName:  last,
			Email:     fmt.Sprintf("%s.%s@example.net", strings.ToLower(first), strings.ToLower(last)),
			Plan:      seedPlans[i%len(seedPlans)],
			Enabled:   i%9 != 0,
			Balance:   float64((i*137)%9000) / 100,
			CreatedAt: base.Add(-time.Duration(i*31) * time.Hour),
		}
		if i%12 == 5 {
			trashed := base.Add(-time.Duration(i) * time.Hour)
			sub.TrashedAt = &trashed
		}
		subs = append(subs, sub)
	}

	groups := []string{"default", "vip", "throttled"}
	var users []api.RadiusUser
	for i := 0; i < 18; i++ {
		src := subs[i%len(subs)]
		users = append(users, api.RadiusUser{
			ID:        fmt.Sprintf("rad-%03d", i+1),
			Username:  src.Username,
			GroupName: groups[i%len(groups)],
			FramedIP:  fmt.Sprintf("100.64.%d.%d", i/250, i%250+2),
			Enabled:   i%7 != 0,
			ExpiresAt: base.AddDate(0, i%11, 0),
		})
	}

	ops := []api.Operator{
		{ID: "op-001", FirstName: "Nadia", LastName: "Ferreira", Email: "nadia@isp.example", Role: "admin", Enabled: true},
		{ID: "op-002", FirstName: "Goran", LastName: "Ilic", Email: "goran@isp.example", Role: "operator", Enabled: true},
		{ID: "op-003", FirstName: "Wei", LastName: "Zhang", Email: "wei@isp.example", Role: "operator", Enabled: true},
		{ID: "op-004", FirstName: "Sofia", LastName: "Mendes", Email: "sofia@isp.example", Role: "auditor", Enabled: true},
		{ID: "op-005", FirstName: "Pavel", LastName: "Horak", Email: "pavel@isp.example", Role: "operator", Enabled: false},
	}

	return SeedData{Subscribers: subs, RadiusUsers: users, Operators: ops}
}

// Seed wipes the record tables and inserts the dataset. Saved layout
// preferences survive a reseed.
func (s *Store) Seed(ctx context.Context, data SeedData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"subscribers", "radius_users", "operators"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, sub := range data.Subscribers {
		var trashed any
		if sub.TrashedAt != nil {
			trashed = *sub.TrashedAt
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subscribers
			(id, username, first_name, last_name, email, plan, enabled, balance, created_at, trashed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.Username, sub.FirstName, sub.LastName, sub.Email,
			sub.Plan, sub.Enabled, sub.Balance, sub.CreatedAt, trashed); err != nil {
			return fmt.Errorf("seed subscriber %s: %w", sub.Username, err)
		}
	}
	for _, u := range data.RadiusUsers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO radius_users (id, username, groupname, framed_ip, enabled, expires_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.GroupName, u.FramedIP, u.Enabled, u.ExpiresAt); err != nil {
			return fmt.Errorf("seed radius user %s: %w", u.Username, err)
		}
	}
	for _, o := range data.Operators {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO operators (id, first_name, last_name, email, role, enabled)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, o.FirstName, o.LastName, o.Email, o.Role, o.Enabled); err != nil {
			return fmt.Errorf("seed operator %s: %w", o.Email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.logger.Info("fixture data seeded",
		"subscribers", len(data.Subscribers),
		"radiusUsers", len(data.RadiusUsers),
		"operators", len(data.Operators))
	return nil
}

// SeedIfEmpty seeds only when the subscriber table has no rows, so a
// restarted devserver keeps edits made through the console.
func (s *Store) SeedIfEmpty(ctx context.Context, data SeedData) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscribers").Scan(&n); err != nil {
		return fmt.Errorf("count subscribers: %w", err)
	}
	if n > 0 {
		return nil
	}
	return s.Seed(ctx, data)
}
