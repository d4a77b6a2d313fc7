package radacct

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "full config",
			cfg: Config{
				Host: "radius-db", Port: 5433, Database: "radius",
				Username: "radops", Password: "secret", SSLMode: "require",
			},
			want: "host=radius-db port=5433 dbname=radius sslmode=require user=radops password=secret",
		},
		{
			name: "defaults applied",
			cfg:  Config{Host: "localhost", Database: "radius"},
			want: "host=localhost port=5432 dbname=radius sslmode=disable",
		},
		{
			name: "user without password",
			cfg:  Config{Host: "localhost", Database: "radius", Username: "readonly"},
			want: "host=localhost port=5432 dbname=radius sslmode=disable user=readonly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildDSN(tt.cfg); got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigured(t *testing.T) {
	if (Config{}).Configured() {
		t.Error("empty config reported as configured")
	}
	if (Config{Host: "db"}).Configured() {
		t.Error("config without database reported as configured")
	}
	if !(Config{Host: "db", Database: "radius"}).Configured() {
		t.Error("host+database config reported as unconfigured")
	}
}

func TestOnlineSessions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	started := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT radacctid, username, nasipaddress`).
		WillReturnRows(sqlmock.NewRows([]string{
			"radacctid", "username", "nasipaddress", "framedipaddress",
			"callingstationid", "acctstarttime", "acctinputoctets", "acctoutputoctets",
		}).
			AddRow(int64(42), "jdoe", "10.0.0.1", "100.64.3.7", "AA:BB:CC:DD:EE:FF", started, int64(1048576), int64(2621440)).
			AddRow(int64(41), "jroe", "10.0.0.2", "", "", started.Add(-time.Hour), int64(0), int64(512)))

	store := NewStore(db, nil)
	sessions, err := store.OnlineSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	first := sessions[0]
	assert.Equal(t, int64(42), first.RadAcctID)
	assert.Equal(t, "jdoe", first.Username)
	assert.Equal(t, "10.0.0.1", first.NASIPAddress)
	assert.Equal(t, "100.64.3.7", first.FramedIPAddress)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", first.CallingStationID)
	assert.Equal(t, started, first.StartTime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnlineSessionsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT radacctid`).
		WillReturnError(errors.New("connection reset"))

	store := NewStore(db, nil)
	_, err = store.OnlineSessions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query online sessions")
}

func TestOnlineSessionsScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// Wrong column count forces a scan failure.
	mock.ExpectQuery(`SELECT radacctid`).
		WillReturnRows(sqlmock.NewRows([]string{"radacctid"}).AddRow(int64(1)))

	store := NewStore(db, nil)
	_, err = store.OnlineSessions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan session row")
}

func TestSessionRow(t *testing.T) {
	sess := Session{
		RadAcctID:        7,
		Username:         "jdoe",
		NASIPAddress:     "10.0.0.1",
		FramedIPAddress:  "100.64.3.7",
		CallingStationID: "AA:BB:CC:DD:EE:FF",
		StartTime:        time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		InputOctets:      1536,
		OutputOctets:     3 * 1024 * 1024 * 1024,
	}

	if got := sess.RowID(); got != "7" {
		t.Errorf("RowID() = %q, want %q", got, "7")
	}
	if got := sess.Cell("started"); got != "2025-03-14 09:30:00" {
		t.Errorf(`Cell("started") = %q`, got)
	}
	if got := sess.Cell("in"); got != "1.5 KiB" {
		t.Errorf(`Cell("in") = %q, want "1.5 KiB"`, got)
	}
	if got := sess.Cell("out"); got != "3.0 GiB" {
		t.Errorf(`Cell("out") = %q, want "3.0 GiB"`, got)
	}
	if got := sess.Value("username"); got != "jdoe" {
		t.Errorf(`Value("username") = %v`, got)
	}
	if got := sess.Value("in"); got != int64(1536) {
		t.Errorf(`Value("in") = %v, want int64 for sorting`, got)
	}
}

func TestFormatOctets(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatOctets(tt.n); got != tt.want {
			t.Errorf("formatOctets(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
