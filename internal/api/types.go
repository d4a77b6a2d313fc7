// Package api is the typed HTTP client for the openRADIUS backend: the
// paginated search endpoints the server-mode tables ride on, the
// full-collection endpoints for client-mode tables, record CRUD and bulk
// mutations, and the per-table layout preference store.
package api

import (
	"fmt"
	"time"

	"github.com/openradius/radops/internal/grid"
)

// SubscriberStatus selects the subscriber partition: the active records or
// the soft-deleted ones awaiting restore.
type SubscriberStatus string

const (
	StatusActive  SubscriberStatus = "active"
	StatusTrashed SubscriberStatus = "trashed"
)

// Subscriber is a billing subscriber record.
type Subscriber struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Plan      string     `json:"plan"`
	Enabled   bool       `json:"enabled"`
	Balance   float64    `json:"balance"`
	CreatedAt time.Time  `json:"createdAt"`
	TrashedAt *time.Time `json:"trashedAt,omitempty"`
}

// Name is the composite display name built from the two source fields.
func (s Subscriber) Name() string {
	return s.FirstName + " " + s.LastName
}

// RowID implements grid.Row.
func (s Subscriber) RowID() string { return s.ID }

// Value implements grid.Row. It answers for column keys and for the
// "enabled" sort field behind the status column.
func (s Subscriber) Value(field string) any {
	switch field {
	case "username":
		return s.Username
	case "name":
		return s.Name()
	case "email":
		return s.Email
	case "plan":
		return s.Plan
	case "status", "enabled":
		return s.Enabled
	case "balance":
		return s.Balance
	case "created":
		return s.CreatedAt
	}
	return ""
}

// Cell implements grid.Row.
func (s Subscriber) Cell(key string) string {
	switch key {
	case "status":
		return enabledText(s.Enabled)
	case "balance":
		return fmt.Sprintf("%.2f", s.Balance)
	case "created":
		return s.CreatedAt.Format("2006-01-02 15:04")
	}
	return stringCell(s.Value(key))
}

// SubscriberInput is the create/update payload.
type SubscriberInput struct {
	Username  string  `json:"username"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Plan      string  `json:"plan"`
	Enabled   bool    `json:"enabled"`
	Balance   float64 `json:"balance"`
}

// RadiusUser is a RADIUS account record.
type RadiusUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	GroupName string    `json:"groupName"`
	FramedIP  string    `json:"framedIp"`
	Enabled   bool      `json:"enabled"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RowID implements grid.Row.
func (u RadiusUser) RowID() string { return u.ID }

// Value implements grid.Row.
func (u RadiusUser) Value(field string) any {
	switch field {
	case "username":
		return u.Username
	case "group":
		return u.GroupName
	case "framedIp":
		return u.FramedIP
	case "status", "enabled":
		return u.Enabled
	case "expires":
		return u.ExpiresAt
	}
	return ""
}

// Cell implements grid.Row.
func (u RadiusUser) Cell(key string) string {
	switch key {
	case "status":
		return enabledText(u.Enabled)
	case "expires":
		return u.ExpiresAt.Format("2006-01-02")
	}
	return stringCell(u.Value(key))
}

// RadiusUserInput is the update payload.
type RadiusUserInput struct {
	Username  string    `json:"username"`
	GroupName string    `json:"groupName"`
	FramedIP  string    `json:"framedIp"`
	Enabled   bool      `json:"enabled"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Operator is a console operator (supervisor) record. Fetched in full;
// the operators table runs the client-mode pipeline.
type Operator struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Enabled   bool   `json:"enabled"`
}

// Name is the composite display name.
func (o Operator) Name() string {
	return o.FirstName + " " + o.LastName
}

// RowID implements grid.Row.
func (o Operator) RowID() string { return o.ID }

// Value implements grid.Row.
func (o Operator) Value(field string) any {
	switch field {
	case "name":
		return o.Name()
	case "email":
		return o.Email
	case "role":
		return o.Role
	case "status", "enabled":
		return o.Enabled
	}
	return ""
}

// Cell implements grid.Row.
func (o Operator) Cell(key string) string {
	if key == "status" {
		return enabledText(o.Enabled)
	}
	return stringCell(o.Value(key))
}

// PageInfo carries the server-mode counts from the search envelope.
type PageInfo struct {
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

// BulkResult reports a bulk mutation's outcome. Failed maps each failed
// identifier to its reason; the grid keeps those ids selected for retry.
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// Bulk action kinds accepted by the subscriber bulk endpoint.
const (
	BulkEnable  = "enable"
	BulkDisable = "disable"
	BulkDelete  = "delete"
	BulkRestore = "restore"
)

func enabledText(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func stringCell(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return enabledText(s)
	}
	return fmt.Sprint(v)
}

// Compile-time checks: the DTOs feed grids directly.
var (
	_ grid.Row = Subscriber{}
	_ grid.Row = RadiusUser{}
	_ grid.Row = Operator{}
)
