package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/grid"
	"github.com/openradius/radops/internal/radacct"
	"github.com/openradius/radops/internal/tui/gridview"
)

// Table identities. These double as the preference keys the backend stores
// layouts under, so they must not change.
const (
	TableSubscribers = "subscribers"
	TableRadiusUsers = "radius-users"
	TableSessions    = "sessions"
	TableOperators   = "operators"
)

// resource declares one console table: its columns, how rows are fetched,
// and which mutations the view offers.
type resource struct {
	registry   *grid.Registry
	fetch      gridview.FetchFunc
	invalidate func()
	partitions []string
	pageSize   int

	// capability switches for wiring callbacks
	creatable  bool
	editable   bool
	deletable  bool
	restorable bool
	bulk       bool
}

func subscribersRegistry() *grid.Registry {
	return grid.MustRegistry(TableSubscribers, []grid.Column{
		{Key: "username", Label: "Username", Sortable: true, Searchable: true, DefaultWidth: 140, DefaultVisible: true},
		{Key: "name", Label: "Name", Sortable: true, Searchable: true, DefaultWidth: 180, DefaultVisible: true},
		{Key: "email", Label: "Email", Sortable: true, Searchable: true, DefaultWidth: 220, DefaultVisible: true},
		{Key: "plan", Label: "Plan", Sortable: true, Searchable: true, DefaultWidth: 120, DefaultVisible: true},
		{Key: "status", Label: "Status", Sortable: true, SortKey: "enabled", DefaultWidth: 90, DefaultVisible: true, Align: grid.AlignCenter},
		{Key: "balance", Label: "Balance", Sortable: true, DefaultWidth: 100, DefaultVisible: true, Align: grid.AlignEnd},
		{Key: "created", Label: "Created", Sortable: true, DefaultWidth: 160, DefaultVisible: false},
	})
}

func radiusUsersRegistry() *grid.Registry {
	return grid.MustRegistry(TableRadiusUsers, []grid.Column{
		{Key: "username", Label: "Username", Sortable: true, Searchable: true, DefaultWidth: 160, DefaultVisible: true},
		{Key: "group", Label: "Group", Sortable: true, Searchable: true, DefaultWidth: 140, DefaultVisible: true},
		{Key: "framedIp", Label: "Framed IP", Searchable: true, DefaultWidth: 140, DefaultVisible: true},
		{Key: "status", Label: "Status", Sortable: true, SortKey: "enabled", DefaultWidth: 90, DefaultVisible: true, Align: grid.AlignCenter},
		{Key: "expires", Label: "Expires", Sortable: true, DefaultWidth: 120, DefaultVisible: true},
	})
}

func sessionsRegistry() *grid.Registry {
	return grid.MustRegistry(TableSessions, []grid.Column{
		{Key: "username", Label: "Username", Sortable: true, Searchable: true, DefaultWidth: 160, DefaultVisible: true},
		{Key: "nas", Label: "NAS", Sortable: true, Searchable: true, DefaultWidth: 140, DefaultVisible: true},
		{Key: "ip", Label: "Framed IP", Searchable: true, DefaultWidth: 140, DefaultVisible: true},
		{Key: "mac", Label: "Station", Searchable: true, DefaultWidth: 160, DefaultVisible: false},
		{Key: "started", Label: "Started", Sortable: true, DefaultWidth: 180, DefaultVisible: true},
		{Key: "in", Label: "In", Sortable: true, DefaultWidth: 90, DefaultVisible: true, Align: grid.AlignEnd},
		{Key: "out", Label: "Out", Sortable: true, DefaultWidth: 90, DefaultVisible: true, Align: grid.AlignEnd},
	})
}

func operatorsRegistry() *grid.Registry {
	return grid.MustRegistry(TableOperators, []grid.Column{
		{Key: "name", Label: "Name", Sortable: true, Searchable: true, DefaultWidth: 180, DefaultVisible: true},
		{Key: "email", Label: "Email", Sortable: true, Searchable: true, DefaultWidth: 220, DefaultVisible: true},
		{Key: "role", Label: "Role", Sortable: true, Searchable: true, DefaultWidth: 120, DefaultVisible: true},
		{Key: "status", Label: "Status", Sortable: true, SortKey: "enabled", DefaultWidth: 90, DefaultVisible: true, Align: grid.AlignCenter},
	})
}

// Deps are the backends the console talks to. Sessions is nil-tolerant:
// without an accounting database the sessions tab reports it is not
// configured rather than erroring.
type Deps struct {
	Client  *api.Client
	Radacct *radacct.Store
}

// Tables returns the console table names in tab order.
func Tables() []string {
	return []string{TableSubscribers, TableRadiusUsers, TableSessions, TableOperators}
}

// clientPageSize is the default page size of the client-mode tables; they
// hold the full collection, so a larger page costs nothing extra.
const clientPageSize = 50

// DefaultPageSize returns a table's default page size given the configured
// console default. Client-mode tables ignore the configured value.
func DefaultPageSize(table string, configured int) int {
	if table == TableSessions || table == TableOperators {
		return clientPageSize
	}
	return configured
}

// RegistryFor returns a table's column registry, or nil for an unknown
// table. One-shot commands use it to validate flags before fetching.
func RegistryFor(table string) *grid.Registry {
	switch table {
	case TableSubscribers:
		return subscribersRegistry()
	case TableRadiusUsers:
		return radiusUsersRegistry()
	case TableSessions:
		return sessionsRegistry()
	case TableOperators:
		return operatorsRegistry()
	}
	return nil
}

// FetchOnce loads one page of table through the same source wiring the
// console uses, for one-shot commands. It returns the page and the
// table's registry so the caller can render cells.
func FetchOnce(ctx context.Context, deps Deps, table string, q grid.Query, partition string) (grid.Result, *grid.Registry, error) {
	for _, res := range resources(deps, q.PageSize) {
		if res.registry.Table() != table {
			continue
		}
		out, err := res.fetch(ctx, q, partition)
		if err != nil {
			return grid.Result{}, nil, err
		}
		return out, res.registry, nil
	}
	return grid.Result{}, nil, fmt.Errorf("unknown table %q", table)
}

// resources declares the four tables in tab order.
func resources(deps Deps, defaultPageSize int) []resource {
	subs := resource{
		registry:   subscribersRegistry(),
		partitions: []string{string(api.StatusActive), string(api.StatusTrashed)},
		pageSize:   defaultPageSize,
		creatable:  true,
		editable:   true,
		deletable:  true,
		restorable: true,
		bulk:       true,
		fetch: func(ctx context.Context, q grid.Query, partition string) (grid.Result, error) {
			status := api.SubscriberStatus(partition)
			if partition == "" {
				status = api.StatusActive
			}
			recs, page, err := deps.Client.SearchSubscribers(ctx, q, status)
			if err != nil {
				return grid.Result{}, err
			}
			return serverResult(subscriberRows(recs), page), nil
		},
	}

	radius := resource{
		registry:  radiusUsersRegistry(),
		pageSize:  defaultPageSize,
		editable:  true,
		deletable: true,
		fetch: func(ctx context.Context, q grid.Query, _ string) (grid.Result, error) {
			recs, page, err := deps.Client.SearchRadiusUsers(ctx, q)
			if err != nil {
				return grid.Result{}, err
			}
			return serverResult(radiusRows(recs), page), nil
		},
	}

	sessionsSrc := grid.NewClientSource(grid.NewPipeline(sessionsRegistry()), func(ctx context.Context) ([]grid.Row, error) {
		if deps.Radacct == nil {
			return nil, errors.New("accounting database not configured, see radacct settings")
		}
		recs, err := deps.Radacct.OnlineSessions(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]grid.Row, len(recs))
		for i, r := range recs {
			rows[i] = r
		}
		return rows, nil
	})
	sessions := resource{
		registry:   sessionsRegistry(),
		pageSize:   clientPageSize,
		fetch:      sourceFetch(sessionsSrc),
		invalidate: sessionsSrc.Invalidate,
	}

	operatorsSrc := grid.NewClientSource(grid.NewPipeline(operatorsRegistry()), func(ctx context.Context) ([]grid.Row, error) {
		recs, err := deps.Client.ListOperators(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]grid.Row, len(recs))
		for i, r := range recs {
			rows[i] = r
		}
		return rows, nil
	})
	operators := resource{
		registry:   operatorsRegistry(),
		pageSize:   clientPageSize,
		fetch:      sourceFetch(operatorsSrc),
		invalidate: operatorsSrc.Invalidate,
	}

	return []resource{subs, radius, sessions, operators}
}

// sourceFetch adapts a grid.Source to the view's fetch signature. Client
// mode has no partitions, so the partition argument is dropped.
func sourceFetch(src grid.Source) gridview.FetchFunc {
	return func(ctx context.Context, q grid.Query, _ string) (grid.Result, error) {
		return src.Fetch(ctx, q)
	}
}

// serverResult wraps a page of rows with the counts from the search
// envelope. Server mode trusts the backend's totals.
func serverResult(rows []grid.Row, page api.PageInfo) grid.Result {
	return grid.Result{Rows: rows, TotalRecords: page.TotalRecords, TotalPages: page.TotalPages}
}

func subscriberRows(recs []api.Subscriber) []grid.Row {
	rows := make([]grid.Row, len(recs))
	for i, r := range recs {
		rows[i] = r
	}
	return rows
}

func radiusRows(recs []api.RadiusUser) []grid.Row {
	rows := make([]grid.Row, len(recs))
	for i, r := range recs {
		rows[i] = r
	}
	return rows
}
