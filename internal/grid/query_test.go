package grid

import (
	"net/url"
	"testing"
)

func TestQuery_PageResets(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(q *Query)
		wantPage int
	}{
		{"search change resets", func(q *Query) { q.SetSearch("doe") }, 1},
		{"same search keeps page", func(q *Query) { q.SetSearch("") }, 3},
		{"sort toggle resets", func(q *Query) { q.ToggleSort("username") }, 1},
		{"page size change resets", func(q *Query) { q.SetPageSize(50) }, 1},
		{"same page size keeps page", func(q *Query) { q.SetPageSize(25) }, 3},
		{"absolute sort change resets", func(q *Query) { q.SetSort("email", Desc) }, 1},
		{"absolute sort no-op keeps page", func(q *Query) { q.SetSort("", Asc) }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(25)
			q.SetPage(3)
			tt.mutate(&q)
			if q.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", q.Page, tt.wantPage)
			}
		})
	}
}

func TestQuery_ToggleSort(t *testing.T) {
	q := NewQuery(25)

	q.ToggleSort("username")
	if q.SortField != "username" || q.SortDirection != Asc {
		t.Fatalf("first toggle = %s %s, want username asc", q.SortField, q.SortDirection)
	}
	q.ToggleSort("username")
	if q.SortDirection != Desc {
		t.Fatalf("second toggle direction = %s, want desc", q.SortDirection)
	}
	q.ToggleSort("username")
	if q.SortDirection != Asc {
		t.Fatalf("third toggle direction = %s, want asc", q.SortDirection)
	}
	q.ToggleSort("email")
	if q.SortField != "email" || q.SortDirection != Asc {
		t.Fatalf("new field = %s %s, want email asc", q.SortField, q.SortDirection)
	}
}

func TestQuery_TotalPages(t *testing.T) {
	tests := []struct {
		total    int
		pageSize int
		want     int
	}{
		{0, 25, 1},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{30, 25, 2},
		{100, 25, 4},
		{101, 25, 5},
		{500, PageSizeAll, 1},
		{0, PageSizeAll, 1},
	}

	for _, tt := range tests {
		q := NewQuery(tt.pageSize)
		if got := q.TotalPages(tt.total); got != tt.want {
			t.Errorf("TotalPages(%d) with size %d = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestQuery_PageSizeChangeRecomputesTotals(t *testing.T) {
	q := NewQuery(25)
	q.SetPage(3)

	q.SetPageSize(50)
	if q.Page != 1 {
		t.Fatalf("page after size change = %d, want 1", q.Page)
	}
	if got := q.TotalPages(120); got != 3 {
		t.Fatalf("TotalPages(120) at size 50 = %d, want 3", got)
	}
}

func TestEncodeQuery_OmitsDefaults(t *testing.T) {
	q := NewQuery(25)
	if enc := EncodeQuery(q, 25).Encode(); enc != "" {
		t.Fatalf("default query encodes to %q, want empty", enc)
	}

	q.SetSearch("doe")
	q.ToggleSort("username")
	q.ToggleSort("username") // desc
	q.SetPage(3)
	v := EncodeQuery(q, 25)

	if v.Get(ParamPage) != "3" || v.Get(ParamSearch) != "doe" ||
		v.Get(ParamSortField) != "username" || v.Get(ParamSortDirection) != "desc" {
		t.Fatalf("encoded = %q", v.Encode())
	}
	if v.Has(ParamPageSize) {
		t.Error("default page size must be omitted")
	}
}

func TestEncodeQuery_AscDirectionOmitted(t *testing.T) {
	q := NewQuery(25)
	q.ToggleSort("name")
	v := EncodeQuery(q, 25)

	if v.Get(ParamSortField) != "name" {
		t.Fatalf("sortField = %q, want name", v.Get(ParamSortField))
	}
	if v.Has(ParamSortDirection) {
		t.Error("ascending direction must be omitted")
	}
}

func TestDecodeQuery_RoundTrip(t *testing.T) {
	queries := []Query{
		NewQuery(25),
		{Search: "doe", SortField: "name", SortDirection: Desc, Page: 4, PageSize: 50},
		{SortField: "username", SortDirection: Asc, Page: 1, PageSize: 25},
		{Search: "10.0.0.", Page: 2, PageSize: PageSizeAll, SortDirection: Asc},
	}

	for _, want := range queries {
		got := DecodeQuery(EncodeQuery(want, 25), 25)
		if got != want {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
	}
}

func TestDecodeQuery_IgnoresGarbage(t *testing.T) {
	v := url.Values{}
	v.Set(ParamPage, "banana")
	v.Set(ParamPageSize, "-3")

	q := DecodeQuery(v, 25)
	if q.Page != 1 || q.PageSize != 25 {
		t.Fatalf("decoded garbage = %+v, want defaults", q)
	}
}

func TestParsePageSize(t *testing.T) {
	if n, err := ParsePageSize("all"); err != nil || n != PageSizeAll {
		t.Errorf("ParsePageSize(all) = %d, %v", n, err)
	}
	if n, err := ParsePageSize("50"); err != nil || n != 50 {
		t.Errorf("ParsePageSize(50) = %d, %v", n, err)
	}
	for _, bad := range []string{"", "0", "-1", "ten"} {
		if _, err := ParsePageSize(bad); err == nil {
			t.Errorf("ParsePageSize(%q) expected error", bad)
		}
	}
}
