package grid

import "sort"

// PageSelection is the tri-state of the header checkbox for the rows
// currently displayed.
type PageSelection int

const (
	PageNone PageSelection = iota
	PageSome
	PageAll
)

// Selection tracks checked row identifiers for one grid view. Membership
// survives page changes within a partition, so bulk actions can span
// pages; switching to a logically distinct partition (active vs trashed)
// must Clear it, since identifiers may collide across partitions.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// ToggleOne flips membership of a single row.
func (s *Selection) ToggleOne(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

// TogglePage is the page-scoped select-all: when every id of the current
// page is already selected it removes exactly those ids, otherwise it adds
// them all. Other pages' selections are never touched — the control is
// scoped to the page, not to the full filtered set.
func (s *Selection) TogglePage(pageIDs []string) {
	if len(pageIDs) == 0 {
		return
	}
	if s.PageState(pageIDs) == PageAll {
		for _, id := range pageIDs {
			delete(s.ids, id)
		}
		return
	}
	for _, id := range pageIDs {
		s.ids[id] = struct{}{}
	}
}

// PageState reports whether none, some, or all of the given page's rows
// are selected. An empty page reads as PageNone.
func (s *Selection) PageState(pageIDs []string) PageSelection {
	if len(pageIDs) == 0 {
		return PageNone
	}
	selected := 0
	for _, id := range pageIDs {
		if _, ok := s.ids[id]; ok {
			selected++
		}
	}
	switch selected {
	case 0:
		return PageNone
	case len(pageIDs):
		return PageAll
	default:
		return PageSome
	}
}

// Has reports membership.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of selected rows across all pages.
func (s *Selection) Count() int { return len(s.ids) }

// IDs returns the selected identifiers, sorted for deterministic bulk
// requests.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Remove drops the given ids, keeping the rest selected. Used after a
// bulk action: succeeded ids leave the selection, failed ids stay for
// retry.
func (s *Selection) Remove(ids []string) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Clear empties the selection. Required on partition switches.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}
