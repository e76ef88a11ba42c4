package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SortKey enumerates catalogue orderings understood by the service.
type SortKey string

const (
	SortPopular SortKey = "popular"
	SortRating  SortKey = "rating"
	SortNewest  SortKey = "newest"
	SortTitle   SortKey = "title"
)

// ParseSortKey converts a string to a [SortKey], defaulting to popularity for
// unknown values.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortRating, SortNewest, SortTitle:
		return SortKey(s)
	default:
		return SortPopular
	}
}

// RatingThresholds are the selectable minimum-rating filter values.
var RatingThresholds = []float64{0, 3, 4, 4.5}

// snapRating maps v onto the nearest valid threshold, favoring 0 for unknowns.
func snapRating(v float64) float64 {
	if slices.Contains(RatingThresholds, v) {
		return v
	}
	return 0
}

// Query holds the browse filter state. The zero value is not ready for use;
// construct with [New] or [Parse].
//
// Mutations enforce two invariants: tags behave as an insertion-ordered set,
// and every mutation except SetPage resets the page to 1.
type Query struct {
	search    string
	tags      []string
	minRating float64
	sort      SortKey
	page      int
}

// New returns a query at its defaults: no search, no tags, rating 0,
// popularity sort, page 1.
func New() Query {
	return Query{sort: SortPopular, page: 1}
}

func (q Query) Search() string     { return q.search }
func (q Query) MinRating() float64 { return q.minRating }
func (q Query) Sort() SortKey      { return q.sort }
func (q Query) Page() int          { return q.page }

// Tags returns a copy of the selected tags in insertion order.
func (q Query) Tags() []string {
	return slices.Clone(q.tags)
}

// HasTag reports whether the tag is currently selected.
func (q Query) HasTag(tag string) bool {
	return slices.Contains(q.tags, tag)
}

// SetSearch replaces the search term, trimmed, and resets the page.
func (q *Query) SetSearch(term string) {
	q.search = strings.TrimSpace(term)
	q.page = 1
}

// AddTag selects a tag and resets the page. Adding a selected tag is a no-op.
func (q *Query) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(q.tags, tag) {
		return
	}
	q.tags = append(q.tags, tag)
	q.page = 1
}

// RemoveTag deselects a tag and resets the page. Removing an absent tag is a no-op.
func (q *Query) RemoveTag(tag string) {
	idx := slices.Index(q.tags, tag)
	if idx < 0 {
		return
	}
	q.tags = slices.Delete(q.tags, idx, idx+1)
	q.page = 1
}

// SetMinRating sets the rating threshold, snapped to the nearest valid value,
// and resets the page.
func (q *Query) SetMinRating(v float64) {
	q.minRating = snapRating(v)
	q.page = 1
}

// SetSort changes the ordering and resets the page.
func (q *Query) SetSort(key SortKey) {
	q.sort = ParseSortKey(string(key))
	q.page = 1
}

// SetPage moves to the given 1-based page. Values below 1 clamp to 1.
func (q *Query) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	q.page = n
}

// Encode produces the shareable URL query parameters for this state.
//
// Default-valued fields are omitted so URLs stay minimal: empty search, no
// tags, rating 0, popularity sort, and page 1 all disappear from the encoding.
func (q Query) Encode() url.Values {
	params := url.Values{}

	if q.search != "" {
		params.Set("search", q.search)
	}
	if len(q.tags) > 0 {
		params.Set("tags", strings.Join(q.tags, ","))
	}
	if q.minRating > 0 {
		params.Set("rating", formatRating(q.minRating))
	}
	if q.sort != SortPopular {
		params.Set("sort", string(q.sort))
	}
	if q.page > 1 {
		params.Set("page", strconv.Itoa(q.page))
	}

	return params
}

// Parse restores a query state from URL parameters produced by [Query.Encode].
// Unknown or malformed values fall back to their defaults.
func Parse(params url.Values) Query {
	q := New()

	q.search = strings.TrimSpace(params.Get("search"))

	if raw := params.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" && !slices.Contains(q.tags, tag) {
				q.tags = append(q.tags, tag)
			}
		}
	}

	if raw := params.Get("rating"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q.minRating = snapRating(v)
		}
	}

	q.sort = ParseSortKey(params.Get("sort"))

	if raw := params.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 1 {
			q.page = n
		}
	}

	return q
}

// Params builds the catalogue request parameters for this state, translating
// the 1-based page into a skip/limit pair. Tags repeat as multiple same-named
// parameters the way the service expects.
func (q Query) Params(pageSize int) url.Values {
	params := url.Values{}

	params.Set("skip", strconv.Itoa((q.page-1)*pageSize))
	params.Set("limit", strconv.Itoa(pageSize))
	if q.search != "" {
		params.Set("search", q.search)
	}
	params.Set("min_rating", formatRating(q.minRating))
	params.Set("sort_by", string(q.sort))
	for _, tag := range q.tags {
		params.Add("tags", tag)
	}

	return params
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
