package query

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/ryozaki/mbx/internal/api"
	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

// State describes where the controller is in its fetch cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return ""
	}
}

const defaultPageSize = 12

// Controller translates filter, sort, and page interactions into catalogue
// fetches. It lives as long as the browse view and is not safe for concurrent
// use; the TUI confines it to the update loop and the CLI uses it from a
// single flow.
type Controller struct {
	api      *api.Client
	logger   *log.Logger
	pageSize int

	query   Query
	state   State
	seq     uint64
	results []models.Manga
	total   int
	err     error
}

// NewController creates a controller over the given catalogue client.
func NewController(client *api.Client, pageSize int, logger *log.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Controller{
		api:      client,
		logger:   logger,
		pageSize: pageSize,
		query:    New(),
		state:    StateIdle,
	}
}

// Restore replaces the query state wholesale, as when entering the browse view
// from a shared URL.
func (c *Controller) Restore(q Query) { c.query = q }

// Query returns a copy of the current filter state.
func (c *Controller) Query() Query { return c.query }

func (c *Controller) State() State  { return c.state }
func (c *Controller) PageSize() int { return c.pageSize }
func (c *Controller) Total() int    { return c.total }

// Err returns the failure from the most recent applied fetch, or nil.
func (c *Controller) Err() error { return c.err }

// Results returns the current page of catalogue entries. Empty when loading,
// errored, or before the first fetch.
func (c *Controller) Results() []models.Manga { return c.results }

// TotalPages derives the page count from the last applied total. Never below 1.
func (c *Controller) TotalPages() int {
	pages := (c.total + c.pageSize - 1) / c.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Mutations delegate to [Query]; each leaves the controller in loading until
// the matching response is applied.

func (c *Controller) SetSearch(term string)  { c.query.SetSearch(term); c.state = StateLoading }
func (c *Controller) AddTag(tag string)      { c.query.AddTag(tag); c.state = StateLoading }
func (c *Controller) RemoveTag(tag string)   { c.query.RemoveTag(tag); c.state = StateLoading }
func (c *Controller) SetMinRating(v float64) { c.query.SetMinRating(v); c.state = StateLoading }
func (c *Controller) SetSort(key SortKey)    { c.query.SetSort(key); c.state = StateLoading }
func (c *Controller) SetPage(n int)          { c.query.SetPage(n); c.state = StateLoading }

// Issue marks a new fetch in flight and returns its sequence number together
// with the request parameters for the current state. Each call supersedes all
// earlier in-flight fetches.
func (c *Controller) Issue() (uint64, url.Values) {
	c.seq++
	c.state = StateLoading
	return c.seq, c.query.Params(c.pageSize)
}

// Apply records the outcome of the fetch identified by seq. Responses from
// superseded fetches are discarded; the return value reports whether the
// response was applied.
func (c *Controller) Apply(seq uint64, page *models.MangaPage, err error) bool {
	if seq != c.seq {
		c.logger.Debugf("discarding stale catalogue response (seq %d, current %d)", seq, c.seq)
		return false
	}

	if err != nil {
		c.logger.Warnf("catalogue fetch failed: %v", err)
		c.results = nil
		c.total = 0
		c.err = err
		c.state = StateErrored
		return true
	}

	c.results = page.Results
	c.total = page.Total
	c.err = nil
	c.state = StateReady
	return true
}

// Fetch issues a catalogue request for the current state and applies the
// response synchronously.
func (c *Controller) Fetch(ctx context.Context) error {
	seq, params := c.Issue()
	page, err := c.api.SearchManga(ctx, params)
	c.Apply(seq, page, err)
	return err
}
