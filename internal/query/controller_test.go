package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ryozaki/mbx/internal/api"
	"github.com/ryozaki/mbx/internal/models"
)

func TestController(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetch", func(t *testing.T) {
		t.Run("translates page into skip/limit", func(t *testing.T) {
			var gotSkip, gotLimit string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSkip = r.URL.Query().Get("skip")
				gotLimit = r.URL.Query().Get("limit")
				json.NewEncoder(w).Encode(models.MangaPage{Results: []models.Manga{{ID: 1, Title: "Monster"}}, Total: 30})
			}))
			defer server.Close()

			c := NewController(api.NewClient(server.URL, nil, nil), 12, nil)
			c.SetPage(2)

			if err := c.Fetch(ctx); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotSkip != "12" || gotLimit != "12" {
				t.Errorf("expected skip=12 limit=12, got skip=%s limit=%s", gotSkip, gotLimit)
			}
			if c.State() != StateReady {
				t.Errorf("expected ready state, got %s", c.State())
			}
			if c.Total() != 30 || len(c.Results()) != 1 {
				t.Errorf("expected 1 result of 30, got %d of %d", len(c.Results()), c.Total())
			}
			if c.TotalPages() != 3 {
				t.Errorf("expected 3 pages, got %d", c.TotalPages())
			}
		})

		t.Run("errored fetch clears results but keeps the error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"detail": "database unavailable"})
			}))
			defer server.Close()

			c := NewController(api.NewClient(server.URL, nil, nil), 12, nil)
			if err := c.Fetch(ctx); err == nil {
				t.Fatal("expected fetch error")
			}

			if c.State() != StateErrored {
				t.Errorf("expected errored state, got %s", c.State())
			}
			if len(c.Results()) != 0 || c.Total() != 0 {
				t.Error("errored fetch should clear results")
			}

			var apiErr *api.Error
			if !errors.As(c.Err(), &apiErr) || apiErr.Detail != "database unavailable" {
				t.Errorf("expected the API error to be retained, got %v", c.Err())
			}
		})
	})

	t.Run("Stale Responses Are Discarded", func(t *testing.T) {
		c := NewController(api.NewClient("http://unused", nil, nil), 12, nil)

		slowSeq, _ := c.Issue()
		fastSeq, _ := c.Issue()

		// The later request lands first
		if !c.Apply(fastSeq, &models.MangaPage{Results: []models.Manga{{ID: 2, Title: "Newer"}}, Total: 1}, nil) {
			t.Fatal("latest response should be applied")
		}

		// The superseded response arrives late and must be dropped
		if c.Apply(slowSeq, &models.MangaPage{Results: []models.Manga{{ID: 1, Title: "Stale"}}, Total: 9}, nil) {
			t.Fatal("stale response should be discarded")
		}

		if len(c.Results()) != 1 || c.Results()[0].Title != "Newer" {
			t.Errorf("stale response overwrote newer results: %v", c.Results())
		}
		if c.Total() != 1 {
			t.Errorf("expected total 1, got %d", c.Total())
		}

		// A stale error must not disturb the ready state either
		if c.Apply(slowSeq, nil, errors.New("timeout")) {
			t.Fatal("stale error should be discarded")
		}
		if c.State() != StateReady {
			t.Errorf("expected ready state, got %s", c.State())
		}
	})

	t.Run("Mutations Enter Loading", func(t *testing.T) {
		c := NewController(api.NewClient("http://unused", nil, nil), 12, nil)
		if c.State() != StateIdle {
			t.Fatalf("expected idle state, got %s", c.State())
		}

		c.SetSearch("berserk")
		if c.State() != StateLoading {
			t.Errorf("mutation should enter loading, got %s", c.State())
		}

		if c.Query().Page() != 1 {
			t.Errorf("search mutation should reset page, got %d", c.Query().Page())
		}
	})

	t.Run("Restore", func(t *testing.T) {
		c := NewController(api.NewClient("http://unused", nil, nil), 12, nil)

		q := New()
		q.SetSearch("vagabond")
		q.SetPage(4)
		c.Restore(q)

		got := c.Query()
		if got.Search() != "vagabond" || got.Page() != 4 {
			t.Errorf("restore lost state: %+v", got)
		}
	})

	t.Run("TotalPages Floor", func(t *testing.T) {
		c := NewController(api.NewClient("http://unused", nil, nil), 12, nil)
		if c.TotalPages() != 1 {
			t.Errorf("expected at least one page, got %d", c.TotalPages())
		}
	})
}
