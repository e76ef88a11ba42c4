package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
	tu "github.com/ryozaki/mbx/internal/testing"
)

type staticTokens string

func (s staticTokens) Token() (string, bool) { return string(s), s != "" }

func TestClient(t *testing.T) {
	t.Run("NewClient", func(t *testing.T) {
		t.Run("creates client with default URL", func(t *testing.T) {
			if c := NewClient("", nil, nil); c == nil {
				t.Fatal("expected client to be created")
			} else if c.baseURL != defaultBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultBaseURL, c.baseURL)
			}
		})

		t.Run("creates client with custom URL", func(t *testing.T) {
			customURL := "http://localhost:9000"
			if c := NewClient(customURL, nil, nil); c.baseURL != customURL {
				t.Errorf("expected baseURL to be %s, got %s", customURL, c.baseURL)
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("returns token on success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/auth/token" {
					t.Errorf("expected path /api/auth/token, got %s", r.URL.Path)
				}
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}

				var body map[string]string
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode request body: %v", err)
				}
				if body["username"] != "user@example.com" {
					t.Errorf("expected username to carry the email, got %s", body["username"])
				}
				if body["password"] != "secret123" {
					t.Errorf("unexpected password %s", body["password"])
				}

				json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, nil)
			token, err := c.Login(context.Background(), "user@example.com", "secret123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "tok" {
				t.Errorf("expected token tok, got %s", token)
			}
		})

		t.Run("surfaces the error detail", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, nil)
			_, err := c.Login(context.Background(), "user@example.com", "wrong")
			if err == nil {
				t.Fatal("expected error for 401 response")
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", apiErr.StatusCode)
			}
			if apiErr.Detail != "Invalid credentials" {
				t.Errorf("expected detail 'Invalid credentials', got %q", apiErr.Detail)
			}
		})

		t.Run("rejects empty access token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, nil)
			if _, err := c.Login(context.Background(), "user@example.com", "secret123"); !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})
	})

	t.Run("Me", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/users/me" {
				t.Errorf("expected path /api/users/me, got %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("expected bearer header, got %q", got)
			}
			json.NewEncoder(w).Encode(models.User{ID: 1, Username: "user", Email: "user@example.com"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, staticTokens("tok"))
		user, err := c.Me(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.Username != "user" {
			t.Errorf("expected username user, got %s", user.Username)
		}
	})

	t.Run("SearchManga", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/manga" {
				t.Errorf("expected path /api/manga, got %s", r.URL.Path)
			}

			q := r.URL.Query()
			if q.Get("skip") != "12" || q.Get("limit") != "12" {
				t.Errorf("expected skip=12 limit=12, got skip=%s limit=%s", q.Get("skip"), q.Get("limit"))
			}
			if tags := q["tags"]; len(tags) != 2 || tags[0] != "action" || tags[1] != "fantasy" {
				t.Errorf("expected repeated tags [action fantasy], got %v", tags)
			}

			json.NewEncoder(w).Encode(models.MangaPage{
				Results: []models.Manga{{ID: 7, Title: "Berserk", Rating: 4.8}},
				Total:   37,
			})
		}))
		defer server.Close()

		params := url.Values{}
		params.Set("skip", "12")
		params.Set("limit", "12")
		params.Add("tags", "action")
		params.Add("tags", "fantasy")

		c := NewClient(server.URL, nil, nil)
		page, err := c.SearchManga(context.Background(), params)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Total != 37 {
			t.Errorf("expected total 37, got %d", page.Total)
		}
		if len(page.Results) != 1 || page.Results[0].Title != "Berserk" {
			t.Errorf("unexpected results %v", page.Results)
		}
	})

	t.Run("GetManga", func(t *testing.T) {
		t.Run("maps 404 to ErrMangaNotFound", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Manga not found"})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, nil)
			if _, err := c.GetManga(context.Background(), 999); !errors.Is(err, shared.ErrMangaNotFound) {
				t.Errorf("expected ErrMangaNotFound, got %v", err)
			}
		})

		t.Run("decodes the entry", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/manga/7" {
					t.Errorf("expected path /api/manga/7, got %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(models.Manga{ID: 7, Title: "Berserk", Tags: []string{"action"}})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, nil)
			manga, err := c.GetManga(context.Background(), 7)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if manga.Title != "Berserk" {
				t.Errorf("expected title Berserk, got %s", manga.Title)
			}
		})
	})

	t.Run("Library", func(t *testing.T) {
		t.Run("AddToLibrary sends manga_id and status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/library" || r.Method != http.MethodPost {
					t.Errorf("expected POST /api/library, got %s %s", r.Method, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("expected bearer header, got %q", got)
				}

				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				if body["manga_id"] != float64(7) {
					t.Errorf("expected manga_id 7, got %v", body["manga_id"])
				}
				if body["status"] != "reading" {
					t.Errorf("expected status reading, got %v", body["status"])
				}

				json.NewEncoder(w).Encode(models.LibraryEntry{MangaID: 7, Status: models.StatusReading})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, staticTokens("tok"))
			entry, err := c.AddToLibrary(context.Background(), 7, models.StatusReading)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if entry.Status != models.StatusReading {
				t.Errorf("expected status reading, got %s", entry.Status)
			}
		})

		t.Run("UpdateLibraryStatus hits /library/{id}", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/library/7" || r.Method != http.MethodPut {
					t.Errorf("expected PUT /api/library/7, got %s %s", r.Method, r.URL.Path)
				}
				json.NewEncoder(w).Encode(models.LibraryEntry{MangaID: 7, Status: models.StatusCompleted})
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, staticTokens("tok"))
			entry, err := c.UpdateLibraryStatus(context.Background(), 7, models.StatusCompleted)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if entry.Status != models.StatusCompleted {
				t.Errorf("expected status completed, got %s", entry.Status)
			}
		})

		t.Run("RemoveFromLibrary hits DELETE /library/{id}", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/library/7" || r.Method != http.MethodDelete {
					t.Errorf("expected DELETE /api/library/7, got %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, staticTokens("tok"))
			if err := c.RemoveFromLibrary(context.Background(), 7); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})

	t.Run("Tags", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/manga/tags" {
				t.Errorf("expected path /api/manga/tags, got %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode([]string{"action", "drama"})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, nil)
		tags, err := c.Tags(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tags) != 2 || tags[0] != "action" {
			t.Errorf("unexpected tags %v", tags)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		t.Run("wraps round trip errors", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(nil, errors.New("connection refused"))
			c := NewClient("http://localhost:8000", &http.Client{Transport: rt}, nil)

			if _, err := c.Tags(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("reports body read failures", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}}
			rt := tu.NewMockRoundTripper(resp, nil)
			c := NewClient("http://localhost:8000", &http.Client{Transport: rt}, nil)

			_, err := c.Tags(context.Background())
			if err == nil {
				t.Fatal("expected error from unreadable body")
			}
			if !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	})
}
