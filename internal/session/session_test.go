package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ryozaki/mbx/internal/api"
	"github.com/ryozaki/mbx/internal/models"
)

// newStubServer returns a server answering the token and profile endpoints.
func newStubServer(t *testing.T, loginStatus int, loginBody any, meStatus int, meBody any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/token":
			w.WriteHeader(loginStatus)
			json.NewEncoder(w).Encode(loginBody)
		case "/api/users/me":
			w.WriteHeader(meStatus)
			json.NewEncoder(w).Encode(meBody)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		t.Run("persists token and resolves identity", func(t *testing.T) {
			server := newStubServer(t,
				http.StatusOK, map[string]string{"access_token": "tok"},
				http.StatusOK, models.User{ID: 1, Username: "user", Email: "user@example.com"},
			)
			defer server.Close()

			store := NewMemoryStore("")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			result := m.Login(ctx, "user@example.com", "secret123")
			if !result.OK {
				t.Fatalf("expected login to succeed, got error %q", result.Error)
			}

			if user := m.CurrentUser(); user == nil || user.Username != "user" {
				t.Errorf("expected current user 'user', got %+v", user)
			}

			if token, ok := store.Token(); !ok || token != "tok" {
				t.Errorf("expected persisted token tok, got %q", token)
			}
		})

		t.Run("surfaces server detail on rejected credentials", func(t *testing.T) {
			server := newStubServer(t,
				http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"},
				http.StatusOK, nil,
			)
			defer server.Close()

			store := NewMemoryStore("")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			result := m.Login(ctx, "user@example.com", "wrong")
			if result.OK {
				t.Fatal("expected login to fail")
			}
			if result.Error != "Invalid credentials" {
				t.Errorf("expected error 'Invalid credentials', got %q", result.Error)
			}

			if m.CurrentUser() != nil {
				t.Error("current user should be unset after failed login")
			}
			if _, ok := store.Token(); ok {
				t.Error("no token should be persisted after failed login")
			}
		})

		t.Run("clears token when identity resolution fails", func(t *testing.T) {
			server := newStubServer(t,
				http.StatusOK, map[string]string{"access_token": "tok"},
				http.StatusInternalServerError, map[string]string{"detail": "boom"},
			)
			defer server.Close()

			store := NewMemoryStore("")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			result := m.Login(ctx, "user@example.com", "secret123")
			if result.OK {
				t.Fatal("expected login to fail")
			}

			if _, ok := store.Token(); ok {
				t.Error("a token that cannot be resolved must not be persisted")
			}
			if m.CurrentUser() != nil {
				t.Error("current user should be unset")
			}
		})

		t.Run("uses generic message without a detail body", func(t *testing.T) {
			server := newStubServer(t,
				http.StatusBadGateway, "gateway error",
				http.StatusOK, nil,
			)
			defer server.Close()

			store := NewMemoryStore("")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			result := m.Login(ctx, "user@example.com", "secret123")
			if result.OK {
				t.Fatal("expected login to fail")
			}
			if result.Error != "Failed to login" {
				t.Errorf("expected generic message, got %q", result.Error)
			}
		})
	})

	t.Run("Initialize", func(t *testing.T) {
		t.Run("resolves a persisted token", func(t *testing.T) {
			server := newStubServer(t,
				http.StatusOK, nil,
				http.StatusOK, models.User{ID: 1, Username: "user", Email: "user@example.com"},
			)
			defer server.Close()

			store := NewMemoryStore("tok")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			m.Initialize(ctx)

			if !m.Authenticated() {
				t.Fatal("expected session to be authenticated")
			}
			if user := m.CurrentUser(); user.Username != "user" {
				t.Errorf("expected username user, got %s", user.Username)
			}
		})

		t.Run("clears an unresolvable token", func(t *testing.T) {
			server := newStubServer(t,
				http.StatusOK, nil,
				http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"},
			)
			defer server.Close()

			store := NewMemoryStore("stale")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			m.Initialize(ctx)

			if m.Authenticated() {
				t.Error("expected session to be unauthenticated")
			}
			if _, ok := store.Token(); ok {
				t.Error("stale token should have been cleared")
			}
		})

		t.Run("is a no-op without a persisted token", func(t *testing.T) {
			store := NewMemoryStore("")
			m := NewManager(api.NewClient("http://127.0.0.1:1", nil, store), store, nil)

			m.Initialize(ctx)

			if m.Authenticated() {
				t.Error("expected session to stay unauthenticated")
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("logs in as a continuation", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/users/register":
					json.NewEncoder(w).Encode(models.User{ID: 2, Username: "newuser", Email: "new@example.com"})
				case "/api/auth/token":
					json.NewEncoder(w).Encode(map[string]string{"access_token": "tok2"})
				case "/api/users/me":
					json.NewEncoder(w).Encode(models.User{ID: 2, Username: "newuser", Email: "new@example.com"})
				default:
					t.Errorf("unexpected request path %s", r.URL.Path)
				}
			}))
			defer server.Close()

			store := NewMemoryStore("")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			result := m.Register(ctx, "newuser", "new@example.com", "secret123")
			if !result.OK {
				t.Fatalf("expected registration to succeed, got %q", result.Error)
			}
			if user := m.CurrentUser(); user == nil || user.Username != "newuser" {
				t.Errorf("expected current user newuser, got %+v", user)
			}
			if token, ok := store.Token(); !ok || token != "tok2" {
				t.Errorf("expected persisted token tok2, got %q", token)
			}
		})

		t.Run("reports duplicate accounts", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
			}))
			defer server.Close()

			store := NewMemoryStore("")
			m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

			result := m.Register(ctx, "newuser", "new@example.com", "secret123")
			if result.OK {
				t.Fatal("expected registration to fail")
			}
			if result.Error != "Email already registered" {
				t.Errorf("expected detail message, got %q", result.Error)
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		server := newStubServer(t,
			http.StatusOK, map[string]string{"access_token": "tok"},
			http.StatusOK, models.User{ID: 1, Username: "user", Email: "user@example.com"},
		)
		defer server.Close()

		store := NewMemoryStore("")
		m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

		if result := m.Login(ctx, "user@example.com", "secret123"); !result.OK {
			t.Fatalf("login failed: %q", result.Error)
		}

		m.Logout()

		if m.Authenticated() {
			t.Error("expected session to be unauthenticated after logout")
		}
		if _, ok := store.Token(); ok {
			t.Error("token should be cleared on logout")
		}
	})

	t.Run("UpdateUserInfo", func(t *testing.T) {
		server := newStubServer(t,
			http.StatusOK, map[string]string{"access_token": "tok"},
			http.StatusOK, models.User{ID: 1, Username: "user", Email: "user@example.com"},
		)
		defer server.Close()

		store := NewMemoryStore("")
		m := NewManager(api.NewClient(server.URL, nil, store), store, nil)

		if result := m.Login(ctx, "user@example.com", "secret123"); !result.OK {
			t.Fatalf("login failed: %q", result.Error)
		}

		m.UpdateUserInfo(UserPatch{Bio: "collector of seinen", Username: ""})

		user := m.CurrentUser()
		if user.Bio != "collector of seinen" {
			t.Errorf("expected bio to be merged, got %q", user.Bio)
		}
		if user.Username != "user" {
			t.Errorf("empty patch fields must not overwrite, got %q", user.Username)
		}

		// Mutating the returned copy must not touch manager state
		user.Username = "other"
		if m.CurrentUser().Username != "user" {
			t.Error("CurrentUser should return a copy")
		}
	})
}

func TestFileStore(t *testing.T) {
	t.Run("round-trips a token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state", "token")
		store := NewFileStore(path)

		if _, ok := store.Token(); ok {
			t.Error("expected no token before save")
		}

		if err := store.Save("tok"); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		if token, ok := store.Token(); !ok || token != "tok" {
			t.Errorf("expected token tok, got %q", token)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("token file should exist: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected 0600 permissions, got %o", perm)
		}
	})

	t.Run("clear removes the token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		store := NewFileStore(path)

		if err := store.Save("tok"); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("failed to clear token: %v", err)
		}
		if _, ok := store.Token(); ok {
			t.Error("expected no token after clear")
		}

		// Clearing twice is fine
		if err := store.Clear(); err != nil {
			t.Errorf("clearing an absent token should not error: %v", err)
		}
	})
}
