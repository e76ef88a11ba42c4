// HTTP client for the manga catalogue service
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/shared"
)

const defaultBaseURL = "http://localhost:8000"

// TokenSource supplies the bearer token for authenticated requests.
//
// The second return value reports whether a token is available. Implementations
// must be safe to call on every request.
type TokenSource interface {
	Token() (string, bool)
}

// Error is a server-reported failure carrying the decoded error detail.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("catalogue API error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("catalogue API error: status %d", e.StatusCode)
}

// Client provides typed access to the catalogue service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a catalogue client. The token source may be nil for a
// client that only performs unauthenticated calls.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// doRequest performs an HTTP request against the service, attaching the bearer
// token when one is available and decoding the JSON response into result.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := c.baseURL + "/api" + endpoint

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// decodeError reads the service's {"detail": "..."} error envelope.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Detail = envelope.Detail
	}

	return apiErr
}

// Login exchanges credentials for a bearer token.
//
// The service expects the account email in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"username": email, "password": password}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/token", body, &resp); err != nil {
		return "", err
	}

	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", shared.ErrAuthFailed)
	}

	return resp.AccessToken, nil
}

// Register creates a new account and returns the created user record.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var user models.User
	if err := c.doRequest(ctx, http.MethodPost, "/users/register", body, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Me resolves the current bearer token to a user identity.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doRequest(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchManga lists the catalogue using the given query parameters.
//
// Callers build params via query.Params; tags are repeated as multiple
// same-named parameters, which url.Values encodes natively.
func (c *Client) SearchManga(ctx context.Context, params url.Values) (*models.MangaPage, error) {
	endpoint := "/manga"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var page models.MangaPage
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// GetManga retrieves a single catalogue entry by ID.
func (c *Client) GetManga(ctx context.Context, id int) (*models.Manga, error) {
	var manga models.Manga
	err := c.doRequest(ctx, http.MethodGet, "/manga/"+strconv.Itoa(id), nil, &manga)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: id %d", shared.ErrMangaNotFound, id)
		}
		return nil, err
	}
	return &manga, nil
}

// Tags retrieves all known catalogue tags.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.doRequest(ctx, http.MethodGet, "/manga/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Reviews retrieves the reviews for a catalogue entry.
func (c *Client) Reviews(ctx context.Context, mangaID int) ([]models.Review, error) {
	var reviews []models.Review
	endpoint := fmt.Sprintf("/manga/%d/reviews", mangaID)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// PostReview submits a review for a catalogue entry.
func (c *Client) PostReview(ctx context.Context, mangaID int, content string, rating float64) (*models.Review, error) {
	body := map[string]any{"content": content, "rating": rating}

	var review models.Review
	endpoint := fmt.Sprintf("/manga/%d/reviews", mangaID)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &review); err != nil {
		return nil, err
	}

	return &review, nil
}

// Library retrieves the user's library.
func (c *Client) Library(ctx context.Context) ([]models.LibraryEntry, error) {
	var entries []models.LibraryEntry
	if err := c.doRequest(ctx, http.MethodGet, "/library", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddToLibrary adds a catalogue entry to the user's library.
func (c *Client) AddToLibrary(ctx context.Context, mangaID int, status models.Status) (*models.LibraryEntry, error) {
	body := map[string]any{"manga_id": mangaID, "status": status}

	var entry models.LibraryEntry
	if err := c.doRequest(ctx, http.MethodPost, "/library", body, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// UpdateLibraryStatus changes the reading status of a library entry.
func (c *Client) UpdateLibraryStatus(ctx context.Context, mangaID int, status models.Status) (*models.LibraryEntry, error) {
	body := map[string]any{"status": status}

	var entry models.LibraryEntry
	endpoint := "/library/" + strconv.Itoa(mangaID)
	if err := c.doRequest(ctx, http.MethodPut, endpoint, body, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// RemoveFromLibrary deletes a library entry.
func (c *Client) RemoveFromLibrary(ctx context.Context, mangaID int) error {
	endpoint := "/library/" + strconv.Itoa(mangaID)
	return c.doRequest(ctx, http.MethodDelete, endpoint, nil, nil)
}
