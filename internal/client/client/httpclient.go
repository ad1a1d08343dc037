package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("bad server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("bad server url %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// SetToken sets the Authorization value sent with note calls, as returned
// by Login ("JWT <token>").
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) Register(ctx context.Context, username, password, email, fullName string) (string, error) {
	req := map[string]string{"username": username, "password": password}
	if email != "" {
		req["email"] = email
	}
	if fullName != "" {
		req["fullname"] = fullName
	}

	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	req := map[string]string{"username": username, "password": password}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]models.Note, error) {
	var resp struct {
		Notes []models.Note `json:"notes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (c *HTTPClient) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, text string, image *models.Image) (string, error) {
	req := struct {
		Text  string        `json:"text"`
		Image *models.Image `json:"image,omitempty"`
	}{Text: text, Image: image}

	var resp struct {
		NoteID string `json:"note_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/notes", req, &resp); err != nil {
		return "", err
	}
	return resp.NoteID, nil
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id string, text *string, image *models.Image) error {
	req := struct {
		Text  *string       `json:"text,omitempty"`
		Image *models.Image `json:"image,omitempty"`
	}{Text: text, Image: image}

	return c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), req, nil)
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) ShareNote(ctx context.Context, id, userID string) error {
	return c.do(ctx, http.MethodPost, "/api/notes/"+url.PathEscape(id)+"/share", map[string]string{"userID": userID}, nil)
}

func (c *HTTPClient) UnshareNote(ctx context.Context, id, userID string) error {
	return c.do(ctx, http.MethodPost, "/api/notes/"+url.PathEscape(id)+"/unshare", map[string]string{"userID": userID}, nil)
}

// do sends body as JSON and decodes a 2xx response into out, if given.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
