package betboardsdk

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
)

// Client is a minimal betboard HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "api",
		Timeout:  10 * time.Second,
	}
}

// Bet mirrors the API bet model.
type Bet struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	What        string    `json:"what"`
	Why         string    `json:"why"`
	How         string    `json:"how"`
	When        string    `json:"when"`
	Status      string    `json:"status"`
	LastUpdated string    `json:"last_updated"`
	Tags        []string  `json:"tags,omitempty"`
	Assignees   []string  `json:"assignees,omitempty"`
	Comments    []Comment `json:"comments,omitempty"`
	Archived    bool      `json:"archived,omitempty"`
	ArchivedAt  *string   `json:"archived_at,omitempty"`
	ArchivedBy  *string   `json:"archived_by,omitempty"`
}

type Comment struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ListBets returns all bets, archived included.
func (c *Client) ListBets(ctx context.Context) ([]Bet, error) {
	var resp []Bet
	err := c.do(ctx, http.MethodGet, "bets", nil, &resp)
	return resp, err
}

// CreateBet creates a bet.
func (c *Client) CreateBet(ctx context.Context, bet Bet) (Bet, error) {
	var resp Bet
	err := c.do(ctx, http.MethodPost, "bets", bet, &resp)
	return resp, err
}

// UpdateBet merges fields onto the bet with the given id.
func (c *Client) UpdateBet(ctx context.Context, id string, fields any) (Bet, error) {
	var resp Bet
	err := c.do(ctx, http.MethodPut, "bets/"+url.PathEscape(id), fields, &resp)
	return resp, err
}

// DeleteBet permanently removes a bet.
func (c *Client) DeleteBet(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "bets/"+url.PathEscape(id), nil, nil)
}

// AddComment appends a comment to a bet.
func (c *Client) AddComment(ctx context.Context, betID, author, text string) (Comment, error) {
	body := map[string]any{"author": author, "text": text}
	var resp Comment
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("bets/%s/comments", url.PathEscape(betID)), body, &resp)
	return resp, err
}

// ListUsers returns the user roster.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var resp []User
	err := c.do(ctx, http.MethodGet, "users", nil, &resp)
	return resp, err
}

// Replay re-issues a queued offline action against its original endpoint.
func (c *Client) Replay(ctx context.Context, actionType, endpoint string, payload json.RawMessage) error {
	var method string
	switch actionType {
	case "CREATE":
		method = http.MethodPost
	case "UPDATE":
		method = http.MethodPut
	case "DELETE":
		method = http.MethodDelete
	default:
		return fmt.Errorf("unknown action type %q", actionType)
	}
	var body any
	if len(payload) > 0 {
		body = payload
	}
	return c.do(ctx, method, endpoint, body, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	target := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(json.RawMessage); ok {
			buf.Write(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	path := strings.Trim(c.BasePath, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}
