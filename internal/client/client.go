// Package client talks to the classroom chat REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"classchat/internal/metrics"
	"classchat/internal/models"
)

// DefaultPageSize is the number of recent messages fetched per poll.
const DefaultPageSize = 50

// Client is a classroom chat API client.
type Client struct {
	BaseURL    string
	Token      string
	PageSize   int
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// APIError is returned for responses with status >= 400.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chat api error %d", e.StatusCode)
	}
	return fmt.Sprintf("chat api error %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a new client.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Token:      token,
		PageSize:   DefaultPageSize,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     zerolog.Nop(),
	}
}

// doRequest performs an HTTP request and returns the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	c.Logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", requestID).
		Msg("api request completed")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	return respBody, nil
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// FetchMessages returns the most recent page of a room, newest-first.
// It satisfies msgsync.Fetcher.
func (c *Client) FetchMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return c.GetMessages(ctx, roomID, 0, size)
}

// GetMessages retrieves one page of messages from a room.
func (c *Client) GetMessages(ctx context.Context, roomID string, page, size int) ([]models.Message, error) {
	path := fmt.Sprintf("/api/v1/rooms/%s/messages?page=%d&size=%d", url.PathEscape(roomID), page, size)

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("get messages of room %s: %w", roomID, err)
	}

	var wire []wireMessage
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("decode messages of room %s: %w", roomID, err)
	}

	out := make([]models.Message, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toModel())
	}
	return out, nil
}

// SendMessageRequest is the request body for posting a text message.
type SendMessageRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// SendText posts a text message to a room and returns the stored message.
func (c *Client) SendText(ctx context.Context, roomID, sender, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("send message: empty content")
	}

	reqBody, err := json.Marshal(SendMessageRequest{Sender: sender, Content: content})
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/api/v1/rooms/%s/messages", url.PathEscape(roomID))
	respBody, err := c.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("send message to room %s: %w", roomID, err)
	}

	var w wireMessage
	if err := json.Unmarshal(respBody, &w); err != nil {
		return nil, fmt.Errorf("decode sent message: %w", err)
	}
	m := w.toModel()
	return &m, nil
}

// ListRooms returns every room on the server.
func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/api/v1/rooms", nil)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	var wire []wireRoom
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}

	out := make([]models.Room, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toModel())
	}
	return out, nil
}

// GetRoom joins a room: it fails with an *APIError when the room does not
// exist (400) or the caller is not one of its participants (403).
func (c *Client) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	path := fmt.Sprintf("/api/v1/rooms/%s", url.PathEscape(roomID))
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("join room %s: %w", roomID, err)
	}

	var w wireRoom
	if err := json.Unmarshal(respBody, &w); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	room := w.toModel()
	return &room, nil
}

// ListMembers returns the participants of a room.
func (c *Client) ListMembers(ctx context.Context, roomID string) ([]models.Member, error) {
	path := fmt.Sprintf("/api/v1/rooms/%s/members", url.PathEscape(roomID))
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list members of room %s: %w", roomID, err)
	}

	var wire []wireMember
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("decode members of room %s: %w", roomID, err)
	}

	out := make([]models.Member, 0, len(wire))
	for _, w := range wire {
		out = append(out, models.Member{Username: w.Username, Role: w.Role})
	}
	return out, nil
}
