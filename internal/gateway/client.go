// Package gateway is the sole module that talks to the chat backend. Every
// rejected call comes back as a *Error carrying one normalized, user-ready
// message.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/csheth/docchat/internal/state"
)

const defaultRequestTimeout = 30 * time.Second

// Client wraps the five backend operations.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client for the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadResult is the backend's answer to a document upload.
type UploadResult struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResult carries one assistant reply.
type ChatResult struct {
	Response   string          `json:"response"`
	Citations  []wireCitation  `json:"citations"`
	TokenUsage *wireTokenUsage `json:"token_usage"`
}

type wireCitation struct {
	Page       int     `json:"page"`
	Section    string  `json:"section"`
	Confidence float64 `json:"confidence"`
	Type       string  `json:"type"`
}

type wireTokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

type wireMessage struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Content    string          `json:"content"`
	Citations  []wireCitation  `json:"citations"`
	Timestamp  time.Time       `json:"timestamp"`
	TokenUsage *wireTokenUsage `json:"token_usage"`
}

// StateCitations converts the wire citations for storage.
func (r ChatResult) StateCitations() []state.Citation {
	return convertCitations(r.Citations)
}

// StateUsage converts the wire token usage, nil when the backend sent none.
func (r ChatResult) StateUsage() *state.TokenUsage {
	if r.TokenUsage == nil {
		return nil
	}
	return &state.TokenUsage{
		Prompt:     r.TokenUsage.Prompt,
		Completion: r.TokenUsage.Completion,
		Total:      r.TokenUsage.Total,
	}
}

func convertCitations(in []wireCitation) []state.Citation {
	if len(in) == 0 {
		return nil
	}
	out := make([]state.Citation, 0, len(in))
	for _, c := range in {
		out = append(out, state.Citation{
			Page:       c.Page,
			Section:    c.Section,
			Confidence: c.Confidence,
			Type:       c.Type,
		})
	}
	return out
}

// Upload sends the document as multipart form field "file".
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, normalizeTransport(err, "upload could not be prepared")
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResult{}, normalizeTransport(err, "upload could not be prepared")
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, normalizeTransport(err, "upload could not be prepared")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return UploadResult{}, normalizeTransport(err, "upload could not be prepared")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return UploadResult{}, err
	}
	return result, nil
}

// SendMessage posts one user message for the given session.
func (c *Client) SendMessage(ctx context.Context, text, sessionID string) (ChatResult, error) {
	payload := map[string]string{
		"message":    text,
		"session_id": sessionID,
	}
	req, err := c.jsonRequest(ctx, http.MethodPost, "/chat", payload)
	if err != nil {
		return ChatResult{}, err
	}
	var result ChatResult
	if err := c.do(req, &result); err != nil {
		return ChatResult{}, err
	}
	return result, nil
}

// ChatHistory fetches the backend's transcript for the session.
func (c *Client) ChatHistory(ctx context.Context, sessionID string) ([]state.ChatMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat/history/"+sessionID, nil)
	if err != nil {
		return nil, normalizeTransport(err, "history request could not be prepared")
	}
	var parsed struct {
		Messages []wireMessage `json:"messages"`
	}
	if err := c.do(req, &parsed); err != nil {
		return nil, err
	}
	messages := make([]state.ChatMessage, 0, len(parsed.Messages))
	for _, m := range parsed.Messages {
		msg := state.ChatMessage{
			ID:        m.ID,
			Kind:      state.MessageKind(m.Type),
			Content:   m.Content,
			Citations: convertCitations(m.Citations),
			Timestamp: m.Timestamp,
		}
		if msg.ID == "" {
			msg.ID = state.NextMessageID()
		}
		if m.TokenUsage != nil {
			msg.Usage = &state.TokenUsage{
				Prompt:     m.TokenUsage.Prompt,
				Completion: m.TokenUsage.Completion,
				Total:      m.TokenUsage.Total,
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SessionValid asks the backend whether a session id is still usable.
func (c *Client) SessionValid(ctx context.Context, sessionID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session/"+sessionID, nil)
	if err != nil {
		return false, normalizeTransport(err, "session check could not be prepared")
	}
	var parsed struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(req, &parsed); err != nil {
		return false, err
	}
	return parsed.Valid, nil
}

// Health probes the backend's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return normalizeTransport(err, "health check could not be prepared")
	}
	return c.do(req, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, normalizeTransport(err, "request could not be encoded")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, normalizeTransport(err, "request could not be prepared")
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do executes the request and decodes a 2xx body into out (when non-nil).
// Every failure funnels through the shared normalization.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return normalizeTransport(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorDetail(resp.Body)
		return normalizeStatus(resp.StatusCode, detail)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return normalizeTransport(err, fmt.Sprintf("invalid response from %s", req.URL.Path))
	}
	return nil
}

// readErrorDetail pulls a short human message out of an error body, if any.
func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &parsed) == nil {
		switch {
		case parsed.Detail != "":
			return parsed.Detail
		case parsed.Message != "":
			return parsed.Message
		case parsed.Error != "":
			return parsed.Error
		}
	}
	return ""
}
