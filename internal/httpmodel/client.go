// Package httpmodel implements the gateway's local-model HTTP client
// (§6.4): a reachability probe and a chat completion call against an
// Ollama-compatible endpoint. Built against stdlib net/http since no
// pack library wraps Ollama's wire format specifically.
package httpmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"devgateway/internal/gwerr"
)

// requestTimeout bounds every call to the local-model runner (§6.4).
const requestTimeout = 60 * time.Second

// Client talks to a local Ollama-compatible chat endpoint.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// New returns a Client targeting baseURL (e.g. http://localhost:11434)
// with the given default chat model.
func New(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Reachable probes the runner's tag-listing endpoint; used by the router
// to decide whether tier T2 is currently available (§2, §4.7).
func (c *Client) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the {model, messages, max_tokens, system?} chat
// completion payload (§6.4).
type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	System    string    `json:"system,omitempty"`
	Stream    bool      `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Chat sends messages to the local model and returns the concatenated
// text of its response content blocks.
func (c *Client) Chat(ctx context.Context, messages []Message, maxTokens int, system string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
		System:    system,
		Stream:    false,
	})
	if err != nil {
		return "", gwerr.Wrap(gwerr.InvalidInput, "encode chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", gwerr.Wrap(gwerr.UpstreamUnavailable, "build chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", gwerr.Wrap(gwerr.UpstreamUnavailable, "local model unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", gwerr.Wrap(gwerr.UpstreamUnavailable, "read chat response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", gwerr.New(gwerr.UpstreamUnavailable, fmt.Sprintf("local model returned status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", gwerr.Wrap(gwerr.ParseError, "parse chat response", err)
	}
	return strings.TrimSpace(parsed.Message.Content), nil
}
