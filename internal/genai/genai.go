// Package genai calls an OpenRouter-compatible chat-completions API to
// produce narrative turns. Every generation carries an id; cancelling an id
// aborts the HTTP request so a cancelled generation never yields partial
// output to the command pipeline.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/larkspur-games/chronicle/internal/events"
)

// Message roles accepted by the chat API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrCancelled indicates the generation was stopped by an explicit cancel.
var ErrCancelled = errors.New("generation cancelled")

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is one completed generation.
type Result struct {
	GenerationID string
	Content      string
	Model        string
}

// Config holds the client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client is a chat-completions client with per-generation cancellation.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	bus     *events.Bus

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

// New builds a generation client. bus may be nil.
func New(cfg Config, bus *events.Bus) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     &http.Client{Timeout: timeout},
		bus:      bus,
		inflight: make(map[string]context.CancelFunc),
	}, nil
}

// NewGenerationID mints the id for a generation before it starts, so the
// caller can expose a stop handle while the request is in flight.
func (c *Client) NewGenerationID() string {
	return uuid.NewString()
}

// Cancel aborts an in-flight generation. Reports whether the id was known.
func (c *Client) Cancel(generationID string) bool {
	c.mu.Lock()
	cancel, ok := c.inflight[generationID]
	c.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate runs one chat completion under generationID. A Cancel for the id
// discards the response entirely and returns ErrCancelled.
func (c *Client) Generate(ctx context.Context, generationID string, messages []Message) (Result, error) {
	if generationID == "" {
		generationID = c.NewGenerationID()
	}
	if len(messages) == 0 {
		return Result{}, fmt.Errorf("at least one message is required")
	}

	genCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.inflight[generationID] = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inflight, generationID)
		c.mu.Unlock()
		cancel()
		if c.bus != nil {
			c.bus.Publish(events.Event{Topic: events.TopicGenerationEnded, Subject: generationID})
		}
	}()

	result, err := c.complete(genCtx, messages)
	if err != nil {
		// Distinguish an explicit stop from the caller's own deadline.
		if genCtx.Err() == context.Canceled && ctx.Err() == nil {
			return Result{}, fmt.Errorf("generation %s: %w", generationID, ErrCancelled)
		}
		return Result{}, err
	}
	result.GenerationID = generationID
	return result, nil
}

func (c *Client) complete(ctx context.Context, messages []Message) (Result, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return Result{}, fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Result{}, fmt.Errorf("chat completion: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decode chat response: %w", err)
	}
	if decoded.Error != nil {
		return Result{}, fmt.Errorf("chat completion: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return Result{}, fmt.Errorf("chat completion: no choices returned")
	}
	model := decoded.Model
	if model == "" {
		model = c.model
	}
	return Result{Content: decoded.Choices[0].Message.Content, Model: model}, nil
}
