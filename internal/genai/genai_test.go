package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/larkspur-games/chronicle/internal/events"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) == 0 {
			t.Error("expected messages in request")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "gen-remote",
			"model": req.Model,
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func TestGenerateReturnsContent(t *testing.T) {
	server := completionServer(t, "你们来到了铁炉堡。")
	defer server.Close()

	bus := events.NewBus()
	var ended string
	bus.Subscribe(events.TopicGenerationEnded, func(evt events.Event) { ended = evt.Subject })

	client, err := New(Config{BaseURL: server.URL, Model: "test-model"}, bus)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	genID := client.NewGenerationID()
	result, err := client.Generate(context.Background(), genID, []Message{
		{Role: RoleUser, Content: "继续冒险"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Content != "你们来到了铁炉堡。" {
		t.Fatalf("expected narrative content, got %q", result.Content)
	}
	if result.GenerationID != genID {
		t.Fatalf("expected generation id %q, got %q", genID, result.GenerationID)
	}
	if ended != genID {
		t.Fatalf("expected generation.ended for %q, got %q", genID, ended)
	}
}

func TestCancelDiscardsInFlightGeneration(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := New(Config{BaseURL: server.URL, Model: "test-model"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	genID := client.NewGenerationID()
	errCh := make(chan error, 1)
	go func() {
		_, err := client.Generate(context.Background(), genID, []Message{{Role: RoleUser, Content: "继续"}})
		errCh <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !client.Cancel(genID) {
		if time.Now().After(deadline) {
			t.Fatal("generation never became cancellable")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("generate did not return after cancel")
	}
}

func TestCancelUnknownIDReportsFalse(t *testing.T) {
	client, err := New(Config{BaseURL: "http://localhost:1", Model: "test-model"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Cancel("missing") {
		t.Fatal("expected false for unknown generation id")
	}
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded"},
		})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Model: "test-model"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected api error surfaced, got %v", err)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Config{Model: "m"}, nil); err == nil {
		t.Fatal("expected error for missing base url")
	}
	if _, err := New(Config{BaseURL: "http://x"}, nil); err == nil {
		t.Fatal("expected error for missing model")
	}
}
