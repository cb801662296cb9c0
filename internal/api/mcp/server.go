// Package mcp exposes the narrative engine over the Model Context Protocol.
// Each tool addresses a session by id; sessions open lazily on session_start
// and stay live until session_close or server shutdown.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/message"

	"github.com/larkspur-games/chronicle/internal/events"
	"github.com/larkspur-games/chronicle/internal/genai"
	"github.com/larkspur-games/chronicle/internal/session"
	"github.com/larkspur-games/chronicle/internal/state"
	"github.com/larkspur-games/chronicle/internal/storage"
	"github.com/larkspur-games/chronicle/internal/storage/hostvars"
)

const (
	serverName = "chronicle"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// ErrSessionNotOpen indicates a tool addressed a session that was never
// started or was already closed.
var ErrSessionNotOpen = errors.New("session is not open")

// Deps wires the stores and services the tool handlers need.
type Deps struct {
	Cache     storage.Cache
	Authority hostvars.VarStore
	Bus       *events.Bus
	Printer   *message.Printer
	// GenAI is optional; generation_cancel is only registered when set.
	GenAI *genai.Client
	// HistoryWindow bounds NPC eviction lookback. Zero means the default.
	HistoryWindow int
}

// Server hosts the MCP tool surface and owns the live sessions.
type Server struct {
	deps      Deps
	mcpServer *mcp.Server

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewServer builds an MCP server with every tool registered.
func NewServer(deps Deps) (*Server, error) {
	if deps.Cache == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if deps.Authority == nil {
		return nil, fmt.Errorf("authority store is required")
	}
	if deps.Bus == nil {
		deps.Bus = events.NewBus()
	}

	s := &Server{
		deps:     deps,
		sessions: make(map[string]*session.Session),
	}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	// Roster and sync events surface in the server log; the stdio transport
	// has no push channel for them.
	for _, topic := range []events.Topic{
		events.TopicNPCAdded,
		events.TopicNPCRemoved,
		events.TopicDataSynced,
	} {
		deps.Bus.Subscribe(topic, func(evt events.Event) {
			log.Printf("session %s: %s %s", evt.SessionID, evt.Topic, evt.Subject)
		})
	}

	mcp.AddTool(s.mcpServer, SessionStartTool(), SessionStartHandler(s))
	mcp.AddTool(s.mcpServer, SessionCloseTool(), SessionCloseHandler(s))
	mcp.AddTool(s.mcpServer, ProcessTurnTool(), ProcessTurnHandler(s))
	mcp.AddTool(s.mcpServer, RecordUserTurnTool(), RecordUserTurnHandler(s))
	mcp.AddTool(s.mcpServer, WorldStateGetTool(), WorldStateGetHandler(s))
	mcp.AddTool(s.mcpServer, NPCListTool(), NPCListHandler(s))
	mcp.AddTool(s.mcpServer, NPCToggleFavoriteTool(), NPCToggleFavoriteHandler(s))
	mcp.AddTool(s.mcpServer, NPCUpdateRelationshipTool(), NPCUpdateRelationshipHandler(s))
	mcp.AddTool(s.mcpServer, NPCRemoveTool(), NPCRemoveHandler(s))
	mcp.AddTool(s.mcpServer, ParseNPCTagsTool(), ParseNPCTagsHandler())
	if deps.GenAI != nil {
		mcp.AddTool(s.mcpServer, GenerationCancelTool(), GenerationCancelHandler(deps.GenAI))
	}
	return s, nil
}

// Run serves the MCP surface over stdio and blocks until the context ends.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close(context.Background())
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close sessions: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close sessions: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Close flushes and releases every open session.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	open := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.sessions = make(map[string]*session.Session)
	s.mu.Unlock()

	var firstErr error
	for _, sess := range open {
		if err := sess.Close(ctx); err != nil {
			log.Printf("close session %s: %v", sess.ID(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// openSession restores or seeds a session and registers it. Reopening an
// already-open session returns the live one unchanged.
func (s *Server) openSession(ctx context.Context, sessionID string, profile *state.Profile) (*session.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}

	sess, err := session.Open(ctx, session.Config{
		SessionID:     sessionID,
		Cache:         s.deps.Cache,
		Authority:     s.deps.Authority,
		Bus:           s.deps.Bus,
		Printer:       s.deps.Printer,
		Profile:       profile,
		HistoryWindow: s.deps.HistoryWindow,
	})
	if err != nil {
		return nil, err
	}
	s.sessions[sessionID] = sess
	return sess, nil
}

// getSession returns a live session or ErrSessionNotOpen.
func (s *Server) getSession(sessionID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrSessionNotOpen)
	}
	return sess, nil
}

// closeSession removes a session from the registry and flushes it.
func (s *Server) closeSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[strings.TrimSpace(sessionID)]
	if ok {
		delete(s.sessions, strings.TrimSpace(sessionID))
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", sessionID, ErrSessionNotOpen)
	}
	return sess.Close(ctx)
}

// sortedNPCSummaries maps the roster into stable tool output.
func sortedNPCSummaries(sess *session.Session) []NPCSummary {
	roster := sess.Roster().List()
	summaries := make([]NPCSummary, 0, len(roster))
	for _, record := range roster {
		summaries = append(summaries, NPCSummary{
			ID:           record.ID,
			Name:         record.Name,
			HP:           record.HP,
			MaxHP:        record.MaxHP,
			AC:           record.AC,
			Relationship: record.Relationship,
			Attitude:     string(record.Attitude),
			Favorite:     record.Favorite,
			Notes:        record.Notes,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}
