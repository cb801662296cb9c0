package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/larkspur-games/chronicle/internal/genai"
	"github.com/larkspur-games/chronicle/internal/storage/hostvars"
	"github.com/larkspur-games/chronicle/internal/storage/sqlite"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "chronicle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	server, err := NewServer(Deps{
		Cache:     store,
		Authority: hostvars.NewMemory(),
		Printer:   message.NewPrinter(language.English),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = server.Close(context.Background()) })
	return server
}

func testProfile() *ProfileInput {
	return &ProfileInput{
		Name:     "艾瑞克",
		MaxHP:    20,
		Gold:     100,
		Location: "边境村庄",
	}
}

func startSession(t *testing.T, server *Server, sessionID string) {
	t.Helper()
	handler := SessionStartHandler(server)
	_, result, err := handler(context.Background(), nil, SessionStartInput{
		SessionID: sessionID,
		Profile:   testProfile(),
	})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if result.SessionID != sessionID {
		t.Fatalf("expected session id %q, got %q", sessionID, result.SessionID)
	}
}

func TestNewServerRequiresStores(t *testing.T) {
	if _, err := NewServer(Deps{}); err == nil {
		t.Fatal("expected error for missing cache")
	}
	if _, err := NewServer(Deps{Authority: hostvars.NewMemory()}); err == nil {
		t.Fatal("expected error for missing cache")
	}
}

func TestSessionStartRequiresProfileForNewSession(t *testing.T) {
	server := testServer(t)
	handler := SessionStartHandler(server)
	_, _, err := handler(context.Background(), nil, SessionStartInput{SessionID: "fresh"})
	if err == nil {
		t.Fatal("expected error without profile or saved state")
	}
}

func TestSessionStartSeedsFromProfile(t *testing.T) {
	server := testServer(t)
	handler := SessionStartHandler(server)
	_, result, err := handler(context.Background(), nil, SessionStartInput{
		SessionID: "seeded",
		Profile:   testProfile(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Restored {
		t.Error("expected a freshly seeded session")
	}
	if result.NPCCount != 0 {
		t.Errorf("expected empty roster, got %d", result.NPCCount)
	}
}

func TestToolsRejectUnknownSession(t *testing.T) {
	server := testServer(t)
	_, _, err := ProcessTurnHandler(server)(context.Background(), nil, ProcessTurnInput{
		SessionID: "ghost",
		Content:   "你走进森林。",
	})
	if !errors.Is(err, ErrSessionNotOpen) {
		t.Fatalf("expected ErrSessionNotOpen, got %v", err)
	}
	_, _, err = NPCListHandler(server)(context.Background(), nil, NPCListInput{SessionID: "ghost"})
	if !errors.Is(err, ErrSessionNotOpen) {
		t.Fatalf("expected ErrSessionNotOpen, got %v", err)
	}
}

func TestProcessTurnAppliesCommands(t *testing.T) {
	server := testServer(t)
	startSession(t, server, "adventure")

	generated := "你卖掉了旧盾牌。\n<!-- <gamestate>[{\"type\": \"update_gold\", \"data\": {\"amount\": -30}}]</gamestate> -->"
	_, turn, err := ProcessTurnHandler(server)(context.Background(), nil, ProcessTurnInput{
		SessionID: "adventure",
		Content:   generated,
	})
	if err != nil {
		t.Fatalf("process turn: %v", err)
	}
	if len(turn.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", turn.Errors)
	}
	if len(turn.Notifications) == 0 {
		t.Error("expected a gold notification")
	}

	_, stateResult, err := WorldStateGetHandler(server)(context.Background(), nil, WorldStateGetInput{SessionID: "adventure"})
	if err != nil {
		t.Fatalf("get world state: %v", err)
	}
	var snapshot struct {
		Character struct {
			Gold int `json:"gold"`
		} `json:"character"`
	}
	if err := json.Unmarshal(stateResult.State, &snapshot); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if snapshot.Character.Gold != 70 {
		t.Errorf("expected gold 70, got %d", snapshot.Character.Gold)
	}
}

func TestNPCToolsRoundTrip(t *testing.T) {
	server := testServer(t)
	startSession(t, server, "roster")

	generated := "一个地精跳了出来。<[地精]：AC 6；MV 6；HD 1-1；hp 3；THAC0 20；#AT 1；Dmg 1d6；SZ S；Int 低(5-7)；AL LE；ML 8；XP 15>"
	_, turn, err := ProcessTurnHandler(server)(context.Background(), nil, ProcessTurnInput{
		SessionID: "roster",
		Content:   generated,
	})
	if err != nil {
		t.Fatalf("process turn: %v", err)
	}
	if len(turn.NewNPCs) != 1 || turn.NewNPCs[0] != "地精" {
		t.Fatalf("expected 地精 detected, got %v", turn.NewNPCs)
	}

	_, list, err := NPCListHandler(server)(context.Background(), nil, NPCListInput{SessionID: "roster"})
	if err != nil {
		t.Fatalf("list npcs: %v", err)
	}
	if len(list.NPCs) != 1 {
		t.Fatalf("expected one NPC, got %d", len(list.NPCs))
	}
	if list.NPCs[0].AC != "6" || list.NPCs[0].HP != "3" {
		t.Errorf("unexpected stat block: %+v", list.NPCs[0])
	}

	_, fav, err := NPCToggleFavoriteHandler(server)(context.Background(), nil, NPCToggleFavoriteInput{
		SessionID: "roster",
		NPC:       "地精",
	})
	if err != nil {
		t.Fatalf("toggle favorite: %v", err)
	}
	if !fav.Favorite {
		t.Error("expected favorite after first toggle")
	}

	_, rel, err := NPCUpdateRelationshipHandler(server)(context.Background(), nil, NPCUpdateRelationshipInput{
		SessionID: "roster",
		NPC:       "地精",
		Value:     300,
	})
	if err != nil {
		t.Fatalf("update relationship: %v", err)
	}
	if rel.Relationship != 100 || rel.Attitude != "helpful" {
		t.Errorf("expected clamped helpful relationship, got %+v", rel)
	}

	if _, _, err := NPCRemoveHandler(server)(context.Background(), nil, NPCRemoveInput{
		SessionID: "roster",
		NPC:       "地精",
	}); err != nil {
		t.Fatalf("remove npc: %v", err)
	}
	_, list, err = NPCListHandler(server)(context.Background(), nil, NPCListInput{SessionID: "roster"})
	if err != nil {
		t.Fatalf("list npcs: %v", err)
	}
	if len(list.NPCs) != 0 {
		t.Errorf("expected empty roster after removal, got %d", len(list.NPCs))
	}
}

func TestSessionCloseThenRestart(t *testing.T) {
	server := testServer(t)
	startSession(t, server, "resume")

	if _, _, err := ProcessTurnHandler(server)(context.Background(), nil, ProcessTurnInput{
		SessionID: "resume",
		Content:   "<!-- <gamestate>[{\"type\": \"update_gold\", \"data\": {\"amount\": 25}}]</gamestate> -->你获得了赏金。",
	}); err != nil {
		t.Fatalf("process turn: %v", err)
	}

	_, closed, err := SessionCloseHandler(server)(context.Background(), nil, SessionCloseInput{SessionID: "resume"})
	if err != nil {
		t.Fatalf("close session: %v", err)
	}
	if !closed.Synced {
		t.Error("expected synced close")
	}

	if _, _, err := ProcessTurnHandler(server)(context.Background(), nil, ProcessTurnInput{
		SessionID: "resume",
		Content:   "你继续前进。",
	}); !errors.Is(err, ErrSessionNotOpen) {
		t.Fatalf("expected ErrSessionNotOpen after close, got %v", err)
	}

	// Restart without a profile; saved state must carry the session.
	_, restarted, err := SessionStartHandler(server)(context.Background(), nil, SessionStartInput{SessionID: "resume"})
	if err != nil {
		t.Fatalf("restart session: %v", err)
	}
	if !restarted.Restored {
		t.Error("expected restored session")
	}
}

func TestRecordUserTurn(t *testing.T) {
	server := testServer(t)
	startSession(t, server, "log")

	_, result, err := RecordUserTurnHandler(server)(context.Background(), nil, RecordUserTurnInput{
		SessionID: "log",
		Content:   "我去找老村长。",
	})
	if err != nil {
		t.Fatalf("record user turn: %v", err)
	}
	if !result.Recorded {
		t.Error("expected recorded turn")
	}
}

func TestParseNPCTagsStateless(t *testing.T) {
	handler := ParseNPCTagsHandler()
	_, result, err := handler(context.Background(), nil, ParseNPCTagsInput{
		Content: "<[哥布林]：AC 6；hp 3> 和 <npc>座狼|HP:9</npc>",
	})
	if err != nil {
		t.Fatalf("parse tags: %v", err)
	}
	if len(result.NPCs) != 2 {
		t.Fatalf("expected two candidates, got %d", len(result.NPCs))
	}
	if result.NPCs[0].Name != "哥布林" || result.NPCs[0].AC != "6" {
		t.Errorf("unexpected first candidate: %+v", result.NPCs[0])
	}
	if result.NPCs[1].Name != "座狼" || result.NPCs[1].HP != "9" {
		t.Errorf("unexpected second candidate: %+v", result.NPCs[1])
	}
}

func TestGenerationCancelUnknownID(t *testing.T) {
	client, err := genai.New(genai.Config{BaseURL: "http://127.0.0.1:1", Model: "test-model"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	handler := GenerationCancelHandler(client)
	_, result, err := handler(context.Background(), nil, GenerationCancelInput{GenerationID: "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cancelled {
		t.Error("expected no cancellation for unknown id")
	}
	if _, _, err := handler(context.Background(), nil, GenerationCancelInput{}); err == nil {
		t.Fatal("expected error for blank generation id")
	}
}
