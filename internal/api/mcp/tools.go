package mcp

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProfileInput represents the character profile used to seed a new session.
type ProfileInput struct {
	Name       string         `json:"name" jsonschema:"character name"`
	MaxHP      int            `json:"max_hp" jsonschema:"maximum hit points"`
	Attributes map[string]int `json:"attributes,omitempty" jsonschema:"named attribute scores"`
	Gold       int            `json:"gold,omitempty" jsonschema:"starting gold"`
	Level      int            `json:"level,omitempty" jsonschema:"starting level, defaults to 1"`
	Location   string         `json:"location,omitempty" jsonschema:"starting location"`
	Spells     []string       `json:"spells,omitempty" jsonschema:"memorized spell names"`
}

// SessionStartInput represents the MCP tool input for opening a session.
type SessionStartInput struct {
	SessionID string        `json:"session_id" jsonschema:"session identifier"`
	Profile   *ProfileInput `json:"profile,omitempty" jsonschema:"profile used when no saved state exists"`
}

// SessionStartResult represents the MCP tool output for opening a session.
type SessionStartResult struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Restored  bool   `json:"restored" jsonschema:"whether the session was restored from saved state"`
	NPCCount  int    `json:"npc_count" jsonschema:"number of tracked NPCs"`
}

// SessionCloseInput represents the MCP tool input for closing a session.
type SessionCloseInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// SessionCloseResult represents the MCP tool output for closing a session.
type SessionCloseResult struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Synced    bool   `json:"synced" jsonschema:"whether the final sync completed"`
}

// ProcessTurnInput represents the MCP tool input for processing generated narrative.
type ProcessTurnInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Content   string `json:"content" jsonschema:"generated narrative text to process"`
}

// ProcessTurnResult represents the MCP tool output for a processed turn.
type ProcessTurnResult struct {
	CleanContent  string   `json:"clean_content" jsonschema:"narrative with command blocks removed"`
	Notifications []string `json:"notifications,omitempty" jsonschema:"player-facing state change notices"`
	Errors        []string `json:"errors,omitempty" jsonschema:"rejected commands and parse failures"`
	NewNPCs       []string `json:"new_npcs,omitempty" jsonschema:"NPC names added this turn"`
	UpdatedNPCs   []string `json:"updated_npcs,omitempty" jsonschema:"NPC names updated this turn"`
	EvictedNPCs   []string `json:"evicted_npcs,omitempty" jsonschema:"NPC names evicted for absence"`
}

// RecordUserTurnInput represents the MCP tool input for logging player text.
type RecordUserTurnInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Content   string `json:"content" jsonschema:"player message to record"`
}

// RecordUserTurnResult represents the MCP tool output for logging player text.
type RecordUserTurnResult struct {
	Recorded bool `json:"recorded" jsonschema:"whether the turn was recorded"`
}

// WorldStateGetInput represents the MCP tool input for reading world state.
type WorldStateGetInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// WorldStateGetResult represents the MCP tool output for reading world state.
type WorldStateGetResult struct {
	State json.RawMessage `json:"state" jsonschema:"world state snapshot as JSON"`
}

// NPCSummary represents one tracked NPC in tool output.
type NPCSummary struct {
	ID           string `json:"id" jsonschema:"NPC identifier"`
	Name         string `json:"name" jsonschema:"NPC name"`
	HP           string `json:"hp" jsonschema:"current hit points"`
	MaxHP        string `json:"max_hp" jsonschema:"maximum hit points"`
	AC           string `json:"ac" jsonschema:"armor class"`
	Relationship int    `json:"relationship" jsonschema:"relationship value in [-100, 100]"`
	Attitude     string `json:"attitude" jsonschema:"derived attitude tier"`
	Favorite     bool   `json:"favorite" jsonschema:"whether the NPC is protected from cleanup"`
	Notes        string `json:"notes,omitempty" jsonschema:"free-form notes"`
}

// NPCListInput represents the MCP tool input for listing NPCs.
type NPCListInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// NPCListResult represents the MCP tool output for listing NPCs.
type NPCListResult struct {
	NPCs []NPCSummary `json:"npcs" jsonschema:"tracked NPCs sorted by name"`
}

// NPCToggleFavoriteInput represents the MCP tool input for toggling protection.
type NPCToggleFavoriteInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	NPC       string `json:"npc" jsonschema:"NPC id or name"`
}

// NPCToggleFavoriteResult represents the MCP tool output for toggling protection.
type NPCToggleFavoriteResult struct {
	Favorite bool `json:"favorite" jsonschema:"protection state after the toggle"`
}

// NPCUpdateRelationshipInput represents the MCP tool input for setting a relationship.
type NPCUpdateRelationshipInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	NPC       string `json:"npc" jsonschema:"NPC id or name"`
	Value     int    `json:"value" jsonschema:"relationship value, clamped to [-100, 100]"`
}

// NPCUpdateRelationshipResult represents the MCP tool output for setting a relationship.
type NPCUpdateRelationshipResult struct {
	Relationship int    `json:"relationship" jsonschema:"clamped relationship value"`
	Attitude     string `json:"attitude" jsonschema:"derived attitude tier"`
}

// NPCRemoveInput represents the MCP tool input for removing an NPC.
type NPCRemoveInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	NPC       string `json:"npc" jsonschema:"NPC id or name"`
}

// NPCRemoveResult represents the MCP tool output for removing an NPC.
type NPCRemoveResult struct {
	Removed bool `json:"removed" jsonschema:"whether the NPC was removed"`
}

// ParseNPCTagsInput represents the MCP tool input for stateless tag parsing.
type ParseNPCTagsInput struct {
	Content string `json:"content" jsonschema:"narrative text to scan for NPC tags"`
}

// ParsedNPC represents one detected NPC candidate.
type ParsedNPC struct {
	Name    string `json:"name" jsonschema:"NPC name"`
	Dialect string `json:"dialect" jsonschema:"tag dialect that produced the candidate"`
	AC      string `json:"ac" jsonschema:"armor class"`
	HP      string `json:"hp" jsonschema:"hit points"`
	HD      string `json:"hd" jsonschema:"hit dice"`
	Dmg     string `json:"dmg" jsonschema:"damage expression"`
}

// ParseNPCTagsResult represents the MCP tool output for stateless tag parsing.
type ParseNPCTagsResult struct {
	NPCs   []ParsedNPC `json:"npcs" jsonschema:"detected NPC candidates with defaults applied"`
	Errors []string    `json:"errors,omitempty" jsonschema:"per-tag parse failures"`
}

// GenerationCancelInput represents the MCP tool input for cancelling a generation.
type GenerationCancelInput struct {
	GenerationID string `json:"generation_id" jsonschema:"generation identifier"`
}

// GenerationCancelResult represents the MCP tool output for cancelling a generation.
type GenerationCancelResult struct {
	Cancelled bool `json:"cancelled" jsonschema:"whether an in-flight generation was cancelled"`
}

// SessionStartTool defines the MCP tool schema for opening a session.
func SessionStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_start",
		Description: "Opens a play session, restoring saved state or seeding from a profile",
	}
}

// SessionCloseTool defines the MCP tool schema for closing a session.
func SessionCloseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_close",
		Description: "Closes a session, flushing pending writes and syncing authoritative storage",
	}
}

// ProcessTurnTool defines the MCP tool schema for processing a turn.
func ProcessTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "process_turn",
		Description: "Processes generated narrative: applies commands, detects NPCs, returns clean text",
	}
}

// RecordUserTurnTool defines the MCP tool schema for logging player text.
func RecordUserTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "record_user_turn",
		Description: "Records a player message so mentioned NPCs stay protected from cleanup",
	}
}

// WorldStateGetTool defines the MCP tool schema for reading world state.
func WorldStateGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "world_state_get",
		Description: "Returns the current world state snapshot",
	}
}

// NPCListTool defines the MCP tool schema for listing NPCs.
func NPCListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "npc_list",
		Description: "Lists tracked NPCs with stats and relationship tiers",
	}
}

// NPCToggleFavoriteTool defines the MCP tool schema for toggling protection.
func NPCToggleFavoriteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "npc_toggle_favorite",
		Description: "Toggles an NPC's favorite flag, protecting it from auto-cleanup",
	}
}

// NPCUpdateRelationshipTool defines the MCP tool schema for setting a relationship.
func NPCUpdateRelationshipTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "npc_update_relationship",
		Description: "Sets an NPC's relationship value and returns the derived attitude",
	}
}

// NPCRemoveTool defines the MCP tool schema for removing an NPC.
func NPCRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "npc_remove",
		Description: "Removes an NPC from the roster",
	}
}

// ParseNPCTagsTool defines the MCP tool schema for stateless tag parsing.
func ParseNPCTagsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "parse_npc_tags",
		Description: "Parses NPC tags out of narrative text without touching any session",
	}
}

// GenerationCancelTool defines the MCP tool schema for cancelling a generation.
func GenerationCancelTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "generation_cancel",
		Description: "Cancels an in-flight narrative generation",
	}
}
