package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/larkspur-games/chronicle/internal/genai"
	"github.com/larkspur-games/chronicle/internal/npc"
	"github.com/larkspur-games/chronicle/internal/state"
)

// SessionStartHandler opens or restores a session.
func SessionStartHandler(s *Server) mcp.ToolHandlerFor[SessionStartInput, SessionStartResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionStartInput) (*mcp.CallToolResult, SessionStartResult, error) {
		var profile *state.Profile
		if input.Profile != nil {
			profile = profileFromInput(*input.Profile)
		}
		sess, err := s.openSession(ctx, input.SessionID, profile)
		if err != nil {
			return nil, SessionStartResult{}, fmt.Errorf("start session: %w", err)
		}
		return nil, SessionStartResult{
			SessionID: sess.ID(),
			Restored:  sess.Restored(),
			NPCCount:  len(sess.Roster().List()),
		}, nil
	}
}

// SessionCloseHandler flushes and releases a session.
func SessionCloseHandler(s *Server) mcp.ToolHandlerFor[SessionCloseInput, SessionCloseResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionCloseInput) (*mcp.CallToolResult, SessionCloseResult, error) {
		if err := s.closeSession(ctx, input.SessionID); err != nil {
			return nil, SessionCloseResult{}, fmt.Errorf("close session: %w", err)
		}
		return nil, SessionCloseResult{SessionID: strings.TrimSpace(input.SessionID), Synced: true}, nil
	}
}

// ProcessTurnHandler runs the full turn pipeline over generated narrative.
func ProcessTurnHandler(s *Server) mcp.ToolHandlerFor[ProcessTurnInput, ProcessTurnResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProcessTurnInput) (*mcp.CallToolResult, ProcessTurnResult, error) {
		sess, err := s.getSession(input.SessionID)
		if err != nil {
			return nil, ProcessTurnResult{}, err
		}
		turn, err := sess.ProcessTurn(ctx, input.Content)
		if err != nil {
			return nil, ProcessTurnResult{}, fmt.Errorf("process turn: %w", err)
		}

		result := ProcessTurnResult{
			CleanContent:  turn.CleanContent,
			Notifications: turn.Notifications,
			NewNPCs:       turn.NewNPCs,
			UpdatedNPCs:   turn.UpdatedNPCs,
			EvictedNPCs:   turn.EvictedNPCs,
		}
		for _, cmdErr := range turn.CommandErrors {
			result.Errors = append(result.Errors, cmdErr.Error())
		}
		for _, parseErr := range turn.ParseErrors {
			result.Errors = append(result.Errors, parseErr.Error())
		}
		return nil, result, nil
	}
}

// RecordUserTurnHandler appends a player message to the turn log.
func RecordUserTurnHandler(s *Server) mcp.ToolHandlerFor[RecordUserTurnInput, RecordUserTurnResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RecordUserTurnInput) (*mcp.CallToolResult, RecordUserTurnResult, error) {
		sess, err := s.getSession(input.SessionID)
		if err != nil {
			return nil, RecordUserTurnResult{}, err
		}
		if err := sess.RecordUserTurn(ctx, input.Content); err != nil {
			return nil, RecordUserTurnResult{}, err
		}
		return nil, RecordUserTurnResult{Recorded: true}, nil
	}
}

// WorldStateGetHandler exports the current world state snapshot.
func WorldStateGetHandler(s *Server) mcp.ToolHandlerFor[WorldStateGetInput, WorldStateGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldStateGetInput) (*mcp.CallToolResult, WorldStateGetResult, error) {
		sess, err := s.getSession(input.SessionID)
		if err != nil {
			return nil, WorldStateGetResult{}, err
		}
		data, err := sess.ExportWorld()
		if err != nil {
			return nil, WorldStateGetResult{}, fmt.Errorf("export world state: %w", err)
		}
		return nil, WorldStateGetResult{State: data}, nil
	}
}

// NPCListHandler lists the tracked roster.
func NPCListHandler(s *Server) mcp.ToolHandlerFor[NPCListInput, NPCListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NPCListInput) (*mcp.CallToolResult, NPCListResult, error) {
		sess, err := s.getSession(input.SessionID)
		if err != nil {
			return nil, NPCListResult{}, err
		}
		return nil, NPCListResult{NPCs: sortedNPCSummaries(sess)}, nil
	}
}

// NPCToggleFavoriteHandler toggles cleanup protection for one NPC.
func NPCToggleFavoriteHandler(s *Server) mcp.ToolHandlerFor[NPCToggleFavoriteInput, NPCToggleFavoriteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NPCToggleFavoriteInput) (*mcp.CallToolResult, NPCToggleFavoriteResult, error) {
		sess, err := s.getSession(input.SessionID)
		if err != nil {
			return nil, NPCToggleFavoriteResult{}, err
		}
		favorite, err := sess.Roster().ToggleFavorite(input.NPC)
		if err != nil {
			return nil, NPCToggleFavoriteResult{}, err
		}
		sess.Reconciler().MarkDirty()
		return nil, NPCToggleFavoriteResult{Favorite: favorite}, nil
	}
}

// NPCUpdateRelationshipHandler sets a relationship value with clamping.
func NPCUpdateRelationshipHandler(s *Server) mcp.ToolHandlerFor[NPCUpdateRelationshipInput, NPCUpdateRelationshipResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NPCUpdateRelationshipInput) (*mcp.CallToolResult, NPCUpdateRelationshipResult, error) {
		sess, err := s.getSession(input.SessionID)
		if err != nil {
			return nil, NPCUpdateRelationshipResult{}, err
		}
		record, err := sess.Roster().UpdateRelationship(input.NPC, input.Value)
		if err != nil {
			return nil, NPCUpdateRelationshipResult{}, err
		}
		sess.Reconciler().MarkDirty()
		return nil, NPCUpdateRelationshipResult{
			Relationship: record.Relationship,
			Attitude:     string(record.Attitude),
		}, nil
	}
}

// NPCRemoveHandler removes an NPC from the roster.
func NPCRemoveHandler(s *Server) mcp.ToolHandlerFor[NPCRemoveInput, NPCRemoveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NPCRemoveInput) (*mcp.CallToolResult, NPCRemoveResult, error) {
		sess, err := s.getSession(input.SessionID)
		if err != nil {
			return nil, NPCRemoveResult{}, err
		}
		if err := sess.Roster().Remove(input.NPC); err != nil {
			return nil, NPCRemoveResult{}, err
		}
		sess.Reconciler().MarkDirty()
		return nil, NPCRemoveResult{Removed: true}, nil
	}
}

// ParseNPCTagsHandler parses NPC tags without session state.
func ParseNPCTagsHandler() mcp.ToolHandlerFor[ParseNPCTagsInput, ParseNPCTagsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParseNPCTagsInput) (*mcp.CallToolResult, ParseNPCTagsResult, error) {
		candidates, parseErrs := npc.ParseTags(input.Content)
		result := ParseNPCTagsResult{}
		for _, candidate := range candidates {
			result.NPCs = append(result.NPCs, ParsedNPC{
				Name:    candidate.Name,
				Dialect: string(candidate.Dialect),
				AC:      candidate.AC,
				HP:      candidate.HP,
				HD:      candidate.HD,
				Dmg:     candidate.Dmg,
			})
		}
		for _, parseErr := range parseErrs {
			result.Errors = append(result.Errors, parseErr.Error())
		}
		return nil, result, nil
	}
}

// GenerationCancelHandler cancels an in-flight generation by id.
func GenerationCancelHandler(client *genai.Client) mcp.ToolHandlerFor[GenerationCancelInput, GenerationCancelResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GenerationCancelInput) (*mcp.CallToolResult, GenerationCancelResult, error) {
		id := strings.TrimSpace(input.GenerationID)
		if id == "" {
			return nil, GenerationCancelResult{}, fmt.Errorf("generation id is required")
		}
		return nil, GenerationCancelResult{Cancelled: client.Cancel(id)}, nil
	}
}

// profileFromInput maps tool input onto a seeding profile.
func profileFromInput(input ProfileInput) *state.Profile {
	profile := &state.Profile{
		Name:       strings.TrimSpace(input.Name),
		MaxHP:      input.MaxHP,
		Attributes: input.Attributes,
		Gold:       input.Gold,
		Level:      input.Level,
		Location:   strings.TrimSpace(input.Location),
	}
	for _, name := range input.Spells {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		profile.Spells = append(profile.Spells, state.Spell{Name: name})
	}
	return profile
}
