// Package state holds the canonical world state for one play session and the
// reducer that mutates it. The state is single-writer: the session layer
// serializes one turn at a time, so no locking happens here.
package state

import (
	"encoding/json"
	"fmt"
	"time"
)

// Version tags exported snapshots so later schema changes can migrate them.
const Version = 1

// HP tracks current and maximum hit points plus temporary hit points.
type HP struct {
	Current int `json:"current"`
	Max     int `json:"max"`
	Temp    int `json:"temp,omitempty"`
}

// Deity records divine progression.
type Deity struct {
	Name     string `json:"name,omitempty"`
	Rank     string `json:"rank,omitempty"`
	Awakened bool   `json:"awakened,omitempty"`
}

// Character is the player-character slice of the world state.
type Character struct {
	Name       string         `json:"name"`
	HP         HP             `json:"hp"`
	Attributes map[string]int `json:"attributes"`
	Gold       int            `json:"gold"`
	XP         int            `json:"xp"`
	Level      int            `json:"level"`
	Deity      Deity          `json:"deity,omitzero"`
}

// Location tracks the current place and every place visited before it.
type Location struct {
	Current string   `json:"current"`
	History []string `json:"history,omitempty"`
}

// GameTime holds independently settable time descriptors.
type GameTime struct {
	Time   string `json:"time,omitempty"`
	Date   string `json:"date,omitempty"`
	Season string `json:"season,omitempty"`
}

// Weather holds the current conditions.
type Weather struct {
	Current     string `json:"current,omitempty"`
	Temperature string `json:"temperature,omitempty"`
}

// Item is one inventory line, unique by name.
type Item struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
}

// CombatNPC is the simplified combat view of an NPC. The detection domain
// keeps a richer record; this list only serves hp and status bookkeeping
// during encounters.
type CombatNPC struct {
	Name     string `json:"name"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"maxHp"`
	AC       int    `json:"ac"`
	Status   string `json:"status,omitempty"`
	Attitude string `json:"attitude,omitempty"`
}

// Quest is one quest-log entry.
type Quest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Progress    string `json:"progress,omitempty"`
}

// Effect is a named temporary condition on the character.
type Effect struct {
	Name        string `json:"name"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Spell is one memorized spell slot; casting removes it for the day.
type Spell struct {
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
}

// CombatFlags marks whether an encounter is in progress.
type CombatFlags struct {
	Active bool   `json:"active,omitempty"`
	Round  int    `json:"round,omitempty"`
	Note   string `json:"note,omitempty"`
}

// RestLog stamps the most recent rests.
type RestLog struct {
	LastShort time.Time `json:"lastShort,omitzero"`
	LastLong  time.Time `json:"lastLong,omitzero"`
}

// Meta carries bookkeeping fields updated on every successful apply.
type Meta struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Version     int       `json:"version"`
}

// WorldState is the single mutable aggregate for a session.
type WorldState struct {
	Character Character   `json:"character"`
	Location  Location    `json:"location"`
	Time      GameTime    `json:"time,omitzero"`
	Weather   Weather     `json:"weather,omitzero"`
	Inventory []Item      `json:"inventory,omitempty"`
	NPCs      []CombatNPC `json:"npcs,omitempty"`
	Quests    []Quest     `json:"quests,omitempty"`
	Effects   []Effect    `json:"effects,omitempty"`
	Spells    []Spell     `json:"spells,omitempty"`
	Combat    CombatFlags `json:"combat,omitzero"`
	Rest      RestLog     `json:"rest,omitzero"`
	Meta      Meta        `json:"meta"`
}

// Profile seeds a fresh world state at session start.
type Profile struct {
	Name       string
	MaxHP      int
	Attributes map[string]int
	Gold       int
	Level      int
	Location   string
	Spells     []Spell
}

// ErrProfileIncomplete reports a profile that cannot seed a playable state.
var ErrProfileIncomplete = fmt.Errorf("character profile is incomplete")

// NewFromProfile builds the initial world state for a session.
func NewFromProfile(profile Profile, now time.Time) (*WorldState, error) {
	if profile.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrProfileIncomplete)
	}
	if profile.MaxHP <= 0 {
		return nil, fmt.Errorf("%w: max hp must be positive", ErrProfileIncomplete)
	}
	level := profile.Level
	if level <= 0 {
		level = 1
	}
	attrs := make(map[string]int, len(profile.Attributes))
	for name, value := range profile.Attributes {
		attrs[name] = value
	}
	ws := &WorldState{
		Character: Character{
			Name:       profile.Name,
			HP:         HP{Current: profile.MaxHP, Max: profile.MaxHP},
			Attributes: attrs,
			Gold:       profile.Gold,
			Level:      level,
		},
		Location: Location{Current: profile.Location},
		Spells:   append([]Spell(nil), profile.Spells...),
		Meta:     Meta{LastUpdated: now.UTC(), Version: Version},
	}
	return ws, nil
}

// Export serializes the state for persistence.
func (ws *WorldState) Export() ([]byte, error) {
	data, err := json.Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("export world state: %w", err)
	}
	return data, nil
}

// Load restores a state previously produced by Export.
func Load(data []byte) (*WorldState, error) {
	var ws WorldState
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("load world state: %w", err)
	}
	if ws.Meta.Version == 0 {
		ws.Meta.Version = Version
	}
	return &ws, nil
}

func (ws *WorldState) findItem(name string) *Item {
	for i := range ws.Inventory {
		if ws.Inventory[i].Name == name {
			return &ws.Inventory[i]
		}
	}
	return nil
}

func (ws *WorldState) findNPC(name string) *CombatNPC {
	for i := range ws.NPCs {
		if ws.NPCs[i].Name == name {
			return &ws.NPCs[i]
		}
	}
	return nil
}

func (ws *WorldState) findQuest(id, title string) *Quest {
	for i := range ws.Quests {
		if id != "" && ws.Quests[i].ID == id {
			return &ws.Quests[i]
		}
		if title != "" && ws.Quests[i].Title == title {
			return &ws.Quests[i]
		}
	}
	return nil
}

func (ws *WorldState) findEffect(name string) *Effect {
	for i := range ws.Effects {
		if ws.Effects[i].Name == name {
			return &ws.Effects[i]
		}
	}
	return nil
}

// NPCNames lists combat-view NPC names in list order.
func (ws *WorldState) NPCNames() []string {
	names := make([]string, len(ws.NPCs))
	for i, n := range ws.NPCs {
		names[i] = n.Name
	}
	return names
}

// QuestRefs lists quest identifiers as "id (title)" pairs.
func (ws *WorldState) QuestRefs() []string {
	refs := make([]string, len(ws.Quests))
	for i, q := range ws.Quests {
		refs[i] = fmt.Sprintf("%s (%s)", q.ID, q.Title)
	}
	return refs
}

// EffectNames lists active effect names.
func (ws *WorldState) EffectNames() []string {
	names := make([]string, len(ws.Effects))
	for i, e := range ws.Effects {
		names[i] = e.Name
	}
	return names
}

// SpellNames lists memorized spell names.
func (ws *WorldState) SpellNames() []string {
	names := make([]string, len(ws.Spells))
	for i, s := range ws.Spells {
		names[i] = s.Name
	}
	return names
}

// ItemNames lists inventory item names.
func (ws *WorldState) ItemNames() []string {
	names := make([]string, len(ws.Inventory))
	for i, item := range ws.Inventory {
		names[i] = item.Name
	}
	return names
}
