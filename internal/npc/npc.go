package npc

import "time"

// Attitude is the derived disposition tier for a relationship value.
type Attitude string

const (
	AttitudeHostile    Attitude = "hostile"
	AttitudeUnfriendly Attitude = "unfriendly"
	AttitudeNeutral    Attitude = "neutral"
	AttitudeFriendly   Attitude = "friendly"
	AttitudeHelpful    Attitude = "helpful"
)

// Relationship bounds. Values outside are clamped, never rejected.
const (
	RelationshipMin = -100
	RelationshipMax = 100
)

// AttitudeFor derives the attitude tier for a relationship value.
func AttitudeFor(relationship int) Attitude {
	switch {
	case relationship <= -75:
		return AttitudeHostile
	case relationship <= -25:
		return AttitudeUnfriendly
	case relationship <= 25:
		return AttitudeNeutral
	case relationship <= 75:
		return AttitudeFriendly
	default:
		return AttitudeHelpful
	}
}

// ClampRelationship bounds a relationship value to [-100, 100].
func ClampRelationship(value int) int {
	if value < RelationshipMin {
		return RelationshipMin
	}
	if value > RelationshipMax {
		return RelationshipMax
	}
	return value
}

// NPC is the rich roster record built up across detections. It is logically
// separate from the simplified combat view kept inside the world state.
type NPC struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Stat block, string-typed to preserve ranges and dice expressions.
	AC    string `json:"ac"`
	MV    string `json:"mv"`
	HD    string `json:"hd"`
	HP    string `json:"hp"`
	MaxHP string `json:"maxHp"`
	THAC0 string `json:"thac0"`
	AT    string `json:"at"`
	Dmg   string `json:"dmg"`
	SZ    string `json:"sz"`
	Int   string `json:"int"`
	AL    string `json:"al"`
	ML    string `json:"ml"`
	XP    string `json:"xp"`
	SA    string `json:"sa,omitempty"`
	SD    string `json:"sd,omitempty"`
	SW    string `json:"sw,omitempty"`
	SP    string `json:"sp,omitempty"`
	MR    string `json:"mr,omitempty"`

	// Descriptive fields; detection refreshes these when the model re-emits
	// them, otherwise the previous value survives.
	Appearance  string `json:"appearance,omitempty"`
	Personality string `json:"personality,omitempty"`
	Background  string `json:"background,omitempty"`
	Motivation  string `json:"motivation,omitempty"`
	Equipment   string `json:"equipment,omitempty"`
	Inventory   string `json:"inventory,omitempty"`
	Description string `json:"description,omitempty"`

	// Relationship tracking.
	Relationship            int      `json:"relationship"`
	Attitude                Attitude `json:"attitude"`
	RelationshipDescription string   `json:"relationshipDescription,omitempty"`

	// Lifecycle fields, always preserved across merges.
	Favorite         bool      `json:"favorite"`
	FirstSeen        time.Time `json:"firstSeen"`
	LastSeen         time.Time `json:"lastSeen"`
	InteractionCount int       `json:"interactionCount"`
	Notes            string    `json:"notes,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
}
