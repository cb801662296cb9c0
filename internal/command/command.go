package command

// Type identifies the kind of state mutation a command requests.
type Type string

// Character commands.
const (
	// TypeUpdateHP adjusts current hit points by a signed delta.
	TypeUpdateHP Type = "update_hp"
	// TypeTakeDamage reduces current hit points.
	TypeTakeDamage Type = "take_damage"
	// TypeHeal restores current hit points.
	TypeHeal Type = "heal"
	// TypeUpdateAttribute sets one of the six ability scores.
	TypeUpdateAttribute Type = "update_attribute"
	// TypeUpdateGold adjusts gold by a signed delta.
	TypeUpdateGold Type = "update_gold"
	// TypeGainXP adds experience points.
	TypeGainXP Type = "gain_xp"
	// TypeLevelUp advances the character level.
	TypeLevelUp Type = "level_up"
	// TypeRest applies short or long rest effects.
	TypeRest Type = "rest"
	// TypeCastSpell consumes a memorized spell.
	TypeCastSpell Type = "cast_spell"
	// TypeUpdateDeity records divine rank or deity awakening.
	TypeUpdateDeity Type = "update_deity"
)

// Inventory commands.
const (
	// TypeAddItem adds an item, merging quantities by exact name.
	TypeAddItem Type = "add_item"
	// TypeRemoveItem removes item quantity, dropping the item at zero.
	TypeRemoveItem Type = "remove_item"
)

// Combat roster commands.
const (
	// TypeAddNpc upserts an NPC in the combat view.
	TypeAddNpc Type = "add_npc"
	// TypeUpdateNpc patches an existing combat-view NPC.
	TypeUpdateNpc Type = "update_npc"
	// TypeRemoveNpc removes an NPC from the combat view.
	TypeRemoveNpc Type = "remove_npc"
)

// World commands.
const (
	// TypeUpdateLocation moves the party and appends location history.
	TypeUpdateLocation Type = "update_location"
	// TypeUpdateTime sets any subset of time descriptor, date, and season.
	TypeUpdateTime Type = "update_time"
	// TypeUpdateWeather sets any subset of weather and temperature.
	TypeUpdateWeather Type = "update_weather"
)

// Quest and effect commands.
const (
	// TypeAddQuest adds a quest in active status.
	TypeAddQuest Type = "add_quest"
	// TypeUpdateQuest changes quest status or progress.
	TypeUpdateQuest Type = "update_quest"
	// TypeAddEffect adds or replaces a named effect.
	TypeAddEffect Type = "add_effect"
	// TypeRemoveEffect removes a named effect.
	TypeRemoveEffect Type = "remove_effect"
)

// Source records which extraction path produced a command.
type Source string

const (
	// SourceBlock marks commands parsed from explicit gamestate blocks.
	SourceBlock Source = "block"
	// SourceHeuristic marks commands inferred from narrative text.
	SourceHeuristic Source = "heuristic"
)

// Command pairs a type with its decoded payload. The payload's concrete type
// is fully determined by Type; reducers dispatch on the payload type switch.
type Command struct {
	Type    Type
	Source  Source
	Payload Payload
}

// Payload is the closed set of per-type command payloads.
type Payload interface {
	isPayload()
}
