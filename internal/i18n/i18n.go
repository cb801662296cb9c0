// Package i18n renders user-facing state-change notifications.
//
// The narrative layer never emits new chat messages for state changes, so
// every mutation surfaces through a notification string built here. Catalogs
// exist for English and Chinese; Chinese is the default because the supported
// narrative dialect is Chinese.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Notification message keys. Each key has an entry in every catalog.
const (
	KeyDamageTaken      = "notify.damage_taken"
	KeyHealed           = "notify.healed"
	KeyHPChanged        = "notify.hp_changed"
	KeyAttributeSet     = "notify.attribute_set"
	KeyGoldGained       = "notify.gold_gained"
	KeyGoldSpent        = "notify.gold_spent"
	KeyXPGained         = "notify.xp_gained"
	KeyLevelUp          = "notify.level_up"
	KeyItemAdded        = "notify.item_added"
	KeyItemRemoved      = "notify.item_removed"
	KeyItemDropped      = "notify.item_dropped"
	KeyNpcAppeared      = "notify.npc_appeared"
	KeyNpcUpdated       = "notify.npc_updated"
	KeyNpcRemoved       = "notify.npc_removed"
	KeyLocationChanged  = "notify.location_changed"
	KeyTimeChanged      = "notify.time_changed"
	KeyWeatherChanged   = "notify.weather_changed"
	KeyQuestAdded       = "notify.quest_added"
	KeyQuestCompleted   = "notify.quest_completed"
	KeyQuestFailed      = "notify.quest_failed"
	KeyQuestProgress    = "notify.quest_progress"
	KeyEffectAdded      = "notify.effect_added"
	KeyEffectRemoved    = "notify.effect_removed"
	KeyRestLong         = "notify.rest_long"
	KeyRestShort        = "notify.rest_short"
	KeySpellCast        = "notify.spell_cast"
	KeyDeityUpdated     = "notify.deity_updated"
	KeyDeityAwakened    = "notify.deity_awakened"
	KeyRosterNpcEvicted = "notify.roster_npc_evicted"
)

// DefaultLanguage is used when no language is configured.
var DefaultLanguage = language.Chinese

var supportedTags = []language.Tag{
	language.Chinese,
	language.English,
}

var supported = language.NewMatcher(supportedTags)

// ParseLanguage resolves a configured language string to a supported tag,
// falling back to the default for empty or unrecognized values. The match
// index selects from supportedTags so callers always get a canonical tag.
func ParseLanguage(value string) language.Tag {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(value)
	if err != nil {
		return DefaultLanguage
	}
	_, index, confidence := supported.Match(tag)
	if confidence == language.No {
		return DefaultLanguage
	}
	return supportedTags[index]
}

// NewPrinter creates a message printer for the provided tag.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
