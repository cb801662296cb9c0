package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, KeyDamageTaken, "You take %d damage (HP %d/%d)")
	message.SetString(lang, KeyHealed, "You recover %d HP (HP %d/%d)")
	message.SetString(lang, KeyHPChanged, "HP changed by %d (HP %d/%d)")
	message.SetString(lang, KeyAttributeSet, "%s is now %d")
	message.SetString(lang, KeyGoldGained, "Gained %d gold (total %d)")
	message.SetString(lang, KeyGoldSpent, "Spent %d gold (total %d)")
	message.SetString(lang, KeyXPGained, "Gained %d XP (total %d)")
	message.SetString(lang, KeyLevelUp, "Level up! You are now level %d")
	message.SetString(lang, KeyItemAdded, "Obtained %s ×%d")
	message.SetString(lang, KeyItemRemoved, "Lost %s ×%d")
	message.SetString(lang, KeyItemDropped, "%s is used up")
	message.SetString(lang, KeyNpcAppeared, "%s appears")
	message.SetString(lang, KeyNpcUpdated, "%s is updated")
	message.SetString(lang, KeyNpcRemoved, "%s leaves")
	message.SetString(lang, KeyLocationChanged, "Arrived at %s")
	message.SetString(lang, KeyTimeChanged, "Time: %s")
	message.SetString(lang, KeyWeatherChanged, "Weather: %s")
	message.SetString(lang, KeyQuestAdded, "New quest: %s")
	message.SetString(lang, KeyQuestCompleted, "Quest completed: %s")
	message.SetString(lang, KeyQuestFailed, "Quest failed: %s")
	message.SetString(lang, KeyQuestProgress, "Quest updated: %s — %s")
	message.SetString(lang, KeyEffectAdded, "Effect gained: %s (%s)")
	message.SetString(lang, KeyEffectRemoved, "Effect ended: %s")
	message.SetString(lang, KeyRestLong, "Long rest complete, HP fully restored (%d/%d)")
	message.SetString(lang, KeyRestShort, "Short rest complete")
	message.SetString(lang, KeySpellCast, "Cast %s")
	message.SetString(lang, KeyDeityUpdated, "Divine status changed: %s")
	message.SetString(lang, KeyDeityAwakened, "divine power awakened")
	message.SetString(lang, KeyRosterNpcEvicted, "%s has faded from the story")
}
