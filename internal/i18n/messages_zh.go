package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Chinese

	message.SetString(lang, KeyDamageTaken, "你受到了 %d 点伤害（生命值 %d/%d）")
	message.SetString(lang, KeyHealed, "你恢复了 %d 点生命值（生命值 %d/%d）")
	message.SetString(lang, KeyHPChanged, "生命值变化 %d（生命值 %d/%d）")
	message.SetString(lang, KeyAttributeSet, "%s 变为 %d")
	message.SetString(lang, KeyGoldGained, "获得 %d 金币（共 %d）")
	message.SetString(lang, KeyGoldSpent, "花费 %d 金币（剩余 %d）")
	message.SetString(lang, KeyXPGained, "获得 %d 点经验（共 %d）")
	message.SetString(lang, KeyLevelUp, "升级了！当前等级 %d")
	message.SetString(lang, KeyItemAdded, "获得 %s ×%d")
	message.SetString(lang, KeyItemRemoved, "失去 %s ×%d")
	message.SetString(lang, KeyItemDropped, "%s 已用尽")
	message.SetString(lang, KeyNpcAppeared, "%s 出现了")
	message.SetString(lang, KeyNpcUpdated, "%s 的状态更新了")
	message.SetString(lang, KeyNpcRemoved, "%s 离开了")
	message.SetString(lang, KeyLocationChanged, "来到了 %s")
	message.SetString(lang, KeyTimeChanged, "时间：%s")
	message.SetString(lang, KeyWeatherChanged, "天气：%s")
	message.SetString(lang, KeyQuestAdded, "新任务：%s")
	message.SetString(lang, KeyQuestCompleted, "任务完成：%s")
	message.SetString(lang, KeyQuestFailed, "任务失败：%s")
	message.SetString(lang, KeyQuestProgress, "任务更新：%s——%s")
	message.SetString(lang, KeyEffectAdded, "获得效果：%s（%s）")
	message.SetString(lang, KeyEffectRemoved, "效果结束：%s")
	message.SetString(lang, KeyRestLong, "长休完成，生命值完全恢复（%d/%d）")
	message.SetString(lang, KeyRestShort, "短休完成")
	message.SetString(lang, KeySpellCast, "施放了 %s")
	message.SetString(lang, KeyDeityUpdated, "神力状态变化：%s")
	message.SetString(lang, KeyDeityAwakened, "神力觉醒")
	message.SetString(lang, KeyRosterNpcEvicted, "%s 已淡出故事")
}
