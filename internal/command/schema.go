package command

// Catalog describes every command payload keyed by its wire type. It exists
// for schema reflection so prompt templates can embed an up-to-date contract.
type Catalog struct {
	UpdateHP        UpdateHP        `json:"update_hp"`
	TakeDamage      TakeDamage      `json:"take_damage"`
	Heal            Heal            `json:"heal"`
	UpdateAttribute UpdateAttribute `json:"update_attribute"`
	UpdateGold      UpdateGold      `json:"update_gold"`
	GainXP          GainXP          `json:"gain_xp"`
	LevelUp         LevelUp         `json:"level_up"`
	Rest            Rest            `json:"rest"`
	CastSpell       CastSpell       `json:"cast_spell"`
	UpdateDeity     UpdateDeity     `json:"update_deity"`
	AddItem         AddItem         `json:"add_item"`
	RemoveItem      RemoveItem      `json:"remove_item"`
	AddNpc          AddNpc          `json:"add_npc"`
	UpdateNpc       UpdateNpc       `json:"update_npc"`
	RemoveNpc       RemoveNpc       `json:"remove_npc"`
	UpdateLocation  UpdateLocation  `json:"update_location"`
	UpdateTime      UpdateTime      `json:"update_time"`
	UpdateWeather   UpdateWeather   `json:"update_weather"`
	AddQuest        AddQuest        `json:"add_quest"`
	UpdateQuest     UpdateQuest     `json:"update_quest"`
	AddEffect       AddEffect       `json:"add_effect"`
	RemoveEffect    RemoveEffect    `json:"remove_effect"`
}
