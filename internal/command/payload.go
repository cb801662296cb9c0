package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNameRequired indicates a payload is missing its name field.
	ErrNameRequired = errors.New("name is required")
	// ErrAmountRequired indicates a payload is missing its amount field.
	ErrAmountRequired = errors.New("amount is required")
	// ErrAmountNotPositive indicates an amount that must be positive is not.
	ErrAmountNotPositive = errors.New("amount must be positive")
	// ErrAttributeUnknown indicates an attribute outside the six ability scores.
	ErrAttributeUnknown = errors.New("attribute is unknown")
	// ErrQuestRefRequired indicates a quest payload with neither id nor title.
	ErrQuestRefRequired = errors.New("quest id or title is required")
	// ErrQuestStatusInvalid indicates a quest status outside the allowed set.
	ErrQuestStatusInvalid = errors.New("quest status must be active, completed, or failed")
	// ErrRestKindInvalid indicates a rest kind outside short/long.
	ErrRestKindInvalid = errors.New("rest kind must be short or long")
	// ErrEmptyUpdate indicates a patch payload with no fields supplied.
	ErrEmptyUpdate = errors.New("at least one field is required")
)

// AttributeNames lists the six ability scores accepted by update_attribute.
var AttributeNames = []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

// UpdateHP adjusts current hit points by a signed delta, clamped to [0, max].
type UpdateHP struct {
	Amount int `json:"amount" jsonschema:"description=Signed hit point delta"`
}

// TakeDamage reduces current hit points by a positive amount.
type TakeDamage struct {
	Amount int    `json:"amount" jsonschema:"description=Damage dealt,minimum=1"`
	Source string `json:"source,omitempty" jsonschema:"description=Narrative source of the damage"`
}

// Heal restores current hit points by a positive amount.
type Heal struct {
	Amount int    `json:"amount" jsonschema:"description=Hit points restored,minimum=1"`
	Source string `json:"source,omitempty" jsonschema:"description=Narrative source of the healing"`
}

// UpdateAttribute sets one ability score to an absolute value.
type UpdateAttribute struct {
	Name  string `json:"name" jsonschema:"description=One of the six ability scores"`
	Value int    `json:"value" jsonschema:"description=New absolute score"`
}

// UpdateGold adjusts gold by a signed delta.
type UpdateGold struct {
	Amount int `json:"amount" jsonschema:"description=Signed gold delta"`
}

// GainXP adds experience points.
type GainXP struct {
	Amount int    `json:"amount" jsonschema:"description=Experience gained,minimum=1"`
	Reason string `json:"reason,omitempty" jsonschema:"description=What the experience was awarded for"`
}

// LevelUp advances the character level, either to an explicit level or by one.
type LevelUp struct {
	Level *int `json:"level,omitempty" jsonschema:"description=Explicit new level; omit to advance by one"`
}

// Rest applies rest effects: long rests restore hit points fully, short rests
// only stamp the rest time.
type Rest struct {
	Kind string `json:"kind" jsonschema:"description=Either short or long"`
}

// CastSpell marks one memorized spell as used.
type CastSpell struct {
	Name  string `json:"name" jsonschema:"description=Spell name as memorized"`
	Level int    `json:"level,omitempty" jsonschema:"description=Spell level when known"`
}

// UpdateDeity records divine progression fields.
type UpdateDeity struct {
	Name     string `json:"name,omitempty" jsonschema:"description=Deity or divine name"`
	Rank     *string `json:"rank,omitempty" jsonschema:"description=Divine rank descriptor"`
	Awakened *bool   `json:"awakened,omitempty" jsonschema:"description=Whether divine power has awakened"`
}

// AddItem adds inventory quantity, merging with an existing item by name.
type AddItem struct {
	Name        string  `json:"name" jsonschema:"description=Item name, merge key"`
	Quantity    int     `json:"quantity,omitempty" jsonschema:"description=Quantity added; defaults to 1"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight,omitempty" jsonschema:"description=Per-unit weight"`
}

// RemoveItem removes inventory quantity; the item is dropped at zero.
type RemoveItem struct {
	Name     string `json:"name" jsonschema:"description=Item name, merge key"`
	Quantity int    `json:"quantity,omitempty" jsonschema:"description=Quantity removed; defaults to 1"`
}

// AddNpc upserts a combat-view NPC.
type AddNpc struct {
	Name     string `json:"name"`
	HP       int    `json:"hp,omitempty"`
	MaxHP    int    `json:"maxHp,omitempty"`
	AC       int    `json:"ac,omitempty"`
	Status   string `json:"status,omitempty" jsonschema:"description=Free-form combat status"`
	Attitude string `json:"attitude,omitempty" jsonschema:"description=Disposition toward the party"`
}

// UpdateNpc patches an existing combat-view NPC; only supplied fields change.
type UpdateNpc struct {
	Name     string  `json:"name"`
	HP       *int    `json:"hp,omitempty"`
	MaxHP    *int    `json:"maxHp,omitempty"`
	AC       *int    `json:"ac,omitempty"`
	Status   *string `json:"status,omitempty"`
	Attitude *string `json:"attitude,omitempty"`
}

// RemoveNpc removes a combat-view NPC by name.
type RemoveNpc struct {
	Name string `json:"name"`
}

// UpdateLocation moves the party to a named location.
type UpdateLocation struct {
	Name string `json:"name"`
}

// UpdateTime sets any subset of time fields; omitted fields are untouched.
type UpdateTime struct {
	Time   *string `json:"time,omitempty" jsonschema:"description=Time-of-day descriptor"`
	Date   *string `json:"date,omitempty" jsonschema:"description=In-world date"`
	Season *string `json:"season,omitempty"`
}

// UpdateWeather sets any subset of weather fields; omitted fields are untouched.
type UpdateWeather struct {
	Weather     *string `json:"weather,omitempty"`
	Temperature *string `json:"temperature,omitempty"`
}

// AddQuest adds a quest in active status.
type AddQuest struct {
	ID          string `json:"id,omitempty" jsonschema:"description=Stable quest id; generated when omitted"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateQuest changes quest status or progress, addressed by id or title.
type UpdateQuest struct {
	ID       string  `json:"id,omitempty"`
	Title    string  `json:"title,omitempty"`
	Status   *string `json:"status,omitempty" jsonschema:"description=One of active, completed, failed"`
	Progress *string `json:"progress,omitempty"`
}

// AddEffect adds or replaces a named effect.
type AddEffect struct {
	Name        string `json:"name"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// RemoveEffect removes a named effect.
type RemoveEffect struct {
	Name string `json:"name"`
}

func (UpdateHP) isPayload()        {}
func (TakeDamage) isPayload()      {}
func (Heal) isPayload()            {}
func (UpdateAttribute) isPayload() {}
func (UpdateGold) isPayload()      {}
func (GainXP) isPayload()          {}
func (LevelUp) isPayload()         {}
func (Rest) isPayload()            {}
func (CastSpell) isPayload()       {}
func (UpdateDeity) isPayload()     {}
func (AddItem) isPayload()         {}
func (RemoveItem) isPayload()      {}
func (AddNpc) isPayload()          {}
func (UpdateNpc) isPayload()       {}
func (RemoveNpc) isPayload()       {}
func (UpdateLocation) isPayload()  {}
func (UpdateTime) isPayload()      {}
func (UpdateWeather) isPayload()   {}
func (AddQuest) isPayload()        {}
func (UpdateQuest) isPayload()     {}
func (AddEffect) isPayload()       {}
func (RemoveEffect) isPayload()    {}

// QuestStatuses lists the accepted quest status values.
var QuestStatuses = []string{"active", "completed", "failed"}

func validQuestStatus(status string) bool {
	for _, s := range QuestStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func validAttribute(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, a := range AttributeNames {
		if a == name {
			return true
		}
	}
	return false
}

func (p UpdateHP) validate() error {
	if p.Amount == 0 {
		return ErrAmountRequired
	}
	return nil
}

func (p TakeDamage) validate() error {
	if p.Amount <= 0 {
		return ErrAmountNotPositive
	}
	return nil
}

func (p Heal) validate() error {
	if p.Amount <= 0 {
		return ErrAmountNotPositive
	}
	return nil
}

func (p UpdateAttribute) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !validAttribute(p.Name) {
		return fmt.Errorf("%w: %q (known: %s)", ErrAttributeUnknown, p.Name, strings.Join(AttributeNames, ", "))
	}
	return nil
}

func (p UpdateGold) validate() error {
	if p.Amount == 0 {
		return ErrAmountRequired
	}
	return nil
}

func (p GainXP) validate() error {
	if p.Amount <= 0 {
		return ErrAmountNotPositive
	}
	return nil
}

func (p LevelUp) validate() error {
	if p.Level != nil && *p.Level <= 0 {
		return fmt.Errorf("level must be positive")
	}
	return nil
}

func (p Rest) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "short", "long":
		return nil
	}
	return ErrRestKindInvalid
}

func (p CastSpell) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (p UpdateDeity) validate() error {
	if strings.TrimSpace(p.Name) == "" && p.Rank == nil && p.Awakened == nil {
		return ErrEmptyUpdate
	}
	return nil
}

func (p AddItem) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Quantity < 0 {
		return ErrAmountNotPositive
	}
	return nil
}

func (p RemoveItem) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Quantity < 0 {
		return ErrAmountNotPositive
	}
	return nil
}

func (p AddNpc) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (p UpdateNpc) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.HP == nil && p.MaxHP == nil && p.AC == nil && p.Status == nil && p.Attitude == nil {
		return ErrEmptyUpdate
	}
	return nil
}

func (p RemoveNpc) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (p UpdateLocation) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (p UpdateTime) validate() error {
	if p.Time == nil && p.Date == nil && p.Season == nil {
		return ErrEmptyUpdate
	}
	return nil
}

func (p UpdateWeather) validate() error {
	if p.Weather == nil && p.Temperature == nil {
		return ErrEmptyUpdate
	}
	return nil
}

func (p AddQuest) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func (p UpdateQuest) validate() error {
	if strings.TrimSpace(p.ID) == "" && strings.TrimSpace(p.Title) == "" {
		return ErrQuestRefRequired
	}
	if p.Status == nil && p.Progress == nil {
		return ErrEmptyUpdate
	}
	if p.Status != nil && !validQuestStatus(*p.Status) {
		return fmt.Errorf("%w: got %q", ErrQuestStatusInvalid, *p.Status)
	}
	return nil
}

func (p AddEffect) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (p RemoveEffect) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}
