package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/message"

	"github.com/larkspur-games/chronicle/internal/command"
	"github.com/larkspur-games/chronicle/internal/i18n"
	"github.com/larkspur-games/chronicle/internal/platform/id"
)

var (
	// ErrUnsupportedCommand indicates a command type with no registered applier.
	ErrUnsupportedCommand = errors.New("unsupported command type")
	// ErrUnknownItem indicates an inventory operation naming an item the
	// character does not carry.
	ErrUnknownItem = errors.New("unknown item")
	// ErrUnknownNpc indicates an operation naming an NPC outside the combat view.
	ErrUnknownNpc = errors.New("unknown npc")
	// ErrUnknownQuest indicates an operation naming a quest outside the log.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrUnknownEffect indicates removal of an effect that is not active.
	ErrUnknownEffect = errors.New("unknown effect")
	// ErrUnknownSpell indicates casting a spell that is not memorized.
	ErrUnknownSpell = errors.New("unknown spell")
)

// Outcome reports one command application. A failed command is a no-op on
// the state; Err carries the reason, including the currently valid entity
// identifiers so a retried prompt can self-correct.
type Outcome struct {
	Command      command.Command
	Notification string
	Err          error
}

// Reducer applies validated commands to a world state and renders one
// user-facing notification per successful apply.
type Reducer struct {
	printer *message.Printer
	now     func() time.Time
	newID   func() (string, error)
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) { r.now = now }
}

// WithIDGenerator overrides quest id generation, for tests.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(r *Reducer) { r.newID = gen }
}

// NewReducer builds a reducer rendering notifications through printer.
func NewReducer(printer *message.Printer, opts ...Option) *Reducer {
	if printer == nil {
		printer = i18n.NewPrinter(i18n.DefaultLanguage)
	}
	r := &Reducer{printer: printer, now: time.Now, newID: id.NewID}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyAll applies commands in order. A failure never blocks later commands.
func (r *Reducer) ApplyAll(ws *WorldState, cmds []command.Command) []Outcome {
	outcomes := make([]Outcome, 0, len(cmds))
	for _, cmd := range cmds {
		notification, err := r.Apply(ws, cmd)
		outcomes = append(outcomes, Outcome{Command: cmd, Notification: notification, Err: err})
	}
	return outcomes
}

// Apply mutates ws per one command. On error the state is unchanged.
func (r *Reducer) Apply(ws *WorldState, cmd command.Command) (string, error) {
	apply, ok := appliers[cmd.Type]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}
	notification, err := apply(r, ws, cmd.Payload)
	if err != nil {
		return "", err
	}
	ws.Meta.LastUpdated = r.now().UTC()
	ws.Meta.Version = Version
	return notification, nil
}

type applyFunc func(*Reducer, *WorldState, command.Payload) (string, error)

var appliers = map[command.Type]applyFunc{
	command.TypeUpdateHP:        applyUpdateHP,
	command.TypeTakeDamage:      applyTakeDamage,
	command.TypeHeal:            applyHeal,
	command.TypeUpdateAttribute: applyUpdateAttribute,
	command.TypeUpdateGold:      applyUpdateGold,
	command.TypeGainXP:          applyGainXP,
	command.TypeLevelUp:         applyLevelUp,
	command.TypeRest:            applyRest,
	command.TypeCastSpell:       applyCastSpell,
	command.TypeUpdateDeity:     applyUpdateDeity,
	command.TypeAddItem:         applyAddItem,
	command.TypeRemoveItem:      applyRemoveItem,
	command.TypeAddNpc:          applyAddNpc,
	command.TypeUpdateNpc:       applyUpdateNpc,
	command.TypeRemoveNpc:       applyRemoveNpc,
	command.TypeUpdateLocation:  applyUpdateLocation,
	command.TypeUpdateTime:      applyUpdateTime,
	command.TypeUpdateWeather:   applyUpdateWeather,
	command.TypeAddQuest:        applyAddQuest,
	command.TypeUpdateQuest:     applyUpdateQuest,
	command.TypeAddEffect:       applyAddEffect,
	command.TypeRemoveEffect:    applyRemoveEffect,
}

func clampHP(current, max int) int {
	if current < 0 {
		return 0
	}
	if current > max {
		return max
	}
	return current
}

func applyUpdateHP(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateHP)
	hp := &ws.Character.HP
	hp.Current = clampHP(hp.Current+p.Amount, hp.Max)
	return r.printer.Sprintf(i18n.KeyHPChanged, p.Amount, hp.Current, hp.Max), nil
}

func applyTakeDamage(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.TakeDamage)
	hp := &ws.Character.HP
	hp.Current = clampHP(hp.Current-p.Amount, hp.Max)
	return r.printer.Sprintf(i18n.KeyDamageTaken, p.Amount, hp.Current, hp.Max), nil
}

func applyHeal(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.Heal)
	hp := &ws.Character.HP
	hp.Current = clampHP(hp.Current+p.Amount, hp.Max)
	return r.printer.Sprintf(i18n.KeyHealed, p.Amount, hp.Current, hp.Max), nil
}

func applyUpdateAttribute(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateAttribute)
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if ws.Character.Attributes == nil {
		ws.Character.Attributes = make(map[string]int, len(command.AttributeNames))
	}
	ws.Character.Attributes[name] = p.Value
	return r.printer.Sprintf(i18n.KeyAttributeSet, name, p.Value), nil
}

func applyUpdateGold(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateGold)
	ws.Character.Gold += p.Amount
	if p.Amount >= 0 {
		return r.printer.Sprintf(i18n.KeyGoldGained, p.Amount, ws.Character.Gold), nil
	}
	return r.printer.Sprintf(i18n.KeyGoldSpent, -p.Amount, ws.Character.Gold), nil
}

func applyGainXP(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.GainXP)
	ws.Character.XP += p.Amount
	return r.printer.Sprintf(i18n.KeyXPGained, p.Amount, ws.Character.XP), nil
}

func applyLevelUp(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.LevelUp)
	if p.Level != nil {
		ws.Character.Level = *p.Level
	} else {
		ws.Character.Level++
	}
	return r.printer.Sprintf(i18n.KeyLevelUp, ws.Character.Level), nil
}

func applyRest(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.Rest)
	now := r.now().UTC()
	if strings.EqualFold(strings.TrimSpace(p.Kind), "long") {
		ws.Character.HP.Current = ws.Character.HP.Max
		ws.Rest.LastLong = now
		return r.printer.Sprintf(i18n.KeyRestLong, ws.Character.HP.Current, ws.Character.HP.Max), nil
	}
	ws.Rest.LastShort = now
	return r.printer.Sprintf(i18n.KeyRestShort), nil
}

func applyCastSpell(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.CastSpell)
	name := strings.TrimSpace(p.Name)
	for i := range ws.Spells {
		if ws.Spells[i].Name == name {
			ws.Spells = append(ws.Spells[:i], ws.Spells[i+1:]...)
			return r.printer.Sprintf(i18n.KeySpellCast, name), nil
		}
	}
	return "", knownErr(ErrUnknownSpell, name, ws.SpellNames())
}

func applyUpdateDeity(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateDeity)
	deity := &ws.Character.Deity
	if name := strings.TrimSpace(p.Name); name != "" {
		deity.Name = name
	}
	if p.Rank != nil {
		deity.Rank = strings.TrimSpace(*p.Rank)
	}
	if p.Awakened != nil {
		deity.Awakened = *p.Awakened
	}
	descriptor := deity.Rank
	if descriptor == "" {
		descriptor = deity.Name
	}
	if descriptor == "" && deity.Awakened {
		descriptor = r.printer.Sprintf(i18n.KeyDeityAwakened)
	}
	return r.printer.Sprintf(i18n.KeyDeityUpdated, descriptor), nil
}

func applyAddItem(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.AddItem)
	quantity := p.Quantity
	if quantity == 0 {
		quantity = 1
	}
	name := strings.TrimSpace(p.Name)
	if item := ws.findItem(name); item != nil {
		item.Quantity += quantity
		if item.Description == "" {
			item.Description = p.Description
		}
		if item.Weight == 0 {
			item.Weight = p.Weight
		}
	} else {
		ws.Inventory = append(ws.Inventory, Item{
			Name:        name,
			Quantity:    quantity,
			Description: p.Description,
			Weight:      p.Weight,
		})
	}
	return r.printer.Sprintf(i18n.KeyItemAdded, name, quantity), nil
}

func applyRemoveItem(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.RemoveItem)
	name := strings.TrimSpace(p.Name)
	item := ws.findItem(name)
	if item == nil {
		return "", knownErr(ErrUnknownItem, name, ws.ItemNames())
	}
	quantity := p.Quantity
	if quantity == 0 {
		quantity = 1
	}
	item.Quantity -= quantity
	if item.Quantity <= 0 {
		for i := range ws.Inventory {
			if ws.Inventory[i].Name == name {
				ws.Inventory = append(ws.Inventory[:i], ws.Inventory[i+1:]...)
				break
			}
		}
		return r.printer.Sprintf(i18n.KeyItemDropped, name), nil
	}
	return r.printer.Sprintf(i18n.KeyItemRemoved, name, quantity), nil
}

func applyAddNpc(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.AddNpc)
	name := strings.TrimSpace(p.Name)
	maxHP := p.MaxHP
	if maxHP == 0 {
		maxHP = p.HP
	}
	if npc := ws.findNPC(name); npc != nil {
		npc.HP = p.HP
		npc.MaxHP = maxHP
		npc.AC = p.AC
		npc.Status = p.Status
		npc.Attitude = p.Attitude
		return r.printer.Sprintf(i18n.KeyNpcUpdated, name), nil
	}
	ws.NPCs = append(ws.NPCs, CombatNPC{
		Name:     name,
		HP:       p.HP,
		MaxHP:    maxHP,
		AC:       p.AC,
		Status:   p.Status,
		Attitude: p.Attitude,
	})
	return r.printer.Sprintf(i18n.KeyNpcAppeared, name), nil
}

func applyUpdateNpc(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateNpc)
	name := strings.TrimSpace(p.Name)
	npc := ws.findNPC(name)
	if npc == nil {
		return "", knownErr(ErrUnknownNpc, name, ws.NPCNames())
	}
	if p.MaxHP != nil {
		npc.MaxHP = *p.MaxHP
	}
	if p.HP != nil {
		hp := *p.HP
		if hp < 0 {
			hp = 0
		}
		if npc.MaxHP > 0 && hp > npc.MaxHP {
			hp = npc.MaxHP
		}
		npc.HP = hp
	}
	if p.AC != nil {
		npc.AC = *p.AC
	}
	if p.Status != nil {
		npc.Status = *p.Status
	}
	if p.Attitude != nil {
		npc.Attitude = *p.Attitude
	}
	return r.printer.Sprintf(i18n.KeyNpcUpdated, name), nil
}

func applyRemoveNpc(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.RemoveNpc)
	name := strings.TrimSpace(p.Name)
	for i := range ws.NPCs {
		if ws.NPCs[i].Name == name {
			ws.NPCs = append(ws.NPCs[:i], ws.NPCs[i+1:]...)
			return r.printer.Sprintf(i18n.KeyNpcRemoved, name), nil
		}
	}
	return "", knownErr(ErrUnknownNpc, name, ws.NPCNames())
}

func applyUpdateLocation(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateLocation)
	name := strings.TrimSpace(p.Name)
	if ws.Location.Current != "" && ws.Location.Current != name {
		ws.Location.History = append(ws.Location.History, ws.Location.Current)
	}
	ws.Location.Current = name
	return r.printer.Sprintf(i18n.KeyLocationChanged, name), nil
}

func applyUpdateTime(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateTime)
	var parts []string
	if p.Date != nil {
		ws.Time.Date = *p.Date
		parts = append(parts, *p.Date)
	}
	if p.Season != nil {
		ws.Time.Season = *p.Season
		parts = append(parts, *p.Season)
	}
	if p.Time != nil {
		ws.Time.Time = *p.Time
		parts = append(parts, *p.Time)
	}
	return r.printer.Sprintf(i18n.KeyTimeChanged, strings.Join(parts, " ")), nil
}

func applyUpdateWeather(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateWeather)
	var parts []string
	if p.Weather != nil {
		ws.Weather.Current = *p.Weather
		parts = append(parts, *p.Weather)
	}
	if p.Temperature != nil {
		ws.Weather.Temperature = *p.Temperature
		parts = append(parts, *p.Temperature)
	}
	return r.printer.Sprintf(i18n.KeyWeatherChanged, strings.Join(parts, " ")), nil
}

func applyAddQuest(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.AddQuest)
	title := strings.TrimSpace(p.Title)
	if quest := ws.findQuest(p.ID, title); quest != nil {
		if p.Description != "" {
			quest.Description = p.Description
		}
		return r.printer.Sprintf(i18n.KeyQuestAdded, quest.Title), nil
	}
	questID := strings.TrimSpace(p.ID)
	if questID == "" {
		generated, err := r.newID()
		if err != nil {
			return "", fmt.Errorf("generate quest id: %w", err)
		}
		questID = generated
	}
	ws.Quests = append(ws.Quests, Quest{
		ID:          questID,
		Title:       title,
		Description: p.Description,
		Status:      "active",
	})
	return r.printer.Sprintf(i18n.KeyQuestAdded, title), nil
}

func applyUpdateQuest(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.UpdateQuest)
	quest := ws.findQuest(strings.TrimSpace(p.ID), strings.TrimSpace(p.Title))
	if quest == nil {
		ref := strings.TrimSpace(p.ID)
		if ref == "" {
			ref = strings.TrimSpace(p.Title)
		}
		return "", knownErr(ErrUnknownQuest, ref, ws.QuestRefs())
	}
	if p.Progress != nil {
		quest.Progress = *p.Progress
	}
	if p.Status != nil {
		quest.Status = *p.Status
		switch *p.Status {
		case "completed":
			return r.printer.Sprintf(i18n.KeyQuestCompleted, quest.Title), nil
		case "failed":
			return r.printer.Sprintf(i18n.KeyQuestFailed, quest.Title), nil
		}
	}
	return r.printer.Sprintf(i18n.KeyQuestProgress, quest.Title, quest.Progress), nil
}

func applyAddEffect(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.AddEffect)
	name := strings.TrimSpace(p.Name)
	if effect := ws.findEffect(name); effect != nil {
		effect.Duration = p.Duration
		if p.Description != "" {
			effect.Description = p.Description
		}
	} else {
		ws.Effects = append(ws.Effects, Effect{Name: name, Duration: p.Duration, Description: p.Description})
	}
	return r.printer.Sprintf(i18n.KeyEffectAdded, name, p.Duration), nil
}

func applyRemoveEffect(r *Reducer, ws *WorldState, payload command.Payload) (string, error) {
	p := payload.(command.RemoveEffect)
	name := strings.TrimSpace(p.Name)
	for i := range ws.Effects {
		if ws.Effects[i].Name == name {
			ws.Effects = append(ws.Effects[:i], ws.Effects[i+1:]...)
			return r.printer.Sprintf(i18n.KeyEffectRemoved, name), nil
		}
	}
	return "", knownErr(ErrUnknownEffect, name, ws.EffectNames())
}

// knownErr wraps a lookup miss with the identifiers that would have been
// accepted, so the caller can surface them for self-correction.
func knownErr(sentinel error, ref string, known []string) error {
	if len(known) == 0 {
		return fmt.Errorf("%w: %q (none known)", sentinel, ref)
	}
	return fmt.Errorf("%w: %q (known: %s)", sentinel, ref, strings.Join(known, ", "))
}
