package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrTypeRequired indicates a command document without a type.
	ErrTypeRequired = errors.New("command type is required")
	// ErrTypeUnknown indicates an unregistered command type.
	ErrTypeUnknown = errors.New("command type is not registered")
	// ErrPayloadInvalid indicates payload data that failed validation.
	ErrPayloadInvalid = errors.New("command payload is invalid")
)

type validator interface {
	validate() error
}

// Definition binds a command type to its payload decoder.
type Definition struct {
	Type   Type
	Decode func(json.RawMessage) (Payload, error)
}

// Registry maps command types to payload definitions.
type Registry struct {
	definitions map[Type]Definition
}

func decoder[P Payload]() func(json.RawMessage) (Payload, error) {
	return func(raw json.RawMessage) (Payload, error) {
		var payload P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
			}
		}
		if v, ok := any(payload).(validator); ok {
			if err := v.validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
			}
		}
		return payload, nil
	}
}

// NewRegistry creates a registry with every supported command type registered.
func NewRegistry() *Registry {
	r := &Registry{definitions: make(map[Type]Definition)}
	register := func(t Type, decode func(json.RawMessage) (Payload, error)) {
		r.definitions[t] = Definition{Type: t, Decode: decode}
	}

	register(TypeUpdateHP, decoder[UpdateHP]())
	register(TypeTakeDamage, decoder[TakeDamage]())
	register(TypeHeal, decoder[Heal]())
	register(TypeUpdateAttribute, decoder[UpdateAttribute]())
	register(TypeUpdateGold, decoder[UpdateGold]())
	register(TypeGainXP, decoder[GainXP]())
	register(TypeLevelUp, decoder[LevelUp]())
	register(TypeRest, decoder[Rest]())
	register(TypeCastSpell, decoder[CastSpell]())
	register(TypeUpdateDeity, decoder[UpdateDeity]())
	register(TypeAddItem, decoder[AddItem]())
	register(TypeRemoveItem, decoder[RemoveItem]())
	register(TypeAddNpc, decoder[AddNpc]())
	register(TypeUpdateNpc, decoder[UpdateNpc]())
	register(TypeRemoveNpc, decoder[RemoveNpc]())
	register(TypeUpdateLocation, decoder[UpdateLocation]())
	register(TypeUpdateTime, decoder[UpdateTime]())
	register(TypeUpdateWeather, decoder[UpdateWeather]())
	register(TypeAddQuest, decoder[AddQuest]())
	register(TypeUpdateQuest, decoder[UpdateQuest]())
	register(TypeAddEffect, decoder[AddEffect]())
	register(TypeRemoveEffect, decoder[RemoveEffect]())

	return r
}

// Types returns all registered command types in sorted order.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.definitions))
	for t := range r.definitions {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Decode validates a raw {type, data} document and returns the typed command.
func (r *Registry) Decode(rawType string, data json.RawMessage, source Source) (Command, error) {
	t := Type(strings.TrimSpace(rawType))
	if t == "" {
		return Command{}, ErrTypeRequired
	}
	def, ok := r.definitions[t]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrTypeUnknown, rawType)
	}
	payload, err := def.Decode(data)
	if err != nil {
		return Command{}, fmt.Errorf("decode %s: %w", t, err)
	}
	return Command{Type: t, Source: source, Payload: payload}, nil
}
