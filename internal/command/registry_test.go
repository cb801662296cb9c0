package command

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeUnknownTypeRejected(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Decode("summon_dragon", json.RawMessage(`{}`), SourceBlock)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrTypeUnknown) {
		t.Fatalf("expected ErrTypeUnknown, got %v", err)
	}
}

func TestDecodeMissingTypeRejected(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Decode("  ", json.RawMessage(`{}`), SourceBlock)
	if !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("expected ErrTypeRequired, got %v", err)
	}
}

func TestDecodeUpdateGold(t *testing.T) {
	registry := NewRegistry()

	cmd, err := registry.Decode("update_gold", json.RawMessage(`{"amount":-50}`), SourceBlock)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	payload, ok := cmd.Payload.(UpdateGold)
	if !ok {
		t.Fatalf("expected UpdateGold payload, got %T", cmd.Payload)
	}
	if payload.Amount != -50 {
		t.Fatalf("expected amount -50, got %d", payload.Amount)
	}
}

func TestDecodeValidationFailures(t *testing.T) {
	registry := NewRegistry()

	cases := []struct {
		name    string
		rawType string
		data    string
	}{
		{name: "add_item without name", rawType: "add_item", data: `{"quantity":2}`},
		{name: "take_damage zero amount", rawType: "take_damage", data: `{"amount":0}`},
		{name: "update_attribute unknown score", rawType: "update_attribute", data: `{"name":"luck","value":18}`},
		{name: "rest invalid kind", rawType: "rest", data: `{"kind":"nap"}`},
		{name: "update_quest without reference", rawType: "update_quest", data: `{"status":"completed"}`},
		{name: "update_quest invalid status", rawType: "update_quest", data: `{"title":"寻找圣剑","status":"paused"}`},
		{name: "update_time empty patch", rawType: "update_time", data: `{}`},
		{name: "update_npc empty patch", rawType: "update_npc", data: `{"name":"地精"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := registry.Decode(tc.rawType, json.RawMessage(tc.data), SourceBlock)
			if !errors.Is(err, ErrPayloadInvalid) {
				t.Fatalf("expected ErrPayloadInvalid, got %v", err)
			}
		})
	}
}

func TestDecodePartialTimePatch(t *testing.T) {
	registry := NewRegistry()

	cmd, err := registry.Decode("update_time", json.RawMessage(`{"date":"第3天"}`), SourceHeuristic)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	payload := cmd.Payload.(UpdateTime)
	if payload.Date == nil || *payload.Date != "第3天" {
		t.Fatalf("expected date 第3天, got %+v", payload)
	}
	if payload.Time != nil || payload.Season != nil {
		t.Fatal("expected untouched fields to stay nil")
	}
	if cmd.Source != SourceHeuristic {
		t.Fatalf("expected heuristic source, got %q", cmd.Source)
	}
}

func TestTypesCoverRegisteredSet(t *testing.T) {
	registry := NewRegistry()

	types := registry.Types()
	if len(types) != 22 {
		t.Fatalf("expected 22 registered types, got %d", len(types))
	}
	seen := make(map[Type]bool, len(types))
	for _, typ := range types {
		if seen[typ] {
			t.Fatalf("duplicate type %q", typ)
		}
		seen[typ] = true
	}
	for _, required := range []Type{TypeUpdateHP, TypeAddItem, TypeUpdateGold, TypeRest, TypeCastSpell, TypeUpdateDeity} {
		if !seen[required] {
			t.Fatalf("missing required type %q", required)
		}
	}
}
