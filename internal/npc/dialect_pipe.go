package npc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pipePattern matches <npc>名字|KEY:value|…</npc>. The name is the first
// segment; everything else is a keyed field.
var pipePattern = regexp.MustCompile(`(?is)<npc>\s*([^<|]+?)\s*((?:\|[^<|]*)*)\s*</npc>`)

// parsePipeTags extracts candidates in the pipe-delimited dialect.
func parsePipeTags(text string) ([]Candidate, []error) {
	var candidates []Candidate
	var errs []error

	for _, match := range pipePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" {
			errs = append(errs, fmt.Errorf("pipe npc tag with empty name: %q", match[0]))
			continue
		}

		candidate := Candidate{Name: name, Dialect: DialectPipe}
		malformed := false
		for _, segment := range strings.Split(match[2], "|") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			key, value, ok := splitPipeField(segment)
			if !ok {
				errs = append(errs, fmt.Errorf("pipe npc tag segment %q has no key", segment))
				continue
			}
			if err := assignPipeField(&candidate, key, value); err != nil {
				errs = append(errs, err)
				malformed = true
				break
			}
		}
		if malformed {
			continue
		}
		candidates = append(candidates, candidate.Normalize())
	}

	return candidates, errs
}

func splitPipeField(segment string) (key, value string, ok bool) {
	idx := strings.IndexAny(segment, ":：")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(segment[:idx])
	value = strings.TrimSpace(strings.TrimLeft(segment[idx:], ":："))
	return key, value, key != ""
}

// assignPipeField normalizes pipe-dialect key aliases onto canonical fields.
func assignPipeField(c *Candidate, key, value string) error {
	if value == "" {
		return nil
	}
	switch strings.ToLower(key) {
	case "appearance", "外貌":
		c.Appearance = value
	case "personality", "性格":
		c.Personality = value
	case "background", "背景":
		c.Background = value
	case "motivation", "动机":
		c.Motivation = value
	case "equipment", "装备":
		c.Equipment = value
	case "inventory", "物品":
		c.Inventory = value
	case "attitude", "态度":
		c.Attitude = value
	case "rel", "relationship", "关系":
		rel, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("pipe npc tag relationship %q is not a number", value)
		}
		c.Relationship = &rel
	default:
		// Stat aliases (#at/at, size/sz, damage/dmg) share the stat-line
		// label mapping.
		assignStatField(c, key, value)
	}
	return nil
}
