package npc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// xmlPairPattern matches <npc attr="v" …>inner</npc>. The open tag must
	// not end with "/" so self-closing tags never swallow a later closer.
	xmlPairPattern = regexp.MustCompile(`(?is)<npc\s+([^>]*[^/>])>(.*?)</npc>`)
	// xmlSelfClosePattern matches <npc attr="v" … />.
	xmlSelfClosePattern = regexp.MustCompile(`(?is)<npc\s+([^>]*?)/\s*>`)
	// xmlAttrPattern matches one attr="value" pair.
	xmlAttrPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*"([^"]*)"`)
)

// parseXMLTags extracts candidates in the XML-attribute dialect. Attribute
// names are matched case-insensitively onto the canonical field set; tag
// inner text becomes the description.
func parseXMLTags(text string) ([]Candidate, []error) {
	var candidates []Candidate
	var errs []error

	seen := make(map[int]bool)
	for _, match := range xmlPairPattern.FindAllStringSubmatchIndex(text, -1) {
		seen[match[0]] = true
		attrs := text[match[2]:match[3]]
		inner := strings.TrimSpace(text[match[4]:match[5]])
		candidate, err := candidateFromAttrs(attrs, inner)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		candidates = append(candidates, candidate)
	}

	for _, match := range xmlSelfClosePattern.FindAllStringSubmatchIndex(text, -1) {
		if seen[match[0]] {
			continue
		}
		attrs := text[match[2]:match[3]]
		candidate, err := candidateFromAttrs(attrs, "")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, errs
}

func candidateFromAttrs(attrs, inner string) (Candidate, error) {
	candidate := Candidate{Dialect: DialectXML, Description: inner}

	for _, attr := range xmlAttrPattern.FindAllStringSubmatch(attrs, -1) {
		key := strings.ToLower(attr[1])
		value := strings.TrimSpace(attr[2])
		if value == "" {
			continue
		}
		switch key {
		case "name":
			candidate.Name = value
		case "appearance":
			candidate.Appearance = value
		case "personality":
			candidate.Personality = value
		case "background":
			candidate.Background = value
		case "motivation":
			candidate.Motivation = value
		case "equipment":
			candidate.Equipment = value
		case "inventory":
			candidate.Inventory = value
		case "attitude":
			candidate.Attitude = value
		case "relationship":
			rel, err := strconv.Atoi(value)
			if err != nil {
				return Candidate{}, fmt.Errorf("npc tag relationship %q is not a number", value)
			}
			candidate.Relationship = &rel
		default:
			assignStatField(&candidate, key, value)
		}
	}

	if candidate.Name == "" {
		return Candidate{}, fmt.Errorf("npc tag without name attribute: %q", strings.TrimSpace(attrs))
	}
	return candidate.Normalize(), nil
}
