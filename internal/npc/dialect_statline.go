package npc

import (
	"fmt"
	"regexp"
	"strings"
)

// statLinePattern matches <[名字]：…> and <名字：…> stat lines. The bare-name
// form excludes quote, equals, and pipe characters so XML and pipe tags never
// match here.
var statLinePattern = regexp.MustCompile(`<(?:\[([^\[\]<>]+)\]|([^\[\]<>：:；;"=|]+))[：:]([^<>]*)>`)

// statSegmentPattern splits one "Label value" run inside a stat line.
var statSegmentPattern = regexp.MustCompile(`^\s*(#?[A-Za-z][A-Za-z0-9]*)[\s：:]+(.+)$`)

// parseStatLines extracts candidates in the stat-line dialect. A malformed
// match contributes an error but never blocks later matches.
func parseStatLines(text string) ([]Candidate, []error) {
	var candidates []Candidate
	var errs []error

	for _, match := range statLinePattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if name == "" {
			name = match[2]
		}
		name = strings.TrimSpace(name)
		if name == "" {
			errs = append(errs, fmt.Errorf("stat line with empty name: %q", match[0]))
			continue
		}

		candidate := Candidate{Name: name, Dialect: DialectStatLine}
		body := strings.ReplaceAll(match[3], "；", ";")
		for _, part := range strings.Split(body, ";") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			seg := statSegmentPattern.FindStringSubmatch(part)
			if seg == nil {
				continue
			}
			assignStatField(&candidate, seg[1], strings.TrimSpace(seg[2]))
		}
		candidates = append(candidates, candidate.Normalize())
	}

	return candidates, errs
}

// assignStatField maps one label onto the canonical candidate field. Labels
// are matched case-insensitively; unknown labels are ignored so spontaneous
// model additions do not poison the rest of the line.
func assignStatField(c *Candidate, label, value string) {
	if value == "" {
		return
	}
	switch strings.ToUpper(strings.TrimPrefix(label, "#")) {
	case "AC":
		c.AC = value
	case "MV":
		c.MV = value
	case "HD":
		c.HD = value
	case "HP":
		c.HP = value
	case "MAXHP":
		c.MaxHP = value
	case "THAC0":
		c.THAC0 = value
	case "AT":
		c.AT = value
	case "DMG", "DAMAGE":
		c.Dmg = value
	case "SZ", "SIZE":
		c.SZ = value
	case "INT":
		c.Int = value
	case "AL":
		c.AL = value
	case "ML":
		c.ML = value
	case "XP":
		c.XP = value
	case "SA":
		c.SA = value
	case "SD":
		c.SD = value
	case "SW":
		c.SW = value
	case "SP":
		c.SP = value
	case "MR":
		c.MR = value
	}
}
