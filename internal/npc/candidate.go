package npc

import "strings"

// Dialect identifies which grammar produced a candidate.
type Dialect string

const (
	// DialectStatLine is the AD&D-style stat line: <[名字]：AC 6；MV 12；…>.
	DialectStatLine Dialect = "statline"
	// DialectXML is the attribute form: <npc name="…" ac="6">…</npc>.
	DialectXML Dialect = "xml"
	// DialectPipe is the delimited form: <npc>名字|AC:6|HP:4</npc>.
	DialectPipe Dialect = "pipe"
)

// Stat defaults applied when a dialect omits a field. Values are strings
// because stat blocks carry ranges and dice expressions ("1-1", "1d6").
const (
	DefaultAC    = "10"
	DefaultMV    = "12"
	DefaultHD    = "1"
	DefaultHP    = "4"
	DefaultTHAC0 = "20"
	DefaultAT    = "1"
	DefaultDmg   = "1d6"
	DefaultSZ    = "M"
	DefaultInt   = "8-10"
	DefaultAL    = "N"
	DefaultML    = "10"
	DefaultXP    = "15"
)

// Candidate is the canonical detection output, independent of source dialect.
type Candidate struct {
	Name    string
	Dialect Dialect

	// Stat block. Every field is optional in the source text; Normalize fills
	// documented defaults.
	AC    string
	MV    string
	HD    string
	HP    string
	MaxHP string
	THAC0 string
	AT    string
	Dmg   string
	SZ    string
	Int   string
	AL    string
	ML    string
	XP    string

	// Special ability fields, never defaulted.
	SA string
	SD string
	SW string
	SP string
	MR string

	// Descriptive fields.
	Appearance  string
	Personality string
	Background  string
	Motivation  string
	Equipment   string
	Inventory   string
	Description string

	// Relationship is only set when the source text supplies one explicitly.
	Relationship *int
	Attitude     string
}

// Normalize trims the name and fills stat defaults for absent fields.
func (c Candidate) Normalize() Candidate {
	c.Name = strings.TrimSpace(c.Name)

	fill := func(field *string, fallback string) {
		if strings.TrimSpace(*field) == "" {
			*field = fallback
		}
	}
	fill(&c.AC, DefaultAC)
	fill(&c.MV, DefaultMV)
	fill(&c.HD, DefaultHD)
	fill(&c.HP, DefaultHP)
	fill(&c.MaxHP, c.HP)
	fill(&c.THAC0, DefaultTHAC0)
	fill(&c.AT, DefaultAT)
	fill(&c.Dmg, DefaultDmg)
	fill(&c.SZ, DefaultSZ)
	fill(&c.Int, DefaultInt)
	fill(&c.AL, DefaultAL)
	fill(&c.ML, DefaultML)
	fill(&c.XP, DefaultXP)

	return c
}
