// Package heuristic infers state commands from plain narrative text when a
// turn carries no explicit command blocks. A fixed battery of matchers runs
// in priority order; each matcher owns one semantic category and is
// independently testable.
package heuristic

import (
	"sort"

	"github.com/larkspur-games/chronicle/internal/command"
)

// Category names one semantic family of narrative cues.
type Category string

const (
	CategoryLocation    Category = "location"
	CategoryTime        Category = "time"
	CategoryDate        Category = "date"
	CategoryWeather     Category = "weather"
	CategoryTemperature Category = "temperature"
	CategoryQuest       Category = "quest"
	CategorySpell       Category = "spell"
	CategoryDeity       Category = "deity"
)

// Matcher extracts commands for a single category. Singleton categories
// (location, time, date, weather, temperature, deity) return at most one
// command, keeping only the earliest match in the text. Multi-emit
// categories (quest, spell) may return several, deduplicated by the matched
// title or name.
type Matcher interface {
	Category() Category
	// Priority orders the battery; lower runs first. The order is part of
	// the contract, not an accident of registration.
	Priority() int
	Match(text string) []command.Command
}

// Analyzer runs the full matcher battery over one turn of clean narrative.
type Analyzer struct {
	matchers []Matcher
}

// NewAnalyzer builds the default battery.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{matchers: []Matcher{
		locationMatcher{},
		timeMatcher{},
		dateMatcher{},
		weatherMatcher{},
		temperatureMatcher{},
		questMatcher{},
		spellMatcher{},
		deityMatcher{},
	}}
	sort.SliceStable(a.matchers, func(i, j int) bool {
		return a.matchers[i].Priority() < a.matchers[j].Priority()
	})
	return a
}

// Analyze returns inferred commands in battery order. Matchers never fail;
// a category that finds nothing simply contributes nothing.
func (a *Analyzer) Analyze(text string) []command.Command {
	if text == "" {
		return nil
	}
	var out []command.Command
	for _, m := range a.matchers {
		out = append(out, m.Match(text)...)
	}
	return out
}

func strptr(s string) *string { return &s }

func heuristicCommand(t command.Type, payload command.Payload) command.Command {
	return command.Command{Type: t, Source: command.SourceHeuristic, Payload: payload}
}
