package heuristic

import (
	"regexp"
	"strings"

	"github.com/larkspur-games/chronicle/internal/command"
)

var spellPatterns = []*regexp.Regexp{
	// Quoted name: 施放了「魔法飞弹」
	regexp.MustCompile(`(?:施放|施展|吟唱|念诵|释放)了?[「“]([^」”]{1,16})[」”]`),
	// Bare name ending in a spell suffix: 施展了火球术
	regexp.MustCompile(`(?:施放|施展|吟唱|念诵|释放)了?([^「」“”，。！？\s]{1,10}[术咒])`),
}

type spellMatcher struct{}

func (spellMatcher) Category() Category { return CategorySpell }
func (spellMatcher) Priority() int      { return prioritySpell }

// Match emits one cast_spell per distinct spell name mentioned in the turn.
func (spellMatcher) Match(text string) []command.Command {
	seen := make(map[string]bool)
	var out []command.Command
	for _, pattern := range spellPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, heuristicCommand(command.TypeCastSpell, command.CastSpell{Name: name}))
		}
	}
	return out
}

var (
	deityAwakenPattern = regexp.MustCompile(`神力(?:已经?)?觉醒|觉醒了?神力|神性(?:已经?)?觉醒`)
	deityRankPattern   = regexp.MustCompile(`(?:晋升|成)为了?([^「」“”，。！？\s]{0,8}(?:半神|神祇|之神))`)
)

type deityMatcher struct{}

func (deityMatcher) Category() Category { return CategoryDeity }
func (deityMatcher) Priority() int      { return priorityDeity }

// Match reports divine progression: rank promotion takes precedence over a
// bare awakening phrase, and only the first cue per turn is kept.
func (deityMatcher) Match(text string) []command.Command {
	if m := deityRankPattern.FindStringSubmatch(text); m != nil {
		rank := strings.TrimSpace(m[1])
		if rank != "" {
			awakened := true
			return []command.Command{heuristicCommand(command.TypeUpdateDeity, command.UpdateDeity{
				Rank:     strptr(rank),
				Awakened: &awakened,
			})}
		}
	}
	if deityAwakenPattern.MatchString(text) {
		awakened := true
		return []command.Command{heuristicCommand(command.TypeUpdateDeity, command.UpdateDeity{Awakened: &awakened})}
	}
	return nil
}
