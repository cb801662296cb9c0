package heuristic

import (
	"regexp"
	"strings"

	"github.com/larkspur-games/chronicle/internal/command"
)

// questRule pairs a detection pattern with the lifecycle event it implies.
// The capture group is the quest title. Completion and failure patterns run
// before acceptance so a turn that both grants and resolves the same quest
// reports the resolution.
type questRule struct {
	pattern *regexp.Regexp
	build   func(title string) command.Command
}

var questRules = []questRule{
	{
		pattern: regexp.MustCompile(`(?:完成|达成)了?任务[「“:：]([^」”，。！？\n]{1,24})`),
		build:   questStatus("completed"),
	},
	{
		pattern: regexp.MustCompile(`任务[「“]([^」”]{1,24})[」”](?:已经?)?(?:完成|达成)`),
		build:   questStatus("completed"),
	},
	{
		pattern: regexp.MustCompile(`任务[「“]([^」”]{1,24})[」”](?:已经?)?(?:失败|宣告失败)`),
		build:   questStatus("failed"),
	},
	{
		pattern: regexp.MustCompile(`(?:未能完成|没能完成|搞砸了)任务[「“:：]([^」”，。！？\n]{1,24})`),
		build:   questStatus("failed"),
	},
	{
		pattern: regexp.MustCompile(`(?:接受|接下|领取|获得)了?(?:一项|一个|新的)?任务[「“:：]([^」”，。！？\n]{1,24})`),
		build:   questNew,
	},
	{
		pattern: regexp.MustCompile(`新任务[「“:：]([^」”，。！？\n]{1,24})`),
		build:   questNew,
	},
	{
		pattern: regexp.MustCompile(`任务[「“]([^」”]{1,24})[」”][^。！？\n]*(?:进展|推进|更进一步)`),
		build: func(title string) command.Command {
			return heuristicCommand(command.TypeUpdateQuest, command.UpdateQuest{
				Title:    title,
				Progress: strptr("有了新的进展"),
			})
		},
	},
}

func questStatus(status string) func(string) command.Command {
	return func(title string) command.Command {
		return heuristicCommand(command.TypeUpdateQuest, command.UpdateQuest{
			Title:  title,
			Status: strptr(status),
		})
	}
}

func questNew(title string) command.Command {
	return heuristicCommand(command.TypeAddQuest, command.AddQuest{Title: title})
}

type questMatcher struct{}

func (questMatcher) Category() Category { return CategoryQuest }
func (questMatcher) Priority() int      { return priorityQuest }

// Match emits at most one command per quest title; the first rule to claim
// a title within the turn wins.
func (questMatcher) Match(text string) []command.Command {
	seen := make(map[string]bool)
	var out []command.Command
	for _, rule := range questRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(text, -1) {
			title := strings.Trim(strings.TrimSpace(m[1]), "「」“”")
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			out = append(out, rule.build(title))
		}
	}
	return out
}
