package heuristic

import (
	"regexp"
	"strings"

	"github.com/larkspur-games/chronicle/internal/command"
)

// Battery priorities. Singleton categories resolve overlaps by this order:
// an earlier category claiming a phrase wins the turn for its field.
const (
	priorityLocation = iota
	priorityTime
	priorityDate
	priorityWeather
	priorityTemperature
	priorityQuest
	prioritySpell
	priorityDeity
)

var locationPattern = regexp.MustCompile(`(?:来到|到达|抵达|进入|走进|踏入|返回|回到)了?[「“]?([^「」“”，。！？；：\s]{2,12})[」”]?`)

type locationMatcher struct{}

func (locationMatcher) Category() Category { return CategoryLocation }
func (locationMatcher) Priority() int      { return priorityLocation }

func (locationMatcher) Match(text string) []command.Command {
	m := locationPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return nil
	}
	return []command.Command{heuristicCommand(command.TypeUpdateLocation, command.UpdateLocation{Name: name})}
}

// Longest alternatives first so 深夜 never matches as 夜.
var timePattern = regexp.MustCompile(`凌晨|黎明|拂晓|破晓|清晨|早晨|早上|上午|正午|中午|午后|下午|黄昏|傍晚|日落|入夜|深夜|午夜|夜晚|夜里`)

type timeMatcher struct{}

func (timeMatcher) Category() Category { return CategoryTime }
func (timeMatcher) Priority() int      { return priorityTime }

func (timeMatcher) Match(text string) []command.Command {
	phrase := timePattern.FindString(text)
	if phrase == "" {
		return nil
	}
	return []command.Command{heuristicCommand(command.TypeUpdateTime, command.UpdateTime{Time: strptr(phrase)})}
}

var datePattern = regexp.MustCompile(`第[0-9一二三四五六七八九十百零两]+天`)

type dateMatcher struct{}

func (dateMatcher) Category() Category { return CategoryDate }
func (dateMatcher) Priority() int      { return priorityDate }

func (dateMatcher) Match(text string) []command.Command {
	phrase := datePattern.FindString(text)
	if phrase == "" {
		return nil
	}
	return []command.Command{heuristicCommand(command.TypeUpdateTime, command.UpdateTime{Date: strptr(phrase)})}
}

// phraseRule maps one narrative cue onto a normalized descriptor. Rules are
// tried in order; the first pattern found anywhere in the text wins.
type phraseRule struct {
	pattern *regexp.Regexp
	value   string
}

var weatherRules = []phraseRule{
	{regexp.MustCompile(`暴风雪`), "暴风雪"},
	{regexp.MustCompile(`下起?了?大雪|大雪纷飞`), "大雪"},
	{regexp.MustCompile(`下起?了?雪|飘起?了?雪|降雪`), "下雪"},
	{regexp.MustCompile(`倾盆大雨|暴雨`), "暴雨"},
	{regexp.MustCompile(`下起?了?大雨`), "大雨"},
	{regexp.MustCompile(`下起?了?小?雨|细雨|降雨`), "下雨"},
	{regexp.MustCompile(`雷雨|雷声|打雷|电闪雷鸣`), "雷雨"},
	{regexp.MustCompile(`浓雾|大雾|起了?雾|雾气弥漫`), "大雾"},
	{regexp.MustCompile(`狂风|暴风|刮起?了?大风`), "大风"},
	{regexp.MustCompile(`乌云密布|阴云|天色阴沉|阴天`), "阴天"},
	{regexp.MustCompile(`万里无云|晴空|阳光明媚|天气晴朗|放晴`), "晴朗"},
}

type weatherMatcher struct{}

func (weatherMatcher) Category() Category { return CategoryWeather }
func (weatherMatcher) Priority() int      { return priorityWeather }

func (weatherMatcher) Match(text string) []command.Command {
	value, ok := firstPhrase(weatherRules, text)
	if !ok {
		return nil
	}
	return []command.Command{heuristicCommand(command.TypeUpdateWeather, command.UpdateWeather{Weather: strptr(value)})}
}

var temperatureRules = []phraseRule{
	{regexp.MustCompile(`酷热|炎热|灼热|热浪`), "炎热"},
	{regexp.MustCompile(`闷热`), "闷热"},
	{regexp.MustCompile(`温暖|和煦`), "温暖"},
	{regexp.MustCompile(`凉爽|微凉`), "凉爽"},
	{regexp.MustCompile(`严寒|酷寒|天寒地冻|冰冷刺骨`), "严寒"},
	{regexp.MustCompile(`寒冷|冰冷|寒意|刺骨`), "寒冷"},
}

type temperatureMatcher struct{}

func (temperatureMatcher) Category() Category { return CategoryTemperature }
func (temperatureMatcher) Priority() int      { return priorityTemperature }

func (temperatureMatcher) Match(text string) []command.Command {
	value, ok := firstPhrase(temperatureRules, text)
	if !ok {
		return nil
	}
	return []command.Command{heuristicCommand(command.TypeUpdateWeather, command.UpdateWeather{Temperature: strptr(value)})}
}

// firstPhrase keeps the rule whose match starts earliest in the text,
// breaking ties by rule order.
func firstPhrase(rules []phraseRule, text string) (string, bool) {
	best := -1
	var value string
	for _, rule := range rules {
		loc := rule.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best = loc[0]
			value = rule.value
		}
	}
	return value, best != -1
}
