package command

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractSingleBlock(t *testing.T) {
	extractor := NewExtractor(NewRegistry())

	text := "你推开了酒馆的门。\n\n<!-- <gamestate>[{\"type\":\"update_gold\",\"data\":{\"amount\":-5}},{\"type\":\"add_item\",\"data\":{\"name\":\"麦酒\",\"quantity\":1}}]</gamestate> -->\n\n酒保向你点头致意。"

	result := extractor.Extract(text)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(result.Commands))
	}
	if result.Commands[0].Type != TypeUpdateGold {
		t.Fatalf("expected update_gold first, got %q", result.Commands[0].Type)
	}
	if result.Commands[1].Type != TypeAddItem {
		t.Fatalf("expected add_item second, got %q", result.Commands[1].Type)
	}
	if strings.Contains(result.CleanContent, "gamestate") {
		t.Fatalf("expected block stripped, got %q", result.CleanContent)
	}
	if !strings.Contains(result.CleanContent, "酒保向你点头致意") {
		t.Fatalf("expected narrative preserved, got %q", result.CleanContent)
	}
}

// Plain narrative with no blocks passes through unchanged.
func TestExtractNoBlocks(t *testing.T) {
	extractor := NewExtractor(NewRegistry())

	text := "旅店老板微笑着说：欢迎光临"
	result := extractor.Extract(text)

	if len(result.Commands) != 0 {
		t.Fatalf("expected no commands, got %d", len(result.Commands))
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if result.CleanContent != text {
		t.Fatalf("expected narrative unchanged, got %q", result.CleanContent)
	}
}

// A block with trailing-comma JSON yields zero commands, one error, and the
// block is still stripped from the narrative.
func TestExtractMalformedBlockIsolated(t *testing.T) {
	extractor := NewExtractor(NewRegistry())

	text := "铁匠收下了金币。<!-- <gamestate>[{\"type\":\"update_gold\",\"data\":{\"amount\":-10},}]</gamestate> -->他转身继续打铁。"

	result := extractor.Extract(text)
	if len(result.Commands) != 0 {
		t.Fatalf("expected zero commands from malformed block, got %d", len(result.Commands))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one extraction error, got %d", len(result.Errors))
	}
	var extractionErr *ExtractionError
	if !errors.As(result.Errors[0], &extractionErr) {
		t.Fatalf("expected ExtractionError, got %T", result.Errors[0])
	}
	if strings.Contains(result.CleanContent, "gamestate") {
		t.Fatalf("expected malformed block stripped, got %q", result.CleanContent)
	}
	if !strings.Contains(result.CleanContent, "铁匠收下了金币") || !strings.Contains(result.CleanContent, "他转身继续打铁") {
		t.Fatalf("expected surrounding narrative kept, got %q", result.CleanContent)
	}
}

// One malformed block does not stop processing of later blocks.
func TestExtractMalformedBlockDoesNotBlockLaterBlocks(t *testing.T) {
	extractor := NewExtractor(NewRegistry())

	text := "<!-- <gamestate>not json</gamestate> -->\n中场休息。\n<!-- <gamestate>[{\"type\":\"heal\",\"data\":{\"amount\":4}}]</gamestate> -->"

	result := extractor.Extract(text)
	if len(result.Commands) != 1 {
		t.Fatalf("expected 1 command from second block, got %d", len(result.Commands))
	}
	if result.Commands[0].Type != TypeHeal {
		t.Fatalf("expected heal, got %q", result.Commands[0].Type)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
}

// A rejected element inside a valid array does not discard its siblings.
func TestExtractRejectedElementKeepsSiblings(t *testing.T) {
	extractor := NewExtractor(NewRegistry())

	text := "<!-- <gamestate>[{\"type\":\"summon_dragon\",\"data\":{}},{\"type\":\"gain_xp\",\"data\":{\"amount\":100}}]</gamestate> -->"

	result := extractor.Extract(text)
	if len(result.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(result.Commands))
	}
	if result.Commands[0].Type != TypeGainXP {
		t.Fatalf("expected gain_xp, got %q", result.Commands[0].Type)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error for unknown type, got %d", len(result.Errors))
	}
	if !errors.Is(result.Errors[0], ErrTypeUnknown) {
		t.Fatalf("expected ErrTypeUnknown, got %v", result.Errors[0])
	}
}

func TestExtractCollapsesBlankRuns(t *testing.T) {
	extractor := NewExtractor(NewRegistry())

	text := "第一段。\n\n<!-- <gamestate>[]</gamestate> -->\n\n第二段。"
	result := extractor.Extract(text)

	if strings.Contains(result.CleanContent, "\n\n\n") {
		t.Fatalf("expected blank runs collapsed, got %q", result.CleanContent)
	}
}
