package command

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// blockPattern matches a comment-wrapped gamestate block anywhere in text.
var blockPattern = regexp.MustCompile(`(?s)<!--\s*<gamestate>(.*?)</gamestate>\s*-->`)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// wireCommand is the raw JSON shape of one command inside a block.
type wireCommand struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ExtractionError reports a failure inside one gamestate block. Block indexes
// are zero-based in document order.
type ExtractionError struct {
	Block int
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("gamestate block %d: %v", e.Block, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extraction is the result of pulling commands out of one generated turn.
type Extraction struct {
	// Commands holds successfully decoded commands in document order.
	Commands []Command
	// CleanContent is the narrative with every matched block removed.
	CleanContent string
	// Errors holds one entry per malformed block or rejected command.
	Errors []error
}

// Extractor finds gamestate blocks and decodes their commands.
type Extractor struct {
	registry *Registry
}

// NewExtractor creates an extractor backed by the provided registry.
func NewExtractor(registry *Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Extract parses every gamestate block in text. A block with malformed JSON
// contributes zero commands and one error without stopping later blocks; all
// matched blocks are stripped from CleanContent either way.
func (e *Extractor) Extract(text string) Extraction {
	var result Extraction

	matches := blockPattern.FindAllStringSubmatch(text, -1)
	for i, match := range matches {
		inner := strings.TrimSpace(match[1])

		var raw []wireCommand
		if err := json.Unmarshal([]byte(inner), &raw); err != nil {
			result.Errors = append(result.Errors, &ExtractionError{Block: i, Err: fmt.Errorf("parse command array: %w", err)})
			continue
		}

		for _, wire := range raw {
			cmd, err := e.registry.Decode(wire.Type, wire.Data, SourceBlock)
			if err != nil {
				result.Errors = append(result.Errors, &ExtractionError{Block: i, Err: err})
				continue
			}
			result.Commands = append(result.Commands, cmd)
		}
	}

	clean := blockPattern.ReplaceAllString(text, "")
	clean = blankRuns.ReplaceAllString(clean, "\n\n")
	result.CleanContent = strings.TrimSpace(clean)

	return result
}
