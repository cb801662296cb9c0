package npc

// ParseTags runs all three dialect grammars over one turn of text and returns
// the combined candidate list in dialect order: stat line, XML, pipe. Each
// grammar is total — a malformed match in one dialect surfaces as an error
// without blocking detection by the other two.
func ParseTags(text string) ([]Candidate, []error) {
	var candidates []Candidate
	var errs []error

	statline, statErrs := parseStatLines(text)
	candidates = append(candidates, statline...)
	errs = append(errs, statErrs...)

	xml, xmlErrs := parseXMLTags(text)
	candidates = append(candidates, xml...)
	errs = append(errs, xmlErrs...)

	pipe, pipeErrs := parsePipeTags(text)
	candidates = append(candidates, pipe...)
	errs = append(errs, pipeErrs...)

	return candidates, errs
}

// MentionedNames returns the set of NPC names detected by any dialect in text.
func MentionedNames(text string) map[string]bool {
	names := make(map[string]bool)
	candidates, _ := ParseTags(text)
	for _, candidate := range candidates {
		names[candidate.Name] = true
	}
	return names
}
