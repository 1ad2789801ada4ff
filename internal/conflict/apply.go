package conflict

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports a candidate rejected by structural checks.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid candidate: " + e.Reason
}

// Validate applies the structural checks a candidate must pass before it
// may be spliced: non-empty, and free of every conflict marker token.
// There is deliberately no language-aware validation.
func Validate(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return &ValidationError{Reason: "empty resolution"}
	}
	for _, tok := range []string{markerOurs, markerBase, markerSplit, markerTheirs} {
		if strings.Contains(candidate, tok) {
			return &ValidationError{Reason: fmt.Sprintf("contains conflict marker %q", tok)}
		}
	}
	return nil
}

// Splice replaces every region in content with its candidate and returns
// the resulting content. Regions must be in source order and candidates
// must align 1:1 with them; each candidate must already have passed
// Validate. Replacement runs bottom-up in a single pass so the original
// line offsets from extraction stay valid throughout.
func Splice(content string, regions []Region, candidates []string) (string, error) {
	if len(regions) != len(candidates) {
		return "", fmt.Errorf("splice: %d regions but %d candidates", len(regions), len(candidates))
	}
	if len(regions) == 0 {
		return content, nil
	}
	if !sort.SliceIsSorted(regions, func(i, j int) bool {
		return regions[i].StartLine < regions[j].StartLine
	}) {
		return "", fmt.Errorf("splice: regions out of source order")
	}

	lines := strings.Split(content, "\n")

	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i]
		if r.StartLine < 0 || r.EndLine >= len(lines) || r.StartLine > r.EndLine {
			return "", fmt.Errorf("splice: region %s out of bounds", r.Label())
		}
		if i > 0 && regions[i-1].EndLine >= r.StartLine {
			return "", fmt.Errorf("splice: regions %s and %s overlap", regions[i-1].Label(), r.Label())
		}

		replacement := strings.Split(strings.TrimRight(candidates[i], "\n"), "\n")
		rebuilt := make([]string, 0, len(lines)-(r.EndLine-r.StartLine+1)+len(replacement))
		rebuilt = append(rebuilt, lines[:r.StartLine]...)
		rebuilt = append(rebuilt, replacement...)
		rebuilt = append(rebuilt, lines[r.EndLine+1:]...)
		lines = rebuilt
	}

	return strings.Join(lines, "\n"), nil
}
