package resolve

import (
	"regexp"
	"strings"
)

// Candidate is a proposed resolution text, not yet validated.
// LowConfidence marks candidates taken verbatim from a response that had
// no clear code block; the applier remains the final gate either way.
type Candidate struct {
	Text          string
	LowConfidence bool
}

// codeFenceRegex matches the first fenced code block, tolerating an
// optional language tag after the opening fence.
var codeFenceRegex = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\s*\\n?(.*?)\\n?```")

// ParseCandidate extracts the usable resolution from raw service output.
// Models sometimes wrap the answer in explanatory prose or markdown
// fences; when a fenced block is present only its content is kept.
// Without one, the trimmed raw response is returned best-effort and
// flagged low confidence.
func ParseCandidate(raw string) Candidate {
	if m := codeFenceRegex.FindStringSubmatch(raw); len(m) > 1 {
		return Candidate{Text: m[1]}
	}
	return Candidate{Text: strings.TrimSpace(raw), LowConfidence: true}
}
