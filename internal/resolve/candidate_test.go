package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCandidateFencedBlock(t *testing.T) {
	raw := "Here is the resolution:\n```go\nfunc greet() string { return \"hello\" }\n```\nHope that helps!"
	c := ParseCandidate(raw)
	assert.Equal(t, `func greet() string { return "hello" }`, c.Text)
	assert.False(t, c.LowConfidence)
}

func TestParseCandidateFenceWithoutLanguage(t *testing.T) {
	raw := "```\nline one\nline two\n```"
	c := ParseCandidate(raw)
	assert.Equal(t, "line one\nline two", c.Text)
	assert.False(t, c.LowConfidence)
}

func TestParseCandidateNoFenceIsLowConfidence(t *testing.T) {
	c := ParseCandidate("  resolved content directly  \n")
	assert.Equal(t, "resolved content directly", c.Text)
	assert.True(t, c.LowConfidence)
}

func TestParseCandidateFirstBlockWins(t *testing.T) {
	raw := "```\nfirst\n```\nsome prose\n```\nsecond\n```"
	c := ParseCandidate(raw)
	assert.Equal(t, "first", c.Text)
}
