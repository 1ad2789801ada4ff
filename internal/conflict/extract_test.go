package conflict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRegionFile = `package demo

<<<<<<< HEAD
func greet() string { return "hello" }
=======
func greet() string { return "hi" }
>>>>>>> feature

func unrelated() {}

<<<<<<< HEAD
const version = "1.2.0"
=======
const version = "2.0.0"
>>>>>>> feature
`

func TestExtractTwoRegionsInOrder(t *testing.T) {
	regions, err := Extract("demo.go", twoRegionFile)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	first := regions[0]
	assert.Equal(t, 2, first.StartLine)
	assert.Equal(t, 6, first.EndLine)
	assert.Equal(t, `func greet() string { return "hello" }`, first.Ours)
	assert.Equal(t, `func greet() string { return "hi" }`, first.Theirs)
	assert.False(t, first.HasBase)

	second := regions[1]
	assert.Equal(t, 10, second.StartLine)
	assert.Equal(t, 14, second.EndLine)
	assert.Equal(t, `const version = "1.2.0"`, second.Ours)
	assert.Equal(t, `const version = "2.0.0"`, second.Theirs)

	assert.True(t, first.EndLine < second.StartLine, "regions must not overlap")
}

// Reconstructing the file from its regions plus surrounding text must give
// back the original bytes, proving the offsets are exact.
func TestExtractOffsetsReconstructOriginal(t *testing.T) {
	regions, err := Extract("demo.go", twoRegionFile)
	require.NoError(t, err)

	lines := strings.Split(twoRegionFile, "\n")
	var rebuilt []string
	prev := 0
	for _, r := range regions {
		rebuilt = append(rebuilt, lines[prev:r.StartLine]...)
		rebuilt = append(rebuilt, lines[r.StartLine:r.EndLine+1]...)
		prev = r.EndLine + 1
	}
	rebuilt = append(rebuilt, lines[prev:]...)

	assert.Equal(t, twoRegionFile, strings.Join(rebuilt, "\n"))
}

func TestExtractDiff3Base(t *testing.T) {
	content := "<<<<<<< HEAD\nours line\n||||||| base\noriginal line\n=======\ntheirs line\n>>>>>>> feature\n"
	regions, err := Extract("f.txt", content)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.True(t, r.HasBase)
	assert.Equal(t, "ours line", r.Ours)
	assert.Equal(t, "original line", r.Base)
	assert.Equal(t, "theirs line", r.Theirs)
	assert.Equal(t, 0, r.StartLine)
	assert.Equal(t, 6, r.EndLine)
}

func TestExtractCleanFileYieldsNoRegions(t *testing.T) {
	regions, err := Extract("clean.go", "package demo\n\nfunc ok() {}\n")
	require.NoError(t, err)
	assert.Empty(t, regions)
}

// Re-running extraction on already-resolved content is a no-op.
func TestExtractIdempotentAfterResolution(t *testing.T) {
	regions, err := Extract("demo.go", twoRegionFile)
	require.NoError(t, err)

	resolved, err := Splice(twoRegionFile, regions, []string{
		`func greet() string { return "hello" }`,
		`const version = "2.0.0"`,
	})
	require.NoError(t, err)

	again, err := Extract("demo.go", resolved)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestExtractUnterminatedRegion(t *testing.T) {
	content := "a\n<<<<<<< HEAD\nours\n=======\ntheirs\n"
	regions, err := Extract("broken.txt", content)
	assert.Nil(t, regions)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "broken.txt", extErr.Path)
	assert.Equal(t, 2, extErr.Line)
}

func TestExtractMalformedMarkers(t *testing.T) {
	cases := map[string]string{
		"separator without open": "text\n=======\nmore\n>>>>>>> x\n",
		"close without open":     "text\n>>>>>>> feature\n",
		"nested open":            "<<<<<<< HEAD\na\n<<<<<<< HEAD\nb\n=======\nc\n>>>>>>> x\n",
		"base outside region":    "text\n||||||| base\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			regions, err := Extract("f.txt", content)
			assert.Nil(t, regions, "no partial region list on malformed input")
			var extErr *ExtractionError
			assert.ErrorAs(t, err, &extErr)
		})
	}
}
