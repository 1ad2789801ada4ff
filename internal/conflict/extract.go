// Package conflict parses git three-way conflict markers into regions and
// splices validated resolutions back into file content. It never touches
// disk; callers supply and receive file content as strings.
package conflict

import (
	"fmt"
	"strings"
)

// Conflict marker tokens as emitted by git's merge machinery.
const (
	markerOurs   = "<<<<<<<"
	markerBase   = "|||||||"
	markerSplit  = "======="
	markerTheirs = ">>>>>>>"
)

// Region is one marker-delimited conflicted span within a file.
// StartLine and EndLine are 0-based indexes of the opening and closing
// marker lines in the content the region was extracted from.
type Region struct {
	Path      string
	Ours      string
	Theirs    string
	Base      string
	HasBase   bool
	StartLine int
	EndLine   int
}

// Label returns a short human identifier for the region, 1-based.
func (r Region) Label() string {
	return fmt.Sprintf("%s:%d-%d", r.Path, r.StartLine+1, r.EndLine+1)
}

// ExtractionError reports malformed or unterminated conflict markers.
// Extraction for the affected file aborts; no partial region list is
// returned alongside it.
type ExtractionError struct {
	Path   string
	Marker string
	Line   int // 1-based
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: malformed conflict marker %q at line %d", e.Path, e.Marker, e.Line)
}

// extraction states while walking a file top to bottom.
type scanState int

const (
	stateText scanState = iota
	stateOurs
	stateBase
	stateTheirs
)

// Extract scans content for git conflict markers and returns every region
// in source order. Content without markers yields an empty slice, which
// callers treat as "already clean". The scan is a pure function of its
// inputs.
func Extract(path, content string) ([]Region, error) {
	lines := strings.Split(content, "\n")

	var regions []Region
	var cur Region
	var ours, base, theirs []string
	state := stateText

	fail := func(marker string, i int) ([]Region, error) {
		return nil, &ExtractionError{Path: path, Marker: marker, Line: i + 1}
	}

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, markerOurs):
			if state != stateText {
				return fail(markerOurs, i)
			}
			cur = Region{Path: path, StartLine: i}
			ours, base, theirs = nil, nil, nil
			state = stateOurs

		case strings.HasPrefix(line, markerBase):
			if state != stateOurs {
				return fail(markerBase, i)
			}
			state = stateBase

		case line == markerSplit:
			if state != stateOurs && state != stateBase {
				return fail(markerSplit, i)
			}
			cur.HasBase = state == stateBase
			state = stateTheirs

		case strings.HasPrefix(line, markerTheirs):
			if state != stateTheirs {
				return fail(markerTheirs, i)
			}
			cur.EndLine = i
			cur.Ours = strings.Join(ours, "\n")
			cur.Theirs = strings.Join(theirs, "\n")
			if cur.HasBase {
				cur.Base = strings.Join(base, "\n")
			}
			regions = append(regions, cur)
			state = stateText

		default:
			switch state {
			case stateOurs:
				ours = append(ours, line)
			case stateBase:
				base = append(base, line)
			case stateTheirs:
				theirs = append(theirs, line)
			}
		}
	}

	if state != stateText {
		// Unterminated region: report the opening marker.
		return nil, &ExtractionError{Path: path, Marker: markerOurs, Line: cur.StartLine + 1}
	}

	return regions, nil
}
