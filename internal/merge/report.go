package merge

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// FileStatus is the aggregate outcome for one conflicted file.
type FileStatus int

const (
	// FileResolved means every region resolved, validated, and applied.
	FileResolved FileStatus = iota
	// FileFailed means at least one region could not be resolved; the
	// file was left untouched on disk.
	FileFailed
	// FileSkipped means the file was never attempted (credential failure
	// or missing API key).
	FileSkipped
)

func (s FileStatus) String() string {
	switch s {
	case FileResolved:
		return "resolved"
	case FileFailed:
		return "failed"
	case FileSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalYAML renders the status as its string form in reports.
func (s FileStatus) MarshalYAML() (any, error) {
	return s.String(), nil
}

// RegionFailure names one region that could not be resolved and why.
type RegionFailure struct {
	Region string `yaml:"region,omitempty"`
	Reason string `yaml:"reason"`
	Calls  int    `yaml:"calls,omitempty"`

	authFailure bool
}

// FileResult is the per-file outcome in the final report.
type FileResult struct {
	Path     string          `yaml:"path"`
	Status   FileStatus      `yaml:"status"`
	Regions  int             `yaml:"regions"`
	Failures []RegionFailure `yaml:"failures,omitempty"`
}

// Report is the session's user-facing summary.
type Report struct {
	Target            string       `yaml:"target"`
	Source            string       `yaml:"source"`
	FinalState        string       `yaml:"final_state"`
	CleanMerge        bool         `yaml:"clean_merge"`
	MergeAborted      bool         `yaml:"merge_aborted"`
	CredentialFailure string       `yaml:"credential_failure,omitempty"`
	Files             []FileResult `yaml:"files,omitempty"`
}

// Succeeded reports whether the invocation should exit zero.
func (r *Report) Succeeded() bool {
	return !r.MergeAborted
}

// WriteYAML writes the machine-readable report for CI consumption.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).PaddingLeft(4)
	adviceStyle  = lipgloss.NewStyle().Italic(true)
	summaryStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

// Render formats the report for terminal output.
func (r *Report) Render() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Merge %s ← %s", r.Target, r.Source)))
	b.WriteString("\n")

	if r.CleanMerge {
		b.WriteString(okStyle.Render("✓ merge completed without conflicts"))
		b.WriteString("\n")
		return b.String()
	}

	for _, f := range r.Files {
		switch f.Status {
		case FileResolved:
			b.WriteString(okStyle.Render(fmt.Sprintf("✓ %s (%d region(s) resolved)", f.Path, f.Regions)))
		case FileFailed:
			b.WriteString(failStyle.Render(fmt.Sprintf("✗ %s", f.Path)))
		case FileSkipped:
			b.WriteString(skipStyle.Render(fmt.Sprintf("- %s (skipped)", f.Path)))
		}
		b.WriteString("\n")
		for _, failure := range f.Failures {
			line := failure.Reason
			if failure.Region != "" {
				line = failure.Region + ": " + line
			}
			if failure.Calls > 0 {
				line += fmt.Sprintf(" (after %d call(s))", failure.Calls)
			}
			b.WriteString(detailStyle.Render(line))
			b.WriteString("\n")
		}
	}

	if r.CredentialFailure != "" {
		b.WriteString(failStyle.Render("credential failure: " + r.CredentialFailure))
		b.WriteString("\n")
	}

	if r.MergeAborted {
		b.WriteString(summaryStyle.Render(failStyle.Render("Merge aborted.")))
		b.WriteString("\n")
		b.WriteString(adviceStyle.Render("The repository was restored to its pre-merge state. Resolve the remaining conflicts manually."))
		b.WriteString("\n")
	} else {
		b.WriteString(summaryStyle.Render(okStyle.Render("All conflicts resolved.")))
		b.WriteString("\n")
		b.WriteString(adviceStyle.Render("The merge is staged but not committed. Review the changes and commit."))
		b.WriteString("\n")
	}

	return b.String()
}
