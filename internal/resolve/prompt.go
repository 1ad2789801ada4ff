package resolve

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/adrg/frontmatter"
	"github.com/davidgrant/aimerge/internal/conflict"
)

// systemPrompt instructs the model to answer with nothing but the
// resolved region body.
const systemPrompt = "You are a Git merge conflict resolver. Analyze the conflict and choose the most appropriate resolution. Return ONLY the resolved content without any explanation."

const defaultTemperature = 0.7

// maxVariantBytes caps each variant body included in the prompt so large
// regions do not blow the request budget.
const maxVariantBytes = 500

// Template is an optional repo-local prompt override loaded from
// .aimerge/prompt.md. The YAML frontmatter may override the model and
// temperature; the markdown body is a text/template over PromptData.
type Template struct {
	Model       string
	Temperature *float64
	body        *template.Template
}

type templateMeta struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

// PromptData is the data available to a prompt template body.
type PromptData struct {
	Path    string
	Ours    string
	Theirs  string
	Base    string
	HasBase bool
	Context string
}

// LoadTemplate reads the repo-local prompt template if one exists.
// A missing file returns (nil, nil); a present-but-broken file is an error
// so a typo never silently falls back to the default prompt.
func LoadTemplate(repoRoot string) (*Template, error) {
	path := filepath.Join(repoRoot, ".aimerge", "prompt.md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading prompt template: %w", err)
	}

	var meta templateMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template frontmatter: %w", err)
	}

	tmpl, err := template.New("prompt").Parse(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template body: %w", err)
	}

	return &Template{
		Model:       meta.Model,
		Temperature: meta.Temperature,
		body:        tmpl,
	}, nil
}

// Render executes the template body against the prompt data.
func (t *Template) Render(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := t.body.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt template: %w", err)
	}
	return buf.String(), nil
}

// buildPromptData assembles the per-region prompt inputs, trimming each
// variant to the prompt budget.
func buildPromptData(region conflict.Region, fileContext string) PromptData {
	return PromptData{
		Path:    region.Path,
		Ours:    truncateVariant(region.Ours),
		Theirs:  truncateVariant(region.Theirs),
		Base:    truncateVariant(region.Base),
		HasBase: region.HasBase,
		Context: truncateVariant(fileContext),
	}
}

// defaultUserPrompt formats the built-in prompt body.
func defaultUserPrompt(d PromptData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resolve this Git merge conflict in %s. Here are the conflicting parts:\n\n", d.Path)
	fmt.Fprintf(&b, "Our version:\n%s\n\n", d.Ours)
	fmt.Fprintf(&b, "Their version:\n%s\n", d.Theirs)
	if d.HasBase {
		fmt.Fprintf(&b, "\nBase version:\n%s\n", d.Base)
	}
	if d.Context != "" {
		fmt.Fprintf(&b, "\nSurrounding file context:\n%s\n", d.Context)
	}
	return b.String()
}

// truncateVariant caps a variant body at the prompt budget.
func truncateVariant(s string) string {
	if len(s) <= maxVariantBytes {
		return s
	}
	return s[:maxVariantBytes] + "... (truncated)"
}

// ContextWindow returns up to n unconflicted lines on each side of the
// region, joined as a single snippet for disambiguation.
func ContextWindow(content string, region conflict.Region, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")

	start := region.StartLine - n
	if start < 0 {
		start = 0
	}
	end := region.EndLine + 1 + n
	if end > len(lines) {
		end = len(lines)
	}

	var parts []string
	if region.StartLine > start {
		parts = append(parts, lines[start:region.StartLine]...)
	}
	if end > region.EndLine+1 {
		parts = append(parts, lines[region.EndLine+1:end]...)
	}
	return strings.Join(parts, "\n")
}
