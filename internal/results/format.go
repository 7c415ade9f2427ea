package results

import (
	"sort"
	"strings"
	"time"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/prompts"
)

// Style selects the text layout produced by Format.
type Style string

const (
	StyleExport    Style = "export"
	StyleClipboard Style = "clipboard"
)

var (
	exportSeparator    = "\n\n" + strings.Repeat("=", 60) + "\n\n"
	clipboardSeparator = "\n\n---\n\n"
)

// ParseStyle maps user input to a Style, defaulting to export.
func ParseStyle(s string) Style {
	if Style(strings.ToLower(strings.TrimSpace(s))) == StyleClipboard {
		return StyleClipboard
	}
	return StyleExport
}

// BuildExportText renders the document export: a banner, then one block per
// completed outcome separated by a rule.
func BuildExportText(settings batch.Settings, outcomes []batch.Outcome, drafts []string, generatedAt time.Time) string {
	return Format(StyleExport, settings, outcomes, drafts, generatedAt)
}

// BuildClipboardText renders completed outcomes with a light separator and no banner.
func BuildClipboardText(outcomes []batch.Outcome, drafts []string) string {
	return Format(StyleClipboard, batch.Settings{}, outcomes, drafts, time.Time{})
}

// Format renders outcomes in the given style. Skipped and failed outcomes are
// left out and drafts[i] replaces outcomes[i].Text when it is non-blank.
func Format(style Style, settings batch.Settings, outcomes []batch.Outcome, drafts []string, generatedAt time.Time) string {
	blocks := make([]string, 0, len(outcomes))
	for i, o := range outcomes {
		if !o.Exportable() {
			continue
		}
		text := o.Text
		if i < len(drafts) && strings.TrimSpace(drafts[i]) != "" {
			text = drafts[i]
		}
		blocks = append(blocks, itemHeader(style, o)+"\n"+strings.TrimSpace(text))
	}

	if style == StyleClipboard {
		return strings.Join(blocks, clipboardSeparator)
	}

	var b strings.Builder
	b.WriteString(Banner(settings, generatedAt))
	for _, block := range blocks {
		b.WriteString(exportSeparator)
		b.WriteString(block)
	}
	b.WriteString("\n")
	return b.String()
}

// Banner is the document header used by the export style.
func Banner(settings batch.Settings, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(Title(settings.Kind))
	if summary := SettingsSummary(settings); summary != "" {
		b.WriteString("\n")
		b.WriteString(summary)
	}
	b.WriteString("\nGenerated: ")
	b.WriteString(generatedAt.UTC().Format("2006-01-02 15:04 MST"))
	return b.String()
}

// Title is the document title for kind.
func Title(kind string) string {
	if t, ok := prompts.Default().Get(kind); ok {
		return t.Title
	}
	if kind == "" {
		return "Generated Documents"
	}
	return strings.ReplaceAll(kind, "-", " ")
}

// Category is the persistence category for kind.
func Category(kind string) string {
	if t, ok := prompts.Default().Get(kind); ok {
		return t.Category
	}
	return kind
}

// SettingsSummary lists non-empty settings as "Label: value" joined by " | ".
// Declared settings come first in template order, the rest sorted by key.
func SettingsSummary(settings batch.Settings) string {
	var parts []string
	seen := map[string]bool{}
	if t, ok := prompts.Default().Get(settings.Kind); ok {
		for _, f := range t.Settings {
			seen[f.Name] = true
			if v := strings.TrimSpace(settings.Values[f.Name]); v != "" {
				parts = append(parts, f.Label+": "+v)
			}
		}
	}
	keys := make([]string, 0, len(settings.Values))
	for k := range settings.Values {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(settings.Values[k]); v != "" {
			parts = append(parts, k+": "+v)
		}
	}
	return strings.Join(parts, " | ")
}

func itemHeader(style Style, o batch.Outcome) string {
	id := strings.TrimSpace(o.Identifier)
	if id == "" {
		id = "Untitled"
	}
	secondary := strings.TrimSpace(o.Secondary)
	if style == StyleClipboard {
		if secondary != "" {
			return id + " (" + secondary + "):"
		}
		return id + ":"
	}
	if secondary != "" {
		return "## " + id + " | " + secondary
	}
	return "## " + id
}
