package results

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/prompts"
)

var generatedAt = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

func sampleOutcomes() []batch.Outcome {
	return []batch.Outcome{
		{Identifier: "A", Status: batch.StatusCompleted, Text: "Email for A", Secondary: "Mrs. A"},
		{Identifier: "B", Status: batch.StatusSkipped, Text: "Skipped"},
		{Identifier: "C", Status: batch.StatusCompleted, Text: "Email for C"},
		{Identifier: "D", Status: batch.StatusFailed, Text: "Generation failed", ErrorDetail: "timeout"},
	}
}

func TestBuildExportTextBannerAndBlocks(t *testing.T) {
	settings := batch.Settings{Kind: prompts.KindParentEmail, Values: map[string]string{"tone": "warm", "teacherName": "Ms. Rivera", "room": "12"}}

	got := BuildExportText(settings, sampleOutcomes(), nil, generatedAt)

	lines := strings.Split(got, "\n")
	assert.Equal(t, "Parent Emails", lines[0])
	assert.Equal(t, "Teacher: Ms. Rivera | Tone: warm | room: 12", lines[1])
	assert.Equal(t, "Generated: 2026-03-04 15:30 UTC", lines[2])
	assert.Contains(t, got, "## A | Mrs. A\nEmail for A")
	assert.Contains(t, got, "## C\nEmail for C")
	assert.Equal(t, 2, strings.Count(got, strings.Repeat("=", 60)))
	assert.Less(t, strings.Index(got, "## A"), strings.Index(got, "## C"))
}

func TestFormatFiltersSkippedAndFailed(t *testing.T) {
	for _, style := range []Style{StyleExport, StyleClipboard} {
		style := style
		t.Run(string(style), func(t *testing.T) {
			got := Format(style, batch.Settings{Kind: prompts.KindParentEmail}, sampleOutcomes(), nil, generatedAt)
			assert.NotContains(t, got, "Skipped")
			assert.NotContains(t, got, "Generation failed")
			assert.NotContains(t, got, "## D")
			assert.NotContains(t, got, "D:")
		})
	}
}

func TestFormatPrefersDrafts(t *testing.T) {
	drafts := []string{"Edited A", "", "  ", ""}
	export := BuildExportText(batch.Settings{Kind: prompts.KindParentEmail}, sampleOutcomes(), drafts, generatedAt)
	clip := BuildClipboardText(sampleOutcomes(), drafts)

	for _, got := range []string{export, clip} {
		assert.Contains(t, got, "Edited A")
		assert.NotContains(t, got, "Email for A")
		assert.Contains(t, got, "Email for C")
	}
}

func TestBuildClipboardText(t *testing.T) {
	got := BuildClipboardText(sampleOutcomes(), nil)
	assert.Equal(t, "A (Mrs. A):\nEmail for A\n\n---\n\nC:\nEmail for C", got)
}

func TestExportTextOmitsSkippedBlock(t *testing.T) {
	outcomes := []batch.Outcome{
		{Identifier: "A", Status: batch.StatusCompleted, Text: "Great work"},
		{Identifier: "B", Status: batch.StatusSkipped, Text: "Skipped"},
		{Identifier: "C", Status: batch.StatusCompleted, Text: "Missing homework"},
	}
	got := BuildExportText(batch.Settings{Kind: prompts.KindParentEmail}, outcomes, batch.NewDrafts(outcomes), generatedAt)

	parts := strings.Split(got, exportSeparator)
	require.Len(t, parts, 3)
	assert.True(t, strings.HasPrefix(parts[1], "## A"))
	assert.True(t, strings.HasPrefix(parts[2], "## C"))
	assert.NotContains(t, got, "## B")
}

func TestFormatDoesNotMutateInputs(t *testing.T) {
	outcomes := sampleOutcomes()
	drafts := []string{"x", "y", "z", "w"}
	before := append([]batch.Outcome(nil), outcomes...)
	beforeDrafts := append([]string(nil), drafts...)

	_ = BuildExportText(batch.Settings{}, outcomes, drafts, generatedAt)

	assert.Equal(t, before, outcomes)
	assert.Equal(t, beforeDrafts, drafts)
}

func TestTitleAndCategoryFallbacks(t *testing.T) {
	assert.Equal(t, "Recommendation Letters", Title(prompts.KindRecommendationLetter))
	assert.Equal(t, "lesson notes", Title("lesson-notes"))
	assert.Equal(t, "Generated Documents", Title(""))
	assert.Equal(t, "differentiation", Category(prompts.KindDifferentiation))
	assert.Equal(t, "custom", Category("custom"))
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, StyleClipboard, ParseStyle(" Clipboard "))
	assert.Equal(t, StyleExport, ParseStyle(""))
	assert.Equal(t, StyleExport, ParseStyle("other"))
}
