package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"github.com/stake-plus/claimcheck/src/search"
	"github.com/stretchr/testify/assert"
)

func TestScoreTone(t *testing.T) {
	tests := map[int]Tone{10: ToneGreen, 7: ToneGreen, 6: ToneOrange, 4: ToneOrange, 3: ToneRed, 0: ToneRed}
	for score, want := range tests {
		assert.Equal(t, want, ScoreTone(score), "score %d", score)
	}
}

func TestLabelTone(t *testing.T) {
	assert.Equal(t, ToneGreen, LabelTone(claims.LabelLikelyTrue))
	assert.Equal(t, ToneOrange, LabelTone(claims.LabelUncertain))
	assert.Equal(t, ToneOrange, LabelTone(claims.LabelMixedEvidence))
	assert.Equal(t, ToneRed, LabelTone(claims.LabelLikelyFalse))
	assert.Equal(t, 0x2e9e44, ToneGreen.RGB())
}

func TestNewView(t *testing.T) {
	v := claims.Verdict{
		Score:       7,
		Label:       claims.LabelLikelyTrue,
		Confidence:  claims.ConfidenceMedium,
		KeyFindings: []string{"one", "  ", "two"},
		RedFlags:    []string{},
		Sources: []search.Result{
			{Title: "Report", URL: "https://www.example.org/news/2024/story"},
			{URL: "https://plain.example"},
		},
	}

	view := NewView(v)

	assert.Equal(t, "7/10", view.ScoreText)
	assert.Equal(t, 70, view.Percent)
	assert.Equal(t, "Likely True", view.Label)
	assert.Equal(t, "Medium", view.Confidence)
	assert.Equal(t, []string{"one", "two"}, view.Findings)
	assert.Empty(t, view.RedFlags)
	assert.Len(t, view.Sources, 2)
	assert.Equal(t, "example.org/news", view.Sources[0].Display)
	assert.Equal(t, "https://plain.example", view.Sources[1].Title)
	assert.Equal(t, 2, view.Sources[1].Index)
}

func TestNewErrorViewHidesDetail(t *testing.T) {
	err := &pipeline.StageError{
		Stage: pipeline.StageSearch,
		Err:   &search.Error{Provider: "google", Reason: "unauthorized", Err: errors.New("key=AIzaSECRET rejected")},
	}
	ev := NewErrorView(err)
	assert.Equal(t, "search", ev.Stage)
	assert.Contains(t, ev.Message, "Search failed")
	assert.NotContains(t, ev.Message, "AIzaSECRET")
}

func TestTerminalVerdict(t *testing.T) {
	view := NewView(claims.Verdict{
		Score:              2,
		Label:              claims.LabelLikelyFalse,
		Confidence:         claims.ConfidenceHigh,
		Explanation:        strings.Repeat("word ", 60),
		KeyFindings:        []string{"No credible outlet reports this"},
		RedFlags:           []string{"Anonymous source"},
		SupportingEvidence: []string{},
		Sources:            []search.Result{{Title: "Fact check: tower not moved", URL: "https://facts.example/eiffel"}},
	})

	out := NewTerminal(80).Verdict("The Eiffel Tower was moved to Berlin", view)

	assert.Contains(t, out, "2/10")
	assert.Contains(t, out, "Likely False")
	assert.Contains(t, out, "Key findings")
	assert.Contains(t, out, "• Anonymous source")
	assert.NotContains(t, out, "Supporting evidence")
	assert.Contains(t, out, "Fact check: tower not moved")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(stripANSI(line)), 80, line)
	}
}

func TestTerminalError(t *testing.T) {
	out := NewTerminal(0).Error(ErrorView{Stage: "analysis", Message: "Analysis failed (timeout). Please try again."})
	assert.Contains(t, out, "Analysis failed")
	assert.Equal(t, "Analyzing credibility…", ProgressText(pipeline.StateAnalyzing))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrap("aaa bbb ccc", 7))
	assert.Equal(t, []string{"abcd", "ef"}, wrap("abcdef", 4))
	assert.Equal(t, []string{"日本", "語"}, wrap("日本語", 4))
	assert.Equal(t, []string{""}, wrap("   ", 10))
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
