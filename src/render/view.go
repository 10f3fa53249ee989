package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/pipeline"
)

// Tone is the traffic-light colour used for the score and the verdict badge.
type Tone string

const (
	ToneGreen  Tone = "green"
	ToneOrange Tone = "orange"
	ToneRed    Tone = "red"
)

// Hex returns the CSS colour for t.
func (t Tone) Hex() string {
	switch t {
	case ToneGreen:
		return "#2e9e44"
	case ToneOrange:
		return "#e8890c"
	default:
		return "#d93a3a"
	}
}

// RGB returns t as a packed 0xRRGGBB integer, the form Discord embeds take.
func (t Tone) RGB() int {
	v, _ := strconv.ParseInt(strings.TrimPrefix(t.Hex(), "#"), 16, 32)
	return int(v)
}

// ScoreTone: 7 and above is green, 4 to 6 orange, below 4 red.
func ScoreTone(score int) Tone {
	switch {
	case score >= 7:
		return ToneGreen
	case score >= 4:
		return ToneOrange
	default:
		return ToneRed
	}
}

// LabelTone colours the verdict badge.
func LabelTone(l claims.Label) Tone {
	switch l {
	case claims.LabelLikelyTrue:
		return ToneGreen
	case claims.LabelUncertain, claims.LabelMixedEvidence:
		return ToneOrange
	default:
		return ToneRed
	}
}

// Source is one search result as shown to the user.
type Source struct {
	Index   int
	Title   string
	URL     string
	Snippet string
	Display string
}

// View is the presentation form of a verdict, shared by every front end.
type View struct {
	Score       int
	ScoreText   string
	Percent     int
	ScoreTone   Tone
	Label       string
	LabelTone   Tone
	Confidence  string
	Explanation string
	Findings    []string
	RedFlags    []string
	Evidence    []string
	Sources     []Source
	Degraded    bool
	Fingerprint string
}

// NewView prepares v for display.
func NewView(v claims.Verdict) View {
	view := View{
		Score:       v.Score,
		ScoreText:   fmt.Sprintf("%d/%d", v.Score, claims.MaxScore),
		Percent:     v.Score * 100 / claims.MaxScore,
		ScoreTone:   ScoreTone(v.Score),
		Label:       v.Label.Display(),
		LabelTone:   LabelTone(v.Label),
		Confidence:  string(v.Confidence),
		Explanation: strings.TrimSpace(v.Explanation),
		Findings:    nonBlank(v.KeyFindings),
		RedFlags:    nonBlank(v.RedFlags),
		Evidence:    nonBlank(v.SupportingEvidence),
		Degraded:    v.Degraded,
		Fingerprint: v.Fingerprint,
	}
	for i, r := range v.Sources {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = r.URL
		}
		view.Sources = append(view.Sources, Source{
			Index:   i + 1,
			Title:   title,
			URL:     r.URL,
			Snippet: r.Snippet,
			Display: SourceDisplay(r.URL),
		})
	}
	return view
}

// ErrorView is what a user sees when a stage fails.
type ErrorView struct {
	Stage   string
	Message string
}

// NewErrorView never carries raw upstream detail.
func NewErrorView(err *pipeline.StageError) ErrorView {
	if err == nil {
		return ErrorView{}
	}
	return ErrorView{Stage: string(err.Stage), Message: err.UserMessage()}
}

// SourceDisplay shortens a link to host plus first path segment.
func SourceDisplay(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	path := strings.Trim(parsed.EscapedPath(), "/")
	if path == "" {
		return host
	}

	segments := strings.Split(path, "/")
	if len(segments) > 0 && segments[0] != "" {
		return fmt.Sprintf("%s/%s", host, segments[0])
	}
	return host
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
