package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stake-plus/claimcheck/src/pipeline"
)

// DefaultWidth is used when the caller does not know the terminal width.
const DefaultWidth = 80

// Terminal renders views for a text console.
type Terminal struct {
	width   int
	heading lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
	errBox  lipgloss.Style
}

// NewTerminal builds a renderer that wraps at width columns.
func NewTerminal(width int) *Terminal {
	if width <= 20 {
		width = DefaultWidth
	}
	return &Terminal{
		width:   width,
		heading: lipgloss.NewStyle().Bold(true).Underline(true),
		muted:   lipgloss.NewStyle().Faint(true),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		errBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ToneRed.Hex())).
			Padding(0, 1),
	}
}

func (t *Terminal) tone(tone Tone) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tone.Hex()))
}

// Inner text width: borders and padding take four columns.
func (t *Terminal) inner() int { return t.width - 4 }

// Verdict renders a full verdict view.
func (t *Terminal) Verdict(claim string, v View) string {
	var sb strings.Builder

	sb.WriteString(t.heading.Render("Claim"))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(wrap(claim, t.inner()), "\n"))
	sb.WriteString("\n\n")

	summary := fmt.Sprintf("Credibility %s   Verdict %s   Confidence %s",
		t.tone(v.ScoreTone).Render(v.ScoreText),
		t.tone(v.LabelTone).Render(v.Label),
		v.Confidence)
	sb.WriteString(summary)
	sb.WriteString("\n")
	sb.WriteString(t.bar(v.Score, v.ScoreTone))
	sb.WriteString("\n")

	if v.Degraded {
		sb.WriteString(t.muted.Render("The model reply could not be fully interpreted; showing a neutral verdict."))
		sb.WriteString("\n")
	}
	if v.Explanation != "" {
		sb.WriteString("\n")
		sb.WriteString(t.heading.Render("Analysis"))
		sb.WriteString("\n")
		sb.WriteString(strings.Join(wrap(v.Explanation, t.inner()), "\n"))
		sb.WriteString("\n")
	}

	t.list(&sb, "Key findings", v.Findings)
	t.list(&sb, "Red flags", v.RedFlags)
	t.list(&sb, "Supporting evidence", v.Evidence)

	if len(v.Sources) > 0 {
		sb.WriteString("\n")
		sb.WriteString(t.heading.Render("Sources"))
		sb.WriteString("\n")
		for _, s := range v.Sources {
			prefix := fmt.Sprintf("%d. ", s.Index)
			sb.WriteString(prefix)
			sb.WriteString(runewidth.Truncate(s.Title, t.inner()-runewidth.StringWidth(prefix), "…"))
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(prefix)))
			sb.WriteString(t.muted.Render(runewidth.Truncate(s.URL, t.inner()-len(prefix), "…")))
			sb.WriteString("\n")
		}
	}

	return t.box.Width(t.width - 2).Render(strings.TrimRight(sb.String(), "\n"))
}

// Error renders a failed run.
func (t *Terminal) Error(e ErrorView) string {
	title := t.tone(ToneRed).Render(fmt.Sprintf("%s failed", capitalizeStage(e.Stage)))
	body := strings.Join(wrap(e.Message, t.inner()), "\n")
	return t.errBox.Width(t.width - 2).Render(title + "\n" + body)
}

// Progress is the one-line status shown while a stage runs.
func (t *Terminal) Progress(state pipeline.State) string {
	return t.muted.Render(ProgressText(state))
}

func (t *Terminal) list(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(t.heading.Render(title))
	sb.WriteString("\n")
	for _, item := range items {
		lines := wrap(item, t.inner()-2)
		for i, line := range lines {
			if i == 0 {
				sb.WriteString("• ")
			} else {
				sb.WriteString("  ")
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
}

func (t *Terminal) bar(score int, tone Tone) string {
	const cells = 20
	filled := score * cells / 10
	return t.tone(tone).Render(strings.Repeat("█", filled)) + t.muted.Render(strings.Repeat("░", cells-filled))
}

// ProgressText describes a pipeline state in plain words.
func ProgressText(state pipeline.State) string {
	switch state {
	case pipeline.StateSearching:
		return "Searching the web for sources…"
	case pipeline.StateAnalyzing:
		return "Analyzing credibility…"
	case pipeline.StateRendered:
		return "Done."
	case pipeline.StateErrored:
		return "Failed."
	default:
		return "Waiting for a claim."
	}
}

func capitalizeStage(stage string) string {
	switch pipeline.Stage(stage) {
	case pipeline.StageSearch:
		return "Search"
	case pipeline.StageAnalysis:
		return "Analysis"
	case pipeline.StageInput:
		return "Input"
	default:
		return "Check"
	}
}

// wrap breaks text into lines no wider than width display columns.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0
	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(word)
				head = word[:size]
			}
			if currentWidth > 0 {
				lines = append(lines, current.String())
				current.Reset()
				currentWidth = 0
			}
			lines = append(lines, head)
			word = word[len(head):]
		}
		w := runewidth.StringWidth(word)
		if currentWidth > 0 && currentWidth+1+w > width {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += w
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
