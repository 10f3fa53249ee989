package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"github.com/stake-plus/claimcheck/src/render"
)

// Discord embed limits.
const (
	maxTitleRunes      = 256
	maxDescriptionRune = 4096
	maxFieldValueRunes = 1024
	maxLinkButtons     = 25
	maxButtonLabelRune = 80
	maxButtonURLLen    = 512
	maxItemsPerField   = 6
	colorProgress      = 0x5865f2
)

// VerdictEmbed lays a verdict out as a single embed.
func VerdictEmbed(claim string, v render.View) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       truncateForDiscord("Fact check: "+claim, maxTitleRunes),
		Description: truncateForDiscord(v.Explanation, maxDescriptionRune),
		Color:       v.LabelTone.RGB(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Credibility", Value: fmt.Sprintf("%s %s", scoreEmoji(v.ScoreTone), v.ScoreText), Inline: true},
			{Name: "Verdict", Value: v.Label, Inline: true},
			{Name: "Confidence", Value: v.Confidence, Inline: true},
		},
	}

	addListField(embed, "Key findings", v.Findings)
	addListField(embed, "Red flags", v.RedFlags)
	addListField(embed, "Supporting evidence", v.Evidence)

	if len(v.Sources) == 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Sources", Value: "No sources were found for this claim."})
	} else {
		lines := make([]string, 0, len(v.Sources))
		for _, s := range v.Sources {
			lines = append(lines, fmt.Sprintf("%d. [%s](%s)", s.Index, escapeMarkdown(truncateForDiscord(s.Title, 90)), s.URL))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Sources",
			Value: joinWithin(lines, maxFieldValueRunes),
		})
	}

	footer := "Automated analysis; verify important claims yourself."
	if v.Degraded {
		footer = "The model reply could not be fully interpreted; showing a neutral verdict."
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	return embed
}

// ErrorEmbed reports a failed stage.
func ErrorEmbed(e render.ErrorView) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Fact check failed",
		Description: e.Message,
		Color:       render.ToneRed.RGB(),
	}
}

// ProgressEmbed is shown while the run moves through its states.
func ProgressEmbed(claim string, state pipeline.State) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       truncateForDiscord("Fact check: "+claim, maxTitleRunes),
		Description: render.ProgressText(state),
		Color:       colorProgress,
	}
}

// SourceButtons links each source, five to a row.
func SourceButtons(sources []render.Source) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	var currentRow []discordgo.MessageComponent

	for _, src := range sources {
		if len(components)*5+len(currentRow) >= maxLinkButtons {
			break
		}
		if !strings.HasPrefix(src.URL, "http") || len(src.URL) > maxButtonURLLen {
			continue
		}
		currentRow = append(currentRow, discordgo.Button{
			Label: truncateForDiscord(fmt.Sprintf("Source %d · %s", src.Index, src.Display), maxButtonLabelRune),
			Style: discordgo.LinkButton,
			URL:   src.URL,
		})
		if len(currentRow) == 5 {
			components = append(components, discordgo.ActionsRow{Components: currentRow})
			currentRow = nil
		}
	}

	if len(currentRow) > 0 {
		components = append(components, discordgo.ActionsRow{Components: currentRow})
	}
	return components
}

func addListField(embed *discordgo.MessageEmbed, name string, items []string) {
	if len(items) == 0 {
		return
	}
	if len(items) > maxItemsPerField {
		items = items[:maxItemsPerField]
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  name,
		Value: joinWithin(lines, maxFieldValueRunes),
	})
}

// joinWithin joins lines with newlines, dropping whole lines past limit runes.
func joinWithin(lines []string, limit int) string {
	var sb strings.Builder
	used := 0
	for _, line := range lines {
		n := len([]rune(line))
		if used > 0 {
			n++
		}
		if used+n > limit {
			if used == 0 {
				return truncateForDiscord(line, limit)
			}
			break
		}
		if used > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		used += n
	}
	return sb.String()
}

func scoreEmoji(t render.Tone) string {
	switch t {
	case render.ToneGreen:
		return "🟢"
	case render.ToneOrange:
		return "🟠"
	default:
		return "🔴"
	}
}

var markdownEscaper = strings.NewReplacer("[", "\\[", "]", "\\]", "*", "\\*", "_", "\\_", "`", "\\`")

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

func truncateForDiscord(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
