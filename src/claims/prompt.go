package claims

import (
	"fmt"
	"strings"

	"github.com/stake-plus/claimcheck/src/search"
)

const (
	maxClaimRunes   = 2000
	maxTitleRunes   = 200
	maxSnippetRunes = 500
)

const systemPrompt = `You are a fact-checking assistant that analyzes news claims for credibility.
Evaluate claims only against the evidence provided and give a structured analysis.
Be objective and thorough. Distinguish factual reporting from opinion.
Always respond with a single JSON object and nothing else.`

const responseSchema = `{
    "credibility_score": <integer from 0-10>,
    "verdict": "<Likely True/Likely False/Uncertain/Mixed Evidence>",
    "confidence": "<High/Medium/Low>",
    "explanation": "<short explanation of your analysis>",
    "key_findings": ["<finding 1>", "<finding 2>"],
    "red_flags": ["<red flag 1>"],
    "supporting_evidence": ["<evidence 1>"]
}`

// buildContext renders the bounded search context block.
func buildContext(results []search.Result) string {
	if len(results) == 0 {
		return "No search results were found for this claim. Judge it on its own plausibility and say that evidence is missing."
	}
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("Source %d: %s\nURL: %s\nSummary: %s\n",
			i+1, truncateRunes(r.Title, maxTitleRunes), r.URL, truncateRunes(r.Snippet, maxSnippetRunes)))
	}
	return strings.Join(parts, "\n")
}

// buildUserPrompt embeds the claim and search context. It is pure, so equal
// inputs always give equal prompts.
func buildUserPrompt(claim string, results []search.Result) string {
	return fmt.Sprintf(`Analyze the following claim for credibility based on the search results provided.

CLAIM: %s

SEARCH RESULTS:
%s

Respond with a JSON object with exactly this structure:
%s

Consider:
- Consistency across sources
- Source credibility
- Presence of factual information vs opinion
- Any obvious signs of misinformation
- Date and relevance of information`,
		truncateRunes(strings.TrimSpace(claim), maxClaimRunes), buildContext(results), responseSchema)
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "…"
}
