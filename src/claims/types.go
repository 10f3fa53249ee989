package claims

import (
	"github.com/stake-plus/claimcheck/src/search"
)

// Label is the verdict category.
type Label string

const (
	LabelLikelyTrue    Label = "LikelyTrue"
	LabelLikelyFalse   Label = "LikelyFalse"
	LabelUncertain     Label = "Uncertain"
	LabelMixedEvidence Label = "MixedEvidence"
)

// Labels lists every valid label.
var Labels = []Label{LabelLikelyTrue, LabelLikelyFalse, LabelUncertain, LabelMixedEvidence}

// Display returns the human-readable form, e.g. "Likely True".
func (l Label) Display() string {
	switch l {
	case LabelLikelyTrue:
		return "Likely True"
	case LabelLikelyFalse:
		return "Likely False"
	case LabelMixedEvidence:
		return "Mixed Evidence"
	default:
		return "Uncertain"
	}
}

// Valid reports whether l is one of Labels.
func (l Label) Valid() bool {
	for _, v := range Labels {
		if l == v {
			return true
		}
	}
	return false
}

// Confidence is the model's self-reported certainty.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Valid reports whether c is High, Medium or Low.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Score bounds.
const (
	MinScore     = 0
	MaxScore     = 10
	DefaultScore = 5
)

// Request is the transient input to one analysis.
type Request struct {
	Claim   string
	Results []search.Result
}

// Verdict is the structured outcome of an analysis.
type Verdict struct {
	Score              int             `json:"score"`
	Label              Label           `json:"label"`
	Confidence         Confidence      `json:"confidence"`
	Explanation        string          `json:"explanation,omitempty"`
	KeyFindings        []string        `json:"key_findings"`
	RedFlags           []string        `json:"red_flags"`
	SupportingEvidence []string        `json:"supporting_evidence"`
	Sources            []search.Result `json:"sources"`
	// Degraded is set when the model reply had no usable structure.
	Degraded    bool   `json:"degraded,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// DefaultVerdict is the neutral verdict used to fill gaps.
func DefaultVerdict() Verdict {
	return Verdict{
		Score:              DefaultScore,
		Label:              LabelUncertain,
		Confidence:         ConfidenceLow,
		KeyFindings:        []string{},
		RedFlags:           []string{},
		SupportingEvidence: []string{},
		Sources:            []search.Result{},
	}
}
