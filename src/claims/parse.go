package claims

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const degradedExplanation = "The model response could not be interpreted, so a neutral verdict is shown."

var (
	scoreKeys       = []string{"credibility_score", "score", "credibility"}
	labelKeys       = []string{"verdict", "label"}
	confidenceKeys  = []string{"confidence", "confidence_level"}
	explanationKeys = []string{"explanation", "analysis", "summary"}
	findingsKeys    = []string{"key_findings", "findings"}
	redFlagKeys     = []string{"red_flags", "flags"}
	evidenceKeys    = []string{"supporting_evidence", "evidence"}
)

// parseVerdict decodes a model reply field by field. Missing or malformed
// fields take their defaults; a reply with no usable structure yields the
// default verdict marked Degraded. It never fails.
func parseVerdict(text string) Verdict {
	v := DefaultVerdict()

	fields, ok := decodeObject(text)
	if !ok {
		v.Degraded = true
		v.Explanation = degradedExplanation
		return v
	}

	recognised := false
	if raw, ok := lookup(fields, scoreKeys); ok {
		recognised = true
		v.Score = decodeScore(raw)
	}
	if raw, ok := lookup(fields, labelKeys); ok {
		recognised = true
		v.Label = MapLabel(decodeString(raw))
	}
	if raw, ok := lookup(fields, confidenceKeys); ok {
		recognised = true
		v.Confidence = decodeConfidence(raw)
	}
	if raw, ok := lookup(fields, explanationKeys); ok {
		recognised = true
		v.Explanation = strings.TrimSpace(decodeString(raw))
	}
	if raw, ok := lookup(fields, findingsKeys); ok {
		recognised = true
		v.KeyFindings = decodeList(raw)
	}
	if raw, ok := lookup(fields, redFlagKeys); ok {
		recognised = true
		v.RedFlags = decodeList(raw)
	}
	if raw, ok := lookup(fields, evidenceKeys); ok {
		recognised = true
		v.SupportingEvidence = decodeList(raw)
	}

	if !recognised {
		v.Degraded = true
		v.Explanation = degradedExplanation
	}
	return v
}

// extractJSON finds the object in a reply that may wrap it in prose or a
// markdown fence.
func extractJSON(text string) (string, bool) {
	candidate := strings.TrimSpace(text)
	if idx := strings.Index(candidate, "```json"); idx >= 0 {
		candidate = fenceBody(candidate[idx+len("```json"):])
	} else if idx := strings.Index(candidate, "```"); idx >= 0 {
		candidate = fenceBody(candidate[idx+3:])
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return candidate[start : end+1], true
}

func fenceBody(s string) string {
	if end := strings.Index(s, "```"); end >= 0 {
		return s[:end]
	}
	return s
}

func decodeObject(text string) (map[string]json.RawMessage, bool) {
	body, ok := extractJSON(text)
	if !ok {
		return nil, false
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, false
	}
	fields := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		fields[normalizeKey(k)] = v
	}
	return fields, true
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(k)
}

func lookup(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := fields[k]; ok && !isNull(raw) {
			return raw, true
		}
	}
	return nil, false
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// decodeScore accepts 7, 7.6, "7", "7/10" and clamps to [0,10].
func decodeScore(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return DefaultScore
		}
		parsed, ok := parseScoreString(s)
		if !ok {
			return DefaultScore
		}
		f = parsed
	}
	return ClampScore(f)
}

func parseScoreString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "/"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ClampScore rounds f and clamps it into [MinScore, MaxScore].
func ClampScore(f float64) int {
	if math.IsNaN(f) {
		return DefaultScore
	}
	f = math.Round(f)
	if f < MinScore {
		return MinScore
	}
	if f > MaxScore {
		return MaxScore
	}
	return int(f)
}

func decodeConfidence(raw json.RawMessage) Confidence {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f > 1 {
			f /= 100
		}
		switch {
		case f >= 0.75:
			return ConfidenceHigh
		case f >= 0.4:
			return ConfidenceMedium
		default:
			return ConfidenceLow
		}
	}
	return MapConfidence(decodeString(raw))
}

// MapConfidence maps free text to a Confidence, defaulting to Low.
func MapConfidence(s string) Confidence {
	n := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(n, "high"):
		return ConfidenceHigh
	case strings.Contains(n, "medium"), strings.Contains(n, "moderate"), strings.Contains(n, "mid"):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

var exactLabels = map[string]Label{
	"likelytrue":           LabelLikelyTrue,
	"true":                 LabelLikelyTrue,
	"mostlytrue":           LabelLikelyTrue,
	"credible":             LabelLikelyTrue,
	"likelyfalse":          LabelLikelyFalse,
	"false":                LabelLikelyFalse,
	"mostlyfalse":          LabelLikelyFalse,
	"fake":                 LabelLikelyFalse,
	"mixedevidence":        LabelMixedEvidence,
	"mixed":                LabelMixedEvidence,
	"uncertain":            LabelUncertain,
	"unknown":              LabelUncertain,
	"insufficientevidence": LabelUncertain,
}

var (
	mixedMarkers     = []string{"mixed", "partly", "partially", "half true", "half-true", "disputed", "contested"}
	uncertainMarkers = []string{"uncertain", "unverified", "unclear", "unknown", "insufficient", "unproven", "undetermined"}
	falseMarkers     = []string{"false", "fake", "untrue", "not true", "misleading", "hoax", "debunk", "fabricat", "inaccurate", "incorrect", "not credible"}
	trueMarkers      = []string{"true", "accurate", "credible", "verified", "correct", "confirmed"}
)

// MapLabel maps free text to the nearest Label case-insensitively. A negated
// positive ("not accurate", "unlikely to be true") is LikelyFalse, and a
// negated confirmation ("not verified") is Uncertain. Anything unrecognised is
// Uncertain.
func MapLabel(s string) Label {
	n := strings.ToLower(strings.Join(strings.Fields(strings.NewReplacer("_", " ").Replace(s)), " "))
	compact := strings.NewReplacer(" ", "", "-", "").Replace(n)
	if l, ok := exactLabels[compact]; ok {
		return l
	}
	switch {
	case containsAny(n, mixedMarkers):
		return LabelMixedEvidence
	case containsAny(n, uncertainMarkers):
		return LabelUncertain
	}
	if l, ok := negatedPositive(n); ok {
		return l
	}
	switch {
	case containsAny(n, falseMarkers):
		return LabelLikelyFalse
	case containsAny(n, trueMarkers):
		return LabelLikelyTrue
	default:
		return LabelUncertain
	}
}

var (
	negators = map[string]bool{
		"not": true, "no": true, "never": true, "hardly": true, "cannot": true,
		"isn": true, "wasn": true, "aren": true, "nor": true, "neither": true,
	}
	// Confirmation words only say whether something was checked; negating
	// them does not make a claim false.
	confirmStems = []string{"verified", "confirmed", "proven", "substantiated"}
	assertStems  = []string{"true", "accurate", "credible", "correct", "factual", "legit"}
)

// negationWindow is how many words before a marker a negator may appear.
const negationWindow = 4

// negatedPositive reports the label for text whose positive marker is negated.
func negatedPositive(n string) (Label, bool) {
	words := strings.FieldsFunc(n, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	for i, w := range words {
		if w == "unlikely" || w == "implausible" {
			return LabelLikelyFalse, true
		}
		confirm := hasAnyPrefix(w, confirmStems)
		if !confirm && !hasAnyPrefix(w, assertStems) {
			continue
		}
		for j := max(0, i-negationWindow); j < i; j++ {
			if negators[words[j]] {
				if confirm {
					return LabelUncertain, true
				}
				return LabelLikelyFalse, true
			}
		}
	}
	return "", false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// decodeList accepts an array of strings, a single string, or a mixed array.
func decodeList(raw json.RawMessage) []string {
	out := []string{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := strings.TrimSpace(decodeString(raw)); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range items {
		if isNull(item) {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			var compacted bytes.Buffer
			s = string(item)
			if json.Compact(&compacted, item) == nil {
				s = compacted.String()
			}
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
