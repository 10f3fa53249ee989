package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/search"
)

// Claim length bounds, in runes, after trimming.
const (
	MinClaimLength = 10
	MaxClaimLength = 2000
)

// ErrInvalidClaim rejects a submission before any outbound call.
var ErrInvalidClaim = errors.New("invalid claim")

// ValidateClaim trims claim and checks its length and content.
func ValidateClaim(claim string) (string, error) {
	claim = strings.TrimSpace(claim)
	n := len([]rune(claim))
	switch {
	case n == 0:
		return "", fmt.Errorf("%w: please enter a claim to check", ErrInvalidClaim)
	case n < MinClaimLength:
		return "", fmt.Errorf("%w: claim must be at least %d characters", ErrInvalidClaim, MinClaimLength)
	case n > MaxClaimLength:
		return "", fmt.Errorf("%w: claim must be at most %d characters", ErrInvalidClaim, MaxClaimLength)
	}
	if !strings.ContainsFunc(claim, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		return "", fmt.Errorf("%w: claim must contain letters or numbers", ErrInvalidClaim)
	}
	return claim, nil
}

// Stage names the pipeline step that failed.
type Stage string

const (
	StageInput    Stage = "input"
	StageSearch   Stage = "search"
	StageAnalysis Stage = "analysis"
)

// StageError wraps the failure of one stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Reason is the classified cause, safe to show to users.
func (e *StageError) Reason() string {
	var searchErr *search.Error
	var analysisErr *claims.AnalysisError
	switch {
	case errors.As(e.Err, &searchErr):
		return searchErr.Reason
	case errors.As(e.Err, &analysisErr):
		return analysisErr.Reason
	default:
		return "unexpected error"
	}
}

// UserMessage names the failing stage without upstream detail.
func (e *StageError) UserMessage() string {
	switch e.Stage {
	case StageInput:
		if msg := strings.TrimPrefix(e.Err.Error(), ErrInvalidClaim.Error()+": "); msg != e.Err.Error() {
			return capitalize(msg) + "."
		}
		return "The claim could not be accepted."
	case StageSearch:
		return fmt.Sprintf("Search failed (%s). No analysis was run; please try again.", e.Reason())
	case StageAnalysis:
		return fmt.Sprintf("Analysis failed (%s). Please try again.", e.Reason())
	default:
		return "Something went wrong. Please try again."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
