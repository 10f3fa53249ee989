package mcp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/pipeline"
)

// Checker runs one submission; *pipeline.Runner satisfies it.
type Checker interface {
	Run(ctx context.Context, claim string, observe pipeline.Observer) pipeline.Outcome
}

// MetadataCheckClaim describes the check_claim tool.
var MetadataCheckClaim = &mcp.Tool{
	Name: "check_claim",
	Description: "Fact-check a headline or statement. Searches the web for the claim, asks a language " +
		"model to weigh the results, and returns a credibility score from 0 to 10, a verdict " +
		"(LikelyTrue, LikelyFalse, Uncertain, MixedEvidence), a confidence level, findings, " +
		"red flags, supporting evidence and the sources consulted.",
	InputSchema: map[string]any{
		"type":     "object",
		"required": []string{"claim"},
		"properties": map[string]any{
			"claim": map[string]any{
				"type":        "string",
				"description": "The claim to check",
				"minLength":   pipeline.MinClaimLength,
				"maxLength":   pipeline.MaxClaimLength,
			},
		},
	},
}

// InputCheckClaim is the input for the check_claim tool.
type InputCheckClaim struct {
	Claim string `json:"claim"`
}

// OutputCheckClaim is the output for the check_claim tool.
type OutputCheckClaim struct {
	RunID   string          `json:"run_id"`
	State   string          `json:"state"`
	Claim   string          `json:"claim"`
	Verdict *claims.Verdict `json:"verdict,omitempty"`
}

type tools struct {
	checker Checker
}

// CheckClaim runs the pipeline. A failed stage becomes a tool error carrying
// the user-facing message only.
func (t tools) CheckClaim(ctx context.Context, _ *mcp.CallToolRequest, input InputCheckClaim) (*mcp.CallToolResult, OutputCheckClaim, error) {
	out := t.checker.Run(ctx, input.Claim, nil)
	if out.Err != nil {
		return nil, OutputCheckClaim{}, errors.New(out.Err.UserMessage())
	}
	return nil, OutputCheckClaim{
		RunID:   runID(out.RunID),
		State:   string(out.State),
		Claim:   out.Claim,
		Verdict: out.Verdict,
	}, nil
}

func runID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
