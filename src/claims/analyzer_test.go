package claims

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stake-plus/claimcheck/src/ai/core"
	"github.com/stake-plus/claimcheck/src/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	reply    string
	err      error
	calls    int
	lastMsgs []core.Message
	lastOpts core.Options
}

func (s *scriptedClient) Complete(_ context.Context, msgs []core.Message, opts core.Options) (string, error) {
	s.calls++
	s.lastMsgs = msgs
	s.lastOpts = opts
	return s.reply, s.err
}

var sampleResults = []search.Result{
	{Title: "NASA: no diamond planet", URL: "https://nasa.example/1", Snippet: "Claims are exaggerated."},
	{Title: "Carbon-rich exoplanet", URL: "https://science.example/2", Snippet: "55 Cancri e may contain carbon."},
}

func newTestAnalyzer(c core.Client) *Analyzer {
	return NewAnalyzer(c, Options{Model: "test-model", Temperature: 0, MaxTokens: 1000, Timeout: time.Second}, nil)
}

func TestAnalyzeFullReply(t *testing.T) {
	client := &scriptedClient{reply: `{
		"credibility_score": 3,
		"verdict": "Likely False",
		"confidence": "High",
		"explanation": "Sources contradict the claim.",
		"key_findings": ["No agency confirms it"],
		"red_flags": ["Sensational wording"],
		"supporting_evidence": ["Carbon-rich planets exist"]
	}`}

	got, err := newTestAnalyzer(client).Analyze(context.Background(), "Scientists discover a planet made of diamonds", sampleResults)
	require.NoError(t, err)

	want := Verdict{
		Score:              3,
		Label:              LabelLikelyFalse,
		Confidence:         ConfidenceHigh,
		Explanation:        "Sources contradict the claim.",
		KeyFindings:        []string{"No agency confirms it"},
		RedFlags:           []string{"Sensational wording"},
		SupportingEvidence: []string{"Carbon-rich planets exist"},
		Sources:            sampleResults,
		Fingerprint:        Fingerprint("Scientists discover a planet made of diamonds", sampleResults),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("verdict mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, client.lastMsgs, 2)
	assert.Equal(t, core.RoleSystem, client.lastMsgs[0].Role)
	assert.Contains(t, client.lastMsgs[1].Content, "CLAIM: Scientists discover a planet made of diamonds")
	assert.Contains(t, client.lastMsgs[1].Content, "Source 2: Carbon-rich exoplanet")
	assert.Contains(t, client.lastMsgs[1].Content, "URL: https://nasa.example/1")
	assert.Equal(t, "test-model", client.lastOpts.Model)
	require.NotNil(t, client.lastOpts.Temperature)
	assert.Zero(t, *client.lastOpts.Temperature)
	assert.Equal(t, 1000, client.lastOpts.MaxCompletionTokens)
	assert.True(t, client.lastOpts.JSON)
}

func TestAnalyzeMissingFieldsUsesDefaults(t *testing.T) {
	for _, reply := range []string{`{}`, `{"unrelated": true}`, `{"verdict": null}`} {
		got, err := newTestAnalyzer(&scriptedClient{reply: reply}).Analyze(context.Background(), "claim text here", nil)
		require.NoError(t, err, reply)
		assert.Equal(t, 5, got.Score, reply)
		assert.Equal(t, LabelUncertain, got.Label, reply)
		assert.Equal(t, ConfidenceLow, got.Confidence, reply)
		assert.Empty(t, got.KeyFindings, reply)
		assert.Empty(t, got.RedFlags, reply)
		assert.Empty(t, got.SupportingEvidence, reply)
		assert.NotNil(t, got.KeyFindings, reply)
		assert.NotNil(t, got.Sources, reply)
	}
}

func TestAnalyzeClampsScore(t *testing.T) {
	tests := []struct {
		reply string
		want  int
	}{
		{`{"credibility_score": 15}`, 10},
		{`{"credibility_score": -4}`, 0},
		{`{"credibility_score": 7.6}`, 8},
		{`{"credibility_score": "6"}`, 6},
		{`{"credibility_score": "9/10"}`, 9},
		{`{"score": 2}`, 2},
		{`{"credibility_score": "high"}`, 5},
		{`{"credibility_score": [1]}`, 5},
	}
	for _, tt := range tests {
		got, err := newTestAnalyzer(&scriptedClient{reply: tt.reply}).Analyze(context.Background(), "claim", nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Score, tt.reply)
	}
}

func TestAnalyzeExtractsWrappedJSON(t *testing.T) {
	replies := []string{
		"Here is my analysis:\n```json\n{\"credibility_score\": 8, \"verdict\": \"Likely True\"}\n```\nThanks.",
		"```\n{\"credibility_score\": 8, \"verdict\": \"likely_true\"}\n```",
		"Sure! {\"credibility_score\": 8, \"verdict\": \"LIKELY TRUE\"} Hope that helps.",
	}
	for _, reply := range replies {
		got, err := newTestAnalyzer(&scriptedClient{reply: reply}).Analyze(context.Background(), "claim", nil)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Score, reply)
		assert.Equal(t, LabelLikelyTrue, got.Label, reply)
		assert.False(t, got.Degraded, reply)
	}
}

func TestAnalyzeUnparseableReplyDegrades(t *testing.T) {
	for _, reply := range []string{"", "I cannot help with that.", "{not json at all}", `["a","b"]`} {
		got, err := newTestAnalyzer(&scriptedClient{reply: reply}).Analyze(context.Background(), "claim", sampleResults)
		require.NoError(t, err, reply)
		assert.True(t, got.Degraded, reply)
		assert.Equal(t, DefaultScore, got.Score)
		assert.Equal(t, LabelUncertain, got.Label)
		assert.Equal(t, ConfidenceLow, got.Confidence)
		assert.Equal(t, sampleResults, got.Sources)
	}
}

func TestAnalyzeCallErrorReturnsNoVerdict(t *testing.T) {
	tests := []struct {
		err    error
		reason string
	}{
		{context.DeadlineExceeded, "timeout"},
		{&core.APIError{Provider: "openai", Status: 429, Message: "Rate limit reached"}, "rate limited"},
		{&core.APIError{Provider: "openai", Status: 401, Code: "invalid_api_key"}, "authentication failed"},
		{&core.APIError{Provider: "openai", Status: 500, Message: "boom"}, "upstream error"},
		{errors.New("dial tcp: connection refused"), "request failed"},
	}
	for _, tt := range tests {
		got, err := newTestAnalyzer(&scriptedClient{err: tt.err}).Analyze(context.Background(), "claim", sampleResults)
		require.Error(t, err)
		var analysisErr *AnalysisError
		require.True(t, errors.As(err, &analysisErr))
		assert.Equal(t, tt.reason, analysisErr.Reason)
		assert.True(t, errors.Is(err, tt.err))
		assert.Equal(t, Verdict{}, got)
	}
}

func TestAnalyzeRejectsEmptyClaim(t *testing.T) {
	client := &scriptedClient{reply: "{}"}
	_, err := newTestAnalyzer(client).Analyze(context.Background(), "  ", nil)
	require.ErrorIs(t, err, ErrEmptyClaim)
	assert.Zero(t, client.calls)
}

func TestAnalyzeSourcesAreInputResults(t *testing.T) {
	client := &scriptedClient{reply: `{"credibility_score": 9, "sources": [{"url": "https://invented.example"}]}`}
	got, err := newTestAnalyzer(client).Analyze(context.Background(), "claim", sampleResults)
	require.NoError(t, err)
	assert.Equal(t, sampleResults, got.Sources)

	got.Sources[0].Title = "mutated"
	assert.Equal(t, "NASA: no diamond planet", sampleResults[0].Title)
}

func TestAnalyzeIsIdempotentForDeterministicModel(t *testing.T) {
	client := &scriptedClient{reply: `{"credibility_score": 4, "verdict": "Mixed Evidence", "confidence": "medium", "key_findings": ["a", "b"]}`}
	a := newTestAnalyzer(client)

	first, err := a.Analyze(context.Background(), "the same claim", sampleResults)
	require.NoError(t, err)
	firstPrompt := client.lastMsgs[1].Content
	second, err := a.Analyze(context.Background(), "the same claim", sampleResults)
	require.NoError(t, err)

	assert.Equal(t, firstPrompt, client.lastMsgs[1].Content)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("verdicts differ (-first +second):\n%s", diff)
	}
}

func TestVerdictInvariantsHoldForArbitraryReplies(t *testing.T) {
	replies := []string{
		`{"credibility_score": 1e9, "verdict": "TOTALLY TRUE!!!", "confidence": "very high"}`,
		`{"credibility_score": -1e9, "verdict": 42, "confidence": 0.1}`,
		`{"credibility_score": null, "verdict": "", "confidence": ""}`,
		`{"credibility_score": "NaN", "verdict": "🤷", "confidence": ["x"]}`,
		`{"credibility_score": true, "verdict": {"x": 1}, "confidence": 87}`,
		strings.Repeat("{", 50),
	}
	for _, reply := range replies {
		got, err := newTestAnalyzer(&scriptedClient{reply: reply}).Analyze(context.Background(), "claim", nil)
		require.NoError(t, err, reply)
		assert.GreaterOrEqual(t, got.Score, MinScore, reply)
		assert.LessOrEqual(t, got.Score, MaxScore, reply)
		assert.True(t, got.Label.Valid(), reply)
		assert.True(t, got.Confidence.Valid(), reply)
	}
}
