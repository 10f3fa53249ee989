package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/config"
	"github.com/stake-plus/claimcheck/src/logging"
	"github.com/stake-plus/claimcheck/src/search"
	"go.uber.org/zap"
)

// Searcher is the search stage; *search.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, claim string, maxResults int, timeout time.Duration) ([]search.Result, error)
}

// Analyzer is the analysis stage; *claims.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, claim string, results []search.Result) (claims.Verdict, error)
}

// Observer is told about every state a run enters, in order.
type Observer func(runID uuid.UUID, state State)

// Settings bound the search stage.
type Settings struct {
	MaxResults    int
	SearchTimeout time.Duration
}

// SettingsFromConfig copies the search bounds out of the loaded configuration.
func SettingsFromConfig(cfg config.Search) Settings {
	return Settings{MaxResults: cfg.MaxResults, SearchTimeout: cfg.Timeout}
}

// Outcome is the result of one submission.
type Outcome struct {
	RunID   uuid.UUID
	Seq     uint64
	Claim   string
	State   State
	Results []search.Result
	Verdict *claims.Verdict
	Err     *StageError
	Elapsed time.Duration
}

// OK reports whether the run rendered a verdict.
func (o Outcome) OK() bool { return o.State == StateRendered && o.Verdict != nil }

// Runner drives submissions through search and analysis. Runs share nothing
// except the stages and the sequence counter, so concurrent calls are safe.
type Runner struct {
	searcher Searcher
	analyzer Analyzer
	settings Settings
	logger   *zap.Logger
	seq      atomic.Uint64
}

func NewRunner(searcher Searcher, analyzer Analyzer, settings Settings, logger *zap.Logger) *Runner {
	return &Runner{
		searcher: searcher,
		analyzer: analyzer,
		settings: settings,
		logger:   logging.OrNop(logger),
	}
}

// Run executes one submission. Failures are reported in Outcome.Err; a
// search failure ends the run before the analyzer is called.
func (r *Runner) Run(ctx context.Context, claim string, observe Observer) Outcome {
	start := time.Now()
	out := Outcome{
		RunID: uuid.New(),
		Seq:   r.seq.Add(1),
		Claim: claim,
		State: StateIdle,
	}
	log := r.logger.With(zap.String("run_id", out.RunID.String()), zap.Uint64("seq", out.Seq))
	m := NewMachine()

	enter := func(s State) {
		if err := m.Transition(s); err != nil {
			// Only reachable through a bug in Run itself.
			log.DPanic("pipeline transition", zap.Error(err))
			return
		}
		out.State = s
		if observe != nil {
			observe(out.RunID, s)
		}
	}
	finish := func() Outcome {
		out.Elapsed = time.Since(start)
		fields := []zap.Field{zap.String("state", string(out.State)), zap.Duration("elapsed", out.Elapsed)}
		if out.Err != nil {
			fields = append(fields, zap.String("stage", string(out.Err.Stage)), zap.Error(out.Err.Err))
		}
		log.Info("run finished", fields...)
		return out
	}

	cleaned, err := ValidateClaim(claim)
	if err != nil {
		out.Err = &StageError{Stage: StageInput, Err: err}
		return finish()
	}
	out.Claim = cleaned

	enter(StateSearching)
	results, err := r.searcher.Search(ctx, cleaned, r.settings.MaxResults, r.settings.SearchTimeout)
	if err != nil {
		out.Err = &StageError{Stage: StageSearch, Err: err}
		enter(StateErrored)
		return finish()
	}
	out.Results = results
	log.Debug("search complete", zap.Int("results", len(results)))

	enter(StateAnalyzing)
	verdict, err := r.analyzer.Analyze(ctx, cleaned, results)
	if err != nil {
		out.Err = &StageError{Stage: StageAnalysis, Err: err}
		enter(StateErrored)
		return finish()
	}
	out.Verdict = &verdict

	enter(StateRendered)
	return finish()
}
