package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stake-plus/claimcheck/src/claims"
	"github.com/stake-plus/claimcheck/src/pipeline"
	"github.com/stake-plus/claimcheck/src/render"
)

var (
	checkJSON  bool
	checkWidth int
)

var checkCmd = &cobra.Command{
	Use:   "check [claim]",
	Short: "Check one claim and print the verdict",
	Long: `Check one claim from the command line. Progress is written to stderr and
the verdict to stdout. With no argument the claim is read from stdin.`,
	Example: `  claimcheck check "Scientists discover new planet made entirely of diamonds"
  echo "The Eiffel Tower was moved to Berlin" | claimcheck check --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the outcome as JSON")
	checkCmd.Flags().IntVar(&checkWidth, "width", 0, "Wrap width (default $COLUMNS or 80)")
}

// checkOutput is the --json shape; it mirrors the HTTP API response.
type checkOutput struct {
	RunID     string          `json:"run_id,omitempty"`
	State     pipeline.State  `json:"state"`
	Claim     string          `json:"claim"`
	Verdict   *claims.Verdict `json:"verdict,omitempty"`
	Stage     string          `json:"stage,omitempty"`
	Error     string          `json:"error,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

var errCheckFailed = errors.New("check failed")

func runCheck(cmd *cobra.Command, args []string) error {
	claim, err := readClaim(args)
	if err != nil {
		return err
	}

	runner, _, err := buildRunner()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := render.NewTerminal(terminalWidth())
	stderr := cmd.ErrOrStderr()
	out := runner.Run(ctx, claim, func(_ uuid.UUID, state pipeline.State) {
		if !checkJSON && !state.Terminal() {
			fmt.Fprintln(stderr, term.Progress(state))
		}
	})

	if checkJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(newCheckOutput(out)); err != nil {
			return err
		}
	} else if out.OK() {
		fmt.Fprintln(cmd.OutOrStdout(), term.Verdict(out.Claim, render.NewView(*out.Verdict)))
	} else if out.Err != nil {
		fmt.Fprintln(stderr, term.Error(render.NewErrorView(out.Err)))
	}

	if !out.OK() {
		return errCheckFailed
	}
	return nil
}

func newCheckOutput(out pipeline.Outcome) checkOutput {
	resp := checkOutput{
		State:     out.State,
		Claim:     out.Claim,
		Verdict:   out.Verdict,
		ElapsedMS: out.Elapsed.Milliseconds(),
	}
	if out.RunID != uuid.Nil {
		resp.RunID = out.RunID.String()
	}
	if out.Err != nil {
		resp.Stage = string(out.Err.Stage)
		resp.Error = out.Err.UserMessage()
	}
	return resp
}

func readClaim(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(io.LimitReader(os.Stdin, pipeline.MaxClaimLength*4+1))
	if err != nil {
		return "", fmt.Errorf("read claim from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func terminalWidth() int {
	if checkWidth > 0 {
		return checkWidth
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return render.DefaultWidth
}
