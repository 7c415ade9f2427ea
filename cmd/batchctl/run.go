package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/bootstrap"
	"classroom-backend/internal/llm"
	"classroom-backend/internal/prompts"
	"classroom-backend/internal/results"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate every item of a batch file",
	Long:  "Runs a batch file through the configured provider (LLM_PROVIDER) and writes the outcomes as JSON, ready for export.",
	RunE:  runBatch,
}

var (
	runFile     string
	runOut      string
	runProvider string
	runModel    string
)

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Path to batch JSON file (default stdin)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Path to write result JSON (default stdout)")
	runCmd.Flags().StringVar(&runProvider, "provider", "", "Override LLM_PROVIDER (demo or openai)")
	runCmd.Flags().StringVar(&runModel, "model", "", "Override LLM_MODEL")
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	var in batchFile
	if err := readJSON(runFile, &in); err != nil {
		return err
	}
	if _, ok := prompts.Default().Get(in.Kind); !ok {
		return fmt.Errorf("%w: %q", batch.ErrUnknownKind, in.Kind)
	}
	if err := batch.Validate(in.Items, cfg.BatchMaxItems); err != nil {
		return err
	}

	provider, err := newProvider()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	orch := &batch.Orchestrator{
		Generator:   batch.NewGenerator(provider, cfg.GenerationTimeout),
		Concurrency: cfg.BatchConcurrency,
	}
	errOut := cmd.ErrOrStderr()
	outcomes := orch.Run(ctx, in.settings(), in.Items, func(done, total int) {
		fmt.Fprintf(errOut, "\r%d/%d", done, total)
	})
	fmt.Fprintln(errOut)

	summary := batch.Summarize(outcomes)
	fmt.Fprintf(errOut, "%s: %d completed, %d skipped, %d failed\n",
		results.Title(in.Kind), summary.Completed, summary.Skipped, summary.Failed)

	data, err := json.MarshalIndent(resultFile{
		Kind:     in.Kind,
		Settings: in.Settings,
		Outcomes: outcomes,
		Drafts:   batch.NewDrafts(outcomes),
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(runOut, append(data, '\n'))
}

func newProvider() (llm.Provider, error) {
	c := cfg
	if runProvider != "" {
		c.LLMProvider = runProvider
	}
	if runModel != "" {
		c.LLMModel = runModel
	}
	// Mirror the dev fallback so a missing key degrades to demo output.
	c.Env = "dev"
	return bootstrap.BuildProvider(c)
}
