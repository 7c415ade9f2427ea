package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"classroom-backend/internal/prompts"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the provider prompt for one item of a batch file",
	RunE:  runPrompt,
}

var (
	promptFile  string
	promptIndex int
)

func init() {
	promptCmd.Flags().StringVarP(&promptFile, "file", "f", "", "Path to batch JSON file (default stdin)")
	promptCmd.Flags().IntVarP(&promptIndex, "item", "i", 0, "Zero-based item index")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, _ []string) error {
	var in batchFile
	if err := readJSON(promptFile, &in); err != nil {
		return err
	}
	if promptIndex < 0 || promptIndex >= len(in.Items) {
		return fmt.Errorf("item %d out of range (batch has %d items)", promptIndex, len(in.Items))
	}
	item := in.Items[promptIndex]
	p, err := prompts.Build(in.Kind, item.Identifier, in.Settings, item.Fields)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# system\n%s\n\n# instruction (max %d tokens)\n%s\n", p.System, p.MaxTokens, p.Instruction)
	return nil
}
