package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"classroom-backend/internal/prompts"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the content kinds and their fields",
	RunE:  runKinds,
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func runKinds(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, t := range prompts.Default().List() {
		fmt.Fprintf(out, "%s\t%s (%s)\n", t.Kind, t.Title, t.Category)
		fmt.Fprintf(out, "  fields:   %s\n", fieldNames(t.Fields))
		fmt.Fprintf(out, "  settings: %s\n", fieldNames(t.Settings))
	}
	return nil
}

func fieldNames(fields []prompts.Field) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name := f.Name
		if f.Required {
			name += "*"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
