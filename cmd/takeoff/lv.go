package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/clarencejohnson126/angebotsagent/internal/core/lv"
)

var lvCmd = &cobra.Command{
	Use:   "lv <document>",
	Short: "Extract positions from a bill of quantities",
	Long: `Parse the positions of an LV (Leistungsverzeichnis) and store the job.

When the pattern parser finds nothing and OPENAI_API_KEY is set, the
positions are extracted by the model and checked against the source text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.processor.ProcessLV(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output(map[string]any{
			"job_id":       out.JobID,
			"document_id":  out.DocumentID,
			"deduplicated": out.Deduplicated,
			"document":     out.LV,
			"tender":       out.Tender,
		})
	},
}

var lineCmd = &cobra.Command{
	Use:   "line <text>...",
	Short: "Split a single LV line into its columns",
	Example: `  takeoff line "01.02.0010 Innenwand KS 17,5 cm 245,50 m² 48,20 11.833,10"`,
	Args: cobra.MinimumNArgs(1),
	// no config or database needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return output(lv.ParseLVLine(strings.Join(args, " ")))
	},
}
