package main

import (
	"github.com/spf13/cobra"

	"github.com/clarencejohnson126/angebotsagent/internal/ingest"
)

var ingestProcess bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Register every document under a directory",
	Long: `Hash and register every supported document under dir. With --process
each file is also classified and extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		results, stats, err := a.ingestor.IngestDirectory(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}
		if !ingestProcess {
			return output(map[string]any{"stats": stats, "results": results})
		}

		type processed struct {
			ingest.IngestionResult
			JobID      string `json:"job_id,omitempty"`
			Kind       string `json:"kind,omitempty"`
			ProcessErr string `json:"process_error,omitempty"`
		}
		rows := make([]processed, 0, len(results))
		for _, r := range results {
			row := processed{IngestionResult: r}
			if r.Err == "" {
				out, err := a.processor.ProcessAuto(cmd.Context(), r.SourcePath)
				if err != nil {
					row.ProcessErr = err.Error()
				} else {
					row.JobID = out.JobID.String()
					row.Kind = string(out.Kind)
				}
			}
			rows = append(rows, row)
		}
		return output(map[string]any{"stats": stats, "results": rows})
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestProcess, "process", false, "also extract each ingested document")
}
