package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

var jobCmd = &cobra.Command{
	Use:   "job <job-id>",
	Short: "Show a stored job with its rooms or positions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		job, err := a.jobs.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		view := map[string]any{
			"id":              job.ID,
			"document_id":     job.DocumentID,
			"kind":            job.Kind,
			"format":          job.Format,
			"started_at":      job.StartedAt,
			"finished_at":     job.FinishedAt,
			"status":          job.Status,
			"error_message":   job.ErrorMessage,
			"blueprint_style": job.BlueprintStyle,
			"method":          job.Method,
			"warning_count":   job.WarningCount,
			"model_name":      job.ModelName,
		}
		switch constants.JobKind(job.Kind) {
		case constants.JobKindAreas:
			rooms, err := a.results.ListRooms(cmd.Context(), id)
			if err != nil {
				return err
			}
			view["rooms"] = rooms
		case constants.JobKindLV:
			positions, err := a.results.ListPositions(cmd.Context(), id)
			if err != nil {
				return err
			}
			view["positions"] = positions
		}
		return output(view)
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Write the result of a stored job as XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := a.exporter.ExportJobXLSX(cmd.Context(), id)
		if err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = fmt.Sprintf("takeoff_%s.xlsx", id)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return output(map[string]any{"job_id": id, "path": path, "bytes": len(data)})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: takeoff_<job-id>.xlsx)")
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.InvalidArgumentErrorf("invalid job id %q", raw)
	}
	return id, nil
}
