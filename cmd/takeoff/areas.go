package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/core"
)

var (
	areasStyle string
	areasPages string
)

var areasCmd = &cobra.Command{
	Use:   "areas <floor-plan>",
	Short: "Extract room areas from a floor plan",
	Long: `Extract room areas (NRF) from a floor plan and store the job.

The blueprint style is detected unless --style is given.

Examples:
  takeoff areas plan.pdf
  takeoff areas plan.pdf --style leiq --pages 0,2
  takeoff areas dump.yaml -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, err := parsePages(areasPages)
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.processor.ProcessAreas(cmd.Context(), args[0], core.AreaOptions{
			Style: strings.ToLower(strings.TrimSpace(areasStyle)),
			Pages: pages,
		})
		if err != nil {
			return err
		}
		return output(map[string]any{
			"job_id":       out.JobID,
			"document_id":  out.DocumentID,
			"deduplicated": out.Deduplicated,
			"result":       out.Areas,
		})
	},
}

func init() {
	areasCmd.Flags().StringVar(&areasStyle, "style", "", "blueprint style: "+strings.Join(constants.StyleNames(), ", "))
	areasCmd.Flags().StringVar(&areasPages, "pages", "", "comma separated 0-based page indices (default: all)")
}

// parsePages reads "0,2,5" into page indices.
func parsePages(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	pages := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, common.InvalidArgumentErrorf("invalid page index %q", p)
		}
		pages = append(pages, n)
	}
	return pages, nil
}
