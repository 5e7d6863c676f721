package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/core/risk"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// riskInput is the file read by the risk command. Positions and take-offs
// may also come from stored jobs.
type riskInput struct {
	Positions []entity.LVPosition                  `json:"positions"`
	Takeoffs  []risk.Takeoff                       `json:"takeoffs"`
	Mapping   map[string][]constants.RoomCategory `json:"mapping"`
}

var (
	riskFile     string
	riskLVJob    string
	riskAreasJob string
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Flag LV quantities that deviate from the take-off",
	Long: `Compare LV quantities with measured take-offs. Deviations above 10 %
are reported as medium, above 20 % as high severity.

The input file (yaml or json) may carry positions, takeoffs and a mapping
from position numbers to room categories. --lv-job reads the positions of a
stored LV job; --areas-job derives take-offs from a stored area job through
the mapping.

Example input:
  mapping:
    "01.02.0010": [office, corridor]
  takeoffs:
    - position_number: "01.03.0020"
      quantity: 118.4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in riskInput
		if riskFile != "" {
			if err := decodeFile(riskFile, &in); err != nil {
				return common.InvalidArgumentError(err.Error())
			}
		}

		if riskLVJob != "" || riskAreasJob != "" {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if riskLVJob != "" {
				id, err := parseUUID(riskLVJob)
				if err != nil {
					return err
				}
				if in.Positions, err = a.results.ListPositions(cmd.Context(), id); err != nil {
					return err
				}
			}
			if riskAreasJob != "" {
				id, err := parseUUID(riskAreasJob)
				if err != nil {
					return err
				}
				job, err := a.jobs.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				var res entity.ExtractionResult
				if err := json.Unmarshal(job.ResultJSON, &res); err != nil {
					return common.InvalidArgumentErrorf("job %s has no area result", id)
				}
				in.Takeoffs = append(in.Takeoffs, risk.TakeoffsFromAreas(res, in.Mapping)...)
			}
		}

		risks := risk.CompareQuantities(in.Positions, in.Takeoffs)
		if risks == nil {
			risks = []risk.Risk{}
		}
		return output(map[string]any{"risks": risks})
	},
}

func init() {
	riskCmd.Flags().StringVarP(&riskFile, "file", "f", "", "input file with positions, takeoffs and mapping")
	riskCmd.Flags().StringVar(&riskLVJob, "lv-job", "", "read positions from a stored LV job")
	riskCmd.Flags().StringVar(&riskAreasJob, "areas-job", "", "derive take-offs from a stored area job")
}
