package commands

import (
	"github.com/spf13/cobra"

	"github.com/farewatch/farewatch/internal/config"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/output"
)

type planReport struct {
	DirectPairs []dates.Pair `json:"direct_pairs"`
	ComboDays   []dates.Date `json:"combo_days"`
	GapDays     int          `json:"gap_days"`
	Searches    int          `json:"searches"`
}

// PlanCmd prints what a run would search without calling the API.
func PlanCmd() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the date pairs and search count of the plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(planPath)
			if err != nil {
				return err
			}
			if err := cfg.Plan.Validate(); err != nil {
				return err
			}

			p := cfg.Plan
			return output.JSON(planReport{
				DirectPairs: p.DirectPairs(),
				ComboDays:   dates.Range(p.Combo.Window),
				GapDays:     p.Combo.GapDays,
				Searches:    p.SearchCount(),
			})
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "YAML plan file (default $FAREWATCH_PLAN or the built-in plan)")

	return cmd
}
