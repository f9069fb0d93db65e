package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/drip-labs/drip/internal/domain"
)

func init() {
	rootCmd.AddCommand(plansCmd)
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show the tier comparison table",
	RunE:  runPlans,
}

func runPlans(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tCOST/MONTH\tMULTIPLIER\tMAX SOURCES\tFEATURES")

	for _, p := range domain.PlanComparison() {
		fmt.Fprintf(w, "%s\t%s\t%.2fx\t%d\t%s\n",
			p.Name,
			domain.FormatAmount(p.CostPerMonth),
			p.Multiplier,
			p.MaxSources,
			featureList(p.Features),
		)
	}
	return w.Flush()
}

func featureList(f domain.Features) string {
	out := ""
	add := func(s string) {
		if out != "" {
			out += ", "
		}
		out += s
	}
	if f.ExtraSourceSlots {
		add("extra slots")
	}
	if f.ReducedCooldowns {
		add("reduced cooldowns")
	}
	if f.AutoCollect {
		add("auto-collect")
	}
	if out == "" {
		out = "-"
	}
	return out
}
