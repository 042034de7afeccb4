package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumenlab/lumen/pkg/lighting"
	"github.com/lumenlab/lumen/pkg/pipeline"
)

// planCommand creates the plan command for computing layouts from known
// room dimensions.
func (c *CLI) planCommand() *cobra.Command {
	var (
		width   string
		height  string
		lux     string
		lumens  string
		formats string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute a fixture layout from room dimensions",
		Long: `Plan computes the number of lighting fixtures a room needs and their
positions on an even grid, from the room dimensions and the desired
illuminance.

All four inputs are required and must be positive numbers. Invalid
input stops the computation; nothing is substituted.`,
		Example: `  lumen plan --width 4 --height 3 --lux 300 --lumens 900
  lumen plan --width 5.5 --height 4.2 --lux 500 --lumens 1200 --format svg,json -o room`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parsePositive("width", width)
			if err != nil {
				return err
			}
			h, err := parsePositive("height", height)
			if err != nil {
				return err
			}
			lx, err := parsePositive("lux", lux)
			if err != nil {
				return err
			}
			lm, err := parsePositive("lumens", lumens)
			if err != nil {
				return err
			}

			plan, err := lighting.Compute(
				lighting.Dimensions{Width: w, Height: h},
				lighting.Requirements{Illuminance: lx, LumensPerFixture: lm},
			)
			if err != nil {
				return err
			}

			printPlanSummary(plan, false)

			opts := pipeline.Options{Formats: parseFormats(formats)}
			for _, format := range opts.Formats {
				if err := pipeline.ValidateFormat(format); err != nil {
					return err
				}
			}
			runner := pipeline.NewRunner(nil, c.Logger)
			artifacts, err := runner.Render(plan, opts)
			if err != nil {
				return err
			}
			return writeArtifacts(artifacts, out)
		},
	}

	cmd.Flags().StringVar(&width, "width", "", "room width in meters (required)")
	cmd.Flags().StringVar(&height, "height", "", "room height in meters (required)")
	cmd.Flags().StringVar(&lux, "lux", "", "desired illuminance in lux (required)")
	cmd.Flags().StringVar(&lumens, "lumens", "", "luminous flux per fixture in lumens (required)")
	cmd.Flags().StringVar(&formats, "format", "", "output formats, comma-separated (json, svg)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file base path (extension added per format)")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}

// printPlanSummary prints the computed layout to the terminal.
func printPlanSummary(plan *lighting.Plan, cached bool) {
	printNewline()
	fmt.Println(StyleTitle.Render("Fixture layout"))
	printKeyValue("room", fmt.Sprintf("%g x %g m", plan.Dimensions.Width, plan.Dimensions.Height))
	printKeyValue("target", fmt.Sprintf("%g lux", plan.Requirements.Illuminance))
	printKeyValue("fixture", fmt.Sprintf("%g lm", plan.Requirements.LumensPerFixture))
	printKeyValue("spacing", fmt.Sprintf("%.2f x %.2f m", plan.SpacingX, plan.SpacingY))
	printLayoutStats(plan.FixtureCount, plan.Columns, plan.Rows, cached)

	for i, pos := range plan.Positions {
		printDetail("%d: (%.2f, %.2f)", i+1, pos.X, pos.Y)
	}
	if plan.Short() {
		printWarning("layout places %d of %d fixtures; positions fell outside the room", len(plan.Positions), plan.FixtureCount)
	}
	printNewline()
}

// writeArtifacts writes rendered artifacts next to the base path, or the
// JSON artifact to stdout when no base path is given.
func writeArtifacts(artifacts map[string][]byte, base string) error {
	if base == "" {
		if data, ok := artifacts[pipeline.FormatJSON]; ok {
			fmt.Println(string(data))
		}
		return nil
	}
	for format, data := range artifacts {
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
