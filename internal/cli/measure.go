package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlab/lumen/pkg/pipeline"
)

// measureCommand creates the measure command for the full photo-to-plan
// pipeline against the detection service.
func (c *CLI) measureCommand() *cobra.Command {
	var (
		lux         string
		lumens      string
		formats     string
		out         string
		annotated   string
		detectorURL string
		noCache     bool
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "measure <image>",
		Short: "Measure a room from a photo and compute its layout",
		Long: `Measure uploads a photo containing an ArUco reference marker to the
detection service, reads back the measured room dimensions, and computes
the fixture layout for the desired illuminance.

Without --lux and --lumens only the measured dimensions are printed.`,
		Example: `  lumen measure room.jpg --lux 300 --lumens 900
  lumen measure room.jpg --lux 500 --lumens 1200 --annotated marked.jpg -o room`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			runner, err := c.newRunner(detectorURL, noCache)
			if err != nil {
				return err
			}

			// Dimensions only: no lux/lumens given.
			if lux == "" && lumens == "" {
				spin := newSpinnerWithContext(cmd.Context(), "Measuring room...")
				spin.Start()
				dims, annotatedImage, elapsed, err := runner.Detect(cmd.Context(), image, refresh)
				if err != nil {
					spin.StopWithError("Measurement failed")
					return err
				}
				spin.StopWithSuccess(fmt.Sprintf("Measured %.2f x %.2f m (%s)", dims.Width, dims.Height, elapsed.Round(time.Millisecond)))
				return writeAnnotated(annotated, annotatedImage)
			}

			lx, err := parsePositive("lux", lux)
			if err != nil {
				return err
			}
			lm, err := parsePositive("lumens", lumens)
			if err != nil {
				return err
			}

			opts := pipeline.Options{
				Image:            image,
				Refresh:          refresh,
				Illuminance:      lx,
				LumensPerFixture: lm,
				Formats:          parseFormats(formats),
				Logger:           c.Logger,
			}

			spin := newSpinnerWithContext(cmd.Context(), "Measuring room...")
			spin.Start()
			result, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				if spin.Cancelled() {
					spin.Stop()
					return cmd.Context().Err()
				}
				spin.StopWithError("Measurement failed")
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Measured %.2f x %.2f m", result.Dimensions.Width, result.Dimensions.Height))

			printPlanSummary(result.Plan, false)
			if err := writeAnnotated(annotated, result.Annotated); err != nil {
				return err
			}
			return writeArtifacts(result.Artifacts, out)
		},
	}

	cmd.Flags().StringVar(&lux, "lux", "", "desired illuminance in lux")
	cmd.Flags().StringVar(&lumens, "lumens", "", "luminous flux per fixture in lumens")
	cmd.Flags().StringVar(&formats, "format", "", "output formats, comma-separated (json, svg)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file base path (extension added per format)")
	cmd.Flags().StringVar(&annotated, "annotated", "", "write the service's annotated photo to this path")
	cmd.Flags().StringVar(&detectorURL, "detector", defaultDetectorURL, "detection service base URL")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the detection response cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-measure even if a cached response exists")

	return cmd
}

func writeAnnotated(path string, data []byte) error {
	if path == "" || len(data) == 0 {
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write annotated image: %w", err)
	}
	printFile(path)
	return nil
}
