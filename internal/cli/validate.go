package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/laneracer/internal/config"
)

// ValidateResult describes a valid configuration file.
type ValidateResult struct {
	Path        string  `json:"path"`
	Valid       bool    `json:"valid"`
	TrackLength float64 `json:"track_length"`
	Lanes       int     `json:"lanes"`
	Cars        int     `json:"cars"`
	Obstacles   int     `json:"obstacles"`
	Strategy    string  `json:"strategy"`
	Seed        *int64  `json:"seed,omitempty"`
	MaxTicks    uint64  `json:"max_ticks,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a race configuration file",
		Long: `Validate a YAML or CUE race configuration without running it.

Exit codes:
  0 - Configuration is valid
  1 - Configuration is invalid
  2 - Command error (file not found, etc.)

Examples:
  laneracer validate race.yaml
  laneracer validate race.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := formatter(opts, cmd)

	file, err := config.Load(path)
	if err != nil {
		exitErr := configExitError(err)
		if out.JSON() && GetExitCode(exitErr) == ExitFailure {
			if writeErr := out.Error("invalid_config", err.Error(), nil); writeErr != nil {
				return writeErr
			}
		}
		return exitErr
	}

	cfg := file.RaceConfig()
	cars := len(cfg.Cars)
	if cars == 0 {
		cars = cfg.LaneCount
	}
	result := ValidateResult{
		Path:        path,
		Valid:       true,
		TrackLength: cfg.TrackLength,
		Lanes:       cfg.LaneCount,
		Cars:        cars,
		Obstacles:   len(cfg.Obstacles),
		Strategy:    file.Strategy,
		Seed:        file.Seed,
		MaxTicks:    file.MaxTicks,
	}

	return out.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid\n", path)
		fmt.Fprintf(w, "  Track:    length %g, %d lanes\n", result.TrackLength, result.Lanes)
		fmt.Fprintf(w, "  Cars:     %d (%s strategy)\n", result.Cars, result.Strategy)
		if result.Obstacles > 0 {
			fmt.Fprintf(w, "  Obstacles: %d preset\n", result.Obstacles)
		}
		if result.Seed != nil {
			fmt.Fprintf(w, "  Seed:     %d\n", *result.Seed)
		}
	})
}
