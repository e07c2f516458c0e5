package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kstlab/radex/internal/experiment"
	"github.com/kstlab/radex/internal/site"
)

func unknownRadarError(name string) error {
	return fmt.Errorf("unknown radar %q, want one of %v", name, site.Names())
}

// NewShowCommand prints the reconstructed timing report of one subcycle.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	var args struct {
		expArgs    []string
		searchDirs []string
	}
	cmd := &cobra.Command{
		Use:   "show <file> [subcycle]",
		Short: "Reconstruct an experiment and print one subcycle",
		Long: "Reconstruct an experiment from a .tlan controller program or a\n" +
			".elan console script and print the timing report of the selected\n" +
			"subcycle (default 1).",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			subcycle := 1
			if len(posArgs) == 2 {
				var err error
				subcycle, err = strconv.Atoi(posArgs[1])
				if err != nil {
					return fmt.Errorf("subcycle must be a number, got %q", posArgs[1])
				}
			}
			exp, err := loadExperiment(posArgs[0], opts, args.expArgs, args.searchDirs)
			if err != nil {
				return err
			}
			return experiment.TextRenderer{W: cmd.OutOrStdout()}.Render(exp, subcycle)
		},
	}
	cmd.Flags().StringSliceVar(&args.expArgs, "arg", nil, "argument passed to a console script (repeatable)")
	cmd.Flags().StringSliceVar(&args.searchDirs, "search", nil, "extra directory for referenced files (repeatable)")
	return cmd
}

func loadExperiment(path string, opts *RootOptions, expArgs, searchDirs []string) (*experiment.Experiment, error) {
	return experiment.Load(path, experiment.LoadConfig{
		Radar:      opts.Radar,
		Args:       expArgs,
		SearchDirs: searchDirs,
		Logger:     slog.Default(),
	})
}
