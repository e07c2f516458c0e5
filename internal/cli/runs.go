package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kstlab/radex/internal/experiment"
	"github.com/kstlab/radex/internal/store"
)

// NewRunsCommand manages the run archive: list stored runs, print one
// back, or delete one.
func NewRunsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived reconstruction runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(opts.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived runs")
				return nil
			}
			for _, ri := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %2d subcycles  %s\n",
					ri.ID[:8], ri.Name, ri.Subcycles, ri.CreatedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(newRunsShowCommand(opts))
	cmd.AddCommand(newRunsDeleteCommand(opts))
	return cmd
}

func newRunsShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id> [subcycle]",
		Short: "Print an archived run",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subcycle := 1
			if len(args) == 2 {
				var err error
				subcycle, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("subcycle must be a number, got %q", args[1])
				}
			}
			s, err := store.Open(opts.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			exp, err := s.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return experiment.TextRenderer{W: cmd.OutOrStdout()}.Render(exp, subcycle)
		},
	}
}

func newRunsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(opts.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted run %s\n", args[0])
			return nil
		},
	}
}
