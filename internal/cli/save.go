package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kstlab/radex/internal/store"
)

// NewSaveCommand reconstructs an experiment and archives the run.
func NewSaveCommand(opts *RootOptions) *cobra.Command {
	var args struct {
		expArgs    []string
		searchDirs []string
	}
	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Reconstruct an experiment and store the run in the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			exp, err := loadExperiment(posArgs[0], opts, args.expArgs, args.searchDirs)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0o755); err != nil {
				return fmt.Errorf("creating archive directory: %w", err)
			}
			s, err := store.Open(opts.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.SaveRun(cmd.Context(), exp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved run %s (%s, %d subcycles)\n",
				id, exp.Name, len(exp.Subcycles))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&args.expArgs, "arg", nil, "argument passed to a console script (repeatable)")
	cmd.Flags().StringSliceVar(&args.searchDirs, "search", nil, "extra directory for referenced files (repeatable)")
	return cmd
}
