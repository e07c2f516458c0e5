package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kstlab/radex/internal/tlan"
)

// NewMnemonicsCommand lists the controller mnemonic catalog.
func NewMnemonicsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mnemonics [prefix]",
		Short: "List documented controller mnemonics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = strings.ToUpper(args[0])
			}
			docs := tlan.Docs()
			matched := 0
			for _, name := range tlan.DocNames() {
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, docs[name])
				matched++
			}
			if matched == 0 {
				return fmt.Errorf("no mnemonic starts with %q", prefix)
			}
			return nil
		},
	}
}
