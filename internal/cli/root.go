// Package cli wires the reconstruction pipeline into the radex command.
package cli

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kstlab/radex/internal/site"
)

// RootOptions holds the global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Radar   string
	DBPath  string
}

// NewRootCommand builds the radex command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "radex",
		Short: "Reconstruct EISCAT KST experiment timings",
		Long: "radex replays radar controller programs (.tlan) and console\n" +
			"scripts (.elan) to reconstruct when an experiment transmits,\n" +
			"receives and shifts phase or frequency.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadConfig(opts, cmd)
			setupLogging(opts.Verbose)
			if !site.Known(opts.Radar) {
				return unknownRadarError(opts.Radar)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Radar, "radar", "UHF", "radar site (UHF|VHF|ESR|KIR|SOD)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", defaultDBPath(), "run archive database")

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewMnemonicsCommand())
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// loadConfig merges an optional radex.yaml into flags the user did not set
// explicitly. Looked for in the working directory and under the user
// config directory.
func loadConfig(opts *RootOptions, cmd *cobra.Command) {
	viper.SetConfigName("radex")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(dir + "/radex")
	}
	if err := viper.ReadInConfig(); err != nil {
		return
	}
	if !cmd.Flags().Changed("radar") && viper.IsSet("radar") {
		opts.Radar = viper.GetString("radar")
	}
	if !cmd.Flags().Changed("db") && viper.IsSet("db") {
		opts.DBPath = viper.GetString("db")
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/radex/runs.db"
	}
	return "radex-runs.db"
}
