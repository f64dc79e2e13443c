package root

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"todoquest/internal/config"
	"todoquest/internal/ui"
)

const Version = "0.1.0"

// cfg is resolved once per invocation in PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "tq",
	Short:         "todoquest: a to-do list that levels you up",
	Long:          "todoquest is a local-first CLI/TUI/HTTP task manager. Finishing tasks earns XP, levels and achievements; abandoning them costs XP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	addPersistentFlags()
	rootCmd.AddCommand(
		newAddCmd(),
		newListCmd(),
		newEditCmd(),
		newDoCmd(),
		newRmCmd(),
		newFailOverdueCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newAchievementsCmd(),
		newWhoamiCmd(),
		newBoardCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.todoquest.yaml)")
	flags.String("db", "", "SQLite database path (default $HOME/.todoquest.db)")
	flags.StringP("output", "o", "table", "output format (table|json|yaml)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("db", flags.Lookup("db"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
}

func outputFormat() string {
	if cfg == nil {
		return "table"
	}
	return strings.ToLower(cfg.Output)
}
