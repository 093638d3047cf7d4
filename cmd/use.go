package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use [profile-name]",
	Short: "Switch to a profile and start the TUI",
	Long:  `Switch to the specified profile and immediately open the pending coloring page.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		if err := cfg.UseProfile(args[0]); err != nil {
			log.Fatal().Err(err).Msg("Failed to switch profile")
		}

		// Save config with new active profile
		if err := cfg.Save(); err != nil {
			log.Fatal().Err(err).Msg("Failed to save config")
		}

		if !interactive() {
			showPending(cmd, cfg)
			return
		}
		runTUI(cfg)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
