package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rorical/Ausmalbar/internal/app"
	"github.com/Rorical/Ausmalbar/internal/config"
	"github.com/Rorical/Ausmalbar/internal/logging"
)

var (
	profileName string
	logLevel    string
	plainOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "ausmalbar",
	Short: "Terminal client for the Ausmalbar coloring page admin",
	Long: `Ausmalbar generates, regenerates, confirms and rejects coloring pages
against the Ausmalbar admin from the terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logLevel, os.Stderr)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if !interactive() {
			showPending(cmd, cfg)
			return
		}
		runTUI(cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command execution error")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "profile to use instead of the active one")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "plain line output even on a terminal")

	// Add subcommands
	rootCmd.AddCommand(profileCmd)
}

// loadConfig loads the config and applies --profile.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if profileName != "" {
		if err := cfg.UseProfile(profileName); err != nil {
			log.Fatal().Err(err).Msg("Failed to select profile")
		}
	}
	return cfg
}

// interactive reports whether the TUI can own the terminal.
func interactive() bool {
	return !plainOutput && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runTUI(cfg *config.Config) {
	application, err := app.NewApplication(cfg, logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Error().Err(err).Msg("Application error")
	}
}
