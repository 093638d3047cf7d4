package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Rorical/Ausmalbar/internal/models"
)

var (
	regeneratePrompt       string
	regenerateSystemPrompt string
	rejectYes              bool
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Regenerate the coloring page awaiting confirmation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r := newRunner(cmd, loadConfig(), false)
		ctx, cancel := r.signalContext()
		defer cancel()

		doc := r.open(ctx, r.cfg.GetConfirmPath(), models.Regenerate)
		r.edit(doc, regeneratePrompt, regenerateSystemPrompt)
		r.perform(ctx, models.Regenerate, doc)
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Save the coloring page awaiting confirmation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r := newRunner(cmd, loadConfig(), false)
		ctx, cancel := r.signalContext()
		defer cancel()

		doc := r.open(ctx, r.cfg.GetConfirmPath(), models.Confirm)
		r.perform(ctx, models.Confirm, doc)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Delete the coloring page awaiting confirmation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r := newRunner(cmd, loadConfig(), rejectYes)
		ctx, cancel := r.signalContext()
		defer cancel()

		doc := r.open(ctx, r.cfg.GetConfirmPath(), models.Reject)
		r.perform(ctx, models.Reject, doc)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the pending page",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showPending(cmd, loadConfig())
	},
}

func init() {
	regenerateCmd.Flags().StringVar(&regeneratePrompt, "prompt", "", "replace the prompt before regenerating")
	regenerateCmd.Flags().StringVar(&regenerateSystemPrompt, "system-prompt", "", "system prompt id")
	rejectCmd.Flags().BoolVarP(&rejectYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(showCmd)
}
