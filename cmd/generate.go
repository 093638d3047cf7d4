package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/Ausmalbar/internal/models"
)

var generateSystemPrompt string

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate a new coloring page",
	Long: `Submit a prompt on the generation page. On success the server redirects
to the confirmation page, which is printed.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		r := newRunner(cmd, loadConfig(), false)
		ctx, cancel := r.signalContext()
		defer cancel()

		doc := r.open(ctx, r.cfg.GetGeneratePath(), models.Submit)
		r.edit(doc, strings.Join(args, " "), generateSystemPrompt)
		r.perform(ctx, models.Submit, doc)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateSystemPrompt, "system-prompt", "", "system prompt id")
	rootCmd.AddCommand(generateCmd)
}
