package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rorical/Ausmalbar/internal/client"
	"github.com/Rorical/Ausmalbar/internal/config"
	"github.com/Rorical/Ausmalbar/internal/core"
	"github.com/Rorical/Ausmalbar/internal/models"
	"github.com/Rorical/Ausmalbar/internal/operation"
	"github.com/Rorical/Ausmalbar/internal/page"
	"github.com/Rorical/Ausmalbar/internal/progress"
)

// runner performs operations with line output instead of the TUI.
type runner struct {
	out        io.Writer
	cfg        *config.Config
	session    *client.Session
	controller *operation.Controller
}

func newRunner(cmd *cobra.Command, cfg *config.Config, assumeYes bool) *runner {
	if !cfg.IsValid() {
		log.Fatal().Msgf("Profile '%s' has no session id; run: ausmalbar profile edit %s", cfg.ActiveProfile, cfg.ActiveProfile)
	}

	session, err := client.NewSession(client.Options{
		BaseURL:   cfg.GetBaseURL(),
		SessionID: cfg.GetSessionID(),
		CSRFToken: cfg.GetCSRFToken(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session")
	}

	out := cmd.OutOrStdout()
	sink := progress.NewLineSink(out)
	sink.SetNoColor(plainOutput || !isTerminal(out))

	controller := operation.New(operation.Options{
		Reporter:  progress.NewReporter(sink),
		Transport: session,
		Navigator: session,
		Confirmer: promptConfirmer{assumeYes: assumeYes},
		Timing:    operation.DefaultTiming(cfg.GetTimeUnit()),
	})

	return &runner{out: out, cfg: cfg, session: session, controller: controller}
}

// signalContext is cancelled on interrupt.
func (r *runner) signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// open loads path, or the pending page when path is empty, and checks that
// intent can run on it.
func (r *runner) open(ctx context.Context, path string, intent models.Intent) *page.Document {
	var doc *page.Document
	var err error
	if path == "" {
		doc, err = core.LoadPending(ctx, r.session, r.cfg)
	} else {
		doc, err = r.session.Load(ctx, path)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load page")
	}
	if !doc.Kind().Allows(intent) {
		log.Fatal().Msgf("Cannot %s: %s is a %s page", intent, doc.URL().Path, doc.Kind())
	}
	return doc
}

// edit applies --prompt and --system-prompt to the page before it is sent.
func (r *runner) edit(doc *page.Document, prompt, systemPrompt string) {
	if prompt != "" && !doc.SetPrompt(prompt) {
		log.Fatal().Msg("This page has no prompt field")
	}
	if systemPrompt != "" && !doc.SetSystemPrompt(systemPrompt) {
		var values []string
		for _, opt := range doc.SystemPromptOptions() {
			values = append(values, fmt.Sprintf("%s (%s)", opt.Value, opt.Label))
		}
		log.Fatal().Msgf("Unknown system prompt %q, choose one of: %s", systemPrompt, strings.Join(values, ", "))
	}
}

// perform runs intent and prints the page the session ends on.
func (r *runner) perform(ctx context.Context, intent models.Intent, doc *page.Document) {
	err := r.controller.Perform(ctx, intent, doc)
	switch {
	case err == nil:
	case errors.Is(err, operation.ErrAborted):
		if cause := errors.Unwrap(err); cause != nil {
			log.Fatal().Err(cause).Msg("Not confirmed")
		}
		fmt.Fprintln(r.out, "Cancelled")
		return
	default:
		// The indicator already showed the message.
		log.Debug().Err(err).Msg("Operation failed")
		os.Exit(1)
	}
	printPreview(r.out, r.session.Current().Preview())
}

// promptConfirmer asks on the terminal unless the answer was given up front.
type promptConfirmer struct {
	assumeYes bool
}

func (p promptConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("confirmation needed; pass --yes when not on a terminal")
	}
	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printPreview(w io.Writer, preview models.Preview) {
	header := color.New(color.Bold, color.FgMagenta)
	label := color.New(color.Faint)
	if plainOutput || !isTerminal(w) {
		header.DisableColor()
		label.DisableColor()
	}

	row := func(name, value string) {
		if value == "" {
			value = "-"
		}
		label.Fprintf(w, "%-17s", name)
		fmt.Fprintln(w, value)
	}

	switch preview.Kind {
	case "confirm":
		header.Fprintln(w, "Coloring page awaiting confirmation")
		row("Title (EN)", preview.TitleEN)
		row("Description (EN)", preview.DescriptionEN)
		row("Title (DE)", preview.TitleDE)
		row("Description (DE)", preview.DescriptionDE)
		row("Image", preview.ThumbRef)
	case "generate":
		header.Fprintln(w, "Generate a coloring page")
	default:
		header.Fprintln(w, preview.URL)
	}
	if preview.Kind != "other" {
		row("Prompt", preview.Prompt)
		row("System prompt", preview.SystemPrompt)
		for _, opt := range preview.SystemPrompts {
			marker := " "
			if opt.Value == preview.SystemPrompt {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s  %s\n", marker, opt.Value, opt.Label)
		}
	}
	for _, flash := range preview.Flashes {
		fmt.Fprintf(w, "» %s\n", flash)
	}
}

func showPending(cmd *cobra.Command, cfg *config.Config) {
	r := newRunner(cmd, cfg, false)
	ctx, cancel := r.signalContext()
	defer cancel()

	doc, err := core.LoadPending(ctx, r.session, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load page")
	}
	printPreview(r.out, doc.Preview())
}
