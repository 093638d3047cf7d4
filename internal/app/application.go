package app

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/Rorical/Ausmalbar/internal/config"
	"github.com/Rorical/Ausmalbar/internal/core"
	"github.com/Rorical/Ausmalbar/internal/dispatcher"
	"github.com/Rorical/Ausmalbar/internal/eventbus"
	"github.com/Rorical/Ausmalbar/internal/logging"
	"github.com/Rorical/Ausmalbar/internal/models"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.PageService
	model      *AppModel
	logFile    io.Closer
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	ready      bool
}

// NewApplication wires the TUI to a page service for cfg's active profile.
// Logs go to a file in the config directory while the TUI owns the terminal.
func NewApplication(cfg *config.Config, logLevel string) (*Application, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}
	logFile, err := logging.InitFile(logLevel, dir)
	if err != nil {
		return nil, err
	}

	// Create event bus
	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		log.Warn().Err(e.Err).Str("operation", e.Operation).Msg("Event bus error")
	})

	// Create dispatcher
	disp := dispatcher.NewEventDispatcher(eb)

	// Initialize page service (always create, handles invalid config internally)
	pageService, err := core.NewPageService(cfg, eb)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to initialize page service: %w", err)
	}

	model := &AppModel{
		appModel:   createInitialAppModel(),
		dispatcher: disp,
		ready:      pageService.IsReady(),
	}

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    pageService,
		model:      model,
		logFile:    logFile,
	}, nil
}

func (app *Application) Start() error {
	log.Info().Str("profile", app.config.ActiveProfile).Msg("Starting TUI")
	app.service.Start()

	// Run UI
	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.dispatcher.Stop()
	app.service.Stop()
	app.eventBus.Close()
	if app.logFile != nil {
		app.logFile.Close()
	}
}

func createInitialAppModel() models.AppModel {
	// No initial messages in UI - they come from core as single source of truth
	return models.AppModel{
		Messages: make([]models.Message, 0),
		Status:   "Ready",
	}
}
