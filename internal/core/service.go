package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rorical/Ausmalbar/internal/client"
	"github.com/Rorical/Ausmalbar/internal/config"
	"github.com/Rorical/Ausmalbar/internal/eventbus"
	"github.com/Rorical/Ausmalbar/internal/models"
	"github.com/Rorical/Ausmalbar/internal/operation"
	"github.com/Rorical/Ausmalbar/internal/page"
	"github.com/Rorical/Ausmalbar/internal/progress"
)

var (
	ErrNotConfigured = errors.New("profile is not configured")
	ErrWrongPage     = errors.New("intent is not available on this page")
)

type PageService struct {
	session         *client.Session // nil if config invalid
	config          *config.Config
	state           *PageState
	eventBus        *eventbus.EventBus
	reporter        *progress.Reporter
	controller      *operation.Controller
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	pushMutex       sync.Mutex
	lastSentCount   int                  // How many notices the UI already has
	pendingConfirms map[string]chan bool // Confirmation requests waiting for the UI
	confirmMutex    sync.RWMutex
}

// NewPageService creates a PageService regardless of config validity so the
// UI always has a core to talk to.
func NewPageService(cfg *config.Config, eb *eventbus.EventBus) (*PageService, error) {
	var session *client.Session
	if cfg.IsValid() {
		var err error
		session, err = client.NewSession(client.Options{
			BaseURL:   cfg.GetBaseURL(),
			SessionID: cfg.GetSessionID(),
			CSRFToken: cfg.GetCSRFToken(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	service := &PageService{
		session:         session,
		config:          cfg,
		state:           NewPageState(),
		eventBus:        eb,
		ctx:             ctx,
		cancel:          cancel,
		pendingConfirms: make(map[string]chan bool),
	}

	service.reporter = progress.NewReporter(progress.MultiSink{
		eventbus.ProgressSink{Bus: eb},
		progress.NewLogSink(log.Logger),
	})
	service.controller = operation.New(operation.Options{
		Reporter:      service.reporter,
		Transport:     session,
		Navigator:     pageNavigator{service},
		Confirmer:     service,
		Timing:        operation.DefaultTiming(cfg.GetTimeUnit()),
		OnStateChange: service.operationStateChanged,
	})

	service.addWelcomeMessages(cfg)
	return service, nil
}

// Start pushes the initial state, loads the pending page and runs the event
// loop in the background.
func (ps *PageService) Start() {
	ps.pushStateToUI()
	ps.spawn(ps.reload)
	go ps.eventLoop()
}

// Stop cancels running work and waits for it to return.
func (ps *PageService) Stop() {
	ps.cancel()
	ps.wg.Wait()
}

func (ps *PageService) IsReady() bool {
	return ps.session != nil
}

// Progress returns the indicator's current state.
func (ps *PageService) Progress() models.ProgressState {
	return ps.reporter.State()
}

// GetNotices returns the whole activity log.
func (ps *PageService) GetNotices() []models.Message {
	return ps.state.Notices()
}

func (ps *PageService) eventLoop() {
	for {
		select {
		case <-ps.ctx.Done():
			return
		case event, ok := <-ps.eventBus.UIToCore():
			if !ok {
				return
			}
			ps.handleUIEvent(event)
		}
	}
}

func (ps *PageService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.PerformIntentEvent:
		intent := e.Intent
		ps.spawn(func() { ps.perform(intent) })
	case eventbus.EditPromptEvent:
		ps.editPrompt(e.Prompt)
	case eventbus.SelectSystemPromptEvent:
		ps.selectSystemPrompt(e.Value)
	case eventbus.ReloadEvent:
		ps.spawn(ps.reload)
	case eventbus.ConfirmationResponseEvent:
		ps.handleConfirmationResponse(e)
	}
}

// spawn runs fn off the event loop so confirmation responses keep flowing
// while it blocks.
func (ps *PageService) spawn(fn func()) {
	ps.wg.Add(1)
	go func() {
		defer ps.wg.Done()
		fn()
	}()
}

// Perform runs intent against the current page and blocks until it settles.
func (ps *PageService) Perform(intent models.Intent) error {
	if ps.session == nil {
		return ErrNotConfigured
	}
	doc := ps.session.Current()
	if doc != nil && !doc.Kind().Allows(intent) {
		return fmt.Errorf("%s on the %s page: %w", intent, doc.Kind(), ErrWrongPage)
	}
	return ps.controller.Perform(ps.ctx, intent, doc)
}

func (ps *PageService) perform(intent models.Intent) {
	if ps.session == nil {
		ps.state.AddNotice(models.Error, "Profile is not configured, nothing to do")
		ps.pushStateToUI()
		return
	}

	ps.state.ClearError()
	err := ps.Perform(intent)

	switch {
	case err == nil:
		ps.state.AddNotice(models.Info, fmt.Sprintf("%s finished", intent))
	case errors.Is(err, operation.ErrBusy):
		ps.state.AddNotice(models.Error, "Another operation is still running")
	case errors.Is(err, operation.ErrAborted):
		ps.state.AddNotice(models.Info, fmt.Sprintf("%s cancelled", intent))
	case errors.Is(err, context.Canceled):
		return
	default:
		var opErr *operation.Error
		if errors.As(err, &opErr) {
			ps.state.AddNotice(models.Error, opErr.Message)
		} else {
			ps.state.AddNotice(models.Error, err.Error())
		}
		ps.state.SetError(err)
	}

	// A patch changes the page in place.
	if doc := ps.session.Current(); doc != nil {
		ps.pushPageToUI(doc)
	}
	ps.pushStateToUI()
}

// Reload fetches the pending page again: the confirmation page when a
// coloring page awaits review, the generation page otherwise.
func (ps *PageService) Reload() (*page.Document, error) {
	if ps.session == nil {
		return nil, ErrNotConfigured
	}
	if ps.controller.State() != models.Idle {
		return nil, operation.ErrBusy
	}

	return LoadPending(ps.ctx, ps.session, ps.config)
}

// LoadPending opens the confirmation page and falls back to the generation
// page when it cannot be loaded.
func LoadPending(ctx context.Context, session *client.Session, cfg *config.Config) (*page.Document, error) {
	doc, err := session.Load(ctx, cfg.GetConfirmPath())
	if err == nil {
		return doc, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Debug().Err(err).Msg("Confirmation page unavailable, loading generation page")
	return session.Load(ctx, cfg.GetGeneratePath())
}

func (ps *PageService) reload() {
	if ps.session == nil {
		return
	}

	ps.state.StartWork()
	ps.pushStateToUI()

	doc, err := ps.Reload()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("Failed to load page")
		ps.state.AddNotice(models.Error, fmt.Sprintf("Failed to load page: %v", err))
		ps.state.FinishWithError(err)
		ps.pushStateToUI()
		return
	}

	ps.pageOpened(doc)
	ps.state.FinishWithError(nil)
	ps.pushStateToUI()
}

func (ps *PageService) editPrompt(prompt string) {
	doc, ok := ps.editableDocument()
	if !ok {
		return
	}
	if !doc.SetPrompt(prompt) {
		ps.state.AddNotice(models.Error, "This page has no prompt field")
	} else {
		ps.state.AddNotice(models.Info, "Prompt updated")
		ps.pushPageToUI(doc)
	}
	ps.pushStateToUI()
}

func (ps *PageService) selectSystemPrompt(value string) {
	doc, ok := ps.editableDocument()
	if !ok {
		return
	}
	if !doc.SetSystemPrompt(value) {
		ps.state.AddNotice(models.Error, fmt.Sprintf("Unknown system prompt %q", value))
	} else {
		ps.pushPageToUI(doc)
	}
	ps.pushStateToUI()
}

// editableDocument returns the current page if no operation is using it.
func (ps *PageService) editableDocument() (*page.Document, bool) {
	if ps.session == nil || ps.session.Current() == nil {
		ps.state.AddNotice(models.Error, "No page loaded")
		ps.pushStateToUI()
		return nil, false
	}
	if ps.controller.State() != models.Idle {
		ps.state.AddNotice(models.Error, "Wait for the running operation to finish")
		ps.pushStateToUI()
		return nil, false
	}
	return ps.session.Current(), true
}

// pageOpened records a page the session navigated to.
func (ps *PageService) pageOpened(doc *page.Document) {
	ps.state.AddNotice(models.Navigation, fmt.Sprintf("Opened %s page %s", doc.Kind(), doc.URL().Path))
	for _, flash := range doc.Flashes() {
		ps.state.AddNotice(models.Info, flash)
	}
	ps.pushPageToUI(doc)
}

func (ps *PageService) operationStateChanged(state models.OperationState) {
	log.Debug().Str("state", state.String()).Msg("Operation state changed")
	ps.state.SetBusy(state != models.Idle)
	ps.pushStateToUI()
}

func (ps *PageService) pushPageToUI(doc *page.Document) {
	if err := ps.eventBus.SendToUI(eventbus.PageEvent{Preview: doc.Preview()}); err != nil {
		log.Warn().Err(err).Msg("Error sending page to UI")
	}
}

func (ps *PageService) pushStateToUI() {
	ps.pushMutex.Lock()
	defer ps.pushMutex.Unlock()

	// Only send new notices
	newNotices, sent := ps.state.NoticesSince(ps.lastSentCount)
	ps.lastSentCount = sent

	if err := ps.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Messages:     newNotices,
		IsProcessing: ps.state.IsBusy(),
		Error:        ps.state.GetLastError(),
	}); err != nil {
		log.Warn().Err(err).Msg("Error sending state to UI")
	}
}

func (ps *PageService) addWelcomeMessages(cfg *config.Config) {
	ps.state.AddProgramMessage("-- AUSMALBAR --")

	if cfg.IsValid() {
		ps.state.AddProgramMessage(fmt.Sprintf("Active Profile: %s [OK] %s", cfg.ActiveProfile, cfg.GetBaseURL()))
		ps.state.AddProgramMessage("g/enter generate  r regenerate  c confirm  x reject")
		ps.state.AddProgramMessage("e edit prompt  s system prompt  l reload")
	} else {
		ps.state.AddProgramMessage(fmt.Sprintf("Active Profile: %s [NOT CONFIGURED]", cfg.ActiveProfile))
		ps.state.AddProgramMessage("Configure your profile to start:")
		ps.state.AddProgramMessage("• Run: ausmalbar profile add <name>")
		ps.state.AddProgramMessage("• Or edit: ~/.ausmalbar/config.json")
	}

	ps.state.AddProgramMessage("Controls: Ctrl+C or 'q' to exit")
}

// Confirm asks the UI a yes/no question and waits for the answer.
func (ps *PageService) Confirm(ctx context.Context, question string) (bool, error) {
	id := uuid.NewString()
	responseChan := make(chan bool, 1)

	ps.confirmMutex.Lock()
	ps.pendingConfirms[id] = responseChan
	ps.confirmMutex.Unlock()

	defer func() {
		ps.confirmMutex.Lock()
		delete(ps.pendingConfirms, id)
		ps.confirmMutex.Unlock()
	}()

	if err := ps.eventBus.SendToUI(eventbus.ConfirmationRequestEvent{ID: id, Question: question}); err != nil {
		return false, fmt.Errorf("failed to ask for confirmation: %w", err)
	}

	select {
	case approved := <-responseChan:
		return approved, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-ps.ctx.Done():
		return false, ps.ctx.Err()
	}
}

func (ps *PageService) handleConfirmationResponse(response eventbus.ConfirmationResponseEvent) {
	ps.confirmMutex.RLock()
	responseChan, exists := ps.pendingConfirms[response.ID]
	ps.confirmMutex.RUnlock()

	if exists {
		select {
		case responseChan <- response.Approved:
		default:
		}
	}
}

// pageNavigator moves the session and tells the UI about the new page.
type pageNavigator struct {
	ps *PageService
}

func (n pageNavigator) Navigate(ctx context.Context, target string) (*page.Document, error) {
	doc, err := n.ps.session.Navigate(ctx, target)
	if err != nil {
		return nil, err
	}
	n.ps.pageOpened(doc)
	return doc, nil
}

func (n pageNavigator) SubmitForm(ctx context.Context, target string, values url.Values) (*page.Document, error) {
	doc, err := n.ps.session.SubmitForm(ctx, target, values)
	if err != nil {
		return nil, err
	}
	n.ps.pageOpened(doc)
	return doc, nil
}
