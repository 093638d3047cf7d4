// Package operation drives one user intent at a time against the admin
// server: it snapshots the page form, sends the request, simulates progress
// while the request is in flight and reconciles the result into the page.
package operation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rorical/Ausmalbar/internal/client"
	"github.com/Rorical/Ausmalbar/internal/models"
	"github.com/Rorical/Ausmalbar/internal/page"
)

// Reporter is the progress indicator the controller drives.
type Reporter interface {
	Show(percent int, message string)
	ReportError(message string)
	Hide()
}

// Transport sends background requests.
type Transport interface {
	PostBackground(ctx context.Context, target string, values url.Values, header http.Header) (*client.Response, error)
}

// Navigator replaces the current page, either by following a link or by an
// ordinary form submission.
type Navigator interface {
	Navigate(ctx context.Context, target string) (*page.Document, error)
	SubmitForm(ctx context.Context, target string, values url.Values) (*page.Document, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Timing holds the fixed delays of the protocol.
type Timing struct {
	Tick          time.Duration
	ErrorHide     time.Duration
	SuccessHide   time.Duration
	RedirectDelay time.Duration
}

// DefaultTiming expresses the protocol delays in the given time unit:
// tick 2, error display 5, success display 1, redirect delay 1.
func DefaultTiming(unit time.Duration) Timing {
	if unit <= 0 {
		unit = time.Second
	}
	return Timing{
		Tick:          2 * unit,
		ErrorHide:     5 * unit,
		SuccessHide:   unit,
		RedirectDelay: unit,
	}
}

type Options struct {
	Reporter  Reporter
	Transport Transport
	Navigator Navigator
	Confirmer Confirmer
	Timing    Timing
	// OnStateChange is called after every state transition, outside any lock.
	OnStateChange func(models.OperationState)
}

type Controller struct {
	reporter      Reporter
	transport     Transport
	navigator     Navigator
	confirmer     Confirmer
	timing        Timing
	onStateChange func(models.OperationState)
	strategies    map[models.Intent]strategy

	mu      sync.Mutex
	state   models.OperationState
	hideGen uint64
	hide    *time.Timer
}

// strategy runs the intent-specific part of an operation after the
// indicator has been shown.
type strategy func(ctx context.Context, op *op) error

// op is the per-operation context. It never outlives one Perform call.
type op struct {
	id      string
	intent  models.Intent
	doc     *page.Document
	values  url.Values
	message string
	log     zerolog.Logger
}

func New(opts Options) *Controller {
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming(time.Second)
	}
	c := &Controller{
		reporter:      opts.Reporter,
		transport:     opts.Transport,
		navigator:     opts.Navigator,
		confirmer:     opts.Confirmer,
		timing:        opts.Timing,
		onStateChange: opts.OnStateChange,
	}
	c.strategies = map[models.Intent]strategy{
		models.Submit:     c.submit,
		models.Regenerate: c.regenerate,
		models.Confirm:    c.submitForm,
		models.Reject:     c.submitForm,
	}
	return c
}

// State returns the lifecycle state of the current operation.
func (c *Controller) State() models.OperationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Perform runs one operation for intent against doc and returns once it has
// settled. It returns ErrBusy without side effects if another operation is
// still running.
func (c *Controller) Perform(ctx context.Context, intent models.Intent, doc *page.Document) error {
	run, ok := c.strategies[intent]
	if !ok {
		return fmt.Errorf("unsupported intent %s", intent)
	}
	if doc == nil {
		return ErrNoPage
	}
	if !c.arm() {
		return ErrBusy
	}
	defer c.transition(models.Idle)

	id := uuid.NewString()
	o := &op{
		id:      id,
		intent:  intent,
		doc:     doc,
		values:  doc.Snapshot(intent),
		message: intent.PhaseMessage(),
		log:     log.With().Str("op_id", id).Str("intent", intent.String()).Logger(),
	}
	o.log.Info().Str("url", doc.URL().String()).Msg("Operation started")

	c.reporter.Show(0, o.message)
	return run(ctx, o)
}

// arm moves Idle to Armed and cancels any delayed hide left by a previous
// operation.
func (c *Controller) arm() bool {
	c.mu.Lock()
	if c.state != models.Idle {
		c.mu.Unlock()
		return false
	}
	c.state = models.Armed
	c.hideGen++
	if c.hide != nil {
		c.hide.Stop()
		c.hide = nil
	}
	c.mu.Unlock()

	c.notify(models.Armed)
	return true
}

func (c *Controller) transition(state models.OperationState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.notify(state)
}

func (c *Controller) notify(state models.OperationState) {
	if c.onStateChange != nil {
		c.onStateChange(state)
	}
}

// hideAfter hides the indicator after d unless a newer operation armed in
// the meantime.
func (c *Controller) hideAfter(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hide != nil {
		c.hide.Stop()
	}
	gen := c.hideGen
	c.hide = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.hideGen != gen {
			return
		}
		c.hide = nil
		c.reporter.Hide()
	})
}

// inFlight runs call with the progress simulation armed and disarms it
// before returning, so no tick can land after the caller's terminal render.
func (c *Controller) inFlight(ctx context.Context, o *op, call func(context.Context) error) error {
	c.transition(models.InFlight)
	sim := c.startSimulation(o.message)
	err := call(ctx)
	sim.stop()
	return err
}

// fail reports f and schedules the hide that lets the error stay legible.
func (c *Controller) fail(o *op, f models.Failure, cause error) error {
	c.transition(models.Failed)
	c.reporter.ReportError(f.Message)
	c.hideAfter(c.timing.ErrorHide)

	ev := o.log.Warn().Str("kind", f.Kind.String())
	if cause != nil {
		ev = ev.Err(cause)
	}
	ev.Msg(f.Message)

	return &Error{Kind: f.Kind, Intent: o.intent, Message: f.Message, Err: cause}
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
