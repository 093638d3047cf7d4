// Package progress renders the progress indicator shared by all operations of
// a page, and estimates progress while the server gives no real signal.
package progress

import (
	"sync"

	"github.com/Rorical/Ausmalbar/internal/models"
)

// Sink draws a progress state somewhere. Implementations must not call back
// into the Reporter.
type Sink interface {
	Render(state models.ProgressState)
}

// Reporter is the indicator facade: show, reportError and hide. It owns no
// business state. A nil sink turns every call into a silent no-op so callers
// are never blocked by a missing rendering target.
type Reporter struct {
	mu    sync.Mutex
	state models.ProgressState
	sink  Sink
}

func NewReporter(sink Sink) *Reporter {
	return &Reporter{
		state: models.ProgressState{Phase: models.PhaseHidden},
		sink:  sink,
	}
}

// Show renders the bar at percent with an info message and makes the
// indicator visible.
func (r *Reporter) Show(percent int, message string) {
	r.update(func(s *models.ProgressState) {
		s.Percent = clamp(percent)
		s.Message = message
		s.Phase = models.PhaseInfo
		s.Visible = true
	})
}

// ReportError switches the status to the error treatment. Visibility is left alone.
func (r *Reporter) ReportError(message string) {
	r.update(func(s *models.ProgressState) {
		s.Message = message
		s.Phase = models.PhaseError
	})
}

// Hide removes the indicator. Calling it while hidden does nothing.
func (r *Reporter) Hide() {
	r.update(func(s *models.ProgressState) {
		s.Phase = models.PhaseHidden
		s.Visible = false
	})
}

// State returns a copy of the current indicator state.
func (r *Reporter) State() models.ProgressState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// update applies fn and renders while holding the lock, so renders reach the
// sink in the order the calls were made.
func (r *Reporter) update(fn func(*models.ProgressState)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.state
	fn(&next)
	if next == r.state {
		return
	}
	r.state = next

	if r.sink != nil {
		r.sink.Render(next)
	}
}

func clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
