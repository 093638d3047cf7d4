package progress

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/Rorical/Ausmalbar/internal/models"
)

// LineSink prints every indicator change as one line, for terminals that are
// not driven by the TUI.
type LineSink struct {
	out     io.Writer
	noColor bool
}

func NewLineSink(out io.Writer) *LineSink {
	if out == nil {
		out = os.Stdout
	}
	return &LineSink{out: out}
}

// SetNoColor disables colored output.
func (s *LineSink) SetNoColor(noColor bool) {
	s.noColor = noColor
}

func (s *LineSink) Render(state models.ProgressState) {
	switch state.Phase {
	case models.PhaseInfo:
		if state.Percent >= 100 {
			s.colored(color.FgGreen).Fprintf(s.out, "✓ [%3d%%] %s\n", state.Percent, state.Message)
			return
		}
		s.colored(color.FgCyan).Fprintf(s.out, "[%3d%%] %s\n", state.Percent, state.Message)
	case models.PhaseError:
		s.colored(color.FgRed).Fprintf(s.out, "✗ %s\n", state.Message)
	}
}

func (s *LineSink) colored(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if s.noColor {
		c.DisableColor()
	}
	return c
}

// LogSink records indicator changes as debug events.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) LogSink {
	return LogSink{logger: logger}
}

func (s LogSink) Render(state models.ProgressState) {
	s.logger.Debug().
		Int("percent", state.Percent).
		Str("phase", state.Phase.String()).
		Bool("visible", state.Visible).
		Msg(state.Message)
}

// MultiSink fans a state out to several sinks in order. Nil entries are skipped.
type MultiSink []Sink

func (m MultiSink) Render(state models.ProgressState) {
	for _, sink := range m {
		if sink != nil {
			sink.Render(state)
		}
	}
}

// Recorder keeps every state it is given.
type Recorder struct {
	mu     sync.Mutex
	states []models.ProgressState
}

func (r *Recorder) Render(state models.ProgressState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

// States returns a copy of the recorded history.
func (r *Recorder) States() []models.ProgressState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ProgressState, len(r.states))
	copy(out, r.states)
	return out
}

// Last returns the most recent state and false when nothing was recorded.
func (r *Recorder) Last() (models.ProgressState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return models.ProgressState{}, false
	}
	return r.states[len(r.states)-1], true
}
