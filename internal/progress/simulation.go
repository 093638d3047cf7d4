package progress

const (
	// DefaultStep is added to the estimate on every tick.
	DefaultStep = 5
	// DefaultCeiling is never reached by the estimate; only a settled
	// operation may push the bar to 100.
	DefaultCeiling = 90
)

// Simulation is a monotone progress estimate for a request whose real
// progress is unknown. It saturates just below the ceiling.
type Simulation struct {
	last    int
	step    int
	ceiling int
}

func NewSimulation(start int) *Simulation {
	return &Simulation{last: start, step: DefaultStep, ceiling: DefaultCeiling}
}

// Advance moves the estimate one step. ok=false means "no progress update":
// the next step would reach the ceiling.
func (s *Simulation) Advance() (int, bool) {
	return s.advanceTo(s.last + s.step)
}

func (s *Simulation) Percent() int {
	return s.last
}

func (s *Simulation) advanceTo(target int) (int, bool) {
	if target >= s.ceiling {
		return 0, false
	}
	if target <= s.last {
		return 0, false
	}
	s.last = target
	return s.last, true
}
