package operation

import (
	"sync"
	"time"

	"github.com/Rorical/Ausmalbar/internal/progress"
)

const waitHint = " (This may take a minute)"

// simulation is the ticking goroutine behind the progress estimate.
type simulation struct {
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func (c *Controller) startSimulation(message string) *simulation {
	s := &simulation{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	estimate := progress.NewSimulation(0)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(c.timing.Tick)
		defer ticker.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				// Settlement wins over a tick that fired at the same time.
				select {
				case <-s.quit:
					return
				default:
				}
				if p, ok := estimate.Advance(); ok {
					c.reporter.Show(p, message+waitHint)
				}
			}
		}
	}()
	return s
}

// stop disarms the simulation and waits for the goroutine to exit. It is
// safe to call more than once and after saturation.
func (s *simulation) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}
