package debug

import (
	"fmt"
	"runtime"

	"particle-sim/internal/physics"
)

// DefaultInterval: only report every N ticks so the log is not flooded.
const DefaultInterval = 60

// Stats is a point-in-time summary of a population.
type Stats struct {
	Bodies        int
	KineticEnergy float64
	Momentum      physics.Vector2D
	MaxSpeed      float64
	// Overlaps counts pairs whose discs still interpenetrate.
	Overlaps int
}

// Snapshot computes Stats for bodies. Overlap counting is O(n²).
func Snapshot(bodies []physics.Body) Stats {
	s := Stats{Bodies: len(bodies)}
	for i, b := range bodies {
		s.KineticEnergy += b.KineticEnergy()
		s.Momentum = s.Momentum.Add(b.Momentum())
		s.MaxSpeed = max(s.MaxSpeed, b.Speed())
		for _, o := range bodies[i+1:] {
			if b.Overlaps(o) {
				s.Overlaps++
			}
		}
	}
	return s
}

// String formats s as a single log line.
func (s Stats) String() string {
	return fmt.Sprintf("bodies=%d ke=%.3f p=(%.3f,%.3f) vmax=%.3f overlaps=%d",
		s.Bodies, s.KineticEnergy, s.Momentum.X, s.Momentum.Y, s.MaxSpeed, s.Overlaps)
}

// Monitor periodically writes world statistics to a log. Memory reporting is off by default.
type Monitor struct {
	Interval     int
	ShowMemAlloc bool

	out          physics.Diagnostics
	lastMemStats runtime.MemStats
	reports      int
}

// New returns a Monitor reporting to out every DefaultInterval ticks.
func New(out physics.Diagnostics) *Monitor {
	return &Monitor{Interval: DefaultInterval, out: out}
}

// SetShowMemAlloc sets whether heap allocation is appended to each report.
func (m *Monitor) SetShowMemAlloc(show bool) {
	m.ShowMemAlloc = show
}

// Reports returns how many lines Observe has written.
func (m *Monitor) Reports() int {
	return m.reports
}

// Observe is called after every tick. It reports on the first tick and then every
// Interval ticks. Returns true when a report was written.
func (m *Monitor) Observe(w *physics.World) bool {
	n := w.Ticks()
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if n != 1 && n%interval != 0 {
		return false
	}
	m.Report(w)
	return true
}

// Report writes one line for w unconditionally.
func (m *Monitor) Report(w *physics.World) {
	last := w.LastTick()
	line := fmt.Sprintf("tick=%d %s walls=%d contacts=%d", w.Ticks(), Snapshot(w.Bodies()), last.WallHits, last.Contacts)
	if m.ShowMemAlloc {
		runtime.ReadMemStats(&m.lastMemStats)
		line += fmt.Sprintf(" mem=%.2fMiB", float64(m.lastMemStats.Alloc)/(1024*1024))
	}
	m.reports++
	if m.out != nil {
		m.out.Log(line)
	}
}
