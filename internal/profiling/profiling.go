package profiling

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Profile accumulates wall time per named phase of a bake.
type Profile struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	order  []string
}

func New() *Profile {
	return &Profile{totals: make(map[string]time.Duration)}
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer prof.Track("render")()
func (p *Profile) Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		p.mu.Lock()
		if _, ok := p.totals[name]; !ok {
			p.order = append(p.order, name)
		}
		p.totals[name] += d
		p.mu.Unlock()
	}
}

// Reset forgets everything recorded so far.
func (p *Profile) Reset() {
	p.mu.Lock()
	p.totals = make(map[string]time.Duration)
	p.order = nil
	p.mu.Unlock()
}

// Phase is one recorded name and its total.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Phases returns the totals in the order the names were first recorded.
func (p *Profile) Phases() []Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Phase, len(p.order))
	for i, name := range p.order {
		out[i] = Phase{Name: name, Duration: p.totals[name]}
	}
	return out
}

// Total is the sum of every phase.
func (p *Profile) Total() time.Duration {
	var total time.Duration
	for _, ph := range p.Phases() {
		total += ph.Duration
	}
	return total
}

// TopN formats the n slowest phases.
// Example: "render:420.5ms, link:21.1ms"
func (p *Profile) TopN(n int) string {
	list := p.Phases()
	sort.SliceStable(list, func(i, j int) bool { return list[i].Duration > list[j].Duration })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, list[i].Name+":"+FormatMs(list[i].Duration))
	}
	return strings.Join(parts, ", ")
}

// FormatMs renders d in milliseconds with at most one decimal.
func FormatMs(d time.Duration) string {
	ms := math.Round(float64(d.Microseconds())/100) / 10
	return strconv.FormatFloat(ms, 'f', -1, 64) + "ms"
}
