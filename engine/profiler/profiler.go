package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stage is one timed step recorded by Mark.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Profiler times the playground's setup stages and render passes and logs memory statistics alongside.
// A nil *Profiler is valid and records nothing, so callers can leave profiling off without branching.
type Profiler struct {
	start          time.Time
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	stages         []Stage
	passes         int
}

// NewProfiler creates a new Profiler whose clock starts now.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	now := time.Now()
	return &Profiler{
		start:    now,
		lastTime: now,
		memStats: runtime.MemStats{},
	}
}

// Mark closes the stage that began at the previous Mark (or at construction) and logs its duration.
// Statistics include: stage time, time since start, heap usage, bytes allocated during the stage, GC count.
//
// Parameters:
//   - name: the stage name, e.g. "device" or "pipeline"
//
// Returns:
//   - time.Duration: the stage duration, or 0 on a nil profiler
func (p *Profiler) Mark(name string) time.Duration {
	if p == nil {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(p.lastTime)

	runtime.ReadMemStats(&p.memStats)
	// Alloc: bytes of live heap objects
	// TotalAlloc: cumulative bytes allocated, the delta is what this stage allocated
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	stageAllocMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024
	gcCount := p.memStats.NumGC

	log.Printf("[Profiler] %s: %v (total %v) | Heap: %.2f MB | Allocated: %.2f MB | GC: %d",
		name, elapsed.Round(time.Microsecond), now.Sub(p.start).Round(time.Microsecond), allocMB, stageAllocMB, gcCount-p.lastGCCount)

	p.stages = append(p.stages, Stage{Name: name, Duration: elapsed})
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return elapsed
}

// Pass records one completed render pass that took d and logs the running count.
//
// Parameters:
//   - d: the time spent encoding, submitting and presenting the pass
func (p *Profiler) Pass(d time.Duration) {
	if p == nil {
		return
	}
	p.passes++
	p.lastTime = time.Now()
	log.Printf("[Profiler] render pass %d: %v", p.passes, d.Round(time.Microsecond))
}

// Stages returns a copy of every stage recorded so far, in order.
//
// Returns:
//   - []Stage: the recorded stages
func (p *Profiler) Stages() []Stage {
	if p == nil {
		return nil
	}
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Passes returns the number of render passes recorded.
func (p *Profiler) Passes() int {
	if p == nil {
		return 0
	}
	return p.passes
}
