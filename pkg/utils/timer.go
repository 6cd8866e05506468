package utils

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// StageTimer records wall-clock durations of named pipeline stages
// (read, build, attributes, reconstruct, export) for the end-of-run summary.
type StageTimer struct {
	mu      sync.Mutex
	started map[string]time.Time
	elapsed map[string]time.Duration
	order   []string
}

// NewStageTimer creates an empty StageTimer.
func NewStageTimer() *StageTimer {
	return &StageTimer{
		started: make(map[string]time.Time),
		elapsed: make(map[string]time.Duration),
	}
}

// Start marks the beginning of a stage. Restarting a running stage resets it.
func (t *StageTimer) Start(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.elapsed[stage]; !seen {
		if _, running := t.started[stage]; !running {
			t.order = append(t.order, stage)
		}
	}
	t.started[stage] = time.Now()
}

// Stop ends a stage and accumulates its duration. Stopping a stage that was
// never started is a no-op.
func (t *StageTimer) Stop(stage string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	begin, ok := t.started[stage]
	if !ok {
		return 0
	}
	delete(t.started, stage)
	d := time.Since(begin)
	t.elapsed[stage] += d
	return d
}

// Time runs fn and records its duration under stage.
func (t *StageTimer) Time(stage string, fn func()) time.Duration {
	t.Start(stage)
	fn()
	return t.Stop(stage)
}

// Elapsed returns the accumulated duration of a stage.
func (t *StageTimer) Elapsed(stage string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed[stage]
}

// Total returns the sum of all recorded stage durations.
func (t *StageTimer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total time.Duration
	for _, d := range t.elapsed {
		total += d
	}
	return total
}

// Stages returns the recorded stage names in start order.
func (t *StageTimer) Stages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Summary formats the recorded stages as "stage=duration" pairs in start order.
func (t *StageTimer) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	parts := make([]string, 0, len(t.order))
	for _, stage := range t.order {
		parts = append(parts, fmt.Sprintf("%s=%s", stage, t.elapsed[stage].Round(time.Microsecond)))
	}
	return strings.Join(parts, " ")
}

// Durations returns a copy of the stage→duration map.
func (t *StageTimer) Durations() map[string]time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]time.Duration, len(t.elapsed))
	for k, v := range t.elapsed {
		out[k] = v
	}
	return out
}

// SortedStages returns stage names ordered by descending duration.
func (t *StageTimer) SortedStages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.order))
	copy(out, t.order)
	sort.SliceStable(out, func(i, j int) bool {
		return t.elapsed[out[i]] > t.elapsed[out[j]]
	})
	return out
}
