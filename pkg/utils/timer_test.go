package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageTimer_StartStop(t *testing.T) {
	timer := NewStageTimer()

	timer.Start("build")
	time.Sleep(5 * time.Millisecond)
	d := timer.Stop("build")

	assert.Greater(t, d, time.Duration(0))
	assert.Equal(t, d, timer.Elapsed("build"))
}

func TestStageTimer_StopWithoutStart(t *testing.T) {
	timer := NewStageTimer()
	assert.Equal(t, time.Duration(0), timer.Stop("missing"))
	assert.Equal(t, time.Duration(0), timer.Elapsed("missing"))
}

func TestStageTimer_Accumulates(t *testing.T) {
	timer := NewStageTimer()

	timer.Time("attrs", func() { time.Sleep(2 * time.Millisecond) })
	first := timer.Elapsed("attrs")
	timer.Time("attrs", func() { time.Sleep(2 * time.Millisecond) })

	assert.Greater(t, timer.Elapsed("attrs"), first)
	assert.Equal(t, []string{"attrs"}, timer.Stages())
}

func TestStageTimer_OrderAndSummary(t *testing.T) {
	timer := NewStageTimer()
	timer.Time("read", func() {})
	timer.Time("build", func() {})
	timer.Time("export", func() {})

	require.Equal(t, []string{"read", "build", "export"}, timer.Stages())

	summary := timer.Summary()
	assert.Contains(t, summary, "read=")
	assert.Contains(t, summary, "build=")
	assert.Contains(t, summary, "export=")
}

func TestStageTimer_Total(t *testing.T) {
	timer := NewStageTimer()
	timer.Time("a", func() { time.Sleep(time.Millisecond) })
	timer.Time("b", func() { time.Sleep(time.Millisecond) })

	assert.Equal(t, timer.Elapsed("a")+timer.Elapsed("b"), timer.Total())

	durations := timer.Durations()
	assert.Len(t, durations, 2)
}

func TestStageTimer_SortedStages(t *testing.T) {
	timer := NewStageTimer()
	timer.Time("fast", func() {})
	timer.Time("slow", func() { time.Sleep(5 * time.Millisecond) })

	sorted := timer.SortedStages()
	require.Len(t, sorted, 2)
	assert.Equal(t, "slow", sorted[0])
}
