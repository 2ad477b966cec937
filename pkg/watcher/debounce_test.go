package watcher_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/textanalyzer/pkg/watcher"
)

func TestDebouncer_Coalesces(t *testing.T) {
	t.Parallel()

	c := &collector{}
	d := watcher.NewDebouncer(30*time.Millisecond, c.handle)

	for range 5 {
		d.Trigger(watcher.Event{Path: "a.md", Op: watcher.OpChange})
	}
	d.Trigger(watcher.Event{Path: "a.md", Op: watcher.OpRemove})

	assert.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, waitFor, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	events := c.snapshot()
	assert.Len(t, events, 1)
	assert.Equal(t, watcher.Event{Path: "a.md", Op: watcher.OpRemove}, events[0], "latest op wins")
	assert.Zero(t, d.Pending())
}

func TestDebouncer_SeparatePaths(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32
	d := watcher.NewDebouncer(10*time.Millisecond, func(watcher.Event) { fired.Add(1) })

	d.Trigger(watcher.Event{Path: "a.md", Op: watcher.OpChange})
	d.Trigger(watcher.Event{Path: "b.md", Op: watcher.OpChange})

	assert.Eventually(t, func() bool { return fired.Load() == 2 }, waitFor, 5*time.Millisecond)
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()

	c := &collector{}
	d := watcher.NewDebouncer(time.Hour, c.handle)

	d.Trigger(watcher.Event{Path: "a.md", Op: watcher.OpChange})
	d.Trigger(watcher.Event{Path: "b.md", Op: watcher.OpChange})
	assert.Equal(t, 2, d.Pending())

	d.Flush()

	assert.Len(t, c.snapshot(), 2)
	assert.Zero(t, d.Pending())
}

func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	c := &collector{}
	d := watcher.NewDebouncer(10*time.Millisecond, c.handle)

	d.Trigger(watcher.Event{Path: "a.md", Op: watcher.OpChange})
	d.Stop()
	d.Trigger(watcher.Event{Path: "b.md", Op: watcher.OpChange})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, c.snapshot())
	assert.Zero(t, d.Pending())
}
