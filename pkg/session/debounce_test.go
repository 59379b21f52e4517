package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerReplacesPending(t *testing.T) {
	var d debouncer
	var first, second atomic.Int32

	d.Arm(20*time.Millisecond, func() { first.Add(1) })
	d.Arm(20*time.Millisecond, func() { second.Add(1) })

	require.Eventually(t, func() bool {
		return second.Load() == 1
	}, time.Second, time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, first.Load(), "replaced callback must not fire")
	assert.Equal(t, int32(1), second.Load())
}

func TestDebouncerStop(t *testing.T) {
	var d debouncer
	var fired atomic.Int32

	d.Arm(10*time.Millisecond, func() { fired.Add(1) })
	d.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, fired.Load())

	// Stop with nothing pending is a no-op.
	d.Stop()
}
