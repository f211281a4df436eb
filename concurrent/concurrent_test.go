package concurrent_test

import (
	"sync"
	"testing"

	"github.com/dsearch/dsearch/concurrent"
	"github.com/stretchr/testify/assert"
)

func TestCheckTimerRunsReopenCallbacksAfterInterval(t *testing.T) {
	var mu sync.Mutex
	c := concurrent.New(&mu)
	c.Lock()
	defer c.Close()

	var called int
	c.AddOpenKey(func(priv any) { called++ }, nil, nil)

	// well within the interval: no reopen.
	c.CheckTimer(c.LastTime())
	assert.Equal(t, 0, called)

	// past the interval: reopen callbacks run exactly once.
	c.CheckTimer(c.LastTime() + int64(6_000_000)) // 6ms > 5ms default
	assert.Equal(t, 1, called)
}

func TestCancelIsObservableNotForced(t *testing.T) {
	var mu sync.Mutex
	c := concurrent.New(&mu)
	c.Lock()
	defer c.Close()

	assert.False(t, c.Cancelled())
	c.Cancel()
	assert.True(t, c.Cancelled())
}

func TestCloseFreesPrivateData(t *testing.T) {
	var mu sync.Mutex
	c := concurrent.New(&mu)
	c.Lock()

	freed := false
	c.AddOpenKey(func(any) {}, "priv", func(any) { freed = true })
	c.Close()
	assert.True(t, freed)
}
