package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "clock.Now() should not return time before actual time.Now()")
	assert.False(t, got.After(after), "clock.Now() should not return time after actual time.Now()")
}

func TestRealClock_Since(t *testing.T) {
	c := RealClock{}

	assert.GreaterOrEqual(t, c.Since(time.Now().Add(-time.Second)), time.Second)
}

func TestStepClock(t *testing.T) {
	start := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	c := &StepClock{Start: start, Step: 250 * time.Millisecond}

	first := c.Now()
	assert.Equal(t, start, first)
	assert.Equal(t, 250*time.Millisecond, c.Since(first))
	assert.Equal(t, start.Add(500*time.Millisecond), c.Now())
}

func TestStepClock_ConcurrentNow(t *testing.T) {
	start := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	c := &StepClock{Start: start, Step: time.Millisecond}

	const workers, calls = 8, 50
	var wg sync.WaitGroup
	seen := make(chan time.Time, workers*calls)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range calls {
				seen <- c.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]struct{}, workers*calls)
	for ts := range seen {
		unique[ts] = struct{}{}
	}
	assert.Len(t, unique, workers*calls)
	assert.Equal(t, start.Add(workers*calls*time.Millisecond), c.Now())
}
