package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_Now(t *testing.T) {
	instant := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := FixedClock{T: instant}

	assert.Equal(t, instant, c.Now())
	assert.Equal(t, instant, c.Now(), "fixed clock should never advance")
}

func TestSteppingClock_Advances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSteppingClock(start, time.Second)

	assert.Equal(t, start.Add(time.Second), c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Current(), "Current should not advance")
}

func TestSteppingClock_StrictlyIncreasing(t *testing.T) {
	c := NewSteppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)

	prev := c.Now()
	for i := 0; i < 100; i++ {
		next := c.Now()
		assert.True(t, next.After(prev), "instants must be strictly increasing")
		prev = next
	}
}
