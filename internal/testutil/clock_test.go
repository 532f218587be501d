package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_FiresInOrder(t *testing.T) {
	c := NewFakeClock()

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a2") })

	c.Advance(500 * time.Millisecond)
	assert.Empty(t, fired)
	assert.Equal(t, 3, c.Pending())

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "a2", "b"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeClock_SchedulingDuringCallback(t *testing.T) {
	c := NewFakeClock()

	var fired int
	c.AfterFunc(time.Second, func() {
		fired++
		c.AfterFunc(time.Second, func() { fired++ })
	})

	c.Advance(time.Second)
	assert.Equal(t, 1, fired)
	c.Advance(time.Second)
	assert.Equal(t, 2, fired)
}
