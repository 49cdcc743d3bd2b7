package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameLoopRunsInOrder(t *testing.T) {
	loop := NewFrameLoop()
	var got []int
	loop.RequestFrame(func() { got = append(got, 1) })
	loop.RequestFrame(func() { got = append(got, 2) })

	assert.Equal(t, 2, loop.Flush())
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 0, loop.Flush())
}

func TestFrameLoopDefersRequestsMadeDuringFlush(t *testing.T) {
	loop := NewFrameLoop()
	runs := 0
	var tick func()
	tick = func() {
		runs++
		loop.RequestFrame(tick)
	}
	loop.RequestFrame(tick)

	loop.Flush()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, loop.Pending())

	loop.Flush()
	assert.Equal(t, 2, runs)
}

func TestFrameLoopCancel(t *testing.T) {
	loop := NewFrameLoop()
	ran := false
	h := loop.RequestFrame(func() { ran = true })
	loop.CancelFrame(h)

	assert.Equal(t, 0, loop.Flush())
	assert.False(t, ran)

	// Cancelling twice or after the fact is harmless
	loop.CancelFrame(h)
	loop.CancelFrame(FrameHandle(999))
}

func TestFrameLoopCancelDuringFlush(t *testing.T) {
	loop := NewFrameLoop()
	ran := false
	var second FrameHandle
	loop.RequestFrame(func() { loop.CancelFrame(second) })
	second = loop.RequestFrame(func() { ran = true })

	assert.Equal(t, 1, loop.Flush())
	assert.False(t, ran)
}
