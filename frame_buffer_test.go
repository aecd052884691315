package camstream

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameBufferCapacityNeverExceeded(t *testing.T) {
	fb := NewFrameBuffer(5, 0.7)
	for i := 0; i < 20; i++ {
		fb.Push([]byte(fmt.Sprintf("frame-%d", i)))
		assert.LessOrEqual(t, fb.Len(), 5)
	}
	assert.Equal(t, 5, fb.Len())
}

func TestFrameBufferEvictsExactlyOldest(t *testing.T) {
	fb := NewFrameBuffer(3, 0.7)
	fb.Push([]byte("f1"))
	fb.Push([]byte("f2"))
	fb.Push([]byte("f3"))
	// 4th insert evicts f1
	fb.Push([]byte("f4"))
	frame, ok := fb.Pop()
	require.True(t, ok)
	assert.Equal(t, []byte("f2"), frame)
	assert.Equal(t, 2, fb.Len())
}

func TestFrameBufferFIFOOrder(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	for i := 0; i < 10; i++ {
		fb.Push([]byte(fmt.Sprintf("frame-%d", i)))
	}
	for i := 0; i < 10; i++ {
		frame, ok := fb.Pop()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("frame-%d", i), string(frame))
	}
	_, ok := fb.Pop()
	assert.False(t, ok)
}

func TestFrameBufferLatestSlot(t *testing.T) {
	fb := NewFrameBuffer(2, 0.7)
	_, ok := fb.Latest()
	assert.False(t, ok)

	fb.Push([]byte("f1"))
	fb.Push([]byte("f2"))
	fb.Push([]byte("f3"))

	// Latest survives queue draining
	fb.Pop()
	fb.Pop()
	latest, ok := fb.Latest()
	require.True(t, ok)
	assert.Equal(t, []byte("f3"), latest)
}

func TestFrameBufferClear(t *testing.T) {
	fb := NewFrameBuffer(4, 0.7)
	fb.Push([]byte("f1"))
	fb.Push([]byte("f2"))
	fb.Clear()
	assert.Equal(t, 0, fb.Len())
	_, ok := fb.Latest()
	assert.False(t, ok)
}

func TestFrameBufferOccupancy(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	assert.Equal(t, 0.0, fb.Occupancy())
	for i := 0; i < 7; i++ {
		fb.Push([]byte("f"))
	}
	assert.InDelta(t, 0.7, fb.Occupancy(), 1e-9)
}

func TestFrameBufferDefaults(t *testing.T) {
	fb := NewFrameBuffer(0, 0)
	assert.Equal(t, DefaultBufferCapacity, fb.Capacity())
	assert.InDelta(t, DefaultTargetBand, fb.TargetBand(), 1e-9)
}

func TestFrameBufferConcurrentProducerConsumers(t *testing.T) {
	fb := NewFrameBuffer(80, 0.7)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			fb.Push([]byte("frame"))
		}
	}()
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				if _, ok := fb.Pop(); !ok {
					fb.Latest()
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, fb.Len(), 80)
}
