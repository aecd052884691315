package camstream

import (
	"sync"
)

const (
	// DefaultBufferCapacity is an empirically chosen queue depth. See DESIGN.md
	// on tuning it through the configuration file.
	DefaultBufferCapacity = 80
	// DefaultTargetBand keeps 70% of the queue utilized and 30% in reserve
	DefaultTargetBand = 0.7
)

// FrameBuffer is a bounded FIFO of encoded frames shared between a single
// ingesting producer and N delivery loops, plus a slot which always holds
// the most recently ingested frame regardless of the queue state.
type FrameBuffer struct {
	sync.RWMutex
	queue      [][]byte
	latest     []byte
	capacity   int
	targetBand float64
}

// NewFrameBuffer prepares a buffer with the given queue capacity and target
// occupancy band. Non-positive or out-of-range arguments fall back to defaults.
func NewFrameBuffer(capacity int, targetBand float64) *FrameBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	if targetBand <= 0 || targetBand >= 1 {
		targetBand = DefaultTargetBand
	}
	return &FrameBuffer{
		queue:      make([][]byte, 0, capacity),
		capacity:   capacity,
		targetBand: targetBand,
	}
}

// Push appends a frame to the queue, evicting the oldest entry when the
// queue is at capacity, and refreshes the latest-frame slot.
func (fb *FrameBuffer) Push(frame []byte) {
	fb.Lock()
	if len(fb.queue) >= fb.capacity {
		fb.queue = fb.queue[1:]
	}
	fb.queue = append(fb.queue, frame)
	fb.latest = frame
	fb.Unlock()
}

// Pop removes and returns the oldest queued frame
func (fb *FrameBuffer) Pop() ([]byte, bool) {
	fb.Lock()
	defer fb.Unlock()
	if len(fb.queue) == 0 {
		return nil, false
	}
	frame := fb.queue[0]
	fb.queue = fb.queue[1:]
	return frame, true
}

// Latest returns the most recently ingested frame without consuming anything
func (fb *FrameBuffer) Latest() ([]byte, bool) {
	fb.RLock()
	defer fb.RUnlock()
	if fb.latest == nil {
		return nil, false
	}
	return fb.latest, true
}

// Len returns the current queued frame count
func (fb *FrameBuffer) Len() int {
	fb.RLock()
	defer fb.RUnlock()
	return len(fb.queue)
}

// Capacity returns the fixed queue capacity
func (fb *FrameBuffer) Capacity() int {
	return fb.capacity
}

// Occupancy returns queued-length/capacity in [0,1]
func (fb *FrameBuffer) Occupancy() float64 {
	fb.RLock()
	defer fb.RUnlock()
	return float64(len(fb.queue)) / float64(fb.capacity)
}

// TargetBand returns the configured utilized share of the queue
func (fb *FrameBuffer) TargetBand() float64 {
	return fb.targetBand
}

// Clear drains the queue and the latest-frame slot
func (fb *FrameBuffer) Clear() {
	fb.Lock()
	fb.queue = fb.queue[:0]
	fb.latest = nil
	fb.Unlock()
}
