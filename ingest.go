package camstream

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Ingestor accepts frames from the capture collaborator one at a time,
// annotates them with the diagnostic overlay and publishes them into the
// shared buffer. It is the single producer side of the pipeline.
type Ingestor struct {
	buffer *FrameBuffer
	rates  *RateController

	// armed gates ingestion: frames arriving while the session is not
	// streaming are dropped, not queued for later
	armed atomic.Bool

	mu          sync.Mutex
	windowStart time.Time
	windowCount int
	achieved    float64

	overlayEnabled bool
}

// NewIngestor prepares an ingestor publishing into the given buffer
func NewIngestor(buffer *FrameBuffer, rates *RateController, overlayEnabled bool) *Ingestor {
	return &Ingestor{
		buffer:         buffer,
		rates:          rates,
		overlayEnabled: overlayEnabled,
	}
}

// Arm enables ingestion. Called by the session on entering Streaming.
func (ing *Ingestor) Arm() {
	ing.mu.Lock()
	ing.windowStart = time.Now()
	ing.windowCount = 0
	ing.achieved = 0
	ing.mu.Unlock()
	ing.armed.Store(true)
}

// Disarm disables ingestion. Frames delivered afterwards are dropped.
func (ing *Ingestor) Disarm() {
	ing.armed.Store(false)
}

// Armed reports whether ingestion is currently accepting frames
func (ing *Ingestor) Armed() bool {
	return ing.armed.Load()
}

// Ingest publishes one encoded frame. Fire-and-forget: it never blocks on
// streaming backpressure and surfaces no errors to the capture cadence.
// A no-op unless the session is streaming.
func (ing *Ingestor) Ingest(frame []byte) {
	if !ing.armed.Load() {
		return
	}
	ing.tick()
	if ing.overlayEnabled {
		frame = annotateFrame(frame, OverlayInfo{
			AchievedRate: ing.AchievedRate(),
			Occupancy:    ing.buffer.Occupancy(),
			TargetRate:   ing.rates.Target(),
		})
	}
	ing.buffer.Push(frame)
	metricFramesIngested.Inc()
	metricBufferOccupancy.Set(ing.buffer.Occupancy())
}

// AchievedRate returns the measured frames-per-second over the last
// completed one-second window
func (ing *Ingestor) AchievedRate() float64 {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.achieved
}

// tick advances the rolling one-second measurement window
func (ing *Ingestor) tick() {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	now := time.Now()
	ing.windowCount++
	elapsed := now.Sub(ing.windowStart)
	if elapsed >= time.Second {
		ing.achieved = math.Round(float64(ing.windowCount)/elapsed.Seconds()*10) / 10
		ing.windowStart = now
		ing.windowCount = 0
	}
}
