package camstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestDroppedWhenNotArmed(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	ing := NewIngestor(fb, NewRateController(30), false)

	// Frames delivered while not streaming are silently dropped, no catch-up
	ing.Ingest([]byte("frame"))
	assert.Equal(t, 0, fb.Len())
	_, ok := fb.Latest()
	assert.False(t, ok)
}

func TestIngestPublishesWhenArmed(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	ing := NewIngestor(fb, NewRateController(30), false)

	ing.Arm()
	ing.Ingest([]byte("frame-1"))
	ing.Ingest([]byte("frame-2"))
	assert.Equal(t, 2, fb.Len())
	latest, ok := fb.Latest()
	require.True(t, ok)
	assert.Equal(t, []byte("frame-2"), latest)

	ing.Disarm()
	ing.Ingest([]byte("frame-3"))
	assert.Equal(t, 2, fb.Len())
}

func TestIngestOverlayFallbackKeepsOriginalBytes(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	ing := NewIngestor(fb, NewRateController(30), true)

	ing.Arm()
	garbage := []byte("not a jpeg at all")
	ing.Ingest(garbage)

	frame, ok := fb.Pop()
	require.True(t, ok)
	assert.Equal(t, garbage, frame)
}

func TestIngestOverlayAnnotatesValidFrames(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	ing := NewIngestor(fb, NewRateController(30), true)

	ing.Arm()
	original := encodeTestJPEG(t, 160, 120)
	ing.Ingest(original)

	frame, ok := fb.Pop()
	require.True(t, ok)
	assert.NotEqual(t, original, frame)
}

func TestIngestAchievedRateWindow(t *testing.T) {
	fb := NewFrameBuffer(100, 0.7)
	ing := NewIngestor(fb, NewRateController(30), false)

	ing.Arm()
	assert.Zero(t, ing.AchievedRate())
	for i := 0; i < 10; i++ {
		ing.Ingest([]byte("frame"))
	}
	// Window has not elapsed yet
	assert.Zero(t, ing.AchievedRate())

	time.Sleep(1050 * time.Millisecond)
	ing.Ingest([]byte("frame"))
	got := ing.AchievedRate()
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 15.0)
}
