package camstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateControllerIncreasesUnderSustainedHighOccupancy(t *testing.T) {
	rc := NewRateController(30)
	prev := rc.Target()
	// Occupancy held above 90% for consecutive windows: strictly increasing
	// by 2 per window up to the hard clamp
	for i := 0; i < 3; i++ {
		got := rc.Adjust(0.95)
		assert.Equal(t, prev+2, got)
		prev = got
	}
	for i := 0; i < 20; i++ {
		rc.Adjust(0.95)
	}
	assert.Equal(t, 60, rc.Target())
}

func TestRateControllerDecreasesUnderSustainedLowOccupancy(t *testing.T) {
	rc := NewRateController(30)
	prev := rc.Target()
	for i := 0; i < 3; i++ {
		got := rc.Adjust(0.1)
		assert.Equal(t, prev-2, got)
		prev = got
	}
	for i := 0; i < 20; i++ {
		rc.Adjust(0.1)
	}
	assert.Equal(t, 15, rc.Target())
}

func TestRateControllerModerateBands(t *testing.T) {
	rc := NewRateController(30)
	assert.Equal(t, 31, rc.Adjust(0.8))

	rc = NewRateController(30)
	assert.Equal(t, 29, rc.Adjust(0.4))

	// Inside the comfort band nothing changes
	rc = NewRateController(30)
	assert.Equal(t, 30, rc.Adjust(0.6))
	assert.Equal(t, 30, rc.Adjust(0.55))
}

func TestRateControllerSoftClamps(t *testing.T) {
	rc := NewRateController(45)
	// +1 path clamps at 45, only the +2 path reaches 60
	assert.Equal(t, 45, rc.Adjust(0.8))
	assert.Equal(t, 47, rc.Adjust(0.95))

	rc = NewRateController(20)
	assert.Equal(t, 20, rc.Adjust(0.4))
	assert.Equal(t, 18, rc.Adjust(0.1))
}

func TestFrameDelayOccupancyAdjustment(t *testing.T) {
	rc := NewRateController(50) // base delay 20ms
	base := 20 * time.Millisecond

	assert.Equal(t, base*8/10, rc.FrameDelay(0.8))
	assert.Equal(t, base, rc.FrameDelay(0.6))
	assert.Equal(t, base*12/10, rc.FrameDelay(0.4))
	assert.Equal(t, base*15/10, rc.FrameDelay(0.1))
	assert.Equal(t, base*15/10, rc.FrameDelay(0.2))
}

func TestRateControllerDefaultInitial(t *testing.T) {
	rc := NewRateController(0)
	assert.Equal(t, DefaultTargetRate, rc.Target())
}
