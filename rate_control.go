package camstream

import (
	"sync"
	"time"
)

const (
	// DefaultTargetRate is the initial frames-per-second target
	DefaultTargetRate = 30
	// adjustWindow is the measurement window for shared target-rate adjustment
	adjustWindow = 1 * time.Second

	rateHardMin = 15
	rateSoftMin = 20
	rateSoftMax = 45
	rateHardMax = 60
)

// RateController holds the shared frames-per-second target for all delivery
// loops and nudges it once per measurement window based on buffer occupancy.
// The hysteresis keeps the buffer oscillating around its target band instead
// of draining to empty (stutter) or filling to capacity (latency growth).
type RateController struct {
	mu     sync.RWMutex
	target int
}

// NewRateController prepares a controller starting at the given target rate
func NewRateController(initial int) *RateController {
	if initial <= 0 {
		initial = DefaultTargetRate
	}
	return &RateController{target: initial}
}

// Target returns the current frames-per-second target
func (rc *RateController) Target() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.target
}

// Adjust nudges the target rate for the next window given current buffer
// occupancy. Returns the new target.
func (rc *RateController) Adjust(occupancy float64) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	switch {
	case occupancy > 0.9:
		rc.target = minInt(rc.target+2, rateHardMax)
	case occupancy > 0.7:
		rc.target = minInt(rc.target+1, rateSoftMax)
	case occupancy < 0.3:
		rc.target = maxInt(rc.target-2, rateHardMin)
	case occupancy < 0.5:
		rc.target = maxInt(rc.target-1, rateSoftMin)
	}
	return rc.target
}

// FrameDelay computes the per-frame pacing delay for a delivery loop:
// 1000ms divided by the target rate, stretched or squeezed by occupancy so
// that clients drain faster when the queue runs past its band and slower
// when the queue runs dry.
func (rc *RateController) FrameDelay(occupancy float64) time.Duration {
	rc.mu.RLock()
	base := time.Second / time.Duration(rc.target)
	rc.mu.RUnlock()
	switch {
	case occupancy > 0.7:
		return base * 8 / 10
	case occupancy > 0.5:
		return base
	case occupancy > 0.2:
		return base * 12 / 10
	}
	return base * 15 / 10
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
