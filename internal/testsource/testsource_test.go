package testsource

import (
	"bytes"
	"context"
	"image/jpeg"
	"sync"
	"testing"
	"time"

	camstream "github.com/lancam/camstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *collectingSink) Ingest(frame []byte) {
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.mu.Unlock()
}

func (s *collectingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *collectingSink) first() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[0]
}

func TestSourceProducesDecodableFrames(t *testing.T) {
	src := New(160, 120, 60)
	sink := &collectingSink{}
	events := make(chan camstream.CaptureEvent, 1)

	require.NoError(t, src.Open(context.Background(), sink, events))
	defer src.Close()

	assert.Eventually(t, func() bool {
		return sink.count() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	img, err := jpeg.Decode(bytes.NewReader(sink.first()))
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}

func TestSourceCloseStopsProduction(t *testing.T) {
	src := New(80, 60, 60)
	sink := &collectingSink{}
	events := make(chan camstream.CaptureEvent, 1)

	require.NoError(t, src.Open(context.Background(), sink, events))
	assert.Eventually(t, func() bool {
		return sink.count() > 0
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, src.Close())

	n := sink.count()
	time.Sleep(100 * time.Millisecond)
	// At most one in-flight frame lands after Close
	assert.LessOrEqual(t, sink.count(), n+1)
}

func TestSourceOpenTwiceIsNoop(t *testing.T) {
	src := New(80, 60, 30)
	sink := &collectingSink{}
	events := make(chan camstream.CaptureEvent, 1)

	require.NoError(t, src.Open(context.Background(), sink, events))
	require.NoError(t, src.Open(context.Background(), sink, events))
	require.NoError(t, src.Close())
}

func TestSourceDefaults(t *testing.T) {
	src := New(0, 0, 0)
	assert.Equal(t, 640, src.width)
	assert.Equal(t, 480, src.height)
	assert.Equal(t, 30, src.fps)
}
