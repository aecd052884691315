package camstream

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSegmentFraming(t *testing.T) {
	buf := bytes.Buffer{}
	frame := []byte{0xff, 0xd8, 0x01, 0x02}
	require.NoError(t, writeSegment(&buf, frame))

	expectedHeader := "\r\n--frame\r\nContent-Type: image/jpeg\r\nContent-Length: 4\r\n\r\n"
	got := buf.Bytes()
	assert.Equal(t, expectedHeader, string(got[:len(expectedHeader)]))
	assert.Equal(t, frame, got[len(expectedHeader):])
}

func TestWriteEpilogue(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, writeEpilogue(&buf))
	assert.Equal(t, "\r\n--frame--\r\n", buf.String())
}

func TestDeliveryOrderingAndCeiling(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	rc := NewRateController(60)
	d := NewDelivery(fb, rc, 3)

	frames := [][]byte{[]byte("frame-one"), []byte("frame-two"), []byte("frame-three")}
	for _, f := range frames {
		fb.Push(f)
	}

	out := bytes.Buffer{}
	err := d.Stream(context.Background(), &out)
	require.NoError(t, err)

	body := out.String()
	// Ingestion order preserved for a single client
	idx1 := strings.Index(body, "frame-one")
	idx2 := strings.Index(body, "frame-two")
	idx3 := strings.Index(body, "frame-three")
	require.NotEqual(t, -1, idx1)
	require.NotEqual(t, -1, idx2)
	require.NotEqual(t, -1, idx3)
	assert.Less(t, idx1, idx2)
	assert.Less(t, idx2, idx3)
	// Ceiling reached: stream ends with the multipart epilogue
	assert.True(t, strings.HasSuffix(body, "\r\n--frame--\r\n"))
	assert.Equal(t, 3, strings.Count(body, "\r\n--frame\r\n"))
}

func TestDeliveryFallsBackToLatestSlot(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	rc := NewRateController(60)
	d := NewDelivery(fb, rc, 2)

	fb.Push([]byte("only-frame"))
	fb.Pop() // queue drained, latest slot still holds the frame

	out := bytes.Buffer{}
	err := d.Stream(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "only-frame"))
}

func TestDeliveryStopsOnContextCancel(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	rc := NewRateController(60)
	d := NewDelivery(fb, rc, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := bytes.Buffer{}
	err := d.Stream(ctx, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestDeliveryWriteFailureIsolatedFromBuffer(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	rc := NewRateController(60)
	d := NewDelivery(fb, rc, 100)

	for i := 0; i < 5; i++ {
		fb.Push([]byte(fmt.Sprintf("frame-%d", i)))
	}
	err := d.Stream(context.Background(), failingWriter{})
	require.Error(t, err)
	// Only the failed client's loop died; the shared buffer still serves others
	assert.Equal(t, 4, fb.Len())
	_, ok := fb.Latest()
	assert.True(t, ok)
	assert.Equal(t, 0, d.ClientsCount())
}

func TestDeliveryClientRegistry(t *testing.T) {
	fb := NewFrameBuffer(10, 0.7)
	rc := NewRateController(60)
	d := NewDelivery(fb, rc, 5)
	assert.Equal(t, 0, d.ClientsCount())

	id := d.attachClient()
	assert.Equal(t, 1, d.ClientsCount())
	d.detachClient(id)
	assert.Equal(t, 0, d.ClientsCount())
}
