// Package testsource provides a synthetic capture source producing moving
// test-pattern JPEG frames. It lets the server run end-to-end without
// camera hardware and gives tests a real frame producer.
package testsource

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"

	camstream "github.com/lancam/camstream"
)

const jpegQuality = 75

// Source generates frames at a fixed rate until closed
type Source struct {
	width  int
	height int
	fps    int

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New prepares a test pattern source with the given geometry and rate
func New(width, height, fps int) *Source {
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}
	if fps <= 0 {
		fps = 30
	}
	return &Source{width: width, height: height, fps: fps}
}

// Open starts frame production into the sink. Production stops when the
// context is cancelled or Close is called.
func (src *Source) Open(ctx context.Context, sink camstream.FrameSink, events chan<- camstream.CaptureEvent) error {
	src.mu.Lock()
	defer src.mu.Unlock()
	if src.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	src.cancel = cancel
	go src.run(runCtx, sink, events)
	return nil
}

// Close stops frame production
func (src *Source) Close() error {
	src.mu.Lock()
	defer src.mu.Unlock()
	if src.cancel != nil {
		src.cancel()
		src.cancel = nil
	}
	return nil
}

func (src *Source) run(ctx context.Context, sink camstream.FrameSink, events chan<- camstream.CaptureEvent) {
	ticker := time.NewTicker(time.Second / time.Duration(src.fps))
	defer ticker.Stop()
	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := src.renderFrame(seq)
			if err != nil {
				select {
				case events <- camstream.CaptureEvent{Kind: camstream.CAPTURE_EVENT_ERROR, Message: "frame encoding failed", Err: err}:
				default:
				}
				return
			}
			sink.Ingest(frame)
			seq++
		}
	}
}

// renderFrame draws a color gradient with a bouncing square so consecutive
// frames are visually distinct
func (src *Source) renderFrame(seq int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, src.width, src.height))
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x + seq*3) % 256),
				G: uint8((y + seq) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	// Bouncing square
	span := src.width - 40
	if span < 1 {
		span = 1
	}
	pos := seq * 5 % (span * 2)
	if pos > span {
		pos = span*2 - pos
	}
	for y := src.height/2 - 20; y < src.height/2+20; y++ {
		for x := pos; x < pos+40; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	out := bytes.Buffer{}
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
