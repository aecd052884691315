package camstream

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// MultipartBoundary is the fixed boundary marker of the stream body
	MultipartBoundary = "frame"
	// StreamContentType is the only content type this server negotiates
	StreamContentType = "multipart/x-mixed-replace; boundary=" + MultipartBoundary

	// pollInterval bounds how long a loop waits for a frame and how fast it
	// observes session teardown
	pollInterval = 20 * time.Millisecond
	// DefaultMaxSegments caps a single connection, roughly ten minutes at
	// nominal rate
	DefaultMaxSegments = 10000
)

// Delivery runs one independent paced loop per connected client against the
// shared frame buffer. Loops never outlive the session's active period.
type Delivery struct {
	buffer      *FrameBuffer
	rates       *RateController
	maxSegments int

	sync.RWMutex
	clients map[uuid.UUID]struct{}
}

// NewDelivery prepares a scheduler over the given buffer
func NewDelivery(buffer *FrameBuffer, rates *RateController, maxSegments int) *Delivery {
	if maxSegments <= 0 {
		maxSegments = DefaultMaxSegments
	}
	return &Delivery{
		buffer:      buffer,
		rates:       rates,
		maxSegments: maxSegments,
		clients:     make(map[uuid.UUID]struct{}),
	}
}

// ClientsCount returns the number of currently attached delivery loops
func (d *Delivery) ClientsCount() int {
	d.RLock()
	defer d.RUnlock()
	return len(d.clients)
}

func (d *Delivery) attachClient() uuid.UUID {
	clientID := uuid.New()
	d.Lock()
	d.clients[clientID] = struct{}{}
	d.Unlock()
	metricClientsConnected.Set(float64(d.ClientsCount()))
	return clientID
}

func (d *Delivery) detachClient(clientID uuid.UUID) {
	d.Lock()
	delete(d.clients, clientID)
	d.Unlock()
	metricClientsConnected.Set(float64(d.ClientsCount()))
}

// flusher is satisfied by gin's ResponseWriter and by http.Flusher wrappers
type flusher interface {
	Flush()
}

// Stream writes multipart segments to w, paced by buffer occupancy and the
// shared target rate, until the context is cancelled, the client write
// fails, or the segment ceiling is reached. A write failure terminates only
// this loop; the buffer and other clients are unaffected.
func (d *Delivery) Stream(ctx context.Context, w io.Writer) error {
	clientID := d.attachClient()
	defer d.detachClient(clientID)
	log.Info().Str("scope", SCOPE_DELIVERY).Str("event", EVENT_DELIVERY_ATTACH).Str("client_id", clientID.String()).Msg("Client attached")
	defer log.Info().Str("scope", SCOPE_DELIVERY).Str("event", EVENT_DELIVERY_DETACH).Str("client_id", clientID.String()).Msg("Client detached")

	var lastSent time.Time
	segments := 0
	for segments < d.maxSegments {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		frame, ok := d.buffer.Pop()
		if !ok {
			// Queue drained mid-read: fall back to the latest-frame slot
			frame, ok = d.buffer.Latest()
		}
		if !ok {
			time.Sleep(pollInterval)
			continue
		}
		delay := d.rates.FrameDelay(d.buffer.Occupancy())
		if since := time.Since(lastSent); since < delay {
			time.Sleep(delay - since)
		}
		if err := writeSegment(w, frame); err != nil {
			return errors.Wrapf(err, "Can't write segment to client %s", clientID)
		}
		if f, ok := w.(flusher); ok {
			f.Flush()
		}
		lastSent = time.Now()
		segments++
		metricFramesDelivered.Inc()
	}
	// Segment ceiling reached: end the multipart stream cleanly
	if err := writeEpilogue(w); err != nil {
		return errors.Wrapf(err, "Can't finalize stream for client %s", clientID)
	}
	return nil
}

// writeSegment emits one self-delimiting multipart segment:
// boundary marker, content-type, content-length, then the raw frame bytes
func writeSegment(w io.Writer, frame []byte) error {
	header := fmt.Sprintf("\r\n--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", MultipartBoundary, len(frame))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}

// writeEpilogue terminates the multipart body
func writeEpilogue(w io.Writer) error {
	_, err := io.WriteString(w, fmt.Sprintf("\r\n--%s--\r\n", MultipartBoundary))
	return err
}
