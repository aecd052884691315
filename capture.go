package camstream

import (
	"context"
)

// CaptureSource is the external collaborator producing encoded frames.
// Open arms the source with a sink for frames and a channel for lifecycle
// events; Close stops production. Camera hardware and encoder internals
// stay behind this interface.
type CaptureSource interface {
	Open(ctx context.Context, sink FrameSink, events chan<- CaptureEvent) error
	Close() error
}

// FrameSink accepts one encoded frame at a time, fire-and-forget
type FrameSink interface {
	Ingest(frame []byte)
}

// CaptureEventKind discriminates capture-layer lifecycle events
type CaptureEventKind uint16

const (
	CAPTURE_EVENT_INFO = CaptureEventKind(iota)
	CAPTURE_EVENT_ERROR
)

func (iotaIdx CaptureEventKind) String() string {
	return [...]string{"info", "error"}[iotaIdx]
}

// CaptureEvent is a typed event pushed by the capture collaborator and
// consumed by the session's transition logic. Used instead of inline
// callbacks so no closure captures mutable session state.
type CaptureEvent struct {
	Kind    CaptureEventKind
	Message string
	Err     error
}
