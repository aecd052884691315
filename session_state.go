package camstream

// SessionState represents a lifecycle phase of the streaming session
type SessionState uint16

const (
	SESSION_STATE_IDLE = SessionState(iota)
	SESSION_STATE_PREPARING
	SESSION_STATE_STREAMING
	SESSION_STATE_STOPPING
	SESSION_STATE_STOPPED
	SESSION_STATE_ERROR
)

func (iotaIdx SessionState) String() string {
	return [...]string{"idle", "preparing", "streaming", "stopping", "stopped", "error"}[iotaIdx]
}

// startable reports whether Start() may begin a new session from this state.
// Stopped and Error both fold back to Idle on the next successful start.
func (iotaIdx SessionState) startable() bool {
	switch iotaIdx {
	case SESSION_STATE_IDLE, SESSION_STATE_STOPPED, SESSION_STATE_ERROR:
		return true
	}
	return false
}
