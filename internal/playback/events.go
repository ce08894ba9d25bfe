package playback

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// Reason says why the current track changed.
type Reason int

const (
	ReasonRequest Reason = iota // a dispatched request started
	ReasonQueue                 // the queue head was popped on completion
	ReasonResume                // a suspended track resumed on completion
	ReasonStop                  // playback stopped or ran out
)

func (r Reason) String() string {
	switch r {
	case ReasonRequest:
		return "request"
	case ReasonQueue:
		return "queue"
	case ReasonResume:
		return "resume"
	case ReasonStop:
		return "stop"
	default:
		return "unknown"
	}
}

func (r Reason) operation() string {
	switch r {
	case ReasonQueue:
		return "queue"
	case ReasonResume:
		return "resume"
	default:
		return "play"
	}
}

// TrackChange is emitted whenever the current track changes, including
// to nothing.
type TrackChange struct {
	Previous *Track
	Current  *Track
	Reason   Reason
}

// QueueChange is emitted when the queue or the suspended slot changes.
type QueueChange struct {
	Tracks    []Track
	Suspended *Track
}

// ErrorEvent is emitted when a track fails to start.
type ErrorEvent struct {
	Operation string // "play", "queue", "resume"
	ID        string
	Err       error
}
