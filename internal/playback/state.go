package playback

import "fmt"

// State is the coordinator's externally visible playback state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Outcome reports what Dispatch did with a request.
type Outcome int

const (
	// Started: nothing was playing and the target started.
	Started Outcome = iota
	// Replaced: the current track was stopped and the target started.
	Replaced
	// Queued: the target was appended to the queue tail.
	Queued
	// Interrupted: the current track was suspended for an announcement.
	Interrupted
)

func (o Outcome) String() string {
	switch o {
	case Started:
		return "started"
	case Replaced:
		return "replaced"
	case Queued:
		return "queued"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
