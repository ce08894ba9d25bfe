package player

// Transitions:
//
//	Stopped -> Playing   Play
//	Playing -> Paused    Pause
//	Paused  -> Playing   Resume
//	Playing -> Stopped   Stop, or the source ends
//	Paused  -> Stopped   Stop
//
// Any other request is ignored. Play while Playing stops first.

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive reports whether a source is loaded.
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

func (s State) CanPause() bool {
	return s == Playing
}

func (s State) CanResume() bool {
	return s == Paused
}
