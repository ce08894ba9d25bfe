// internal/player/interface.go
package player

import (
	"time"

	"github.com/llehouerou/mediastore/internal/resource"
)

// Interface defines the media player driver contract for dependency
// injection and testing.
//
// Play takes ownership of src and closes it when playback stops or
// finishes. name is used for logs and codec detection fallback.
type Interface interface {
	Play(src resource.ByteSource, name string) error
	Stop()
	Pause()
	Resume()
	Toggle()
	State() State
	TrackInfo() *TrackInfo
	Position() time.Duration
	Duration() time.Duration
	Seek(delta time.Duration)
	FinishedChan() <-chan struct{}
	Done() <-chan struct{}
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
