package playback

import (
	"errors"
	"time"

	"github.com/llehouerou/mediastore/internal/resource"
)

var errNoOpener = errors.New("playback request has no source")

// Request asks the coordinator to play one resource.
type Request struct {
	TargetID     string
	Storage      string
	Name         string // locator text, used for codec detection
	Announcement bool
	Enqueue      bool

	// Open yields a fresh source. It is called each time the target
	// starts, including when a suspended track resumes.
	Open func() (resource.ByteSource, error)
}

func (r Request) open() (resource.ByteSource, error) {
	if r.Open == nil {
		return nil, errNoOpener
	}
	return r.Open()
}

func (r Request) name() string {
	if r.Name != "" {
		return r.Name
	}
	return r.TargetID
}

// Track is a copy of the data describing a playing, queued or suspended
// target.
type Track struct {
	ID           string
	Storage      string
	Title        string
	Announcement bool
	Duration     time.Duration
	Position     time.Duration // only set for a suspended track
}

func trackOf(r Request) Track {
	return Track{ID: r.TargetID, Storage: r.Storage, Title: r.TargetID, Announcement: r.Announcement}
}

// Snapshot is a consistent copy of the coordination state.
type Snapshot struct {
	State     State
	Current   *Track
	Queue     []Track
	Suspended *Track
	Position  time.Duration
}
