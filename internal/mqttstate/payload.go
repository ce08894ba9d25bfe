package mqttstate

import (
	"strings"

	"github.com/llehouerou/mediastore/internal/playback"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

func statusTopic(prefix string) string { return prefix + "/status" }

// Topics names the state topics under a prefix.
type Topics struct {
	Prefix string
}

func (t Topics) State() string { return t.Prefix + "/state" }
func (t Topics) Track() string { return t.Prefix + "/track" }
func (t Topics) Queue() string { return t.Prefix + "/queue" }
func (t Topics) Error() string { return t.Prefix + "/error" }

func (t Topics) CardSpace() string { return t.Prefix + "/sd/space" }
func (t Topics) CardFiles() string { return t.Prefix + "/sd/files" }

type trackPayload struct {
	ID           string  `json:"id"`
	Storage      string  `json:"storage"`
	Title        string  `json:"title"`
	Announcement bool    `json:"announcement"`
	DurationSec  float64 `json:"duration_sec,omitempty"`
	PositionSec  float64 `json:"position_sec,omitempty"`
}

type statePayload struct {
	State       string  `json:"state"`
	PositionSec float64 `json:"position_sec"`
}

type currentPayload struct {
	Track  *trackPayload `json:"track"`
	Reason string        `json:"reason"`
}

type queuePayload struct {
	Tracks    []trackPayload `json:"tracks"`
	Suspended *trackPayload  `json:"suspended"`
}

type errorPayload struct {
	Operation string `json:"operation"`
	ID        string `json:"id"`
	Error     string `json:"error"`
}

type spacePayload struct {
	UsedBytes  int64  `json:"used_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
	FreeBytes  uint64 `json:"free_bytes"`
	Error      string `json:"error,omitempty"`
}

type fileSizePayload struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Error     string `json:"error,omitempty"`
}

func toTrack(t *playback.Track) *trackPayload {
	if t == nil {
		return nil
	}
	return &trackPayload{
		ID:           t.ID,
		Storage:      t.Storage,
		Title:        t.Title,
		Announcement: t.Announcement,
		DurationSec:  t.Duration.Seconds(),
		PositionSec:  t.Position.Seconds(),
	}
}

func toQueue(tracks []playback.Track, suspended *playback.Track) queuePayload {
	q := queuePayload{Tracks: make([]trackPayload, 0, len(tracks)), Suspended: toTrack(suspended)}
	for i := range tracks {
		q.Tracks = append(q.Tracks, *toTrack(&tracks[i]))
	}
	return q
}

func stateName(s playback.State) string {
	return strings.ToLower(s.String())
}
