package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/resource"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

const defaultBuffer = 100 * time.Millisecond

// Player plays audio byte sources through the system speaker.
type Player struct {
	mu sync.Mutex

	state     State
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	streamer  beep.StreamSeekCloser
	format    beep.Format
	src       resource.ByteSource
	trackInfo *TrackInfo

	done       chan struct{}
	finishedCh chan struct{}

	volumeLevel float64
	muted       bool

	buffer time.Duration
	logger zerolog.Logger
}

// TrackInfo describes the source being played.
type TrackInfo struct {
	Name       string
	Title      string
	Artist     string
	Album      string
	Duration   time.Duration
	SampleRate int
	Format     string
}

// Option configures a Player.
type Option func(*Player)

// WithBuffer sets the speaker buffer duration used at initialization.
func WithBuffer(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.buffer = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

var (
	speakerMu         sync.Mutex
	speakerReady      bool
	speakerSampleRate beep.SampleRate
)

// New creates a stopped player.
func New(opts ...Option) *Player {
	p := &Player{
		state:       Stopped,
		done:        make(chan struct{}),
		finishedCh:  make(chan struct{}, 1),
		volumeLevel: 1.0,
		buffer:      defaultBuffer,
		logger:      zerolog.Nop(),
	}
	close(p.done)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) TrackInfo() *TrackInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trackInfo
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trackInfo == nil {
		return 0
	}
	return p.trackInfo.Duration
}

// FinishedChan receives a value each time a source plays to its end.
func (p *Player) FinishedChan() <-chan struct{} {
	return p.finishedCh
}

// Done is closed when the current source stops or finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
