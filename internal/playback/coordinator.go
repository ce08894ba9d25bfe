package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/player"
	"github.com/llehouerou/mediastore/internal/resource"
)

// Verify coordinator implements Service at compile time.
var _ Service = (*coordinator)(nil)

type suspendedTrack struct {
	req      Request
	position time.Duration
}

type coordinator struct {
	mu sync.Mutex

	player player.Interface
	logger zerolog.Logger

	current   *Request
	queue     requestQueue
	suspended *suspendedTrack
	lastState State

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// Option configures the coordinator.
type Option func(*coordinator)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *coordinator) { c.logger = l }
}

// New creates a playback coordinator driving p.
func New(p player.Interface, opts ...Option) Service {
	c := &coordinator{
		player: p,
		logger: zerolog.Nop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *coordinator) Dispatch(req Request) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, fmt.Errorf("playback: dispatch %q: service closed", req.TargetID)
	}

	log := c.logger.With().Str("id", req.TargetID).Bool("announcement", req.Announcement).
		Bool("enqueue", req.Enqueue).Logger()

	if c.current == nil {
		src, err := req.open()
		if err != nil {
			return 0, err
		}
		if err := c.playLocked(req, src, 0, ReasonRequest); err != nil {
			c.settleLocked(nil)
			return 0, err
		}
		log.Debug().Msg("started")
		return Started, nil
	}

	prev := c.currentTrackLocked()
	switch {
	case req.Announcement:
		// An announcement over an announcement keeps the track that was
		// suspended first.
		var saved *suspendedTrack
		if !c.current.Announcement {
			saved = &suspendedTrack{req: *c.current, position: c.player.Position()}
		}
		src, err := req.open()
		if err != nil {
			return 0, err
		}
		if saved != nil {
			c.suspended = saved
			c.emitQueue()
		}
		if err := c.playLocked(req, src, 0, ReasonRequest); err != nil {
			c.recoverLocked(prev)
			return 0, err
		}
		log.Info().Msg("announcement interrupting playback")
		return Interrupted, nil

	case req.Enqueue:
		c.queue.Add(req)
		c.emitQueue()
		log.Debug().Int("queued", c.queue.Len()).Msg("queued")
		return Queued, nil

	default:
		src, err := req.open()
		if err != nil {
			return 0, err
		}
		if err := c.playLocked(req, src, 0, ReasonRequest); err != nil {
			c.recoverLocked(prev)
			return 0, err
		}
		if c.suspended != nil {
			c.suspended = nil
			c.emitQueue()
		}
		log.Debug().Msg("replaced current track")
		return Replaced, nil
	}
}

// startLocked opens req and plays it from position.
func (c *coordinator) startLocked(req Request, position time.Duration, reason Reason) error {
	src, err := req.open()
	if err != nil {
		c.emitError(reason.operation(), req.TargetID, err)
		return err
	}
	return c.playLocked(req, src, position, reason)
}

// playLocked hands src to the driver, replacing whatever it was playing.
// On failure nothing is current.
func (c *coordinator) playLocked(req Request, src resource.ByteSource, position time.Duration, reason Reason) error {
	prev := c.currentTrackLocked()
	if err := c.player.Play(src, req.name()); err != nil {
		c.player.Stop()
		c.current = nil
		c.emitError(reason.operation(), req.TargetID, err)
		return err
	}
	if position > 0 {
		c.player.Seek(position)
	}
	r := req
	c.current = &r
	c.emitTrackFrom(prev, c.currentTrackLocked(), reason)
	c.emitStateLocked()
	return nil
}

// settleLocked moves on after the current track ended or failed: the
// next target starts, or the coordinator goes idle.
func (c *coordinator) settleLocked(prev *Track) {
	if c.advanceLocked() {
		return
	}
	if prev != nil {
		c.emitTrackFrom(prev, nil, ReasonStop)
	}
	c.emitStateLocked()
}

// recoverLocked runs after the driver rejected a dispatched source. The
// suspended track resumes where it stopped before the queue is consulted.
func (c *coordinator) recoverLocked(prev *Track) {
	if s := c.suspended; s != nil {
		c.suspended = nil
		c.emitQueue()
		if err := c.startLocked(s.req, s.position, ReasonResume); err == nil {
			c.logger.Debug().Str("id", s.req.TargetID).Dur("position", s.position).Msg("resumed after failed request")
			return
		}
		c.logger.Warn().Str("id", s.req.TargetID).Msg("suspended track failed to resume")
	}
	c.settleLocked(prev)
}

// HandleFinished advances after the current track played to its end. A
// signal that arrives once another source already started is stale and
// ignored.
func (c *coordinator) HandleFinished() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	if st := c.player.State(); st != player.Stopped {
		c.logger.Debug().Str("id", c.current.TargetID).Stringer("driver", st).Msg("stale finish signal")
		return
	}
	c.logger.Debug().Str("id", c.current.TargetID).Msg("finished")
	prev := c.currentTrackLocked()
	c.current = nil
	c.settleLocked(prev)
}

// advanceLocked starts the next target: queue head first, then the
// suspended track. Targets that fail to start are skipped. Reports
// whether something started.
func (c *coordinator) advanceLocked() bool {
	for {
		if req, ok := c.queue.Pop(); ok {
			c.emitQueue()
			if err := c.startLocked(req, 0, ReasonQueue); err != nil {
				c.logger.Warn().Err(err).Str("id", req.TargetID).Msg("queued track failed to start")
				continue
			}
			return true
		}
		if s := c.suspended; s != nil {
			c.suspended = nil
			c.emitQueue()
			if err := c.startLocked(s.req, s.position, ReasonResume); err != nil {
				c.logger.Warn().Err(err).Str("id", s.req.TargetID).Msg("suspended track failed to resume")
				continue
			}
			c.logger.Debug().Str("id", s.req.TargetID).Dur("position", s.position).Msg("resumed")
			return true
		}
		return false
	}
}

func (c *coordinator) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	c.player.Pause()
	c.emitStateLocked()
	return nil
}

func (c *coordinator) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	c.player.Resume()
	c.emitStateLocked()
	return nil
}

// Stop halts playback and discards the queue and any suspended track.
func (c *coordinator) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	hadQueue := !c.queue.IsEmpty() || c.suspended != nil
	c.queue.Clear()
	c.suspended = nil
	if hadQueue {
		c.emitQueue()
	}
	if c.current == nil {
		return nil
	}
	prev := c.currentTrackLocked()
	c.current = nil
	c.player.Stop()
	c.emitTrackFrom(prev, nil, ReasonStop)
	c.emitStateLocked()
	return nil
}

func (c *coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *coordinator) stateLocked() State {
	if c.current == nil {
		return StateIdle
	}
	switch c.player.State() {
	case player.Paused:
		return StatePaused
	case player.Playing:
		return StatePlaying
	default:
		// Finished but not yet handled.
		return StatePlaying
	}
}

func (c *coordinator) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0
	}
	return c.player.Position()
}

func (c *coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:     c.stateLocked(),
		Current:   c.currentTrackLocked(),
		Queue:     c.queue.Tracks(),
		Suspended: c.suspendedTrackLocked(),
	}
	if c.current != nil {
		s.Position = c.player.Position()
	}
	return s
}

func (c *coordinator) currentTrackLocked() *Track {
	if c.current == nil {
		return nil
	}
	t := trackOf(*c.current)
	if info := c.player.TrackInfo(); info != nil {
		if info.Title != "" {
			t.Title = info.Title
		}
		t.Duration = info.Duration
	}
	return &t
}

func (c *coordinator) suspendedTrackLocked() *Track {
	if c.suspended == nil {
		return nil
	}
	t := trackOf(c.suspended.req)
	t.Position = c.suspended.position
	return &t
}

func (c *coordinator) Run(ctx context.Context) error {
	finished := c.player.FinishedChan()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-finished:
			c.HandleFinished()
		}
	}
}

// Subscribe creates a new event subscription.
func (c *coordinator) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close stops playback and closes all subscriptions.
func (c *coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.queue.Clear()
	c.suspended = nil
	c.current = nil
	c.player.Stop()
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
	return nil
}
