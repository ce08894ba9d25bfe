package playback

func (c *coordinator) broadcast(fn func(*Subscription)) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		fn(sub)
	}
}

// emitStateLocked emits a StateChange if the state differs from the
// last one emitted.
func (c *coordinator) emitStateLocked() {
	cur := c.stateLocked()
	if cur == c.lastState {
		return
	}
	e := StateChange{Previous: c.lastState, Current: cur}
	c.lastState = cur
	c.broadcast(func(s *Subscription) { s.sendState(e) })
}

func (c *coordinator) emitTrackFrom(prev, cur *Track, reason Reason) {
	e := TrackChange{Previous: prev, Current: cur, Reason: reason}
	c.broadcast(func(s *Subscription) { s.sendTrack(e) })
}

func (c *coordinator) emitQueue() {
	e := QueueChange{Tracks: c.queue.Tracks(), Suspended: c.suspendedTrackLocked()}
	c.broadcast(func(s *Subscription) { s.sendQueue(e) })
}

func (c *coordinator) emitError(op, id string, err error) {
	c.logger.Error().Err(err).Str("op", op).Str("id", id).Msg("playback failed")
	e := ErrorEvent{Operation: op, ID: id, Err: err}
	c.broadcast(func(s *Subscription) { s.sendError(e) })
}
