package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// releaseLocked closes the current source and resets to Stopped.
// Caller must hold p.mu.
func (p *Player) releaseLocked() {
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	p.ctrl = nil
	p.volume = nil
	p.trackInfo = nil
	p.state = Stopped

	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// Stop stops playback and releases the source.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Stopped {
		return
	}
	speaker.Clear()
	p.releaseLocked()
	p.logger.Debug().Msg("stopped")
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.CanPause() || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.CanResume() || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// Toggle toggles between playing and paused states.
func (p *Player) Toggle() {
	switch p.State() {
	case Playing:
		p.Pause()
	case Paused:
		p.Resume()
	case Stopped:
	}
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos)
}

// Seek moves the playback position by delta. Seeking past the end
// finishes the current source.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	if p.streamer == nil || p.state == Stopped {
		p.mu.Unlock()
		return
	}

	speaker.Lock()
	newPos := p.streamer.Position() + p.format.SampleRate.N(delta)
	if newPos >= p.streamer.Len() {
		speaker.Unlock()
		done := p.done
		p.mu.Unlock()
		go p.finished(done)
		return
	}
	newPos = max(newPos, 0)
	if err := p.streamer.Seek(newPos); err != nil {
		p.logger.Warn().Err(err).Dur("delta", delta).Msg("seek failed")
	}
	speaker.Unlock()
	p.mu.Unlock()
}
