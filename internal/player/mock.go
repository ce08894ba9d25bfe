package player

import (
	"sync"
	"time"

	"github.com/llehouerou/mediastore/internal/resource"
)

// Mock is a test double for Player. It records calls and never touches
// audio hardware.
type Mock struct {
	mu         sync.Mutex
	state      State
	position   time.Duration
	duration   time.Duration
	trackInfo  *TrackInfo
	playErr    error
	rejected   map[string]error
	playCalls  []string
	seekCalls  []time.Duration
	stopCalls  int
	finishedCh chan struct{}
	done       chan struct{}
}

func NewMock() *Mock {
	done := make(chan struct{})
	close(done)
	return &Mock{
		state:      Stopped,
		finishedCh: make(chan struct{}, 1),
		done:       done,
	}
}

func (m *Mock) Play(src resource.ByteSource, name string) error {
	if src != nil {
		src.Close()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls = append(m.playCalls, name)
	select {
	case <-m.finishedCh:
	default:
	}
	if err := m.rejected[name]; err != nil {
		return err
	}
	if m.playErr != nil {
		return m.playErr
	}
	m.state = Playing
	m.position = 0
	m.trackInfo = &TrackInfo{Name: name, Title: name}
	m.done = make(chan struct{})
	return nil
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.stopLocked()
}

func (m *Mock) stopLocked() {
	m.state = Stopped
	m.trackInfo = nil
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Toggle() {
	switch m.State() {
	case Playing:
		m.Pause()
	case Paused:
		m.Resume()
	case Stopped:
	}
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) TrackInfo() *TrackInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trackInfo
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Seek(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, d)
	m.position = max(m.position+d, 0)
}

func (m *Mock) FinishedChan() <-chan struct{} {
	return m.finishedCh
}

func (m *Mock) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Test helpers

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// RejectName makes Play fail with err for sources played under name.
// A nil err accepts the name again.
func (m *Mock) RejectName(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = make(map[string]error)
	}
	m.rejected[name] = err
}

// PlayCalls returns the names passed to Play, in order.
func (m *Mock) PlayCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.playCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// SimulateFinished ends the current source as if it played to the end.
func (m *Mock) SimulateFinished() {
	m.mu.Lock()
	m.stopLocked()
	m.mu.Unlock()
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
