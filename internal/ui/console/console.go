// Package console is the interactive playback view: a now-playing bar,
// the pending queue, and key bindings for the coordinator controls.
package console

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mediastore/internal/keymap"
	"github.com/llehouerou/mediastore/internal/playback"
	"github.com/llehouerou/mediastore/internal/player"
	"github.com/llehouerou/mediastore/internal/ui/queuepanel"
)

const (
	seekStep     = 5 * time.Second
	volumeStep   = 0.1
	tickInterval = 500 * time.Millisecond
)

// Mixer is the optional output control of a driver.
type Mixer interface {
	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
}

// Model is the bubbletea model of the console.
type Model struct {
	svc   playback.Service
	drv   player.Interface
	mixer Mixer
	sub   *playback.Subscription
	keys  *keymap.Resolver
	queue queuepanel.Model

	snap     playback.Snapshot
	lastErr  string
	showHelp bool

	exitOnIdle bool
	started    bool

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithExitOnIdle quits the console once playback has started and the
// coordinator returns to idle.
func WithExitOnIdle() Option {
	return func(m *Model) { m.exitOnIdle = true }
}

// New creates a console over svc. drv is the driver behind svc; it is
// used for seeking, metadata and, when it implements Mixer, volume.
func New(svc playback.Service, drv player.Interface, opts ...Option) Model {
	m := Model{
		svc:   svc,
		drv:   drv,
		sub:   svc.Subscribe(),
		keys:  keymap.NewResolver(keymap.Bindings),
		queue: queuepanel.New(),
	}
	if mx, ok := drv.(Mixer); ok {
		m.mixer = mx
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m
}

// Messages

type stateMsg playback.StateChange

type trackMsg playback.TrackChange

type queueMsg playback.QueueChange

type errorMsg playback.ErrorEvent

type closedMsg struct{}

type tickMsg time.Time

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.watchEvents(), tickCmd())
}

// watchEvents waits for the next coordinator event.
func (m Model) watchEvents() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return stateMsg(e)
		case e := <-sub.TrackChanged:
			return trackMsg(e)
		case e := <-sub.QueueChanged:
			return queueMsg(e)
		case e := <-sub.Error:
			return errorMsg(e)
		case <-sub.Done:
			return closedMsg{}
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) refresh() {
	m.snap = m.svc.Snapshot()
	m.queue.SetQueue(m.snap.Queue, m.snap.Suspended)
	if m.snap.State.IsActive() {
		m.started = true
	}
}

func (m *Model) layout() {
	m.queue.SetSize(m.width, max(m.height-headerHeight-barHeight-footerHeight, 0))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case stateMsg:
		m.refresh()
		if m.exitOnIdle && m.started && msg.Current == playback.StateIdle {
			return m, tea.Quit
		}
		return m, m.watchEvents()

	case trackMsg, queueMsg:
		m.refresh()
		return m, m.watchEvents()

	case errorMsg:
		m.lastErr = fmt.Sprintf("%s %s: %v", msg.Operation, msg.ID, msg.Err)
		m.refresh()
		return m, m.watchEvents()

	case closedMsg:
		return m, tea.Quit

	case tickMsg:
		m.refresh()
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	var err error
	switch m.keys.Resolve(key) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
	case keymap.ActionPlayPause:
		switch m.snap.State {
		case playback.StatePlaying:
			err = m.svc.Pause()
		case playback.StatePaused:
			err = m.svc.Resume()
		case playback.StateIdle:
		}
	case keymap.ActionStop:
		err = m.svc.Stop()
	case keymap.ActionSeekForward:
		if m.snap.State.IsActive() {
			m.drv.Seek(seekStep)
		}
	case keymap.ActionSeekBack:
		if m.snap.State.IsActive() {
			m.drv.Seek(-seekStep)
		}
	case keymap.ActionVolumeUp:
		if m.mixer != nil {
			m.mixer.SetVolume(m.mixer.Volume() + volumeStep)
		}
	case keymap.ActionVolumeDown:
		if m.mixer != nil {
			m.mixer.SetVolume(m.mixer.Volume() - volumeStep)
		}
	case keymap.ActionMute:
		if m.mixer != nil {
			m.mixer.SetMuted(!m.mixer.Muted())
		}
	default:
		return m, nil
	}
	if err != nil {
		m.lastErr = err.Error()
	}
	m.refresh()
	return m, nil
}
