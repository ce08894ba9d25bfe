// Package keymap defines the key bindings of the playback console.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"

	// Output
	ActionVolumeUp   Action = "volume_up"
	ActionVolumeDown Action = "volume_down"
	ActionMute       Action = "mute"
)

// Binding maps keys to an action.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "output"
}

// Bindings contains every console key binding.
var Bindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},

	{ActionPlayPause, []string{" ", "p"}, "Pause/resume", "playback"},
	{ActionStop, []string{"s"}, "Stop and clear queue", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s", "playback"},

	{ActionVolumeUp, []string{"+", "="}, "Volume up", "output"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "output"},
	{ActionMute, []string{"m"}, "Mute", "output"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
