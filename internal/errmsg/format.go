// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

const (
	// Startup
	OpConfigLoad       Op = "load configuration"
	OpManifestLoad     Op = "load storage manifest"
	OpRegistryBuild    Op = "build resource registry"
	OpCardMount        Op = "mount SD card"
	OpTelemetryConnect Op = "connect to MQTT broker"

	// Resource access
	OpResourceOpen Op = "open resource"
	OpResourceRead Op = "read resource"

	// Media
	OpPlayMedia     Op = "play media"
	OpLoadImage     Op = "load image"
	OpImageExport   Op = "write image preview"
	OpPlaybackPause Op = "pause playback"
	OpPlaybackStop  Op = "stop playback"

	// SD card files
	OpFileWrite  Op = "write file"
	OpFileAppend Op = "append to file"
	OpFileDelete Op = "delete file"
	OpDirCreate  Op = "create directory"
	OpDirRemove  Op = "remove directory"
	OpDirList    Op = "list directory"
	OpCardUsage  Op = "compute card usage"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Wrap annotates err with op and context, keeping it matchable with
// errors.Is.
func Wrap(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	if context == "" {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s %q: %w", op, context, err)
}
