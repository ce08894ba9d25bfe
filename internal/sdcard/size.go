package sdcard

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatSize renders a byte count using binary units with short suffixes
// ("1.5 MB" rather than "1.5 MiB").
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	s := humanize.IBytes(uint64(bytes)) //nolint:gosec // bytes is guaranteed non-negative above
	return strings.ReplaceAll(s, "iB", "B")
}
