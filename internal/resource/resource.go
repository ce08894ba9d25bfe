// Package resource holds the types shared between storage backends, the
// registry and the consumers of resolved resources.
package resource

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Backend identifies a storage medium. Fixed for an entry once registered.
type Backend int

const (
	Flash Backend = iota
	Inline
	SDCard
)

// String returns the manifest platform name.
func (b Backend) String() string {
	switch b {
	case Flash:
		return "flash"
	case Inline:
		return "inline"
	case SDCard:
		return "sd_card"
	default:
		return "unknown"
	}
}

// Writable reports whether files can be created on the backend at runtime.
func (b Backend) Writable() bool {
	return b == SDCard
}

// ParseBackend parses a manifest platform name. "sd" is accepted as an
// alias of "sd_card".
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flash":
		return Flash, nil
	case "inline":
		return Inline, nil
	case "sd_card", "sd":
		return SDCard, nil
	default:
		return 0, fmt.Errorf("%w: unknown platform %q", ErrInvalidDeclaration, s)
	}
}

// ByteSource is a sequential, seekable byte stream of known length handed
// to drivers. Callers must Close it.
type ByteSource interface {
	io.ReadSeekCloser
	Size() int64
}

// memSource serves a byte slice without copying it.
type memSource struct {
	*bytes.Reader
	size int64
}

// NewMemSource returns a ByteSource over data. The slice is not copied;
// callers must not modify it afterwards.
func NewMemSource(data []byte) ByteSource {
	return &memSource{Reader: bytes.NewReader(data), size: int64(len(data))}
}

func (m *memSource) Size() int64 { return m.size }

func (m *memSource) Close() error { return nil }

// ReadAll reads the full content of src and closes it.
func ReadAll(src ByteSource) ([]byte, error) {
	defer src.Close()
	buf := make([]byte, 0, src.Size())
	w := bytes.NewBuffer(buf)
	if _, err := io.Copy(w, src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return w.Bytes(), nil
}
