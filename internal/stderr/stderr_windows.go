//go:build windows

// Package stderr provides a no-op implementation for Windows.
// Windows audio libraries don't produce the same stderr noise as ALSA.
package stderr

import (
	"os"

	"github.com/rs/zerolog"
)

type Capture struct{}

// Start is a no-op on Windows.
func Start() (*Capture, error) {
	return &Capture{}, nil
}

func (c *Capture) Original() *os.File { return os.Stderr }

func (c *Capture) Forward(zerolog.Logger) {}

func (c *Capture) Stop() {}
