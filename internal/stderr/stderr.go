//go:build !windows

// Package stderr captures output that C libraries (ALSA under the audio
// speaker) write straight to file descriptor 2 and forwards it to the
// logger.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// Capture holds a redirected fd 2.
type Capture struct {
	orig      int
	original  *os.File
	pipeRead  *os.File
	pipeWrite *os.File

	forward sync.Once
	done    chan struct{}
	stop    sync.Once
}

// Start redirects fd 2 into a pipe. Nothing is read from the pipe until
// Forward is called. The program can continue without capture if Start
// fails.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	return &Capture{
		orig:      orig,
		original:  os.NewFile(uintptr(orig), "stderr"),
		pipeRead:  r,
		pipeWrite: w,
		done:      make(chan struct{}),
	}, nil
}

// Original is the terminal stderr. Loggers must write here, not to
// os.Stderr, or their own output would loop back through the pipe.
func (c *Capture) Original() *os.File {
	return c.original
}

// Forward logs each captured line at warn level with source "stderr".
func (c *Capture) Forward(log zerolog.Logger) {
	c.forward.Do(func() {
		go func() {
			defer close(c.done)
			scanner := bufio.NewScanner(c.pipeRead)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line != "" {
					log.Warn().Str("source", "stderr").Msg(line)
				}
			}
		}()
	})
}

// Stop restores the original stderr and waits for pending lines to be
// forwarded.
func (c *Capture) Stop() {
	c.stop.Do(func() {
		_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
		c.pipeWrite.Close()

		forwarding := true
		c.forward.Do(func() { forwarding = false })
		if forwarding {
			<-c.done
		}
		c.pipeRead.Close()
		c.original.Close()
	})
}
