// Package sdcard exposes the file operations of a mounted SD card.
//
// All paths are relative to the card's mount point; a leading slash is
// accepted ("/music/a.mp3" and "music/a.mp3" name the same file). Paths
// that would escape the mount point are rejected.
package sdcard

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/resource"
)

// Mount errors.
var (
	ErrNoCard = errors.New("no card found")
	ErrMount  = errors.New("failed to mount card")
)

const defaultBufferSize = 4096

// FileInfo describes one entry returned by ListDirectory.
type FileInfo struct {
	Path  string
	Size  int64
	IsDir bool
}

// Card is a mounted SD card.
type Card struct {
	root   string
	logger zerolog.Logger

	// maxOpen bounds the streams returned by Open that are not yet
	// closed; zero means unbounded.
	maxOpen int32
	open    atomic.Int32
}

// Option configures a Card.
type Option func(*Card)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Card) { c.logger = l }
}

// WithMaxOpenFiles limits the number of concurrently open read streams.
func WithMaxOpenFiles(n int) Option {
	return func(c *Card) {
		if n > 0 {
			c.maxOpen = int32(n)
		}
	}
}

// Mount returns a Card rooted at mountPoint.
func Mount(mountPoint string, opts ...Option) (*Card, error) {
	c := &Card{root: filepath.Clean(mountPoint), logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}

	info, err := os.Stat(c.root)
	if err != nil {
		c.logger.Error().Str("mount_point", c.root).Err(err).Msg("card failed, or not present")
		return nil, fmt.Errorf("%w: %s", ErrNoCard, c.root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrMount, c.root)
	}

	c.logger.Debug().Str("mount_point", c.root).Msg("card mounted")
	return c, nil
}

// Root returns the mount point.
func (c *Card) Root() string { return c.root }

// abs maps a card path onto the host filesystem.
func (c *Card) abs(p string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(p))
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" {
		return c.root, nil
	}
	if !fs.ValidPath(rel) {
		return "", fmt.Errorf("%w: invalid path %q", resource.ErrNotFound, p)
	}
	return filepath.Join(c.root, filepath.FromSlash(rel)), nil
}

// classify maps an os error onto the resource taxonomy.
func classify(p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", resource.ErrNotFound, p)
	}
	return fmt.Errorf("%w: %s: %w", resource.ErrIO, p, err)
}

// Open opens a file for reading. Each call opens the file again.
func (c *Card) Open(p string) (resource.ByteSource, error) {
	full, err := c.abs(p)
	if err != nil {
		return nil, err
	}
	if !c.acquire() {
		return nil, fmt.Errorf("%w: %s: too many open files (max %d)", resource.ErrIO, p, c.maxOpen)
	}
	f, err := os.Open(full)
	if err != nil {
		c.release()
		return nil, classify(p, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		c.release()
		return nil, classify(p, err)
	}
	if info.IsDir() {
		f.Close()
		c.release()
		return nil, fmt.Errorf("%w: %s is a directory", resource.ErrNotFound, p)
	}
	c.logger.Trace().Str("path", p).Str("size", FormatSize(info.Size())).Msg("opened file for reading")
	return &fileSource{File: f, size: info.Size(), release: c.release}, nil
}

func (c *Card) acquire() bool {
	if c.maxOpen == 0 {
		return true
	}
	if c.open.Add(1) > c.maxOpen {
		c.open.Add(-1)
		return false
	}
	return true
}

func (c *Card) release() {
	if c.maxOpen != 0 {
		c.open.Add(-1)
	}
}

type fileSource struct {
	*os.File
	size    int64
	release func()
	once    sync.Once
}

func (f *fileSource) Size() int64 { return f.size }

func (f *fileSource) Close() error {
	err := f.File.Close()
	f.once.Do(f.release)
	return err
}

// Exists reports whether a regular file or directory exists at p.
func (c *Card) Exists(p string) bool {
	full, err := c.abs(p)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// IsDirectory reports whether p is a directory.
func (c *Card) IsDirectory(p string) bool {
	full, err := c.abs(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FileSize returns the size of the file at p.
func (c *Card) FileSize(p string) (int64, error) {
	full, err := c.abs(p)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, classify(p, err)
	}
	return info.Size(), nil
}

// ReadFile reads the whole file at p.
func (c *Card) ReadFile(p string) ([]byte, error) {
	src, err := c.Open(p)
	if err != nil {
		return nil, err
	}
	if src.Size() > 1<<20 {
		c.logger.Warn().Str("path", p).Str("size", FormatSize(src.Size())).
			Msg("reading large file, consider Process instead")
	}
	return resource.ReadAll(src)
}

// WriteFile creates or truncates p and writes data to it.
func (c *Card) WriteFile(p string, data []byte) error {
	return c.write(p, data, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// AppendFile appends data to p, creating it if needed.
func (c *Card) AppendFile(p string, data []byte) error {
	return c.write(p, data, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func (c *Card) write(p string, data []byte, flag int) error {
	full, err := c.abs(p)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(full, flag, 0o644)
	if err != nil {
		return classify(p, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return classify(p, err)
	}
	if err := f.Close(); err != nil {
		return classify(p, err)
	}
	c.logger.Debug().Str("path", p).Str("size", FormatSize(int64(len(data)))).Msg("wrote file")
	return nil
}

// DeleteFile removes the file at p. Directories are removed recursively.
func (c *Card) DeleteFile(p string) error {
	full, err := c.abs(p)
	if err != nil {
		return err
	}
	if full == c.root {
		return fmt.Errorf("%w: refusing to delete the mount point", resource.ErrIO)
	}
	if _, err := os.Lstat(full); err != nil {
		return classify(p, err)
	}
	if err := os.RemoveAll(full); err != nil {
		return classify(p, err)
	}
	return nil
}

// CreateDirectory creates the directory p. Existing directories are not
// an error.
func (c *Card) CreateDirectory(p string) error {
	full, err := c.abs(p)
	if err != nil {
		return err
	}
	if err := os.Mkdir(full, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return classify(p, err)
	}
	return nil
}

// RemoveDirectory removes the empty directory p.
func (c *Card) RemoveDirectory(p string) error {
	full, err := c.abs(p)
	if err != nil {
		return err
	}
	if full == c.root {
		return fmt.Errorf("%w: refusing to remove the mount point", resource.ErrIO)
	}
	info, err := os.Stat(full)
	if err != nil {
		return classify(p, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", resource.ErrIO, p)
	}
	if err := os.Remove(full); err != nil {
		return classify(p, err)
	}
	return nil
}

// ListDirectory lists p. Subdirectories are descended into while depth
// is greater than zero. Returned paths are card paths with a leading slash.
func (c *Card) ListDirectory(p string, depth int) ([]FileInfo, error) {
	full, err := c.abs(p)
	if err != nil {
		return nil, err
	}
	var list []FileInfo
	if err := c.listRec(full, depth, &list); err != nil {
		return nil, classify(p, err)
	}
	return list, nil
}

func (c *Card) listRec(dir string, depth int, list *[]FileInfo) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		info, err := e.Info()
		if err != nil {
			continue
		}
		rel, _ := filepath.Rel(c.root, full)
		fi := FileInfo{Path: "/" + filepath.ToSlash(rel), IsDir: e.IsDir()}
		if !e.IsDir() {
			fi.Size = info.Size()
		}
		*list = append(*list, fi)
		if e.IsDir() && depth > 0 {
			if err := c.listRec(full, depth-1, list); err != nil {
				return err
			}
		}
	}
	return nil
}

// Usage returns the total size of the regular files on the card.
func (c *Card) Usage() (int64, error) {
	var total int64
	err := filepath.WalkDir(c.root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, classify(c.root, err)
	}
	return total, nil
}

// ReadCallback receives each chunk of a processed file. total is the file
// size, offset the position of chunk within the file. Returning false
// stops processing early.
type ReadCallback func(chunk []byte, total, offset int64) bool

// Process streams the file at p through fn in chunks of bufSize bytes.
// It returns false when fn stopped early or the file was not read to the
// end.
func (c *Card) Process(p string, bufSize int, fn ReadCallback) (bool, error) {
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	src, err := c.Open(p)
	if err != nil {
		return false, err
	}
	defer src.Close()

	total := src.Size()
	buf := make([]byte, bufSize)
	var offset int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if !fn(buf[:n], total, offset) {
				c.logger.Warn().Str("path", p).Msg("file processing callback requested early termination")
				return false, nil
			}
			offset += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, classify(p, err)
		}
	}
	if offset != total {
		c.logger.Warn().Str("path", p).Int64("read", offset).Int64("size", total).Msg("file processing incomplete")
		return false, nil
	}
	return true, nil
}

// WriteCallback fills buf and returns the number of bytes written to it.
// Returning fewer than len(buf) bytes ends the stream.
type WriteCallback func(buf []byte) int

// WriteStream creates p and fills it from fn.
func (c *Card) WriteStream(p string, bufSize int, fn WriteCallback) (int64, error) {
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	full, err := c.abs(p)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, classify(p, err)
	}
	defer f.Close()

	buf := make([]byte, bufSize)
	var written int64
	for {
		n := fn(buf)
		if n <= 0 {
			break
		}
		if n > bufSize {
			n = bufSize
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return written, classify(p, err)
		}
		written += int64(n)
		if n < bufSize {
			break
		}
	}
	c.logger.Debug().Str("path", p).Str("size", FormatSize(written)).Msg("finished writing file")
	return written, nil
}
