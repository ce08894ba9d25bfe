// Package registry maps symbolic resource ids onto storage backends.
//
// A Registry is assembled once at startup through a Builder and is
// read-only afterwards. Resolve and Open are safe for concurrent use; the
// only post-construction mutation is the one-time materialization of
// inline data, which the inline backend guards itself.
package registry

import (
	"fmt"

	"github.com/llehouerou/mediastore/internal/backend"
	"github.com/llehouerou/mediastore/internal/imagedec"
	"github.com/llehouerou/mediastore/internal/resource"
)

// Storage is one declared storage block: an id bound to a backend adapter.
type Storage struct {
	ID      string
	Adapter backend.Adapter
}

// Backend returns the storage medium.
func (s Storage) Backend() resource.Backend { return s.Adapter.Backend() }

// Entry is a registered file.
type Entry struct {
	ID      string
	Storage string
	Backend resource.Backend
	Locator backend.Locator
}

// Image is a registered image: a decode recipe over a file entry.
type Image struct {
	ID           string
	Storage      string
	File         string
	Format       imagedec.PixelFormat
	Resize       *imagedec.Size
	Transparency imagedec.Transparency
}

// Options returns the decode options of the image.
func (i Image) Options() imagedec.Options {
	return imagedec.Options{Format: i.Format, Resize: i.Resize, Transparency: i.Transparency}
}

// Registry is the immutable id space of the device.
type Registry struct {
	storages map[string]Storage
	entries  map[string]Entry
	images   map[string]Image

	storageOrder []string
	entryOrder   []string
	imageOrder   []string
}

// Resolve returns the entry registered under id.
func (r *Registry) Resolve(id string) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", resource.ErrUnknownID, id)
	}
	return e, nil
}

// Open resolves id and opens it through its backend.
func (r *Registry) Open(id string) (resource.ByteSource, error) {
	e, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	s := r.storages[e.Storage]
	src, err := s.Adapter.Open(e.Locator)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", id, err)
	}
	return src, nil
}

// Exists reports whether the entry's backing data is currently reachable.
// Inline producers are not run.
func (r *Registry) Exists(id string) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	return r.storages[e.Storage].Adapter.Exists(e.Locator)
}

// Storage returns the storage block registered under id.
func (r *Registry) Storage(id string) (Storage, error) {
	s, ok := r.storages[id]
	if !ok {
		return Storage{}, fmt.Errorf("%w: storage %q", resource.ErrUnknownID, id)
	}
	return s, nil
}

// Image returns the image registered under id.
func (r *Registry) Image(id string) (Image, error) {
	img, ok := r.images[id]
	if !ok {
		return Image{}, fmt.Errorf("%w: image %q", resource.ErrUnknownID, id)
	}
	return img, nil
}

// Entries returns the file entries in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entryOrder))
	for _, id := range r.entryOrder {
		out = append(out, r.entries[id])
	}
	return out
}

// Images returns the images in declaration order.
func (r *Registry) Images() []Image {
	out := make([]Image, 0, len(r.imageOrder))
	for _, id := range r.imageOrder {
		out = append(out, r.images[id])
	}
	return out
}

// Storages returns the storage blocks in declaration order.
func (r *Registry) Storages() []Storage {
	out := make([]Storage, 0, len(r.storageOrder))
	for _, id := range r.storageOrder {
		out = append(out, r.storages[id])
	}
	return out
}

// Len returns the number of file entries.
func (r *Registry) Len() int { return len(r.entries) }
