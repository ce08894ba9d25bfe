package backend

import (
	"fmt"
	"sort"

	"github.com/llehouerou/mediastore/internal/resource"
)

// Span locates one blob inside a flash image.
type Span struct {
	Offset int64
	Length int64
}

// FlashImage is a packed blob plus the table locating each file in it.
type FlashImage struct {
	data  []byte
	table map[string]Span
}

// NewFlashImage wraps an existing image and table. Spans outside data are
// rejected.
func NewFlashImage(data []byte, table map[string]Span) (*FlashImage, error) {
	for key, s := range table {
		if s.Offset < 0 || s.Length < 0 || s.Offset+s.Length > int64(len(data)) {
			return nil, fmt.Errorf("%w: flash span %q [%d+%d] outside image of %d bytes",
				resource.ErrInvalidDeclaration, key, s.Offset, s.Length, len(data))
		}
	}
	t := make(map[string]Span, len(table))
	for k, v := range table {
		t[k] = v
	}
	return &FlashImage{data: data, table: t}, nil
}

// Size returns the image size in bytes.
func (f *FlashImage) Size() int { return len(f.data) }

// Keys returns the table keys in offset order.
func (f *FlashImage) Keys() []string {
	keys := make([]string, 0, len(f.table))
	for k := range f.table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return f.table[keys[i]].Offset < f.table[keys[j]].Offset
	})
	return keys
}

// Packer builds a FlashImage by concatenating blobs.
type Packer struct {
	data  []byte
	table map[string]Span
}

// NewPacker returns an empty packer.
func NewPacker() *Packer {
	return &Packer{table: make(map[string]Span)}
}

// Add appends blob under key.
func (p *Packer) Add(key string, blob []byte) error {
	if _, ok := p.table[key]; ok {
		return fmt.Errorf("%w: flash key %q packed twice", resource.ErrDuplicateID, key)
	}
	p.table[key] = Span{Offset: int64(len(p.data)), Length: int64(len(blob))}
	p.data = append(p.data, blob...)
	return nil
}

// Image returns the packed image. The packer must not be used afterwards.
func (p *Packer) Image() *FlashImage {
	img := &FlashImage{data: p.data, table: p.table}
	p.data, p.table = nil, nil
	return img
}

// Flash serves blobs from a FlashImage. Reads never copy the image.
type Flash struct {
	image *FlashImage
}

// NewFlash returns a flash adapter over image.
func NewFlash(image *FlashImage) *Flash {
	return &Flash{image: image}
}

func (f *Flash) Backend() resource.Backend { return resource.Flash }

// Open returns a reader over the blob's span.
func (f *Flash) Open(loc Locator) (resource.ByteSource, error) {
	s, ok := f.lookup(loc)
	if !ok {
		return nil, fmt.Errorf("%w: flash key %q", resource.ErrNotFound, loc)
	}
	end := s.Offset + s.Length
	return resource.NewMemSource(f.image.data[s.Offset:end:end]), nil
}

func (f *Flash) Exists(loc Locator) bool {
	_, ok := f.lookup(loc)
	return ok
}

func (f *Flash) lookup(loc Locator) (Span, bool) {
	k, ok := loc.(Key)
	if !ok || f.image == nil {
		return Span{}, false
	}
	s, ok := f.image.table[string(k)]
	return s, ok
}
