package backend

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/llehouerou/mediastore/internal/resource"
)

// ProduceFunc produces the bytes of an inline resource.
type ProduceFunc func() ([]byte, error)

// Producer is the locator of an inline resource. It owns the materialized
// buffer: fn runs at most once, on first Open, and its result (bytes or
// error) is kept for the life of the process.
type Producer struct {
	name string
	fn   ProduceFunc

	once sync.Once
	done atomic.Bool
	data []byte
	err  error
}

// NewProducer returns a producer named name.
func NewProducer(name string, fn ProduceFunc) *Producer {
	return &Producer{name: name, fn: fn}
}

// Bytes returns a producer over a fixed byte slice. The slice is copied on
// materialization.
func Bytes(name string, data []byte) *Producer {
	return NewProducer(name, func() ([]byte, error) { return data, nil })
}

func (p *Producer) String() string { return p.name }

// Materialized reports whether fn has already run.
func (p *Producer) Materialized() bool {
	return p.done.Load()
}

func (p *Producer) materialize() ([]byte, error) {
	p.once.Do(func() {
		defer p.done.Store(true)
		if p.fn == nil {
			p.err = fmt.Errorf("%w: inline %q has no producer", resource.ErrNotFound, p.name)
			return
		}
		out, err := p.fn()
		if err != nil {
			p.err = fmt.Errorf("%w: inline %q: %w", resource.ErrIO, p.name, err)
			return
		}
		buf := make([]byte, len(out))
		copy(buf, out)
		p.data = buf
	})
	return p.data, p.err
}

// Inline serves resources materialized from producers.
type Inline struct{}

// NewInline returns the inline adapter.
func NewInline() *Inline { return &Inline{} }

func (Inline) Backend() resource.Backend { return resource.Inline }

// Open materializes the producer on first use and returns a reader over the
// cached buffer.
func (Inline) Open(loc Locator) (resource.ByteSource, error) {
	p, ok := loc.(*Producer)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: not an inline locator: %v", resource.ErrNotFound, loc)
	}
	data, err := p.materialize()
	if err != nil {
		return nil, err
	}
	return resource.NewMemSource(data), nil
}

// Exists reports whether loc is an inline producer. It does not run it.
func (Inline) Exists(loc Locator) bool {
	p, ok := loc.(*Producer)
	return ok && p != nil && p.fn != nil
}
