package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/backend"
	"github.com/llehouerou/mediastore/internal/imagedec"
	"github.com/llehouerou/mediastore/internal/resource"
)

// DuplicateIDError reports every declaration that claimed the same id.
type DuplicateIDError struct {
	ID           string
	Declarations []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id %q declared by %s", e.ID, strings.Join(e.Declarations, " and "))
}

func (e *DuplicateIDError) Unwrap() error { return resource.ErrDuplicateID }

// Builder assembles a Registry. It is not safe for concurrent use and must
// only be used during startup.
//
// All ids (storages, files and images) share one namespace across the
// whole configuration, regardless of backend.
type Builder struct {
	logger zerolog.Logger
	reg    *Registry

	owners   map[string]string
	dups     map[string]*DuplicateIDError
	dupOrder []string
	errs     []error
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to trace registrations.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: zerolog.Nop(),
		reg: &Registry{
			storages: make(map[string]Storage),
			entries:  make(map[string]Entry),
			images:   make(map[string]Image),
		},
		owners: make(map[string]string),
		dups:   make(map[string]*DuplicateIDError),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// claim reserves id for the declaration described by who.
func (b *Builder) claim(id, who string) error {
	if strings.TrimSpace(id) == "" {
		err := fmt.Errorf("%w: empty id in %s", resource.ErrInvalidDeclaration, who)
		b.errs = append(b.errs, err)
		return err
	}
	owner, taken := b.owners[id]
	if !taken {
		b.owners[id] = who
		return nil
	}
	d, seen := b.dups[id]
	if !seen {
		d = &DuplicateIDError{ID: id, Declarations: []string{owner}}
		b.dups[id] = d
		b.dupOrder = append(b.dupOrder, id)
	}
	d.Declarations = append(d.Declarations, who)
	return d
}

func (b *Builder) fail(err error) error {
	b.errs = append(b.errs, err)
	return err
}

// AddStorage declares a storage block.
func (b *Builder) AddStorage(id string, adapter backend.Adapter) error {
	if adapter == nil {
		return b.fail(fmt.Errorf("%w: storage %q has no backend", resource.ErrInvalidDeclaration, id))
	}
	if err := b.claim(id, "storage "+id); err != nil {
		return err
	}
	b.reg.storages[id] = Storage{ID: id, Adapter: adapter}
	b.reg.storageOrder = append(b.reg.storageOrder, id)
	b.logger.Debug().Str("storage", id).Str("platform", adapter.Backend().String()).Msg("storage declared")
	return nil
}

// Register declares file id in storage storageID at loc.
func (b *Builder) Register(storageID, id string, loc backend.Locator) error {
	s, ok := b.reg.storages[storageID]
	if !ok {
		return b.fail(fmt.Errorf("%w: file %q in undeclared storage %q", resource.ErrInvalidDeclaration, id, storageID))
	}
	if err := checkLocator(s.Backend(), loc); err != nil {
		return b.fail(fmt.Errorf("file %q: %w", id, err))
	}
	if err := b.claim(id, fmt.Sprintf("file in storage %s (%s)", storageID, s.Backend())); err != nil {
		return err
	}
	b.reg.entries[id] = Entry{ID: id, Storage: storageID, Backend: s.Backend(), Locator: loc}
	b.reg.entryOrder = append(b.reg.entryOrder, id)
	b.logger.Debug().Str("storage", storageID).Str("id", id).Stringer("locator", loc).
		Msgf("setting up %s storage", s.Backend())
	return nil
}

func checkLocator(be resource.Backend, loc backend.Locator) error {
	ok := false
	switch l := loc.(type) {
	case backend.Key:
		ok = be == resource.Flash && l != ""
	case *backend.Producer:
		ok = be == resource.Inline && l != nil
	case backend.Path:
		ok = be == resource.SDCard && l != ""
	}
	if !ok {
		return fmt.Errorf("%w: locator %T is not valid for %s", resource.ErrInvalidDeclaration, loc, be)
	}
	return nil
}

// RegisterImage declares an image over a file already registered in the
// same storage.
func (b *Builder) RegisterImage(img Image) error {
	if _, ok := b.reg.storages[img.Storage]; !ok {
		return b.fail(fmt.Errorf("%w: image %q in undeclared storage %q", resource.ErrInvalidDeclaration, img.ID, img.Storage))
	}
	e, ok := b.reg.entries[img.File]
	if !ok {
		return b.fail(fmt.Errorf("%w: image %q references unknown file %q", resource.ErrInvalidDeclaration, img.ID, img.File))
	}
	if e.Storage != img.Storage {
		return b.fail(fmt.Errorf("%w: image %q in storage %q references file %q of storage %q",
			resource.ErrInvalidDeclaration, img.ID, img.Storage, img.File, e.Storage))
	}
	if err := b.claim(img.ID, "image in storage "+img.Storage); err != nil {
		return err
	}
	if img.Transparency == imagedec.AlphaChannel && !img.Format.SupportsAlpha() {
		b.logger.Warn().Str("image", img.ID).Stringer("type", img.Format).
			Msg("transparency requested for a format without alpha, decoding will fail")
	}
	b.reg.images[img.ID] = img
	b.reg.imageOrder = append(b.reg.imageOrder, img.ID)
	return nil
}

// Build validates the declarations and returns the registry. If any
// declaration failed, no registry is returned and the error joins every
// failure, duplicates first. The builder must not be reused.
func (b *Builder) Build() (*Registry, error) {
	var errs []error
	for _, id := range b.dupOrder {
		errs = append(errs, b.dups[id])
	}
	errs = append(errs, b.errs...)
	reg := b.reg
	b.reg = nil
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	b.logger.Info().Int("storages", len(reg.storages)).Int("files", len(reg.entries)).
		Int("images", len(reg.images)).Msg("registry built")
	return reg, nil
}
