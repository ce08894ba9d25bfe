package manifest

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/backend"
	"github.com/llehouerou/mediastore/internal/imagedec"
	"github.com/llehouerou/mediastore/internal/registry"
	"github.com/llehouerou/mediastore/internal/resource"
	"github.com/llehouerou/mediastore/internal/sdcard"
)

// CompileOptions carries the runtime pieces a manifest binds to.
type CompileOptions struct {
	// Card backs sd_card storages. When nil, SD card files are declared
	// but every open fails.
	Card   *sdcard.Card
	Logger zerolog.Logger
}

// Compile validates m and builds the registry. Flash payloads are read
// and packed now; inline payloads are produced on first open. Any
// failure aborts the whole build.
func Compile(m *Manifest, opts CompileOptions) (*registry.Registry, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	b := registry.NewBuilder(registry.WithLogger(log))
	var errs []error

	var sd *backend.SDCard
	inline := backend.NewInline()

	for _, s := range m.Storage {
		platform, _ := resource.ParseBackend(s.Platform)
		switch platform {
		case resource.Flash:
			errs = append(errs, m.compileFlash(b, s)...)
		case resource.Inline:
			if err := b.AddStorage(s.ID, inline); err != nil {
				continue
			}
			for _, f := range s.Files {
				_ = b.Register(s.ID, f.ID, m.producer(f))
			}
		case resource.SDCard:
			if sd == nil {
				if opts.Card == nil {
					log.Warn().Str("storage", s.ID).Msg("no SD card mounted, card files will not open")
				}
				sd = backend.NewSDCard(opts.Card)
			}
			if err := b.AddStorage(s.ID, sd); err != nil {
				continue
			}
			for _, f := range s.Files {
				if f.Source == "" {
					errs = append(errs, fmt.Errorf("%w: file %q in storage %q: sd_card files need a source path",
						resource.ErrInvalidDeclaration, f.ID, s.ID))
					continue
				}
				loc := backend.Path(f.Source)
				if err := b.Register(s.ID, f.ID, loc); err != nil {
					continue
				}
				if sd.Exists(loc) {
					log.Info().Str("id", f.ID).Str("path", f.Source).Msg("SD card file present")
				} else {
					log.Warn().Str("id", f.ID).Str("path", f.Source).Msg("SD card file missing")
				}
			}
		}
	}

	// Images are declared once every file is.
	for _, s := range m.Storage {
		for _, im := range s.Images {
			img, err := parseImage(s.ID, im)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			_ = b.RegisterImage(img)
		}
	}

	reg, err := b.Build()
	if err != nil {
		errs = append([]error{err}, errs...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

func (m *Manifest) compileFlash(b *registry.Builder, s Storage) []error {
	var errs []error
	packer := backend.NewPacker()
	packed := make([]bool, len(s.Files))
	for i, f := range s.Files {
		data, err := m.payload(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("file %q in storage %q: %w", f.ID, s.ID, err))
			continue
		}
		// A repeated id is reported by the builder.
		_ = packer.Add(f.ID, data)
		packed[i] = true
	}
	if err := b.AddStorage(s.ID, backend.NewFlash(packer.Image())); err != nil {
		return errs
	}
	for i, f := range s.Files {
		if packed[i] {
			_ = b.Register(s.ID, f.ID, backend.Key(f.ID))
		}
	}
	return errs
}

// payload returns the bytes of f, reading Source from the host.
func (m *Manifest) payload(f File) ([]byte, error) {
	switch {
	case f.Source != "":
		data, err := os.ReadFile(m.resolve(f.Source))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", resource.ErrNotFound, f.Source)
			}
			return nil, fmt.Errorf("%w: %w", resource.ErrIO, err)
		}
		return data, nil
	case f.Hex != "":
		data, err := hex.DecodeString(f.Hex)
		if err != nil {
			return nil, fmt.Errorf("%w: hex: %w", resource.ErrInvalidDeclaration, err)
		}
		return data, nil
	case f.Base64 != "":
		data, err := base64.StdEncoding.DecodeString(f.Base64)
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %w", resource.ErrInvalidDeclaration, err)
		}
		return data, nil
	default:
		return []byte(f.Data), nil
	}
}

// producer defers reading and decoding f until its first open.
func (m *Manifest) producer(f File) *backend.Producer {
	return backend.NewProducer(f.ID, func() ([]byte, error) {
		return m.payload(f)
	})
}

// parseImage converts an image record. Every failure is a declaration
// fault, whatever the parser underneath reported.
func parseImage(storageID string, im Image) (registry.Image, error) {
	img := registry.Image{ID: im.ID, Storage: storageID, File: im.File}
	format, err := imagedec.ParsePixelFormat(im.Type)
	if err != nil {
		return img, fmt.Errorf("%w: image %q: %v", resource.ErrInvalidDeclaration, im.ID, err)
	}
	img.Format = format
	if im.Resize != "" {
		size, err := imagedec.ParseSize(im.Resize)
		if err != nil {
			return img, fmt.Errorf("image %q: %w", im.ID, err)
		}
		img.Resize = &size
	}
	tr, err := imagedec.ParseTransparency(im.Transparency)
	if err != nil {
		return img, fmt.Errorf("%w: image %q: %v", resource.ErrInvalidDeclaration, im.ID, err)
	}
	img.Transparency = tr
	return img, nil
}
