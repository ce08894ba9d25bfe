// Package manifest reads the declarative storage manifest and compiles
// it into a resource registry.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/llehouerou/mediastore/internal/resource"
)

// Manifest is the root of a storage manifest file.
type Manifest struct {
	Storage []Storage `yaml:"storage"`

	// baseDir resolves relative flash and inline sources.
	baseDir string
}

// Storage is one storage block.
type Storage struct {
	ID       string  `yaml:"id"`
	Platform string  `yaml:"platform"`
	Files    []File  `yaml:"files"`
	Images   []Image `yaml:"images,omitempty"`
}

// File declares one file. Exactly one of Source, Data, Hex or Base64 is
// set. Source is a host path for flash and inline storages and a card
// path for SD card storages.
type File struct {
	ID     string `yaml:"id"`
	Source string `yaml:"source,omitempty"`
	Data   string `yaml:"data,omitempty"`
	Hex    string `yaml:"hex,omitempty"`
	Base64 string `yaml:"base64,omitempty"`
}

// Image declares an image over a file of the same manifest.
type Image struct {
	ID           string `yaml:"id"`
	File         string `yaml:"file"`
	Type         string `yaml:"type"`
	Resize       string `yaml:"resize,omitempty"`
	Transparency string `yaml:"transparency,omitempty"`
}

// Load reads and parses the manifest at path. Relative sources resolve
// against the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: manifest %s", resource.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", resource.ErrIO, err)
	}
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.baseDir = filepath.Dir(path)
	return m, nil
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("%w: %w", resource.ErrInvalidDeclaration, err)
	}
	return &m, nil
}

// SetBaseDir sets the directory relative sources resolve against.
func (m *Manifest) SetBaseDir(dir string) { m.baseDir = dir }

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) || m.baseDir == "" {
		return p
	}
	return filepath.Join(m.baseDir, p)
}

// Validate checks each record on its own. Cross-record checks such as
// id uniqueness happen in Compile.
func (m *Manifest) Validate() error {
	var errs []error
	for i, s := range m.Storage {
		where := fmt.Sprintf("storage[%d] %q", i, s.ID)
		if _, err := resource.ParseBackend(s.Platform); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
			continue
		}
		for j, f := range s.Files {
			if n := f.payloads(); n != 1 {
				errs = append(errs, fmt.Errorf("%w: %s file[%d] %q: want exactly one of source, data, hex, base64; got %d",
					resource.ErrInvalidDeclaration, where, j, f.ID, n))
			}
		}
	}
	return errors.Join(errs...)
}

func (f File) payloads() int {
	n := 0
	for _, v := range []string{f.Source, f.Data, f.Hex, f.Base64} {
		if v != "" {
			n++
		}
	}
	return n
}
