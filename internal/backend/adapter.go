// Package backend implements the storage media behind registry entries.
//
// Each medium implements Adapter. Locators are backend specific: a table
// key for flash, a *Producer for inline data and a card path for SD.
package backend

import (
	"github.com/llehouerou/mediastore/internal/resource"
)

// Locator references data inside one backend.
type Locator interface {
	String() string
}

// Adapter is the capability a storage medium provides to the registry.
type Adapter interface {
	Backend() resource.Backend
	Open(loc Locator) (resource.ByteSource, error)
	Exists(loc Locator) bool
}

// Path is an SD card locator.
type Path string

func (p Path) String() string { return string(p) }

// Key is a flash table locator.
type Key string

func (k Key) String() string { return string(k) }
