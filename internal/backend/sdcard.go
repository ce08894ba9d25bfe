package backend

import (
	"fmt"

	"github.com/llehouerou/mediastore/internal/resource"
	"github.com/llehouerou/mediastore/internal/sdcard"
)

// SDCard serves files from a mounted card. Nothing is cached: every Open
// opens the file again.
type SDCard struct {
	card *sdcard.Card
}

// NewSDCard returns an adapter over card.
func NewSDCard(card *sdcard.Card) *SDCard {
	return &SDCard{card: card}
}

func (s *SDCard) Backend() resource.Backend { return resource.SDCard }

// Card returns the underlying card for write actions.
func (s *SDCard) Card() *sdcard.Card { return s.card }

func (s *SDCard) Open(loc Locator) (resource.ByteSource, error) {
	p, ok := loc.(Path)
	if !ok {
		return nil, fmt.Errorf("%w: not a card path: %v", resource.ErrNotFound, loc)
	}
	if s.card == nil {
		return nil, fmt.Errorf("%w: no card mounted", resource.ErrIO)
	}
	return s.card.Open(string(p))
}

func (s *SDCard) Exists(loc Locator) bool {
	p, ok := loc.(Path)
	if !ok || s.card == nil {
		return false
	}
	return s.card.Exists(string(p)) && !s.card.IsDirectory(string(p))
}
