package player

import (
	"io"
	"path"

	"github.com/dhowden/tag"
)

// ReadTrackInfo reads tag metadata from r and rewinds it. Sources
// without tags yield an error; the title then falls back to name.
func ReadTrackInfo(r io.ReadSeeker, name string) (*TrackInfo, error) {
	defer func() { _, _ = r.Seek(0, io.SeekStart) }()

	info := &TrackInfo{Name: name, Title: path.Base(name)}
	m, err := tag.ReadFrom(r)
	if err != nil {
		return info, err
	}
	if m.Title() != "" {
		info.Title = m.Title()
	}
	info.Artist = m.Artist()
	if info.Artist == "" {
		info.Artist = m.AlbumArtist()
	}
	info.Album = m.Album()
	return info, nil
}

func (p *Player) readTrackInfo(r io.ReadSeeker, name string) *TrackInfo {
	info, err := ReadTrackInfo(r, name)
	if err != nil {
		p.logger.Debug().Err(err).Str("name", name).Msg("no tag metadata")
	}
	return info
}
