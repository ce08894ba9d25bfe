package player

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mediastore/internal/resource"
)

func TestDetectCodec(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		file   string
		want   Codec
	}{
		{"wav magic", []byte("RIFF\x00\x00\x00\x00WAVE"), "x.bin", CodecWAV},
		{"flac magic", []byte("fLaC\x00\x00\x00\x22"), "x", CodecFLAC},
		{"mp3 frame sync", []byte{0xff, 0xfb, 0x90, 0x64}, "noext", CodecMP3},
		{"id3 with flac name", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), "song.FLAC", CodecFLAC},
		{"id3 without name", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), "blob", CodecMP3},
		{"extension only", []byte{0, 1, 2}, "alert.wav", CodecWAV},
		{"unknown", []byte("hello"), "note.txt", CodecUnknown},
		{"empty", nil, "", CodecUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCodec(tt.header, tt.file))
		})
	}
}

func TestPlayer_PlayUnsupportedClosesSource(t *testing.T) {
	src := &closeTracker{ByteSource: resource.NewMemSource([]byte("plain text"))}
	p := New()

	err := p.Play(src, "note.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, resource.ErrUnsupportedFormat))
	assert.True(t, src.closed)
	assert.Equal(t, Stopped, p.State())
}

func TestPlayer_PlayCorruptWAV(t *testing.T) {
	src := &closeTracker{ByteSource: resource.NewMemSource([]byte("RIFF\x00\x00\x00\x00WAVEjunk"))}
	p := New()

	err := p.Play(src, "broken.wav")
	assert.ErrorIs(t, err, resource.ErrCorruptData)
	assert.True(t, src.closed)
}

func TestPlayer_StoppedControlsAreNoOps(t *testing.T) {
	p := New()
	p.Pause()
	p.Resume()
	p.Toggle()
	p.Seek(5)
	p.Stop()
	assert.Equal(t, Stopped, p.State())
	assert.Zero(t, p.Position())
	assert.Zero(t, p.Duration())
	assert.Nil(t, p.TrackInfo())

	select {
	case <-p.Done():
	default:
		t.Fatal("Done should be closed while stopped")
	}
}

func TestPlayer_Volume(t *testing.T) {
	p := New()
	p.SetVolume(1.5)
	assert.InDelta(t, 1.0, p.Volume(), 1e-9)
	p.SetVolume(-1)
	assert.InDelta(t, 0.0, p.Volume(), 1e-9)
	p.SetMuted(true)
	assert.True(t, p.Muted())

	assert.InDelta(t, -1.0, p.levelToVolume(0.5), 1e-9)
	assert.InDelta(t, -10.0, p.levelToVolume(0), 1e-9)
}

func TestSkipID3v2(t *testing.T) {
	tag := []byte("ID3\x04\x00\x00\x00\x00\x00\x05hellofLaC")
	src := resource.NewMemSource(tag)
	require.NoError(t, skipID3v2(src))
	rest, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "fLaC", string(rest))

	src = resource.NewMemSource([]byte("fLaC"))
	require.NoError(t, skipID3v2(src))
	rest, _ = io.ReadAll(src)
	assert.Equal(t, "fLaC", string(rest))
}

func TestReadTrackInfo_NoTagsRewinds(t *testing.T) {
	src := resource.NewMemSource([]byte("RIFF....WAVE"))
	info, err := ReadTrackInfo(src, "/sounds/chime.wav")
	assert.Error(t, err)
	assert.Equal(t, "chime.wav", info.Title)
	assert.Equal(t, "/sounds/chime.wav", info.Name)

	head := make([]byte, 4)
	_, err = io.ReadFull(src, head)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(head))
}

func TestMock_RecordsAndFinishes(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Play(resource.NewMemSource(nil), "a"))
	m.SetPosition(3)
	m.Seek(2)
	assert.Equal(t, []string{"a"}, m.PlayCalls())
	assert.EqualValues(t, 5, m.Position())

	m.SimulateFinished()
	assert.Equal(t, Stopped, m.State())
	select {
	case <-m.FinishedChan():
	default:
		t.Fatal("expected finish signal")
	}
}

type closeTracker struct {
	resource.ByteSource
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return c.ByteSource.Close()
}
