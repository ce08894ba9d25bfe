package player

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/mediastore/internal/resource"
)

// Codec is a supported audio encoding.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecMP3
	CodecFLAC
	CodecWAV
)

func (c Codec) String() string {
	switch c {
	case CodecMP3:
		return "MP3"
	case CodecFLAC:
		return "FLAC"
	case CodecWAV:
		return "WAV"
	default:
		return "Unknown"
	}
}

// DetectCodec identifies the codec from the first bytes of a source,
// falling back to the extension of name.
func DetectCodec(header []byte, name string) Codec {
	switch {
	case len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return CodecWAV
	case len(header) >= 4 && bytes.Equal(header[0:4], []byte("fLaC")):
		return CodecFLAC
	case len(header) >= 2 && header[0] == 0xff && header[1]&0xe0 == 0xe0:
		return CodecMP3
	}
	// An ID3v2 tag may front either MP3 or FLAC; rely on the name.
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return CodecMP3
	case ".flac":
		return CodecFLAC
	case ".wav":
		return CodecWAV
	}
	if len(header) >= 3 && string(header[0:3]) == "ID3" {
		return CodecMP3
	}
	return CodecUnknown
}

func sniff(src io.ReadSeeker) ([]byte, error) {
	header := make([]byte, 12)
	n, err := io.ReadFull(src, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return header[:n], nil
}

// Play starts playback of src, stopping anything already playing.
func (p *Player) Play(src resource.ByteSource, name string) error {
	p.Stop()

	// Drain any stale finish signal from the previous source
	select {
	case <-p.finishedCh:
	default:
	}

	header, err := sniff(src)
	if err != nil {
		src.Close()
		return fmt.Errorf("%w: %w", resource.ErrIO, err)
	}
	codec := DetectCodec(header, name)
	info := p.readTrackInfo(src, name)

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch codec {
	case CodecMP3:
		streamer, format, err = mp3.Decode(src)
	case CodecFLAC:
		if err := skipID3v2(src); err != nil {
			src.Close()
			return fmt.Errorf("%w: %w", resource.ErrIO, err)
		}
		streamer, format, err = flac.Decode(src)
	case CodecWAV:
		streamer, format, err = wav.Decode(src)
	default:
		src.Close()
		return fmt.Errorf("%w: cannot play %q", resource.ErrUnsupportedFormat, name)
	}
	if err != nil {
		src.Close()
		return fmt.Errorf("%w: %s: %w", resource.ErrCorruptData, codec, err)
	}

	if err := p.initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		src.Close()
		return err
	}

	info.Duration = format.SampleRate.D(streamer.Len())
	info.SampleRate = int(format.SampleRate)
	info.Format = codec.String()

	// Resample if the source's sample rate differs from the speaker's
	var playStreamer beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		playStreamer = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}

	p.mu.Lock()
	p.src = src
	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: playStreamer, Paused: false}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2, Volume: p.levelToVolume(p.volumeLevel), Silent: p.muted}
	p.trackInfo = info
	p.state = Playing
	done := make(chan struct{})
	p.done = done
	vol := p.volume
	p.mu.Unlock()

	p.logger.Info().Str("name", name).Str("codec", codec.String()).Dur("duration", info.Duration).Msg("playing")

	// The callback runs with the speaker locked; finish off that goroutine.
	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		go p.finished(done)
	})))

	return nil
}

// finished runs on the speaker goroutine when a source reaches its end.
func (p *Player) finished(done chan struct{}) {
	p.mu.Lock()
	if p.done != done {
		// Superseded by Stop or a new Play
		p.mu.Unlock()
		return
	}
	p.releaseLocked()
	p.mu.Unlock()

	select {
	case p.finishedCh <- struct{}{}:
	default:
	}
}

func (p *Player) initSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerReady {
		return nil
	}
	if err := speaker.Init(rate, rate.N(p.buffer)); err != nil {
		return fmt.Errorf("%w: init speaker: %w", resource.ErrIO, err)
	}
	speakerSampleRate = rate
	speakerReady = true
	return nil
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the source.
// Some FLAC files have ID3v2 tags prepended, which the FLAC decoder doesn't handle.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is stored as a syncsafe integer in bytes 6-9
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])

	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
