// Package action implements the imperative operations run against the
// resource registry: media playback requests, image loads and SD card
// file writes.
package action

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llehouerou/mediastore/internal/backend"
	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/imagedec"
	"github.com/llehouerou/mediastore/internal/playback"
	"github.com/llehouerou/mediastore/internal/registry"
	"github.com/llehouerou/mediastore/internal/resource"
)

// Phase is the lifecycle stage of a single action invocation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolving
	PhaseQueued
	PhasePlaying
	PhaseInterrupting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseQueued:
		return "queued"
	case PhasePlaying:
		return "playing"
	case PhaseInterrupting:
		return "interrupting"
	default:
		return "unknown"
	}
}

func phaseOf(o playback.Outcome) Phase {
	switch o {
	case playback.Queued:
		return PhaseQueued
	case playback.Interrupted:
		return PhaseInterrupting
	default:
		return PhasePlaying
	}
}

// PlayOptions are the flags of a PlayMedia request.
type PlayOptions struct {
	Announcement bool
	Enqueue      bool
}

// Engine runs actions. It is safe for concurrent use.
type Engine struct {
	reg      *registry.Registry
	playback playback.Service
	logger   zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an engine over reg. pb may be nil when no audio
// output is available; PlayMedia then fails.
func NewEngine(reg *registry.Registry, pb playback.Service, opts ...Option) *Engine {
	e := &Engine{reg: reg, playback: pb, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// PlayMedia resolves mediaFile in storage storageID and hands it to
// playback coordination. mediaFile is a registered file id of that
// storage or, for an SD card storage, a path relative to the card.
// Resolution failures leave playback untouched.
func (e *Engine) PlayMedia(ctx context.Context, storageID, mediaFile string, opts PlayOptions) (playback.Outcome, error) {
	log := e.logger.With().Str("storage", storageID).Str("media", mediaFile).Logger()
	log.Debug().Stringer("phase", PhaseResolving).Msg("play media")

	req, err := e.resolveMedia(ctx, storageID, mediaFile)
	if err != nil {
		log.Warn().Stringer("phase", PhaseIdle).Msg(errmsg.FormatWith(errmsg.OpPlayMedia, mediaFile, err))
		return 0, errmsg.Wrap(errmsg.OpPlayMedia, mediaFile, err)
	}
	if e.playback == nil {
		return 0, errmsg.Wrap(errmsg.OpPlayMedia, mediaFile, fmt.Errorf("%w: no media player", resource.ErrIO))
	}
	req.Announcement = opts.Announcement
	req.Enqueue = opts.Enqueue

	outcome, err := e.playback.Dispatch(req)
	if err != nil {
		log.Warn().Stringer("phase", PhaseIdle).Msg(errmsg.FormatWith(errmsg.OpPlayMedia, mediaFile, err))
		return 0, errmsg.Wrap(errmsg.OpPlayMedia, mediaFile, err)
	}
	log.Info().Stringer("phase", phaseOf(outcome)).Stringer("outcome", outcome).
		Bool("announcement", opts.Announcement).Bool("enqueue", opts.Enqueue).Msg("media dispatched")
	return outcome, nil
}

func (e *Engine) resolveMedia(ctx context.Context, storageID, mediaFile string) (playback.Request, error) {
	if err := ctx.Err(); err != nil {
		return playback.Request{}, err
	}
	st, err := e.reg.Storage(storageID)
	if err != nil {
		return playback.Request{}, err
	}

	if entry, err := e.reg.Resolve(mediaFile); err == nil && entry.Storage == storageID {
		id := entry.ID
		return playback.Request{
			TargetID: id,
			Storage:  storageID,
			Name:     entry.Locator.String(),
			Open:     func() (resource.ByteSource, error) { return e.reg.Open(id) },
		}, nil
	}

	if st.Backend() != resource.SDCard {
		return playback.Request{}, fmt.Errorf("%w: %q in storage %q", resource.ErrUnknownID, mediaFile, storageID)
	}
	loc := backend.Path(mediaFile)
	if !st.Adapter.Exists(loc) {
		return playback.Request{}, fmt.Errorf("%w: %s on storage %q", resource.ErrNotFound, mediaFile, storageID)
	}
	adapter := st.Adapter
	return playback.Request{
		TargetID: mediaFile,
		Storage:  storageID,
		Name:     mediaFile,
		Open:     func() (resource.ByteSource, error) { return adapter.Open(loc) },
	}, nil
}

// LoadImage decodes image imageID of storage storageID.
func (e *Engine) LoadImage(ctx context.Context, storageID, imageID string) (*imagedec.DecodedImage, error) {
	img, err := e.loadImage(ctx, storageID, imageID)
	if err != nil {
		e.logger.Warn().Str("storage", storageID).Msg(errmsg.FormatWith(errmsg.OpLoadImage, imageID, err))
		return nil, errmsg.Wrap(errmsg.OpLoadImage, imageID, err)
	}
	e.logger.Debug().Str("storage", storageID).Str("image", imageID).
		Int("width", img.Width).Int("height", img.Height).Stringer("type", img.Format).Msg("image loaded")
	return img, nil
}

func (e *Engine) loadImage(ctx context.Context, storageID, imageID string) (*imagedec.DecodedImage, error) {
	if _, err := e.reg.Storage(storageID); err != nil {
		return nil, err
	}
	im, err := e.reg.Image(imageID)
	if err != nil {
		return nil, err
	}
	if im.Storage != storageID {
		return nil, fmt.Errorf("%w: image %q is not in storage %q", resource.ErrUnknownID, imageID, storageID)
	}
	src, err := e.reg.Open(im.File)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imagedec.Decode(src, im.Options())
}
