package action

import (
	"context"

	"github.com/llehouerou/mediastore/internal/imagedec"
	"github.com/llehouerou/mediastore/internal/playback"
)

// Value is a parameter evaluated each time its action runs.
type Value[T any] func() T

// Static returns a Value that always yields v.
func Static[T any](v T) Value[T] {
	return func() T { return v }
}

// Get evaluates v. A nil Value yields the zero value.
func (v Value[T]) Get() T {
	if v == nil {
		var zero T
		return zero
	}
	return v()
}

// Action is a runnable, parameterized operation.
type Action interface {
	Run(ctx context.Context, e *Engine) error
}

var (
	_ Action = PlayMediaAction{}
	_ Action = LoadImageAction{}
	_ Action = WriteFileAction{}
)

type PlayMediaAction struct {
	Storage      string
	MediaFile    Value[string]
	Announcement Value[bool]
	Enqueue      Value[bool]
}

func (a PlayMediaAction) Run(ctx context.Context, e *Engine) error {
	_, err := a.Dispatch(ctx, e)
	return err
}

// Dispatch runs the action and reports what playback did with it.
func (a PlayMediaAction) Dispatch(ctx context.Context, e *Engine) (playback.Outcome, error) {
	return e.PlayMedia(ctx, a.Storage, a.MediaFile.Get(), PlayOptions{
		Announcement: a.Announcement.Get(),
		Enqueue:      a.Enqueue.Get(),
	})
}

// LoadImageAction decodes an image and hands it to OnLoaded.
type LoadImageAction struct {
	Storage  string
	Image    Value[string]
	OnLoaded func(*imagedec.DecodedImage)
}

func (a LoadImageAction) Run(ctx context.Context, e *Engine) error {
	img, err := e.LoadImage(ctx, a.Storage, a.Image.Get())
	if err != nil {
		return err
	}
	if a.OnLoaded != nil {
		a.OnLoaded(img)
	}
	return nil
}

// WriteFileAction writes or appends Data to Path on an SD card storage.
type WriteFileAction struct {
	Storage string
	Path    Value[string]
	Data    Value[[]byte]
	Append  bool
}

func (a WriteFileAction) Run(ctx context.Context, e *Engine) error {
	if a.Append {
		return e.AppendFile(ctx, a.Storage, a.Path.Get(), a.Data.Get())
	}
	return e.WriteFile(ctx, a.Storage, a.Path.Get(), a.Data.Get())
}
