package action

import (
	"context"
	"fmt"

	"github.com/llehouerou/mediastore/internal/backend"
	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/resource"
	"github.com/llehouerou/mediastore/internal/sdcard"
)

// card returns the SD card behind storageID. Flash and inline storages
// are read-only.
func (e *Engine) card(ctx context.Context, storageID string) (*sdcard.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := e.reg.Storage(storageID)
	if err != nil {
		return nil, err
	}
	sd, ok := st.Adapter.(*backend.SDCard)
	if !ok || sd.Card() == nil {
		return nil, fmt.Errorf("%w: storage %q is %s", resource.ErrReadOnly, storageID, st.Backend())
	}
	return sd.Card(), nil
}

func (e *Engine) fileOp(ctx context.Context, op errmsg.Op, storageID, path string, fn func(*sdcard.Card) error) error {
	c, err := e.card(ctx, storageID)
	if err == nil {
		err = fn(c)
	}
	if err != nil {
		e.logger.Warn().Str("storage", storageID).Msg(errmsg.FormatWith(op, path, err))
		return errmsg.Wrap(op, path, err)
	}
	e.logger.Debug().Str("storage", storageID).Str("path", path).Msgf("%s done", op)
	return nil
}

// WriteFile replaces the content of path on the card.
func (e *Engine) WriteFile(ctx context.Context, storageID, path string, data []byte) error {
	return e.fileOp(ctx, errmsg.OpFileWrite, storageID, path, func(c *sdcard.Card) error {
		return c.WriteFile(path, data)
	})
}

// AppendFile appends data to path, creating it if needed.
func (e *Engine) AppendFile(ctx context.Context, storageID, path string, data []byte) error {
	return e.fileOp(ctx, errmsg.OpFileAppend, storageID, path, func(c *sdcard.Card) error {
		return c.AppendFile(path, data)
	})
}

// DeleteFile removes path, recursively for directories.
func (e *Engine) DeleteFile(ctx context.Context, storageID, path string) error {
	return e.fileOp(ctx, errmsg.OpFileDelete, storageID, path, func(c *sdcard.Card) error {
		return c.DeleteFile(path)
	})
}

func (e *Engine) CreateDirectory(ctx context.Context, storageID, path string) error {
	return e.fileOp(ctx, errmsg.OpDirCreate, storageID, path, func(c *sdcard.Card) error {
		return c.CreateDirectory(path)
	})
}

// RemoveDirectory removes an empty directory.
func (e *Engine) RemoveDirectory(ctx context.Context, storageID, path string) error {
	return e.fileOp(ctx, errmsg.OpDirRemove, storageID, path, func(c *sdcard.Card) error {
		return c.RemoveDirectory(path)
	})
}

// ListDirectory lists path on the card down to depth levels.
func (e *Engine) ListDirectory(ctx context.Context, storageID, path string, depth int) ([]sdcard.FileInfo, error) {
	var out []sdcard.FileInfo
	err := e.fileOp(ctx, errmsg.OpDirList, storageID, path, func(c *sdcard.Card) error {
		var err error
		out, err = c.ListDirectory(path, depth)
		return err
	})
	return out, err
}

// Usage returns the bytes used on the card behind storageID.
func (e *Engine) Usage(ctx context.Context, storageID string) (int64, error) {
	var used int64
	err := e.fileOp(ctx, errmsg.OpCardUsage, storageID, "", func(c *sdcard.Card) error {
		var err error
		used, err = c.Usage()
		return err
	})
	return used, err
}

// Space returns the capacity of the card behind storageID.
func (e *Engine) Space(ctx context.Context, storageID string) (sdcard.Space, error) {
	var s sdcard.Space
	err := e.fileOp(ctx, errmsg.OpCardUsage, storageID, "", func(c *sdcard.Card) error {
		var err error
		s, err = c.Space()
		return err
	})
	return s, err
}
