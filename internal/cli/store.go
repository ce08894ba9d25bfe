package cli

import (
	"fmt"

	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/logging"
	"github.com/llehouerou/mediastore/internal/manifest"
	"github.com/llehouerou/mediastore/internal/registry"
	"github.com/llehouerou/mediastore/internal/resource"
	"github.com/llehouerou/mediastore/internal/sdcard"
)

// store is the compiled resource configuration of the device.
type store struct {
	card *sdcard.Card // nil when no card is configured or mounting failed
	reg  *registry.Registry
}

// openStore mounts the SD card, if configured, and compiles the
// manifest. A card that fails to mount is logged; its storages still
// register and fail on open.
func (rc *RootConfig) openStore() (*store, error) {
	cfg := rc.cfg
	st := &store{}

	if cfg.HasSDCard() {
		sd := cfg.GetSDCardConfig()
		card, err := sdcard.Mount(sd.MountPoint,
			sdcard.WithMaxOpenFiles(sd.MaxOpenFiles),
			sdcard.WithLogger(logging.Component(rc.logger, "sdcard")),
		)
		if err != nil {
			rc.logger.Warn().Str("mount_point", sd.MountPoint).Msg(errmsg.Format(errmsg.OpCardMount, err))
		} else {
			st.card = card
		}
	}

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return nil, fail(errmsg.OpManifestLoad, cfg.Manifest, err)
	}
	reg, err := manifest.Compile(m, manifest.CompileOptions{
		Card:   st.card,
		Logger: logging.Component(rc.logger, "registry"),
	})
	if err != nil {
		return nil, fail(errmsg.OpRegistryBuild, cfg.Manifest, err)
	}
	st.reg = reg
	return st, nil
}

// sdStorage returns id if given, otherwise the first SD card storage of
// the manifest.
func (st *store) sdStorage(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	for _, s := range st.reg.Storages() {
		if s.Backend() == resource.SDCard {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no sd_card storage declared", resource.ErrUnknownID)
}
