package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/registry"
	"github.com/llehouerou/mediastore/internal/resource"
)

func newCatCommand(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <id>",
		Short: "Write the raw bytes of a resource to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rc.openStore()
			if err != nil {
				return err
			}
			return runCat(cmd.OutOrStdout(), st.reg, args[0])
		},
	}
}

// runCat streams the file registered under id. An image id streams the
// file it decodes from.
func runCat(out io.Writer, reg *registry.Registry, id string) error {
	fileID := id
	if img, err := reg.Image(id); err == nil {
		fileID = img.File
	}
	src, err := reg.Open(fileID)
	if err != nil {
		return fail(errmsg.OpResourceOpen, id, err)
	}
	defer src.Close()
	if _, err := io.Copy(out, src); err != nil {
		if !errors.Is(err, resource.ErrIO) {
			err = fmt.Errorf("%w: %w", resource.ErrIO, err)
		}
		return fail(errmsg.OpResourceRead, id, err)
	}
	return nil
}
