package cli

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/mediastore/internal/action"
	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/imagedec"
	"github.com/llehouerou/mediastore/internal/logging"
	"github.com/llehouerou/mediastore/internal/resource"
)

type imageOptions struct {
	Out string
}

func newImageCommand(rc *RootConfig) *cobra.Command {
	opts := imageOptions{}
	cmd := &cobra.Command{
		Use:   "image <storage> <image>",
		Short: "Decode an image resource and optionally write a PNG preview",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImage(cmd.Context(), cmd.OutOrStdout(), rc, opts, args[0], args[1])
		},
	}
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Write the decoded pixels as a PNG file")
	return cmd
}

func runImage(ctx context.Context, out io.Writer, rc *RootConfig, opts imageOptions, storageID, imageID string) error {
	st, err := rc.openStore()
	if err != nil {
		return err
	}
	engine := action.NewEngine(st.reg, nil, action.WithLogger(logging.Component(rc.logger, "action")))
	img, err := engine.LoadImage(ctx, storageID, imageID)
	if err != nil {
		return coded(err)
	}
	fmt.Fprintf(out, "%s: %dx%d %s, transparency %s, %s\n",
		imageID, img.Width, img.Height, img.Format, img.Transparency, humanize.Bytes(uint64(len(img.Data))))

	if opts.Out == "" {
		return nil
	}
	if err := writePNG(opts.Out, img); err != nil {
		return fail(errmsg.OpImageExport, opts.Out, err)
	}
	fmt.Fprintf(out, "wrote %s\n", opts.Out)
	return nil
}

func writePNG(path string, img *imagedec.DecodedImage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", resource.ErrIO, err)
	}
	if err := png.Encode(f, img.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", resource.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", resource.ErrIO, err)
	}
	return nil
}
