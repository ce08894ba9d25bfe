package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/llehouerou/mediastore/internal/action"
	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/logging"
	"github.com/llehouerou/mediastore/internal/resource"
	"github.com/llehouerou/mediastore/internal/sdcard"
)

type sdOptions struct {
	Storage string
	Depth   int
}

// sdSession is an engine over the compiled store plus the resolved SD
// storage id.
type sdSession struct {
	engine  *action.Engine
	storage string
}

func (rc *RootConfig) openSD(opts *sdOptions) (*sdSession, error) {
	st, err := rc.openStore()
	if err != nil {
		return nil, err
	}
	id, err := st.sdStorage(opts.Storage)
	if err != nil {
		return nil, coded(err)
	}
	return &sdSession{
		engine:  action.NewEngine(st.reg, nil, action.WithLogger(logging.Component(rc.logger, "action"))),
		storage: id,
	}, nil
}

func newSDCommand(rc *RootConfig) *cobra.Command {
	opts := &sdOptions{}
	cmd := &cobra.Command{
		Use:   "sd",
		Short: "Manage files on the SD card",
	}
	cmd.PersistentFlags().StringVarP(&opts.Storage, "storage", "s", "", "SD card storage id (default: first declared)")

	cmd.AddCommand(newSDListCommand(rc, opts))
	cmd.AddCommand(newSDWriteCommand(rc, opts, false))
	cmd.AddCommand(newSDWriteCommand(rc, opts, true))
	cmd.AddCommand(newSDPathCommand(rc, opts, "rm", "Delete a file or directory tree", (*action.Engine).DeleteFile))
	cmd.AddCommand(newSDPathCommand(rc, opts, "mkdir", "Create a directory", (*action.Engine).CreateDirectory))
	cmd.AddCommand(newSDPathCommand(rc, opts, "rmdir", "Remove an empty directory", (*action.Engine).RemoveDirectory))
	cmd.AddCommand(newSDUsageCommand(rc, opts))
	return cmd
}

func newSDListCommand(rc *RootConfig, opts *sdOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory on the card",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.openSD(opts)
			if err != nil {
				return err
			}
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			infos, err := s.engine.ListDirectory(cmd.Context(), s.storage, path, opts.Depth)
			if err != nil {
				return coded(err)
			}
			printListing(cmd.OutOrStdout(), infos)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", 0, "Extra levels to descend")
	return cmd
}

func printListing(out io.Writer, infos []sdcard.FileInfo) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, fi := range infos {
		if fi.IsDir {
			fmt.Fprintf(w, "%s/\t-\n", strings.TrimSuffix(fi.Path, "/"))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", fi.Path, sdcard.FormatSize(fi.Size))
	}
	_ = w.Flush()
}

func newSDWriteCommand(rc *RootConfig, opts *sdOptions, appendMode bool) *cobra.Command {
	use, short := "write <path> <data|->", "Replace a file's content"
	if appendMode {
		use, short = "append <path> <data|->", "Append to a file, creating it if needed"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". A data argument of - reads standard input.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readData(cmd.InOrStdin(), args[1])
			if err != nil {
				op := errmsg.OpFileWrite
				if appendMode {
					op = errmsg.OpFileAppend
				}
				return fail(op, args[0], err)
			}
			s, err := rc.openSD(opts)
			if err != nil {
				return err
			}
			if appendMode {
				err = s.engine.AppendFile(cmd.Context(), s.storage, args[0], data)
			} else {
				err = s.engine.WriteFile(cmd.Context(), s.storage, args[0], data)
			}
			return coded(err)
		},
	}
}

func readData(in io.Reader, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("%w: reading stdin: %w", resource.ErrIO, err)
	}
	return data, nil
}

type pathOp func(e *action.Engine, ctx context.Context, storageID, path string) error

func newSDPathCommand(rc *RootConfig, opts *sdOptions, use, short string, op pathOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.openSD(opts)
			if err != nil {
				return err
			}
			return coded(op(s.engine, cmd.Context(), s.storage, args[0]))
		},
	}
}

func newSDUsageCommand(rc *RootConfig, opts *sdOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "du",
		Short: "Show the bytes used and free on the card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rc.openSD(opts)
			if err != nil {
				return err
			}
			used, err := s.engine.Usage(cmd.Context(), s.storage)
			if err != nil {
				return coded(err)
			}
			space, err := s.engine.Space(cmd.Context(), s.storage)
			if err != nil {
				return coded(err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s used\t%s free\t%s total\n", s.storage,
				sdcard.FormatSize(used), formatCapacity(space.Free), formatCapacity(space.Total))
			return w.Flush()
		},
	}
}

func formatCapacity(n uint64) string {
	return sdcard.FormatSize(int64(min(n, math.MaxInt64))) //nolint:gosec // clamped above
}
