package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/llehouerou/mediastore/internal/backend"
	"github.com/llehouerou/mediastore/internal/registry"
	"github.com/llehouerou/mediastore/internal/resource"
	"github.com/llehouerou/mediastore/internal/sdcard"
)

func newCheckCommand(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile the storage manifest and list every resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.OutOrStdout(), rc)
		},
	}
}

func runCheck(out io.Writer, rc *RootConfig) error {
	st, err := rc.openStore()
	if err != nil {
		return err
	}
	printRegistry(out, st.reg, st.card)
	return nil
}

// printRegistry lists storages, files and images in declaration order.
func printRegistry(out io.Writer, reg *registry.Registry, card *sdcard.Card) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	entries := reg.Entries()
	images := reg.Images()
	for _, s := range reg.Storages() {
		fmt.Fprintf(w, "storage %s\t%s\t\n", s.ID, s.Backend())
		for _, e := range entries {
			if e.Storage == s.ID {
				fmt.Fprintf(w, "  %s\tfile\t%s\n", e.ID, describeEntry(e, card))
			}
		}
		for _, img := range images {
			if img.Storage != s.ID {
				continue
			}
			size := "original size"
			if img.Resize != nil {
				size = img.Resize.String()
			}
			fmt.Fprintf(w, "  %s\timage\t%s of %s, %s, transparency %s\n", img.ID, img.Format, img.File, size, img.Transparency)
		}
	}
	_ = w.Flush()
	fmt.Fprintf(out, "%d storages, %d files, %d images\n", len(reg.Storages()), len(entries), len(images))
}

func describeEntry(e registry.Entry, card *sdcard.Card) string {
	if e.Backend != resource.SDCard {
		return e.Locator.String()
	}
	p, _ := e.Locator.(backend.Path)
	if card == nil {
		return fmt.Sprintf("%s (no card)", p)
	}
	size, err := card.FileSize(string(p))
	if err != nil {
		return fmt.Sprintf("%s (missing)", p)
	}
	return fmt.Sprintf("%s (%s)", p, sdcard.FormatSize(size))
}
