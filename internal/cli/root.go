// Package cli implements the mediastore command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/mediastore/internal/config"
	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/logging"
	"github.com/llehouerou/mediastore/internal/resource"
)

// version is set at build time via ldflags.
var version = "dev"

// RootConfig holds the persistent flags and what PersistentPreRunE
// derives from them.
type RootConfig struct {
	ConfigFile string
	LogLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	rc := &RootConfig{logger: zerolog.Nop()}
	cmd := &cobra.Command{
		Use:           "mediastore",
		Short:         "Declarative media resources for a small playback device",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rc.init(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&rc.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newCheckCommand(rc))
	cmd.AddCommand(newCatCommand(rc))
	cmd.AddCommand(newPlayCommand(rc))
	cmd.AddCommand(newImageCommand(rc))
	cmd.AddCommand(newSDCommand(rc))
	return cmd
}

// init loads the configuration and sets up logging.
func (rc *RootConfig) init(cmd *cobra.Command) error {
	var paths []string
	if rc.ConfigFile != "" {
		paths = append(paths, rc.ConfigFile)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(errmsg.Format(errmsg.OpConfigLoad, err)).
			WithCause(err)
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(rc.LogLevel)
	}
	rc.cfg = cfg
	rc.logger = rc.newLogger(cmd.ErrOrStderr())
	return nil
}

func (rc *RootConfig) newLogger(w io.Writer) zerolog.Logger {
	if rc.cfg == nil {
		return zerolog.Nop()
	}
	return logging.New(rc.cfg.GetLogConfig(), w, version)
}

// fail converts err into a coded error for exit-code selection. The
// taxonomy kind picks the code; the message is the user-facing form.
func fail(op errmsg.Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return errbuilder.New().
		WithCode(codeFor(resource.Classify(err))).
		WithMsg(errmsg.FormatWith(op, context, err)).
		WithCause(err)
}

// coded attaches an exit code to an error that already reads well.
func coded(err error) error {
	if err == nil {
		return nil
	}
	return errbuilder.New().
		WithCode(codeFor(resource.Classify(err))).
		WithMsg(err.Error()).
		WithCause(err)
}

func codeFor(kind resource.ErrorKind) errbuilder.ErrCode {
	switch kind {
	case resource.KindUnknownID, resource.KindNotFound:
		return errbuilder.CodeNotFound
	case resource.KindUnsupportedFormat, resource.KindInvalidDeclaration:
		return errbuilder.CodeInvalidArgument
	case resource.KindCorruptData:
		return errbuilder.CodeFailedPrecondition
	case resource.KindReadOnly:
		return errbuilder.CodePermissionDenied
	case resource.KindDuplicateID:
		return errbuilder.CodeAlreadyExists
	default:
		return errbuilder.CodeInternal
	}
}

func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
