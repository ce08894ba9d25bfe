package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/mediastore/internal/action"
	"github.com/llehouerou/mediastore/internal/errmsg"
	"github.com/llehouerou/mediastore/internal/logging"
	"github.com/llehouerou/mediastore/internal/mqttstate"
	"github.com/llehouerou/mediastore/internal/playback"
	"github.com/llehouerou/mediastore/internal/player"
	"github.com/llehouerou/mediastore/internal/sdcard"
	"github.com/llehouerou/mediastore/internal/stderr"
	"github.com/llehouerou/mediastore/internal/ui/console"
)

const idlePollInterval = 250 * time.Millisecond

type playOptions struct {
	Announce bool
	Enqueue  bool
	UI       bool
	Volume   float64
}

func newPlayCommand(rc *RootConfig) *cobra.Command {
	opts := playOptions{}
	cmd := &cobra.Command{
		Use:   "play <storage> <file> [file...]",
		Short: "Play media files through the audio output",
		Long: `Play resolves each file in the storage and dispatches it to playback.
The first file follows --announce and --enqueue; further files are queued.
The command returns once playback goes idle.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, rc, opts, args[0], args[1:])
		},
	}
	cmd.Flags().BoolVarP(&opts.Announce, "announce", "a", false, "Suspend the current track and resume it afterwards")
	cmd.Flags().BoolVarP(&opts.Enqueue, "enqueue", "e", false, "Queue behind the current track instead of replacing it")
	cmd.Flags().BoolVar(&opts.UI, "ui", false, "Show the interactive console")
	cmd.Flags().Float64Var(&opts.Volume, "volume", 0, "Output volume 0.0-1.0 (default from config)")
	return cmd
}

func runPlay(cmd *cobra.Command, rc *RootConfig, opts playOptions, storageID string, files []string) error {
	capture, err := stderr.Start()
	if err != nil {
		rc.logger.Debug().Err(err).Msg("stderr capture unavailable")
	}
	logger, closeLog := rc.playLogger(capture, opts.UI)
	defer closeLog()
	if capture != nil {
		capture.Forward(logging.Component(logger, "alsa"))
		defer capture.Stop()
	}
	rc.logger = logger

	st, err := rc.openStore()
	if err != nil {
		return err
	}

	pc := rc.cfg.GetPlayerConfig()
	drv := player.New(
		player.WithBuffer(pc.Buffer()),
		player.WithLogger(logging.Component(logger, "player")),
	)
	volume := pc.Volume
	if opts.Volume > 0 && opts.Volume <= 1 {
		volume = opts.Volume
	}
	drv.SetVolume(volume)

	svc := playback.New(drv, playback.WithLogger(logging.Component(logger, "playback")))
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() { _ = svc.Run(ctx) }()

	client := rc.startTelemetry(ctx, svc, st.card, logger)
	defer func() {
		_ = svc.Close()
		if client != nil {
			_ = client.Close()
		}
	}()

	sub := svc.Subscribe()
	engine := action.NewEngine(st.reg, svc, action.WithLogger(logging.Component(logger, "action")))
	out := cmd.OutOrStdout()
	if err := dispatchAll(ctx, out, engine, storageID, files, opts); err != nil {
		return coded(err)
	}

	if opts.UI {
		prog := tea.NewProgram(
			console.New(svc, drv, console.WithExitOnIdle()),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fail(errmsg.OpPlayMedia, storageID, err)
		}
		return nil
	}
	waitIdle(ctx, svc, sub)
	return nil
}

// dispatchAll sends the first file with the requested flags and queues
// the rest behind it.
func dispatchAll(ctx context.Context, out io.Writer, engine *action.Engine, storageID string, files []string, opts playOptions) error {
	for i, file := range files {
		po := action.PlayOptions{Announcement: opts.Announce, Enqueue: opts.Enqueue}
		if i > 0 {
			po = action.PlayOptions{Enqueue: true}
		}
		outcome, err := engine.PlayMedia(ctx, storageID, file, po)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", file, outcome)
	}
	return nil
}

// playLogger picks the log destination for a play session. The console
// owns the terminal, so its logs go to the state directory.
func (rc *RootConfig) playLogger(capture *stderr.Capture, ui bool) (zerolog.Logger, func()) {
	if ui {
		path, err := xdg.StateFile("mediastore/mediastore.log")
		if err == nil {
			f, ferr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if ferr == nil {
				return rc.newLogger(f), func() { _ = f.Close() }
			}
		}
		return zerolog.Nop(), func() {}
	}
	var w io.Writer = os.Stderr
	if capture != nil {
		w = capture.Original()
	}
	return rc.newLogger(w), func() {}
}

// startTelemetry connects to the MQTT broker when one is configured and
// publishes playback state, plus card space when a card is mounted,
// until ctx ends. A broker that cannot be reached does not stop playback.
func (rc *RootConfig) startTelemetry(ctx context.Context, svc playback.Service, card *sdcard.Card, logger zerolog.Logger) *mqttstate.PahoClient {
	if !rc.cfg.HasMQTT() {
		return nil
	}
	mc := rc.cfg.GetMQTTConfig()
	log := logging.Component(logger, "mqtt")
	client, err := mqttstate.Connect(mc, log)
	if err != nil {
		log.Warn().Str("broker", mc.Broker).Msg(errmsg.Format(errmsg.OpTelemetryConnect, err))
		return nil
	}
	pub := mqttstate.NewPublisher(client, mc, mqttstate.WithLogger(log))
	go pub.Run(ctx, svc)
	if card != nil {
		sd := rc.cfg.GetSDCardConfig()
		go pub.ReportCard(ctx, card, sd.WatchFiles, sd.ReportInterval())
	}
	return client
}

// waitIdle blocks until playback returns to idle, the service closes or
// ctx ends. The state is also polled since a full subscription drops
// events.
func waitIdle(ctx context.Context, svc playback.Service, sub *playback.Subscription) {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = svc.Stop()
			return
		case <-sub.Done:
			return
		case ev := <-sub.StateChanged:
			if ev.Current == playback.StateIdle {
				return
			}
		case <-sub.TrackChanged:
		case <-sub.QueueChanged:
		case <-sub.Error:
		case <-ticker.C:
			if svc.State() == playback.StateIdle {
				return
			}
		}
	}
}
