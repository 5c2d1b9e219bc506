package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cyprienbrisset/video-translate-to-text/internal/config"
	"github.com/cyprienbrisset/video-translate-to-text/internal/engine/resync"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
	"github.com/cyprienbrisset/video-translate-to-text/internal/transcript"
	"github.com/cyprienbrisset/video-translate-to-text/internal/wavio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

type composeOptions struct {
	audioPath      string
	transcriptPath string
	streamPath     string
	clipsDir       string
	outPath        string
	noSpeedAdjust  bool
	quiet          bool
}

func newComposeCommand(cc *commandContext) *cobra.Command {
	var opts composeOptions

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Fit already synthesized speech onto the original timing",
		Long: `Compose rebuilds the dubbed track from the original audio, its transcript
and speech that was synthesized elsewhere: either one continuous WAV for the
whole script (--stream) or one WAV per segment named <index>.wav in a
directory (--clips-dir). Missing per-segment files leave their slot silent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			return runCompose(cmd, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.audioPath, "audio", "", "Original audio (WAV)")
	flags.StringVar(&opts.transcriptPath, "transcript", "", "Transcript document (JSON)")
	flags.StringVar(&opts.streamPath, "stream", "", "Continuous synthesized speech (WAV)")
	flags.StringVar(&opts.clipsDir, "clips-dir", "", "Directory of per-segment clips named <index>.wav")
	flags.StringVarP(&opts.outPath, "out", "o", "", "Output audio (WAV)")
	flags.BoolVar(&opts.noSpeedAdjust, "no-speed-adjust", false, "Only cut or pad clips, never time-scale them")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the slot report")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("transcript")
	_ = cmd.MarkFlagRequired("out")
	cmd.MarkFlagsMutuallyExclusive("stream", "clips-dir")
	cmd.MarkFlagsOneRequired("stream", "clips-dir")

	return cmd
}

func runCompose(cmd *cobra.Command, cfg *config.Config, opts composeOptions) error {
	ctx, stop := runContext(cmd.Context())
	defer stop()

	shutdown, err := setupTelemetry(ctx, "compose", cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdown()

	if opts.noSpeedAdjust {
		disabled := false
		cfg.Engine.AdjustSpeed = &disabled
	}

	original, err := wavio.Read(opts.audioPath)
	if err != nil {
		return err
	}
	doc, err := transcript.Load(opts.transcriptPath)
	if err != nil {
		return err
	}
	tl, err := timeline.Build(doc.RawSegments(), original.Seconds(), cfg.Engine.TimelineOptions()...)
	if err != nil {
		return err
	}

	in := resync.Input{Timeline: tl, Original: original}
	if opts.streamPath != "" {
		stream, err := wavio.Read(opts.streamPath)
		if err != nil {
			return err
		}
		in.Stream = &stream
	} else {
		in.Clips, err = readClips(ctx, opts.clipsDir, tl)
		if err != nil {
			return err
		}
	}

	engine := resync.New(cfg.Engine.Resync(), resync.WithMetrics(observe.DefaultMetrics()))
	res, err := engine.Run(ctx, in)
	if err != nil {
		return err
	}
	if err := wavio.Write(opts.outPath, res.Track); err != nil {
		return err
	}

	observe.Logger(ctx).Info("compose: track written",
		"out", opts.outPath,
		"segments", tl.Len(),
		"seconds", res.Track.Seconds(),
		"degraded", len(res.Degraded()),
	)
	if !opts.quiet {
		renderReport(cmd.OutOrStdout(), res, sampleRate)
	}
	return nil
}

// readClips loads <dir>/<index>.wav for every Speech segment of tl.
func readClips(ctx context.Context, dir string, tl *timeline.Timeline) ([]audio.Clip, error) {
	clips := make([]audio.Clip, tl.Len())
	for i, seg := range tl.Segments() {
		if seg.Kind != timeline.Speech {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%d.wav", i))
		clip, err := wavio.Read(path)
		if errors.Is(err, os.ErrNotExist) {
			observe.Logger(ctx).Warn("compose: no clip for segment", "segment", i, "path", path)
			continue
		}
		if err != nil {
			return nil, err
		}
		clips[i] = clip
	}
	return clips, nil
}
