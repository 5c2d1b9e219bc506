package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cyprienbrisset/video-translate-to-text/internal/config"
	"github.com/cyprienbrisset/video-translate-to-text/internal/dub"
	"github.com/cyprienbrisset/video-translate-to-text/internal/engine/resync"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
	"github.com/cyprienbrisset/video-translate-to-text/internal/transcript"
	"github.com/cyprienbrisset/video-translate-to-text/internal/wavio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

type dubOptions struct {
	audioPath      string
	transcriptPath string
	saveTranscript string
	outPath        string
	mode           string
	noSpeedAdjust  bool
	quiet          bool
}

func newDubCommand(cc *commandContext) *cobra.Command {
	var opts dubOptions

	cmd := &cobra.Command{
		Use:   "dub",
		Short: "Transcribe, translate, synthesize and resynchronize a recording",
		Long: `Dub runs the full pipeline on a WAV file. Without --transcript the audio is
transcribed with the configured STT provider first; --save-transcript keeps
that transcript for later runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			return runDub(cmd, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.audioPath, "audio", "", "Original audio (WAV)")
	flags.StringVar(&opts.transcriptPath, "transcript", "", "Use this transcript instead of running STT")
	flags.StringVar(&opts.saveTranscript, "save-transcript", "", "Write the transcript used for this run to a JSON file")
	flags.StringVarP(&opts.outPath, "out", "o", "", "Output audio (WAV)")
	flags.StringVar(&opts.mode, "tts-mode", "", "Override dubbing.tts_mode (per_segment, continuous)")
	flags.BoolVar(&opts.noSpeedAdjust, "no-speed-adjust", false, "Only cut or pad clips, never time-scale them")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the slot report")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runDub(cmd *cobra.Command, cfg *config.Config, opts dubOptions) error {
	if opts.mode != "" {
		cfg.Dubbing.TTSMode = config.TTSMode(opts.mode)
		if !cfg.Dubbing.TTSMode.IsValid() {
			return errors.New("--tts-mode must be per_segment or continuous")
		}
	}
	if opts.noSpeedAdjust {
		disabled := false
		cfg.Engine.AdjustSpeed = &disabled
	}
	if cfg.Providers.TTS.Name == "" {
		return errors.New("providers.tts is not configured")
	}
	if opts.transcriptPath == "" && cfg.Providers.STT.Name == "" {
		return errors.New("providers.stt is not configured; pass --transcript to skip transcription")
	}

	ctx, stop := runContext(cmd.Context())
	defer stop()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)
	ps, err := buildProviders(cfg, reg, observe.DefaultMetrics())
	if err != nil {
		return err
	}
	defer ps.Close()

	shutdown, err := setupTelemetry(ctx, "dub", cfg.Telemetry, ps.Checks...)
	if err != nil {
		return err
	}
	defer shutdown()
	metrics := observe.DefaultMetrics()

	pipeline := dub.New(dub.Deps{
		Transcriber: ps.STT,
		Translator:  ps.Translate,
		TTS:         ps.TTS,
		Engine:      resync.New(cfg.Engine.Resync(), resync.WithMetrics(metrics)),
		Metrics:     metrics,
	}, dub.Config{
		SourceLanguage:  cfg.Dubbing.SourceLanguage,
		TargetLanguage:  cfg.Dubbing.TargetLanguage,
		Voice:           voiceProfile(cfg),
		Mode:            dub.Mode(cfg.Dubbing.TTSMode),
		Concurrency:     cfg.Dubbing.Concurrency,
		TimelineOptions: cfg.Engine.TimelineOptions(),
	})

	log := observe.Logger(ctx)
	original, err := wavio.Read(opts.audioPath)
	if err != nil {
		return err
	}
	log.Info("dub: audio loaded", "path", opts.audioPath, "seconds", original.Seconds())

	var raw []timeline.RawSegment
	if opts.transcriptPath != "" {
		doc, err := transcript.Load(opts.transcriptPath)
		if err != nil {
			return err
		}
		raw = doc.RawSegments()
	} else {
		raw, err = pipeline.Transcribe(ctx, original)
		if err != nil {
			return err
		}
	}
	if opts.saveTranscript != "" {
		if err := transcript.Save(opts.saveTranscript, transcript.FromRaw(cfg.Dubbing.SourceLanguage, raw)); err != nil {
			return err
		}
		log.Info("dub: transcript saved", "path", opts.saveTranscript, "segments", len(raw))
	}

	res, err := pipeline.Run(ctx, original, raw)
	if err != nil {
		return err
	}
	if err := wavio.Write(opts.outPath, res.Track); err != nil {
		return err
	}

	log.Info("dub: track written",
		"out", opts.outPath,
		"seconds", res.Track.Seconds(),
		"degraded", len(res.Degraded()),
	)
	if !opts.quiet {
		renderReport(cmd.OutOrStdout(), res, sampleRate)
	}
	return nil
}
