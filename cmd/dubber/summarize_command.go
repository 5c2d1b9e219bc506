package main

import (
	"github.com/spf13/cobra"

	"github.com/cyprienbrisset/video-translate-to-text/internal/config"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
	"github.com/cyprienbrisset/video-translate-to-text/internal/summary"
	"github.com/cyprienbrisset/video-translate-to-text/internal/transcript"
)

type summarizeOptions struct {
	transcriptPath string
	outPath        string
	language       string
	quiet          bool
}

func newSummarizeCommand(cc *commandContext) *cobra.Command {
	var opts summarizeOptions

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Write short, medium and long summaries of a transcript",
		Long: `Summarize asks the configured language model (providers.summarize, or
providers.translate when unset) for a short (50-100 words), medium
(100-200 words) and long (300-500 words) summary of a transcript. Bracketed
non-speech markers are left out of the text. With --out the transcript is
written back with the summaries attached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			reg := config.NewRegistry()
			registerBuiltinProviders(reg)
			return runSummarize(cmd, cfg, opts, reg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.transcriptPath, "transcript", "", "Transcript document (JSON)")
	flags.StringVarP(&opts.outPath, "out", "o", "", "Write the transcript with summaries to this path")
	flags.StringVar(&opts.language, "language", "", "Summary language (default: transcript language)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the summaries")
	_ = cmd.MarkFlagRequired("transcript")

	return cmd
}

func runSummarize(cmd *cobra.Command, cfg *config.Config, opts summarizeOptions, reg *config.Registry) error {
	ctx, stop := runContext(cmd.Context())
	defer stop()

	shutdown, err := setupTelemetry(ctx, "summarize", cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdown()

	p, err := buildSummarizer(cfg, reg)
	if err != nil {
		return err
	}
	doc, err := transcript.Load(opts.transcriptPath)
	if err != nil {
		return err
	}

	genOpts := []summary.Option{summary.WithMetrics(observe.DefaultMetrics())}
	if opts.language != "" {
		genOpts = append(genOpts, summary.WithLanguage(opts.language))
	}
	if err := summary.New(p, genOpts...).Document(ctx, doc); err != nil {
		return err
	}

	if opts.outPath != "" {
		if err := transcript.Save(opts.outPath, doc); err != nil {
			return err
		}
		observe.Logger(ctx).Info("summarize: transcript written", "out", opts.outPath)
	}
	if !opts.quiet {
		renderSummaries(cmd.OutOrStdout(), doc.Summaries)
	}
	return nil
}
