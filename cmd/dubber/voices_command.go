package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cyprienbrisset/video-translate-to-text/internal/config"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
)

func newVoicesCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the voices offered by the configured TTS providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Providers.TTS.Name == "" {
				return errors.New("providers.tts is not configured")
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

			voices, err := ps.TTS.ListVoices(ctx)
			if err != nil {
				return err
			}
			renderVoices(cmd.OutOrStdout(), voices)
			return nil
		},
	}
}
