package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cyprienbrisset/video-translate-to-text/internal/config"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
)

// commandContext carries the persistent flags and the lazily loaded config
// shared by every subcommand.
type commandContext struct {
	configFlag   string
	logLevelFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// ensureConfig loads the config file once. Without --config every setting
// takes its default.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.configFlag)
		if path == "" {
			c.config = &config.Config{}
		} else {
			c.config, c.configErr = config.Load(path)
		}
		if c.configErr != nil {
			return
		}
		if lvl := config.LogLevel(c.logLevelFlag); lvl != "" {
			if !lvl.IsValid() {
				c.configErr = fmt.Errorf("invalid --log-level %q", lvl)
				return
			}
			c.config.LogLevel = lvl
		}
	})
	return c.config, c.configErr
}

// runContext returns a context cancelled on SIGINT/SIGTERM and tagged with a
// fresh run ID.
func runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	return observe.WithRunID(ctx, uuid.NewString()), stop
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "dubber",
		Short:         "Dub a recording while keeping its original timing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cfg.LogLevel))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cc.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&cc.logLevelFlag, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(newComposeCommand(cc))
	rootCmd.AddCommand(newDubCommand(cc))
	rootCmd.AddCommand(newSummarizeCommand(cc))
	rootCmd.AddCommand(newVoicesCommand(cc))

	return rootCmd
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
