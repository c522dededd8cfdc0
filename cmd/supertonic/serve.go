package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/supertonic-go/internal/config"
	"github.com/example/supertonic-go/internal/onnx"
	"github.com/example/supertonic-go/internal/server"
	"github.com/example/supertonic-go/internal/tts"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Supertonic HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			runtimeCfg := onnx.RunnerConfig{
				LibraryPath: cfg.Runtime.ORTLibraryPath,
				APIVersion:  23,
			}

			sess, err := tts.InitOnce(cfg.Paths.AssetRoot, runtimeCfg)
			if err != nil {
				return fmt.Errorf("initialize synthesis session: %w", err)
			}

			facade := tts.NewFacade(sess, nil)
			defer facade.Close()

			srv := server.New(cfg, facade).
				WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	defaults := config.DefaultConfig()
	config.RegisterFlags(cmd.Flags(), defaults)

	return cmd
}
