package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"qrlens/internal/action"
	"qrlens/internal/camera"
	"qrlens/internal/config"
	"qrlens/internal/log"
	"qrlens/internal/scanner"
	"qrlens/internal/server"
	"qrlens/internal/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "カメラを開いてMJPEGストリームを配信する",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Warn("カメラの解放に失敗しました", "error", err)
		}
	}()

	tracker := action.NewTracker(action.NewBrowserOpener(), log.With("component", "action"))
	pipeline := stream.NewPipeline(
		source,
		scanner.NewZXingDecoder(),
		tracker,
		stream.NewJPEGEncoder(cfg.Stream.JPEGQuality),
		log.With("component", "stream"),
	)

	srv := server.New(cfg, server.Dependencies{
		Streamer: pipeline,
		Camera:   source,
		Tracker:  tracker,
		Logger:   log.With("component", "server"),
	})

	log.Info("qrlens を起動します", "addr", cfg.ServerAddress(), "device", source.Info().Device)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
	}
	return nil
}

// openSource はデバイスを解決してカメラを開く
// カメラを開けない場合は起動を中止する
func openSource(ctx context.Context, cfg *config.Config) (camera.FrameSource, error) {
	device, err := camera.ResolveDevice(ctx, camera.NewLinuxDiscovery(), cfg.Camera.Device)
	if err != nil {
		return nil, fmt.Errorf("デバイスの検出に失敗しました: %w", err)
	}

	source, err := camera.NewSourceFactory().CreateSource(camera.SourceType(cfg.Camera.SourceType), camera.SourceConfig{
		Device: device,
		Settings: camera.Settings{
			FPS:    cfg.Camera.FPS,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := source.Open(ctx); err != nil {
		return nil, fmt.Errorf("カメラを開けませんでした: %w", err)
	}
	return source, nil
}
