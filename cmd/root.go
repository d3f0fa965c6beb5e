// Package cmd はqrlensのコマンドライン実装です
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"qrlens/internal/config"
	"qrlens/internal/log"
)

// Version はアプリケーションのバージョン
const Version = "0.1.0"

// Options はコマンドラインで上書きできる設定
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Device     string
	LogLevel   string
}

var opts Options

var rootCmd = &cobra.Command{
	Use:     "qrlens",
	Short:   "Webカメラ映像からQRコードを読み取り、注釈付きの映像を配信します",
	Version: Version,
	// 引数なしで起動した場合はサーバーを起動する
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

// Execute はルートコマンドを実行する
func Execute() {
	// Ctrl+C (SIGINT) または SIGTERM でキャンセルされるコンテキスト
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML設定ファイルのパス")
	flags.StringVar(&opts.Host, "host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
	flags.IntVar(&opts.Port, "port", 0, "サーバーのポート (デフォルト: 5000)")
	flags.StringVar(&opts.Device, "device", "", `カメラデバイス (例: 0, /dev/video0, auto)`)
	flags.StringVar(&opts.LogLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
}

// loadConfig は設定を読み込み、コマンドラインオプションで上書きする
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Device != "" {
		cfg.Camera.Device = opts.Device
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	log.Init(cfg.Log.Level)
	return cfg, nil
}
