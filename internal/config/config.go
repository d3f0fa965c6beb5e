package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server"`
	Camera CameraConfig `yaml:"camera"`
	Stream StreamConfig `yaml:"stream"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // 読み込みタイムアウト
	WriteTimeout time.Duration `yaml:"write_timeout"` // 書き込みタイムアウト
}

// CameraConfig はカメラの設定
type CameraConfig struct {
	// デバイス指定 (例: "0", "/dev/video0", "auto", 動画ファイルパス)
	Device string `yaml:"device"`
	// ソース種別 ("usb_camera" または "video_file")
	SourceType string `yaml:"source_type"`

	// 0の場合はドライバのデフォルトを使う
	FPS    int `yaml:"fps"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// StreamConfig はMJPEG配信の設定
type StreamConfig struct {
	JPEGQuality int `yaml:"jpeg_quality"` // JPEG品質 (1-100)
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // ストリーミング用にタイムアウト無効化
		},
		Camera: CameraConfig{
			Device:     "0",
			SourceType: "usb_camera",
		},
		Stream: StreamConfig{
			JPEGQuality: 90,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load は設定を読み込む
// デフォルト値 → YAMLファイル（pathが空でなければ） → 環境変数 の順に上書きする
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadFile はYAMLファイルの内容で設定を上書きする
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗: %w", err)
	}

	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Camera.Device = getEnvOrDefault("CAMERA_DEVICE", c.Camera.Device)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	var errs []error

	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("無効なポート番号: %d", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("タイムアウトに負の値は指定できません"))
	}

	// カメラ設定の検証
	if strings.TrimSpace(c.Camera.Device) == "" {
		errs = append(errs, errors.New("カメラデバイスが指定されていません"))
	}
	switch c.Camera.SourceType {
	case "usb_camera", "video_file":
	default:
		errs = append(errs, fmt.Errorf("サポートされていないソース種別: %q", c.Camera.SourceType))
	}
	if c.Camera.FPS < 0 || c.Camera.FPS > 120 {
		errs = append(errs, fmt.Errorf("無効なFPS値: %d", c.Camera.FPS))
	}
	if c.Camera.Width < 0 || c.Camera.Width > 4096 {
		errs = append(errs, fmt.Errorf("無効な幅: %d", c.Camera.Width))
	}
	if c.Camera.Height < 0 || c.Camera.Height > 4096 {
		errs = append(errs, fmt.Errorf("無効な高さ: %d", c.Camera.Height))
	}

	if c.Stream.JPEGQuality < 1 || c.Stream.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("無効なJPEG品質: %d", c.Stream.JPEGQuality))
	}

	return errors.Join(errs...)
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
