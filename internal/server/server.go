package server

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"qrlens/internal/action"
	"qrlens/internal/camera"
	"qrlens/internal/config"
)

// FrameStreamer は接続ごとのJPEGフレーム列を生成する
type FrameStreamer interface {
	Frames(ctx context.Context) iter.Seq2[[]byte, error]
}

// CameraInfo はカメラの状態を提供する
type CameraInfo interface {
	Info() camera.SourceInfo
	Status() camera.Status
}

// Dependencies はサーバーが利用するコンポーネント
type Dependencies struct {
	Streamer FrameStreamer
	Camera   CameraInfo
	Tracker  *action.Tracker
	Logger   *slog.Logger
}

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger

	// cancelStreams はストリーミング中の全リクエストのコンテキストをキャンセルする
	cancelStreams context.CancelFunc
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(deps.Logger))

	h := &handler{
		config:   cfg,
		streamer: deps.Streamer,
		camera:   deps.Camera,
		tracker:  deps.Tracker,
		logger:   deps.Logger,
	}
	h.register(engine)

	baseCtx, cancel := context.WithCancel(context.Background())

	return &Server{
		config:        cfg,
		engine:        engine,
		logger:        deps.Logger,
		cancelStreams: cancel,
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			BaseContext: func(net.Listener) context.Context {
				return baseCtx
			},
		},
	}
}

// Handler はルーティング済みのhttp.Handlerを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start はサーバーを起動し、コンテキストのキャンセルかシグナルを受けるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		s.logger.Info("HTTPサーバーを起動しています", "addr", s.config.ServerAddress())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Info("シグナルを受信しました", "signal", sig.String())
	case err := <-shutdownCh:
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	s.logger.Info("サーバーをシャットダウンしています")

	// 無限ストリームはShutdownでは終わらないため先に止める
	s.cancelStreams()

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		// ストリーミング中の接続は終わらないため強制的に閉じる
		if errors.Is(err, context.DeadlineExceeded) {
			_ = s.httpServer.Close()
			s.logger.Warn("未完了の接続を強制的に切断しました")
			return nil
		}
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	s.logger.Info("サーバーが正常にシャットダウンされました")
	return nil
}

// requestLogger はリクエストごとにアクセスログを出力するミドルウェア
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("リクエストを処理しました",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"remote", c.ClientIP(),
		)
	}
}
