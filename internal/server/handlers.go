package server

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"qrlens/internal/action"
	"qrlens/internal/config"
	"qrlens/internal/stream"
)

// handler は各エンドポイントの実装
type handler struct {
	config   *config.Config
	streamer FrameStreamer
	camera   CameraInfo
	tracker  *action.Tracker
	logger   *slog.Logger
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse はシステム状態のレスポンス
type StatusResponse struct {
	Status    string       `json:"status"`
	Server    ServerInfo   `json:"server"`
	Camera    *CameraState `json:"camera,omitempty"`
	Codes     []CodeState  `json:"codes"`
	Timestamp time.Time    `json:"timestamp"`
}

// ServerInfo はサーバーのリッスン情報
type ServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CameraState はカメラの状態
type CameraState struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Device string `json:"device"`
	Status string `json:"status"`
}

// CodeState はペイロードごとのアクション状態
type CodeState struct {
	Payload  string `json:"payload"`
	Actioned bool   `json:"actioned"`
}

// register はルートを設定する
func (h *handler) register(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/video_feed", h.videoFeed)
	r.GET("/health", h.health)
	r.GET("/api/status", h.status)
}

// index はビューアページを返す
func (h *handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// health はヘルスチェックエンドポイント
func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// status はシステム状態取得エンドポイント
func (h *handler) status(c *gin.Context) {
	response := StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Host: h.config.Server.Host,
			Port: h.config.Server.Port,
		},
		Codes:     []CodeState{},
		Timestamp: time.Now(),
	}

	if h.camera != nil {
		info := h.camera.Info()
		response.Camera = &CameraState{
			Name:   info.Name,
			Type:   string(info.Type),
			Device: info.Device,
			Status: string(h.camera.Status()),
		}
	}

	if h.tracker != nil {
		for payload, actioned := range h.tracker.Snapshot() {
			response.Codes = append(response.Codes, CodeState{Payload: payload, Actioned: actioned})
		}
		sort.Slice(response.Codes, func(i, j int) bool {
			return response.Codes[i].Payload < response.Codes[j].Payload
		})
	}

	c.JSON(http.StatusOK, response)
}

// videoFeed はMJPEGストリームを配信する
// クライアントが切断するか、フレームソースが終了するまでフレームを送り続ける
func (h *handler) videoFeed(c *gin.Context) {
	logger := h.logger.With("client", uuid.New().String(), "remote", c.ClientIP())
	logger.Info("ストリームを開始しました")

	// レスポンスヘッダーを設定
	c.Header("Content-Type", stream.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	frames := 0
	for data, err := range h.streamer.Frames(c.Request.Context()) {
		if err != nil {
			// クライアントにはエラーを通知せず切断する
			logger.Warn("ストリームを中断しました", "error", err, "frames", frames)
			return
		}

		if err := stream.WritePart(c.Writer, data); err != nil {
			logger.Info("クライアントが切断されました", "frames", frames)
			return
		}
		// バッファをフラッシュ
		c.Writer.Flush()
		frames++
	}

	logger.Info("ストリームを終了しました", "frames", frames)
}
