package camera

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// VideoCaptureSource はgocv.VideoCaptureを使うFrameSource実装
// 1つのハンドルを全ストリームで共有するため、読み込みはミューテックスで直列化する
type VideoCaptureSource struct {
	info     SourceInfo
	settings Settings

	mu      sync.Mutex
	capture *gocv.VideoCapture
	status  Status
}

// NewVideoCaptureSource は新しいVideoCaptureSourceを作成する
func NewVideoCaptureSource(info SourceInfo, settings Settings) *VideoCaptureSource {
	return &VideoCaptureSource{
		info:     info,
		settings: settings,
		status:   StatusInactive,
	}
}

// Open はデバイスを開き、設定を適用する
func (s *VideoCaptureSource) Open(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture != nil {
		return nil // 既に開いている
	}

	capture, err := gocv.OpenVideoCapture(s.captureTarget())
	if err != nil {
		s.status = StatusError
		return fmt.Errorf("カメラ %s を開けません: %w", s.info.Device, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		s.status = StatusError
		return fmt.Errorf("カメラ %s を開けません", s.info.Device)
	}

	if s.settings.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(s.settings.Width))
	}
	if s.settings.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(s.settings.Height))
	}
	if s.settings.FPS > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(s.settings.FPS))
	}

	s.capture = capture
	s.status = StatusActive
	return nil
}

// Read は次のフレームを読み込む
func (s *VideoCaptureSource) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return ErrNotOpened
	}

	if ok := s.capture.Read(dst); !ok || dst.Empty() {
		s.status = s.endedStatus()
		return ErrEndOfStream
	}

	return nil
}

// Close はデバイスを解放する
func (s *VideoCaptureSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return nil // 既に停止済み
	}

	err := s.capture.Close()
	s.capture = nil
	s.status = StatusInactive
	if err != nil {
		return fmt.Errorf("カメラ %s の解放に失敗: %w", s.info.Device, err)
	}
	return nil
}

// Info はソース情報を返す
func (s *VideoCaptureSource) Info() SourceInfo {
	return s.info
}

// Status は現在の状態を返す
func (s *VideoCaptureSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// endedStatus はフレームが得られなくなった後の状態を返す
// 動画ファイルは終端に達しただけなので停止扱い、カメラは異常扱いとする
func (s *VideoCaptureSource) endedStatus() Status {
	if s.info.Type == SourceTypeVideoFile {
		return StatusInactive
	}
	return StatusError
}

// captureTarget はgocvに渡すデバイス指定を返す
// USBカメラの数字指定はデバイス番号として扱う
func (s *VideoCaptureSource) captureTarget() interface{} {
	if s.info.Type == SourceTypeUSBCamera {
		if id, err := strconv.Atoi(s.info.Device); err == nil {
			return id
		}
	}
	return s.info.Device
}
