package camera

import (
	"context"
	"errors"

	"gocv.io/x/gocv"
)

var (
	// ErrEndOfStream はデバイスがこれ以上フレームを返さないことを示す
	ErrEndOfStream = errors.New("フレームの終端に達しました")
	// ErrNotOpened はソースが開かれていないことを示す
	ErrNotOpened = errors.New("ソースが開かれていません")
)

// Status はカメラの動作状態を表す
type Status string

const (
	StatusInactive Status = "inactive" // カメラは停止中
	StatusActive   Status = "active"   // カメラは動作中
	StatusError    Status = "error"    // カメラでエラーが発生
)

// SourceType はソースタイプを定義
type SourceType string

const (
	// SourceTypeUSBCamera はUSBカメラソースを表す
	SourceTypeUSBCamera SourceType = "usb_camera"
	// SourceTypeVideoFile は動画ファイル・ストリームURLソースを表す
	SourceTypeVideoFile SourceType = "video_file"
)

// Settings はカメラの設定を表す
// 0の項目はドライバのデフォルトを使う
type Settings struct {
	FPS    int // フレームレート
	Width  int // 画像幅
	Height int // 画像高さ
}

// SourceInfo はソース情報を表す
type SourceInfo struct {
	Name   string
	Type   SourceType
	Device string // デバイスパス、デバイス番号またはファイルパス
}

// FrameSource はフレームを順に供給するインターフェース
type FrameSource interface {
	// Open はデバイスを開く
	Open(ctx context.Context) error

	// Read は次のフレームをdstに読み込む。フレームが得られるまでブロックする
	// デバイスがフレームを返さなくなった場合はErrEndOfStreamを返す
	Read(dst *gocv.Mat) error

	// Close はデバイスを解放する
	Close() error

	// Info はソース情報を返す
	Info() SourceInfo

	// Status は現在の状態を返す
	Status() Status
}

// Discovery はカメラデバイスの検出機能を提供する
type Discovery interface {
	// ScanDevices はシステム内の利用可能なカメラデバイスをスキャンする
	ScanDevices(ctx context.Context) ([]string, error)

	// IsDeviceAvailable は指定されたデバイスが利用可能かチェックする
	IsDeviceAvailable(ctx context.Context, device string) bool
}
