package stream

import (
	"bytes"
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrEmptyFrame は空のフレームをエンコードしようとしたことを示す
var ErrEmptyFrame = errors.New("空のフレームはエンコードできません")

// Encoder はフレームを圧縮画像に変換する
type Encoder interface {
	Encode(frame gocv.Mat) ([]byte, error)
}

// JPEGEncoder はJPEG形式でエンコードするEncoder実装
type JPEGEncoder struct {
	quality int
}

// NewJPEGEncoder は指定品質 (1-100) のJPEGEncoderを作成する
func NewJPEGEncoder(quality int) *JPEGEncoder {
	return &JPEGEncoder{quality: quality}
}

// Encode はフレームをJPEGバイト列に変換する
func (e *JPEGEncoder) Encode(frame gocv.Mat) ([]byte, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), e.quality})
	if err != nil {
		return nil, fmt.Errorf("JPEGエンコードに失敗: %w", err)
	}
	defer buf.Close()

	// ネイティブバッファは解放されるためコピーを返す
	return bytes.Clone(buf.GetBytes()), nil
}
