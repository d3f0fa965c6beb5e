package stream

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"gocv.io/x/gocv"

	"qrlens/internal/action"
	"qrlens/internal/camera"
	"qrlens/internal/scanner"
)

// fakeSource は同じフレームをframes回返した後に終端に達するテスト用ソース
type fakeSource struct {
	frame  gocv.Mat
	frames int
	err    error

	mu    sync.Mutex
	reads int
}

func (s *fakeSource) Open(context.Context) error { return nil }
func (s *fakeSource) Close() error                { return nil }
func (s *fakeSource) Info() camera.SourceInfo {
	return camera.SourceInfo{Name: "fake", Type: camera.SourceTypeVideoFile, Device: "fake"}
}
func (s *fakeSource) Status() camera.Status { return camera.StatusActive }

func (s *fakeSource) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reads >= s.frames {
		if s.err != nil {
			return s.err
		}
		return camera.ErrEndOfStream
	}
	s.reads++
	s.frame.CopyTo(dst)
	return nil
}

// processOnce は新しいMatで1フレーム分の処理を行う
func processOnce(p *Pipeline) ([]byte, error) {
	frame := gocv.NewMat()
	defer frame.Close()
	return p.process(&frame)
}

// staticDecoder は常に同じ結果を返すテスト用Decoder
type staticDecoder struct {
	codes []scanner.DetectedCode
	err   error
}

func (d staticDecoder) Detect(image.Image) ([]scanner.DetectedCode, error) {
	return d.codes, d.err
}

type countingOpener struct {
	mu    sync.Mutex
	calls []string
}

func (o *countingOpener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, url)
	return nil
}

func (o *countingOpener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// qrFrame はQRコードを描画したBGRフレームを作成する
func qrFrame(t *testing.T, payload string) gocv.Mat {
	t.Helper()

	canvas := image.NewRGBA(image.Rect(0, 0, 320, 240))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	if err != nil {
		t.Fatalf("QRコードの生成に失敗: %v", err)
	}
	draw.Draw(canvas, image.Rect(60, 20, 260, 220), matrix, image.Point{}, draw.Src)

	frame, err := gocv.ImageToMatRGB(canvas)
	if err != nil {
		t.Fatalf("Matへの変換に失敗: %v", err)
	}
	return frame
}

func newTestPipeline(source camera.FrameSource, decoder scanner.Decoder, opener action.Opener) *Pipeline {
	logger := discardLogger()
	tracker := action.NewTracker(opener, logger)
	return NewPipeline(source, decoder, tracker, NewJPEGEncoder(80), logger)
}

func TestJPEGEncoder_Encode(t *testing.T) {
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(0, 128, 255, 0))

	data, err := NewJPEGEncoder(90).Encode(frame)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Fatalf("Expected JPEG SOI marker, got % x", data[:2])
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Encoded data is not a valid JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("unexpected size: %v", b)
	}
}

func TestJPEGEncoder_EmptyFrame(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	if _, err := NewJPEGEncoder(90).Encode(frame); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame, got %v", err)
	}
}

func TestPipeline_FramesEndsWithSource(t *testing.T) {
	frame := qrFrame(t, "https://example.com")
	defer frame.Close()

	source := &fakeSource{frame: frame, frames: 3}
	opener := &countingOpener{}
	p := newTestPipeline(source, scanner.NewZXingDecoder(), opener)

	n := 0
	for data, err := range p.Frames(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
			t.Fatal("Expected JPEG frame")
		}
		n++
	}

	if n != 3 {
		t.Errorf("Expected 3 frames, got %d", n)
	}
	// 3フレームすべてでURLを検出しても開くのは1回
	if opener.count() != 1 {
		t.Errorf("Expected 1 open call, got %d", opener.count())
	}
}

func TestPipeline_FramesYieldsErrorOnce(t *testing.T) {
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	readErr := errors.New("device unplugged")
	source := &fakeSource{frame: frame, frames: 1, err: readErr}
	p := newTestPipeline(source, staticDecoder{}, &countingOpener{})

	var errs []error
	frames := 0
	for data, err := range p.Frames(context.Background()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(data) == 0 {
			t.Error("Expected frame data")
		}
		frames++
	}

	if frames != 1 {
		t.Errorf("Expected 1 frame before error, got %d", frames)
	}
	if len(errs) != 1 || !errors.Is(errs[0], readErr) {
		t.Errorf("Expected single read error, got %v", errs)
	}
}

func TestPipeline_StopsWhenConsumerStops(t *testing.T) {
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	source := &fakeSource{frame: frame, frames: 100}
	p := newTestPipeline(source, staticDecoder{}, &countingOpener{})

	for range p.Frames(context.Background()) {
		break
	}

	if source.reads != 1 {
		t.Errorf("Expected 1 read, got %d", source.reads)
	}
}

func TestPipeline_StopsOnCancel(t *testing.T) {
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	source := &fakeSource{frame: frame, frames: 100}
	p := newTestPipeline(source, staticDecoder{}, &countingOpener{})

	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	for range p.Frames(ctx) {
		n++
		if n == 2 {
			cancel()
		}
	}

	if n != 2 {
		t.Errorf("Expected 2 frames before cancel, got %d", n)
	}

	// キャンセル済みのコンテキストでは何も返さない
	for range p.Frames(ctx) {
		t.Error("Expected no frames after cancel")
	}
}

func TestPipeline_ConsidersEveryCode(t *testing.T) {
	frame := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer frame.Close()

	decoder := staticDecoder{codes: []scanner.DetectedCode{
		{Payload: "https://a.example.com", Symbology: "QRCODE", Box: image.Rect(5, 20, 40, 50)},
		{Payload: "not a url", Symbology: "QRCODE", Box: image.Rect(50, 20, 90, 50)},
	}}
	opener := &countingOpener{}
	source := &fakeSource{frame: frame, frames: 2}
	p := newTestPipeline(source, decoder, opener)

	for i := 0; i < 2; i++ {
		if _, err := processOnce(p); err != nil {
			t.Fatalf("process failed: %v", err)
		}
	}

	if opener.count() != 1 {
		t.Errorf("Expected 1 open call, got %d", opener.count())
	}
	snap := p.tracker.Snapshot()
	if !snap["https://a.example.com"] {
		t.Error("Expected URL to be actioned")
	}
	if done, ok := snap["not a url"]; !ok || done {
		t.Errorf("Expected non-URL payload seen but not actioned, got %v", snap)
	}

	if _, err := processOnce(p); !errors.Is(err, camera.ErrEndOfStream) {
		t.Errorf("Expected ErrEndOfStream, got %v", err)
	}
}

func TestPipeline_DecoderErrorKeepsStreaming(t *testing.T) {
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	source := &fakeSource{frame: frame, frames: 1}
	p := newTestPipeline(source, staticDecoder{err: errors.New("decoder crashed")}, &countingOpener{})

	data, err := processOnce(p)
	if err != nil {
		t.Fatalf("Expected frame despite decoder error, got %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected encoded frame")
	}
}
