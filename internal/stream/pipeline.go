package stream

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"gocv.io/x/gocv"

	"qrlens/internal/action"
	"qrlens/internal/camera"
	"qrlens/internal/overlay"
	"qrlens/internal/scanner"
)

// Pipeline は1フレーム分の処理を順に実行する
type Pipeline struct {
	source  camera.FrameSource
	decoder scanner.Decoder
	tracker *action.Tracker
	encoder Encoder
	logger  *slog.Logger
}

// NewPipeline は新しいPipelineを作成する
func NewPipeline(source camera.FrameSource, decoder scanner.Decoder, tracker *action.Tracker, encoder Encoder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:  source,
		decoder: decoder,
		tracker: tracker,
		encoder: encoder,
		logger:  logger,
	}
}

// Frames はJPEGフレームの遅延シーケンスを返す
// ソースが終端に達した場合は何も返さずに終了し、それ以外のエラーは1度だけ返して終了する
func (p *Pipeline) Frames(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		frame := gocv.NewMat()
		defer frame.Close()

		for {
			if ctx.Err() != nil {
				return
			}

			data, err := p.process(&frame)
			if errors.Is(err, camera.ErrEndOfStream) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}

			if !yield(data, nil) {
				return
			}
		}
	}
}

// process はキャプチャ → デコード → アクション → 描画 → エンコード を行う
func (p *Pipeline) process(frame *gocv.Mat) ([]byte, error) {
	if err := p.source.Read(frame); err != nil {
		return nil, err
	}

	codes := p.detect(frame)
	for _, code := range codes {
		p.tracker.Consider(code.Payload)
	}

	overlay.Annotate(frame, codes)

	data, err := p.encoder.Encode(*frame)
	if err != nil {
		return nil, fmt.Errorf("フレームのエンコードに失敗: %w", err)
	}
	return data, nil
}

// detect はフレーム内のコードを返す。デコードの失敗はログのみでフレームは配信する
func (p *Pipeline) detect(frame *gocv.Mat) []scanner.DetectedCode {
	img, err := frame.ToImage()
	if err != nil {
		p.logger.Warn("フレームの変換に失敗しました", "error", err)
		return nil
	}

	codes, err := p.decoder.Detect(img)
	if err != nil {
		p.logger.Warn("コードのデコードに失敗しました", "error", err)
		return nil
	}

	for _, code := range codes {
		p.logger.Debug("コードを検出しました", "symbology", code.Symbology, "payload", code.Payload, "box", code.Box)
	}
	return codes
}
