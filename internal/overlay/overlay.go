// Package overlay は検出結果をフレーム上に描画します。
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"qrlens/internal/scanner"
)

var (
	boxColor   = color.RGBA{R: 0, G: 255, B: 0, A: 0} // 緑
	labelColor = color.RGBA{R: 0, G: 0, B: 255, A: 0} // 青
)

const (
	boxThickness   = 2
	labelThickness = 2
	labelScale     = 0.5
	// labelOffset はラベルのベースラインを矩形上端からどれだけ上げるか
	labelOffset = 10
)

// Annotate は各コードの矩形とラベルをフレームに直接描画する
// codesが空の場合、フレームは変更されない
func Annotate(frame *gocv.Mat, codes []scanner.DetectedCode) {
	for _, code := range codes {
		// OpenCVは矩形の右下を1画素内側に描くため、(x+w, y+h)まで含むよう広げる
		rect := image.Rectangle{Min: code.Box.Min, Max: code.Box.Max.Add(image.Pt(1, 1))}
		gocv.Rectangle(frame, rect, boxColor, boxThickness)

		org := image.Pt(code.Box.Min.X, code.Box.Min.Y-labelOffset)
		gocv.PutText(frame, code.Label(), org, gocv.FontHersheySimplex, labelScale, labelColor, labelThickness)
	}
}
