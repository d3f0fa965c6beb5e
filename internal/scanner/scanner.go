// Package scanner はフレーム内のQRコードとバーコードを検出・デコードします。
package scanner

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
)

// DetectedCode はフレーム内で検出された1つのコード
type DetectedCode struct {
	Payload   string          // デコードされたテキスト
	Symbology string          // コード規格 (例: QRCODE)
	Box       image.Rectangle // フレーム上の外接矩形
}

// Label はオーバーレイに描画するラベルを返す
func (c DetectedCode) Label() string {
	return fmt.Sprintf("%s: %s", c.Symbology, c.Payload)
}

// Decoder はフレームからコードを検出するインターフェース
type Decoder interface {
	// Detect は画像内のコードを返す。見つからない場合は空スライス
	Detect(img image.Image) ([]DetectedCode, error)
}

// ZXingDecoder はgozxingを使うDecoder実装
// QRコードは複数同時に、1次元バーコードは規格ごとに1つずつ読み取る
type ZXingDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewZXingDecoder は新しいZXingDecoderを作成する
func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Detect は画像内のQRコードと1次元バーコードをすべてデコードする
func (d *ZXingDecoder) Detect(img image.Image) ([]DetectedCode, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("二値化に失敗: %w", err)
	}

	codes, err := d.detectQR(bmp)
	if err != nil {
		return nil, err
	}

	linear, err := d.detectLinear(bmp, codes)
	if err != nil {
		return nil, err
	}

	return append(codes, linear...), nil
}

// detectQR は画像内のQRコードをすべて返す
func (d *ZXingDecoder) detectQR(bmp *gozxing.BinaryBitmap) ([]DetectedCode, error) {
	// リーダーは内部状態を持つため呼び出しごとに作成する
	reader := multiqr.NewQRCodeMultiReader()
	results, err := reader.DecodeMultiple(bmp, d.hints)
	if err != nil {
		if isNotDecodable(err) {
			// コードなし・読み取り不能はエラー扱いしない
			return []DetectedCode{}, nil
		}
		return nil, fmt.Errorf("QRコードのデコードに失敗: %w", err)
	}

	codes := make([]DetectedCode, 0, len(results))
	for _, r := range results {
		codes = append(codes, DetectedCode{
			Payload:   r.GetText(),
			Symbology: symbologyName(r.GetBarcodeFormat()),
			Box:       symbolBox(r.GetResultPoints()),
		})
	}
	return codes, nil
}

// detectLinear は1次元バーコードを規格ごとに探す
// 既に検出したコードの内側で見つかったものはQRコードの誤読として捨てる
func (d *ZXingDecoder) detectLinear(bmp *gozxing.BinaryBitmap, found []DetectedCode) ([]DetectedCode, error) {
	readers := []gozxing.Reader{
		oned.NewMultiFormatUPCEANReader(d.hints),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
		oned.NewCode93Reader(),
	}

	var codes []DetectedCode
	for _, reader := range readers {
		r, err := reader.Decode(bmp, d.hints)
		if err != nil {
			if isNotDecodable(err) {
				continue
			}
			return nil, fmt.Errorf("バーコードのデコードに失敗: %w", err)
		}

		box := boundingBox(r.GetResultPoints())
		if insideAny(box, found) {
			continue
		}
		codes = append(codes, DetectedCode{
			Payload:   r.GetText(),
			Symbology: symbologyName(r.GetBarcodeFormat()),
			Box:       box,
		})
	}
	return codes, nil
}

// isNotDecodable はコードが見つからない・読めないことを示すエラーかを判定する
func isNotDecodable(err error) bool {
	var readerErr gozxing.ReaderException
	return errors.As(err, &readerErr)
}

// insideAny は矩形の中心がいずれかのコードの矩形内にあるかを返す
func insideAny(box image.Rectangle, codes []DetectedCode) bool {
	center := image.Pt((box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2)
	for _, c := range codes {
		if center.In(c.Box) {
			return true
		}
	}
	return false
}

// symbologyName はzbar形式の規格名を返す (QR_CODE → QRCODE, CODE_128 → CODE128)
func symbologyName(format gozxing.BarcodeFormat) string {
	return strings.ReplaceAll(format.String(), "_", "")
}

// boundingBox は検出点を包含する軸平行の矩形を返す
func boundingBox(points []gozxing.ResultPoint) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		if p == nil {
			continue
		}
		minX = math.Min(minX, p.GetX())
		minY = math.Min(minY, p.GetY())
		maxX = math.Max(maxX, p.GetX())
		maxY = math.Max(maxY, p.GetY())
	}
	if math.IsInf(minX, 1) {
		return image.Rectangle{}
	}

	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

// moduleSizer はモジュール幅の推定値を持つ検出点 (ファインダーパターン)
type moduleSizer interface {
	GetEstimatedModuleSize() float64
}

// finderOffset はファインダーパターン中心からシンボル外周までのモジュール数
const finderOffset = 3.5

// symbolBox はQRコード全体を包含する軸平行の矩形を返す
// 検出点は左下・左上・右上のファインダーパターン中心なので、
// 各辺の方向に3.5モジュール分外側へ広げる
func symbolBox(points []gozxing.ResultPoint) image.Rectangle {
	var finders []vec
	var module float64
	for _, p := range points {
		f, ok := p.(moduleSizer)
		if !ok {
			continue
		}
		finders = append(finders, vec{p.GetX(), p.GetY()})
		module += f.GetEstimatedModuleSize()
		if len(finders) == 3 {
			break
		}
	}
	if len(finders) < 3 {
		return boundingBox(points)
	}
	module /= 3

	bottomLeft, topLeft, topRight := finders[0], finders[1], finders[2]
	u := topRight.sub(topLeft).unit()
	v := bottomLeft.sub(topLeft).unit()
	if u == (vec{}) || v == (vec{}) {
		return boundingBox(points)
	}

	d := finderOffset * module
	bottomRight := bottomLeft.add(topRight).sub(topLeft)
	corners := []gozxing.ResultPoint{
		topLeft.sub(u.add(v).scale(d)),
		topRight.add(u.sub(v).scale(d)),
		bottomLeft.add(v.sub(u).scale(d)),
		bottomRight.add(u.add(v).scale(d)),
	}
	return boundingBox(corners)
}

// vec は2次元ベクトル
type vec struct{ x, y float64 }

func (a vec) GetX() float64 { return a.x }
func (a vec) GetY() float64 { return a.y }
func (a vec) add(b vec) vec { return vec{a.x + b.x, a.y + b.y} }
func (a vec) sub(b vec) vec { return vec{a.x - b.x, a.y - b.y} }
func (a vec) scale(k float64) vec { return vec{a.x * k, a.y * k} }

func (a vec) unit() vec {
	n := math.Hypot(a.x, a.y)
	if n == 0 {
		return vec{}
	}
	return vec{a.x / n, a.y / n}
}
