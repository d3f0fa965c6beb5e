// Package stream はフレームごとの処理パイプラインとMJPEG出力を担います。
//
// 1回の反復で キャプチャ → デコード → アクション → 描画 → JPEGエンコード を行い、
// 結果を接続ごとの遅延シーケンスとして返します。
// シーケンスはフレームソースの終端、エラー、コンテキストのキャンセル、
// または呼び出し側が読み取りをやめた時点で終了し、再開はできません。
package stream
