// Package camera カメラからのフレーム取得を担う
//
// # 責務
// - カメラデバイスの自動検出
// - 設定からのフレームソース作成
// - 共有されたキャプチャハンドルからのフレーム読み込み
//
// # 仕様
// - VideoCaptureSource: gocv (OpenCV) 経由でUSBカメラ・動画ファイルを読む
// - 1つのハンドルを複数ストリームで共有し、読み込みはミューテックスで直列化する
// - フレームが取得できなくなった場合は ErrEndOfStream を返す
// - 起動時にデバイスを開けない場合は呼び出し側でプロセスを終了する
//
// # 前提要件
//   - OpenCV 4.x: gocvのビルドに必要
//   - v4l-utils: カメラ名の取得に使用（任意）
//     Ubuntu/Debian: sudo apt install v4l-utils
//   - videoグループへの参加: デバイスアクセス権限
//     sudo usermod -a -G video $USER
package camera
