// Package server は、ビューアページとMJPEGストリームを配信するHTTPサーバーです。
//
// 責務:
//   - HTTPサーバーの起動とグレースフルシャットダウン
//   - ビューアページ（HTML）の配信
//   - 接続ごとのMJPEGストリーミング
//   - ヘルスチェックと状態確認API
//
// 仕様:
//   - ルーティングはgin-gonic/ginを使用
//   - GET /            ビューアページ
//   - GET /video_feed  multipart/x-mixed-replace; boundary=frame
//   - GET /health      ヘルスチェック
//   - GET /api/status  カメラ状態とアクション済みペイロード一覧
//   - 各接続は独立してカメラからフレームを取得する（フレームの共有キャッシュはない）
//   - エラーはクライアントには通知せず、ストリームを切断する
package server
