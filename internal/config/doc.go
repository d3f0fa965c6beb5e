// Package config はアプリケーション設定の読み込みと検証を担います。
//
// 設定はデフォルト値、YAMLファイル、環境変数の順に上書きされます。
// コマンドラインフラグによる上書きはcmdパッケージで行います。
//
// 環境変数:
//   - SERVER_HOST: リッスンするホスト
//   - PORT: リッスンするポート
//   - CAMERA_DEVICE: カメラデバイス（"auto"で自動検出）
//   - LOG_LEVEL: ログレベル
package config
