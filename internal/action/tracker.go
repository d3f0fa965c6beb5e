// Package action はデコード結果に対するアクションと重複抑止を担います。
//
// URL形式のペイロードは既定ブラウザで開き、成功したペイロードは
// プロセスが終了するまで再度開きません。失敗した場合は次のフレームで再試行します。
// それ以外のペイロードはログ出力のみ行います。
package action

import (
	"log/slog"
	"strings"
	"sync"
)

// IsURL はペイロードがhttp(s)のURLかどうかを判定する
func IsURL(payload string) bool {
	return strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://")
}

// Tracker はペイロードごとのアクション状態を保持する
// テーブルはエビクションされず、プロセスの生存期間中増え続ける
type Tracker struct {
	opener Opener
	logger *slog.Logger

	mu       sync.Mutex
	actioned map[string]bool
}

// NewTracker は新しいTrackerを作成する
func NewTracker(opener Opener, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		opener:   opener,
		logger:   logger,
		actioned: make(map[string]bool),
	}
}

// Consider はペイロードを評価し、必要であればアクションを実行する
func (t *Tracker) Consider(payload string) {
	t.mu.Lock()
	done, seen := t.actioned[payload]
	if !seen {
		t.actioned[payload] = false
	}
	t.mu.Unlock()

	if done {
		return
	}

	if !IsURL(payload) {
		t.logger.Info("アクションが定義されていません", "payload", payload)
		return
	}

	// 開いている間はロックを保持しない（同時に見つけた場合は重複して開く可能性がある）
	if err := t.opener.Open(payload); err != nil {
		t.logger.Warn("URLを開けませんでした", "url", payload, "error", err)
		return
	}

	t.mu.Lock()
	t.actioned[payload] = true
	t.mu.Unlock()

	t.logger.Info("URLを開きました", "url", payload)
}

// Snapshot はテーブルのコピーを返す
func (t *Tracker) Snapshot() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]bool, len(t.actioned))
	for k, v := range t.actioned {
		out[k] = v
	}
	return out
}
