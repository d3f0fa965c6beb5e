package action

import (
	"io"

	"github.com/pkg/browser"
)

// Opener はURIを既定のハンドラで開く機能
type Opener interface {
	Open(url string) error
}

// OpenerFunc は関数をOpenerとして扱うためのアダプタ
type OpenerFunc func(url string) error

// Open はf(url)を呼び出す
func (f OpenerFunc) Open(url string) error {
	return f(url)
}

// BrowserOpener はホストの既定ブラウザでURLを開く
type BrowserOpener struct{}

// NewBrowserOpener は新しいBrowserOpenerを作成する
func NewBrowserOpener() *BrowserOpener {
	// 起動したブラウザの出力がストリームのログに混ざらないようにする
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &BrowserOpener{}
}

// Open はURLを既定ブラウザで開く。ブラウザの終了は待たない
func (o *BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}
