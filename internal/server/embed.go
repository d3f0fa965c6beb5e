package server

import (
	_ "embed"
)

// indexHTML はビューアのページ
//
//go:embed web/index.html
var indexHTML []byte
