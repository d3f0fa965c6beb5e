package stream

import (
	"fmt"
	"io"
)

const (
	// Boundary はマルチパートの区切り文字列
	Boundary = "frame"
	// ContentType はMJPEGストリームのContent-Type
	ContentType = "multipart/x-mixed-replace; boundary=" + Boundary
)

// WritePart は1フレーム分のマルチパートを書き込む
func WritePart(w io.Writer, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", Boundary); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}
	return nil
}
