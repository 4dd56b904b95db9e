package webui

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexHTML []byte

// ServeIndex serves the embedded popup page.
func (u *UI) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}
