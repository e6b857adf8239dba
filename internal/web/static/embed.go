// Package static embeds the assets served under /static/, currently just the
// placeholder preview shown for RAW files before the backend converts them.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed assets/*
var assetsFS embed.FS

// Handler returns an http.Handler serving the embedded assets. The handler
// expects to be mounted under /static/.
func Handler() http.Handler {
	fsys, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))
}
