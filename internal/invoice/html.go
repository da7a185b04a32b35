package invoice

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFiles embed.FS

// staticFS returns the embedded UI with the static/ prefix stripped
func staticFS() fs.FS {
	fsys, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return fsys
}
