// Package web bundles the HTML templates and static assets into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

var (
	//go:embed templates
	templateFiles embed.FS

	//go:embed static
	staticFiles embed.FS
)

// Templates serves the page templates rooted at the templates directory.
func Templates() http.FileSystem {
	return http.FS(mustSub(templateFiles, "templates"))
}

// Static serves the bundled css and javascript.
func Static() http.FileSystem {
	return http.FS(mustSub(staticFiles, "static"))
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
