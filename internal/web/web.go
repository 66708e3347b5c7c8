// Package web holds the browser forms served at the site root.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed public
var files embed.FS

// Assets returns the forms rooted at dir, or the embedded copy when dir is empty.
func Assets(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(files, "public")
}
