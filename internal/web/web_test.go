package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestAssets_Embedded(t *testing.T) {
	assets, err := Assets("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		if _, err := fs.Stat(assets, name); err != nil {
			t.Errorf("expected embedded %s: %v", name, err)
		}
	}
}

func TestAssets_DirOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>custom</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	assets, err := Assets(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := fs.ReadFile(assets, "index.html")
	if err != nil || string(data) != "<h1>custom</h1>" {
		t.Errorf("expected override index.html, got %q (%v)", data, err)
	}
	if _, err := fs.Stat(assets, "app.js"); err == nil {
		t.Error("expected override dir to replace the embedded assets")
	}
}

func TestAssets_MissingDir(t *testing.T) {
	_, err := Assets(filepath.Join(t.TempDir(), "nope"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
