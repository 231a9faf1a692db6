package web

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed site
var starterSite embed.FS

// Scaffold writes the starter site into root. Existing files are left alone; the written paths are
// returned relative to root.
func Scaffold(root string) ([]string, error) {
	site, err := fs.Sub(starterSite, "site")
	if err != nil {
		return nil, err
	}

	var written []string
	err = fs.WalkDir(site, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		dst := filepath.Join(root, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if _, err := os.Stat(dst); err == nil {
			return nil
		}

		data, err := fs.ReadFile(site, path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}
