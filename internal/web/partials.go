package web

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/desertthunder/cinemania/internal/shared"
)

var loadTag = regexp.MustCompile(`<load src="(.*?)"\s*/>`)

// InjectPartials replaces every load tag in html with the partial it names.
//
// Partial paths are relative to the directory of page. It returns the rewritten document and the
// partial paths it read, in the order they appear.
func InjectPartials(page string, html []byte) ([]byte, []string, error) {
	dir := filepath.Dir(page)

	var (
		loaded []string
		err    error
	)
	out := loadTag.ReplaceAllFunc(html, func(tag []byte) []byte {
		if err != nil {
			return tag
		}

		src := string(loadTag.FindSubmatch(tag)[1])
		path := filepath.Join(dir, filepath.FromSlash(src))

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) {
				err = fmt.Errorf("%w: %s (loaded by %s)", shared.ErrPartialNotFound, src, page)
			} else {
				err = fmt.Errorf("failed to read partial %s for %s: %w", src, page, readErr)
			}
			return tag
		}

		loaded = append(loaded, path)
		return content
	})
	if err != nil {
		return nil, nil, err
	}
	return out, loaded, nil
}
