package web

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	manifestName = "manifest.json"
	maxWorkers   = 4
)

// Page is one built page in the [Manifest].
type Page struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Output   string   `json:"output"`
	URL      string   `json:"url"`
	Partials []string `json:"partials,omitempty"`
	Size     int      `json:"size"`
}

// Manifest describes a finished build.
type Manifest struct {
	Base    string    `json:"base"`
	BuiltAt time.Time `json:"built_at"`
	Pages   []Page    `json:"pages"`
}

// Builder builds the static site described by a [shared.BuildConfig].
type Builder struct {
	cfg    shared.BuildConfig
	logger *log.Logger
}

// NewBuilder validates cfg and returns a Builder. logger may be nil.
func NewBuilder(cfg shared.BuildConfig, logger *log.Logger) (*Builder, error) {
	if logger == nil {
		logger = log.Default()
	}
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("%w: build root is required", shared.ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.OutDir) == "" {
		return nil, fmt.Errorf("%w: build out_dir is required", shared.ErrInvalidConfig)
	}
	if len(cfg.Pages) == 0 {
		return nil, fmt.Errorf("%w: no build pages configured", shared.ErrInvalidConfig)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}
	out, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}
	if root == out {
		return nil, fmt.Errorf("%w: out_dir must differ from root", shared.ErrInvalidConfig)
	}
	if cfg.EmptyOutDir && isWithin(out, root) {
		return nil, fmt.Errorf("%w: refusing to empty %s, it contains the site root", shared.ErrInvalidConfig, out)
	}

	cfg.Root, cfg.OutDir = root, out
	cfg.Base = normalizeBase(cfg.Base)
	return &Builder{cfg: cfg, logger: logger.With("component", "site-build")}, nil
}

// Build writes every page with its partials inlined, then the manifest.
func (b *Builder) Build() (*Manifest, error) {
	if b.cfg.EmptyOutDir {
		if err := emptyDir(b.cfg.OutDir); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(b.cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	names := make([]string, 0, len(b.cfg.Pages))
	for name := range b.cfg.Pages {
		names = append(names, name)
	}
	sort.Strings(names)

	pages := make([]Page, len(names))
	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for i, name := range names {
		g.Go(func() error {
			page, err := b.buildPage(name, b.cfg.Pages[name])
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := &Manifest{Base: b.cfg.Base, BuiltAt: time.Now().UTC(), Pages: pages}
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.cfg.OutDir, manifestName), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	b.logger.Info("site built", "pages", len(pages), "out_dir", b.cfg.OutDir, "base", b.cfg.Base)
	return manifest, nil
}

func (b *Builder) buildPage(name, rel string) (Page, error) {
	rel = filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return Page{}, fmt.Errorf("%w: page %s must be inside the site root", shared.ErrInvalidConfig, name)
	}

	src := filepath.Join(b.cfg.Root, rel)
	html, err := os.ReadFile(src)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read page %s: %w", name, err)
	}

	out, partials, err := InjectPartials(src, html)
	if err != nil {
		return Page{}, err
	}

	dst := filepath.Join(b.cfg.OutDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Page{}, fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return Page{}, fmt.Errorf("failed to write page %s: %w", name, err)
	}

	for i, p := range partials {
		if r, err := filepath.Rel(b.cfg.Root, p); err == nil {
			partials[i] = filepath.ToSlash(r)
		}
	}

	b.logger.Debug("page built", "name", name, "partials", len(partials))
	return Page{
		Name:     name,
		Source:   filepath.ToSlash(rel),
		Output:   filepath.ToSlash(rel),
		URL:      b.cfg.Base + filepath.ToSlash(rel),
		Partials: partials,
		Size:     len(out),
	}, nil
}

// Build builds the site described by cfg.
func Build(cfg shared.BuildConfig, logger *log.Logger) (*Manifest, error) {
	b, err := NewBuilder(cfg, logger)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// normalizeBase makes base start and end with a slash.
func normalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

// isWithin reports whether path is dir or inside it.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// emptyDir removes everything inside dir, keeping dir itself. A missing dir is not an error.
func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to empty output directory: %w", err)
		}
	}
	return nil
}
