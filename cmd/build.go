package main

import (
	"context"

	"github.com/desertthunder/cinemania/internal/web"
	"github.com/urfave/cli/v3"
)

// Build builds the static site, optionally writing the starter pages first.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Build
	if root := cmd.String("root"); root != "" {
		cfg.Root = root
	}
	if out := cmd.String("out"); out != "" {
		cfg.OutDir = out
	}
	if base := cmd.String("base"); base != "" {
		cfg.Base = base
	}

	if cmd.Bool("init") {
		written, err := web.Scaffold(cfg.Root)
		if err != nil {
			return err
		}
		for _, path := range written {
			r.writePlain("  created %s\n", path)
		}
	}

	manifest, err := web.Build(cfg, r.logger)
	if err != nil {
		return err
	}

	r.writePlainHeader("Site built")
	for _, page := range manifest.Pages {
		r.writePlain("%-10s %s (%d bytes, %d partials)\n", page.Name, page.URL, page.Size, len(page.Partials))
	}
	return nil
}
