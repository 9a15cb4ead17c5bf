package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	clientdist "github.com/viaduct-dev/viaduct/client/dist"
	"github.com/viaduct-dev/viaduct/internal/config"
	"github.com/viaduct-dev/viaduct/internal/errors"
	"github.com/viaduct-dev/viaduct/pkg/render"
)

// Result summarizes one build.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Output is the absolute path of the build output directory.
	Output string

	// Files is the number of files written.
	Files int

	// Bytes is the total size of the written files.
	Bytes int64

	// Manifest maps public asset paths to their hashed output paths.
	Manifest map[string]string
}

// Options configures the builder.
type Options struct {
	// Shell is the HTML document rendered to index.html. Stylesheet and
	// script URLs that point at public assets are rewritten to their
	// hashed forms.
	Shell render.Shell

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder produces static builds.
type Builder struct {
	config  *config.Config
	options Options
}

// New creates a builder for the given project.
func New(cfg *config.Config, options Options) *Builder {
	return &Builder{config: cfg, options: options}
}

// Clean removes the output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}

// Build performs a production build.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	outputDir := b.config.OutputPath()

	result := &Result{
		Output:   outputDir,
		Manifest: make(map[string]string),
	}

	b.progress("Cleaning output directory...")
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, errors.New("B001").Wrap(err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.New("B001").Wrap(err)
	}

	b.progress("Copying assets...")
	if err := b.copyAssets(ctx, result); err != nil {
		return nil, err
	}

	b.progress("Writing client runtime...")
	if err := b.writeFile(result, filepath.Join("_viaduct", "client.js"), clientdist.ViaductJS); err != nil {
		return nil, err
	}

	b.progress("Rendering shell...")
	if err := b.writeShell(result); err != nil {
		return nil, err
	}

	b.progress("Writing manifest...")
	manifest, err := json.MarshalIndent(result.Manifest, "", "  ")
	if err != nil {
		return nil, errors.New("B001").Wrap(err)
	}
	if err := b.writeFile(result, "manifest.json", manifest); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// copyAssets copies the public directory into the output under
// content-hashed names. A missing public directory is not an error.
func (b *Builder) copyAssets(ctx context.Context, result *Result) error {
	publicDir := b.config.PublicPath()
	if _, err := os.Stat(publicDir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(publicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.New("B002").Wrap(err)
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(publicDir, path)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return errors.New("B002").Wrap(err)
		}

		hashed := hashName(relSlash, data)
		if err := b.writeFile(result, filepath.Join("assets", filepath.FromSlash(hashed)), data); err != nil {
			return err
		}
		result.Manifest[relSlash] = "/assets/" + hashed
		return nil
	})
}

// writeShell renders index.html with asset URLs rewritten through the
// manifest.
func (b *Builder) writeShell(result *Result) error {
	shell := b.options.Shell
	if shell.Title == "" {
		shell.Title = b.config.Name
	}

	sheets := make([]string, len(shell.StyleSheets))
	for i, href := range shell.StyleSheets {
		sheets[i] = b.rewrite(result.Manifest, href)
	}
	shell.StyleSheets = sheets

	if len(shell.Scripts) > 0 {
		scripts := make([]render.ScriptTag, len(shell.Scripts))
		copy(scripts, shell.Scripts)
		for i := range scripts {
			if scripts[i].Src != "" {
				scripts[i].Src = b.rewrite(result.Manifest, scripts[i].Src)
			}
		}
		shell.Scripts = scripts
	}

	var sb strings.Builder
	if err := render.RenderShell(&sb, shell); err != nil {
		return errors.New("B001").Wrap(err)
	}
	return b.writeFile(result, "index.html", []byte(sb.String()))
}

// rewrite maps a public asset URL to its hashed output path, leaving
// external and unknown URLs untouched.
func (b *Builder) rewrite(manifest map[string]string, href string) string {
	if hashed, ok := manifest[strings.TrimPrefix(href, "/")]; ok {
		return hashed
	}
	return href
}

// writeFile writes one output file relative to the output directory and
// accounts for it on the result.
func (b *Builder) writeFile(result *Result, rel string, data []byte) error {
	path := filepath.Join(b.config.OutputPath(), rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New("B001").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("B001").
			WithDetailf("Writing %s failed", rel).
			Wrap(err)
	}
	result.Files++
	result.Bytes += int64(len(data))
	return nil
}

// hashName inserts a short content hash before the file extension, so
// "css/site.css" becomes "css/site.3b2f1a9c.css".
func hashName(rel string, data []byte) string {
	sum := sha256.Sum256(data)
	short := hex.EncodeToString(sum[:])[:8]

	ext := filepath.Ext(rel)
	base := strings.TrimSuffix(rel, ext)
	return fmt.Sprintf("%s.%s%s", base, short, ext)
}

func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}
