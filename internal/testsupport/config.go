package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"quire/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// Header and Footer are the boilerplate written by WithBoilerplate.
const (
	Header = "\\documentclass{book}\n\\usepackage{extdash}\n\\begin{document}\n\\tableofcontents\n"
	Footer = "\\end{document}\n"
)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ArtifactDir = filepath.Join(base, "files")
	cfgVal.Paths.Header = filepath.Join(base, "header.tex")
	cfgVal.Paths.Footer = filepath.Join(base, "footer.tex")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDB = filepath.Join(base, "files", ".quire-state.db")
	cfgVal.Source.SeedDir = filepath.Join(base, "files")
	cfgVal.Source.MinIntervalSeconds = 0
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithChapters overrides the chapter count.
func WithChapters(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.Chapters = n
	}
}

// WithState selects the stage cache backend and freshness policy.
func WithState(backend, freshness string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.State.Backend = backend
		b.cfg.State.Freshness = freshness
	}
}

// WithBoilerplate writes Header and Footer to the configured paths.
func WithBoilerplate() ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, b.cfg.Paths.Header, Header)
		WriteText(b.t, b.cfg.Paths.Footer, Footer)
	}
}

// WithSeedPages writes a sample page for every configured chapter into the
// artifact directory.
func WithSeedPages() ConfigOption {
	return func(b *configBuilder) {
		SeedChapters(b.t, b.cfg.Source.SeedDir, b.cfg.Source.Chapters)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the converter and renderer
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Converter.Binary, b.cfg.Renderer.Binary}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ArtifactDir)
}
