package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"quire/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("QUIRE_NTFY_TOPIC", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "quire", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if !filepath.IsAbs(cfg.Paths.ArtifactDir) || filepath.Base(cfg.Paths.ArtifactDir) != "files" {
		t.Fatalf("unexpected artifact dir: %q", cfg.Paths.ArtifactDir)
	}
	if cfg.Paths.StateDB != filepath.Join(cfg.Paths.ArtifactDir, ".quire-state.db") {
		t.Fatalf("unexpected state db: %q", cfg.Paths.StateDB)
	}
	if cfg.Source.SeedDir != cfg.Paths.ArtifactDir {
		t.Fatalf("seed dir should default to artifact dir, got %q", cfg.Source.SeedDir)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "quire", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Source.Chapters != 13 {
		t.Fatalf("chapters = %d, want 13", cfg.Source.Chapters)
	}
	if cfg.Renderer.Passes != 2 || cfg.Renderer.JobName != "mm" {
		t.Fatalf("unexpected renderer defaults: %+v", cfg.Renderer)
	}
	if len(cfg.Verify.Checklist) != 7 {
		t.Fatalf("expected seven checklist entries, got %d", len(cfg.Verify.Checklist))
	}
	if cfg.State.Backend != config.StateBackendSQLite || cfg.State.Freshness != config.FreshnessHash {
		t.Fatalf("unexpected state defaults: %+v", cfg.State)
	}
}

func TestLoadProjectFileFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)
	content := "[renderer]\njob_name = \"book\"\npasses = 3\n"
	if err := os.WriteFile(filepath.Join(project, "quire.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "quire.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Renderer.JobName != "book" || cfg.Renderer.Passes != 3 {
		t.Fatalf("project values not applied: %+v", cfg.Renderer)
	}
}

func TestLoadCustomPathExpandsTilde(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "quire.toml")
	content := `
[paths]
artifact_dir = "~/book/files"
header = "~/book/header.tex"

[source]
fetch_mode = "HTTP"
chapters = 2

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("~/quire.toml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ArtifactDir != filepath.Join(tempHome, "book", "files") {
		t.Fatalf("unexpected artifact dir: %q", cfg.Paths.ArtifactDir)
	}
	if cfg.Paths.Header != filepath.Join(tempHome, "book", "header.tex") {
		t.Fatalf("unexpected header: %q", cfg.Paths.Header)
	}
	if cfg.Source.FetchMode != config.FetchModeHTTP {
		t.Fatalf("fetch mode = %q", cfg.Source.FetchMode)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if got := cfg.ChapterOrdinals(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("ordinals = %v", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quire.toml")
	if err := os.WriteFile(path, []byte("[renderer]\njobname = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNtfyTopicFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QUIRE_NTFY_TOPIC", " https://ntfy.sh/quire ")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/quire" {
		t.Fatalf("topic = %q", cfg.Notifications.NtfyTopic)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero chapters", func(c *config.Config) { c.Source.Chapters = 0 }, "source.chapters"},
		{"fetch mode", func(c *config.Config) { c.Source.FetchMode = "ftp" }, "source.fetch_mode"},
		{"template", func(c *config.Config) {
			c.Source.FetchMode = config.FetchModeHTTP
			c.Source.URLTemplate = "https://example.com/"
		}, "source.url_template"},
		{"browser command", func(c *config.Config) {
			c.Source.FetchMode = config.FetchModeBrowser
			c.Browser.Command = ""
		}, "browser.command"},
		{"converter", func(c *config.Config) { c.Converter.Binary = "" }, "converter.binary"},
		{"renderer", func(c *config.Config) { c.Renderer.Binary = "" }, "renderer.binary"},
		{"job name", func(c *config.Config) { c.Renderer.JobName = "" }, "renderer.job_name"},
		{"job name path", func(c *config.Config) { c.Renderer.JobName = "a/b" }, "renderer.job_name"},
		{"passes", func(c *config.Config) { c.Renderer.Passes = 0 }, "renderer.passes"},
		{"interaction", func(c *config.Config) { c.Renderer.Interaction = "loud" }, "renderer.interaction"},
		{"interactive stop mode", func(c *config.Config) { c.Renderer.Interaction = "errorstopmode" }, "renderer.interaction"},
		{"scroll mode", func(c *config.Config) { c.Renderer.Interaction = "scrollmode" }, "renderer.interaction"},
		{"checklist", func(c *config.Config) { c.Verify.Checklist = nil }, "verify.checklist"},
		{"backend", func(c *config.Config) { c.State.Backend = "redis" }, "state.backend"},
		{"freshness", func(c *config.Config) { c.State.Freshness = "vibes" }, "state.freshness"},
		{"level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateAcceptsNonInteractiveModes(t *testing.T) {
	for _, mode := range []string{"batchmode", "nonstopmode"} {
		cfg := config.Default()
		cfg.Renderer.Interaction = mode
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%s rejected: %v", mode, err)
		}
	}
}

func TestChapterURL(t *testing.T) {
	cfg := config.Default()
	got := cfg.ChapterURL(7)
	want := "https://www.fanfiction.net/s/10360716/7/The-Metropolitan-Man"
	if got != want {
		t.Fatalf("ChapterURL(7) = %q, want %q", got, want)
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Source.Chapters != 13 || cfg.Renderer.Passes != 2 {
		t.Fatalf("sample diverges from defaults: %+v %+v", cfg.Source, cfg.Renderer)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("Load sample: exists=%v err=%v", exists, err)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), "job_name = 'mm'") && !strings.Contains(string(data), `job_name = "mm"`) {
		t.Fatalf("encoded config missing job name:\n%s", data)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ArtifactDir = filepath.Join(base, "files")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDB = filepath.Join(base, "state", "quire.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{"files", "logs", "state"} {
		if info, err := os.Stat(filepath.Join(base, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", dir, err)
		}
	}
}
