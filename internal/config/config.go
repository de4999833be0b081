package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains artifact and boilerplate locations.
type Paths struct {
	ArtifactDir string `toml:"artifact_dir"`
	Header      string `toml:"header"`
	Footer      string `toml:"footer"`
	LogDir      string `toml:"log_dir"`
	StateDB     string `toml:"state_db"`
}

// Source describes where raw chapter pages come from.
type Source struct {
	StoryID            int    `toml:"story_id"`
	URLTemplate        string `toml:"url_template"`
	Chapters           int    `toml:"chapters"`
	FetchMode          string `toml:"fetch_mode"`
	SeedDir            string `toml:"seed_dir"`
	UserAgent          string `toml:"user_agent"`
	RequestTimeout     int    `toml:"request_timeout"`
	MinIntervalSeconds int    `toml:"min_interval_seconds"`
}

// Browser configures the headless browser used by the browser fetch mode.
// Args may reference {url}, which is replaced with the chapter URL.
type Browser struct {
	Command        string   `toml:"command"`
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Converter configures the markup to typeset converter.
type Converter struct {
	Binary           string `toml:"binary"`
	From             string `toml:"from"`
	To               string `toml:"to"`
	TopLevelDivision string `toml:"top_level_division"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// Renderer configures the typesetting engine.
type Renderer struct {
	Binary         string `toml:"binary"`
	JobName        string `toml:"job_name"`
	Passes         int    `toml:"passes"`
	Interaction    string `toml:"interaction"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Corrections points at an optional replacement correction table.
type Corrections struct {
	Path string `toml:"path"`
}

// Verify holds the strings the composite document must contain.
type Verify struct {
	Checklist []string `toml:"checklist"`
}

// State selects the stage cache backend and freshness policy.
type State struct {
	Backend   string `toml:"backend"`
	Freshness string `toml:"freshness"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Verified       bool   `toml:"verified"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for quire.
//
// Configuration sections by subsystem:
//   - Paths: artifact directory, boilerplate, logs, state database
//   - Source: chapter count, locator template, fetch mode and pacing
//   - Browser: headless browser command for the browser fetch mode
//   - Converter: markup to typeset conversion tool
//   - Renderer: typesetting engine, job name, pass count
//   - Corrections: optional correction table override
//   - Verify: verification checklist
//   - State: stage cache backend and freshness policy
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Source        Source        `toml:"source"`
	Browser       Browser       `toml:"browser"`
	Converter     Converter     `toml:"converter"`
	Renderer      Renderer      `toml:"renderer"`
	Corrections   Corrections   `toml:"corrections"`
	Verify        Verify        `toml:"verify"`
	State         State         `toml:"state"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("quire.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the artifact and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArtifactDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.StateDB); c.State.Backend == StateBackendSQLite && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory %q: %w", dir, err)
		}
	}
	return nil
}

// ChapterURL renders the remote locator for a 1-based chapter ordinal.
func (c *Config) ChapterURL(ordinal int) string {
	replacer := strings.NewReplacer(
		"{story_id}", strconv.Itoa(c.Source.StoryID),
		"{chapter}", strconv.Itoa(ordinal),
	)
	return replacer.Replace(c.Source.URLTemplate)
}

// ChapterOrdinals lists 1..Chapters.
func (c *Config) ChapterOrdinals() []int {
	out := make([]int, 0, c.Source.Chapters)
	for i := 1; i <= c.Source.Chapters; i++ {
		out = append(out, i)
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
