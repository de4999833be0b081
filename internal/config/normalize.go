package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	c.normalizeTools()
	if err := c.normalizeCorrections(); err != nil {
		return err
	}
	c.normalizeVerify()
	c.normalizeState()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ArtifactDir) == "" {
		c.Paths.ArtifactDir = defaultArtifactDir
	}
	if c.Paths.ArtifactDir, err = expandPath(c.Paths.ArtifactDir); err != nil {
		return fmt.Errorf("paths.artifact_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.Header) == "" {
		c.Paths.Header = defaultHeader
	}
	if c.Paths.Header, err = expandPath(c.Paths.Header); err != nil {
		return fmt.Errorf("paths.header: %w", err)
	}
	if strings.TrimSpace(c.Paths.Footer) == "" {
		c.Paths.Footer = defaultFooter
	}
	if c.Paths.Footer, err = expandPath(c.Paths.Footer); err != nil {
		return fmt.Errorf("paths.footer: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDB) == "" {
		c.Paths.StateDB = filepath.Join(c.Paths.ArtifactDir, defaultStateDBName)
	}
	if c.Paths.StateDB, err = expandPath(c.Paths.StateDB); err != nil {
		return fmt.Errorf("paths.state_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() error {
	c.Source.URLTemplate = strings.TrimSpace(c.Source.URLTemplate)
	if c.Source.URLTemplate == "" {
		c.Source.URLTemplate = defaultURLTemplate
	}
	c.Source.FetchMode = strings.ToLower(strings.TrimSpace(c.Source.FetchMode))
	if c.Source.FetchMode == "" {
		c.Source.FetchMode = FetchModeSeed
	}
	if strings.TrimSpace(c.Source.SeedDir) == "" {
		c.Source.SeedDir = c.Paths.ArtifactDir
	}
	var err error
	if c.Source.SeedDir, err = expandPath(c.Source.SeedDir); err != nil {
		return fmt.Errorf("source.seed_dir: %w", err)
	}
	c.Source.UserAgent = strings.TrimSpace(c.Source.UserAgent)
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = defaultUserAgent
	}
	if c.Source.RequestTimeout <= 0 {
		c.Source.RequestTimeout = defaultRequestTimeout
	}
	if c.Source.MinIntervalSeconds < 0 {
		c.Source.MinIntervalSeconds = 0
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Browser.Command = strings.TrimSpace(c.Browser.Command)
	if len(c.Browser.Args) == 0 {
		c.Browser.Args = append([]string(nil), defaultBrowserArgs...)
	}
	if c.Browser.TimeoutSeconds <= 0 {
		c.Browser.TimeoutSeconds = defaultBrowserTimeout
	}

	c.Converter.Binary = strings.TrimSpace(c.Converter.Binary)
	c.Converter.From = strings.TrimSpace(c.Converter.From)
	if c.Converter.From == "" {
		c.Converter.From = defaultConverterFrom
	}
	c.Converter.To = strings.TrimSpace(c.Converter.To)
	if c.Converter.To == "" {
		c.Converter.To = defaultConverterTo
	}
	c.Converter.TopLevelDivision = strings.TrimSpace(c.Converter.TopLevelDivision)
	if c.Converter.TimeoutSeconds <= 0 {
		c.Converter.TimeoutSeconds = defaultConverterTimeout
	}

	c.Renderer.Binary = strings.TrimSpace(c.Renderer.Binary)
	c.Renderer.JobName = strings.TrimSpace(c.Renderer.JobName)
	c.Renderer.Interaction = strings.ToLower(strings.TrimSpace(c.Renderer.Interaction))
	if c.Renderer.Interaction == "" {
		c.Renderer.Interaction = defaultInteraction
	}
	if c.Renderer.TimeoutSeconds <= 0 {
		c.Renderer.TimeoutSeconds = defaultRendererTimeout
	}
}

func (c *Config) normalizeCorrections() error {
	path := strings.TrimSpace(c.Corrections.Path)
	if path == "" {
		c.Corrections.Path = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("corrections.path: %w", err)
	}
	c.Corrections.Path = expanded
	return nil
}

func (c *Config) normalizeVerify() {
	items := make([]string, 0, len(c.Verify.Checklist))
	for _, item := range c.Verify.Checklist {
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	c.Verify.Checklist = items
}

func (c *Config) normalizeState() {
	c.State.Backend = strings.ToLower(strings.TrimSpace(c.State.Backend))
	if c.State.Backend == "" {
		c.State.Backend = StateBackendSQLite
	}
	c.State.Freshness = strings.ToLower(strings.TrimSpace(c.State.Freshness))
	if c.State.Freshness == "" {
		c.State.Freshness = FreshnessHash
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("QUIRE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
