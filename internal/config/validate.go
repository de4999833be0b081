package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateVerify(); err != nil {
		return err
	}
	if err := c.validateState(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.Chapters < 1 {
		return errors.New("source.chapters must be at least 1")
	}
	switch c.Source.FetchMode {
	case FetchModeSeed:
	case FetchModeHTTP:
		if !strings.Contains(c.Source.URLTemplate, "{chapter}") {
			return errors.New("source.url_template must contain {chapter}")
		}
	case FetchModeBrowser:
		if !strings.Contains(c.Source.URLTemplate, "{chapter}") {
			return errors.New("source.url_template must contain {chapter}")
		}
		if c.Browser.Command == "" {
			return errors.New("browser.command must be set when source.fetch_mode is browser")
		}
	default:
		return fmt.Errorf("source.fetch_mode: unsupported value %q (want seed, http, or browser)", c.Source.FetchMode)
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Converter.Binary == "" {
		return errors.New("converter.binary must be set")
	}
	if c.Renderer.Binary == "" {
		return errors.New("renderer.binary must be set")
	}
	if c.Renderer.JobName == "" {
		return errors.New("renderer.job_name must be set")
	}
	if strings.ContainsAny(c.Renderer.JobName, `/\ `) {
		return fmt.Errorf("renderer.job_name %q must not contain path separators or spaces", c.Renderer.JobName)
	}
	if c.Renderer.Passes < 1 {
		return errors.New("renderer.passes must be at least 1")
	}
	switch c.Renderer.Interaction {
	case "batchmode", "nonstopmode":
	default:
		return fmt.Errorf("renderer.interaction: %q would prompt on errors; use batchmode or nonstopmode", c.Renderer.Interaction)
	}
	return nil
}

func (c *Config) validateVerify() error {
	if len(c.Verify.Checklist) == 0 {
		return errors.New("verify.checklist must contain at least one entry")
	}
	return nil
}

func (c *Config) validateState() error {
	switch c.State.Backend {
	case StateBackendSQLite, StateBackendMemory:
	default:
		return fmt.Errorf("state.backend: unsupported value %q (want sqlite or memory)", c.State.Backend)
	}
	switch c.State.Freshness {
	case FreshnessHash, FreshnessMtime, FreshnessExists:
	default:
		return fmt.Errorf("state.freshness: unsupported value %q (want hash, mtime, or exists)", c.State.Freshness)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
