package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quire/internal/artifacts"
	"quire/internal/config"
	"quire/internal/corrections"
	"quire/internal/fetch"
	"quire/internal/logging"
	"quire/internal/normalize"
	"quire/internal/notifications"
	"quire/internal/services/browser"
	"quire/internal/services/pandoc"
	"quire/internal/services/pdflatex"
	"quire/internal/stagecache"
	"quire/internal/verify"
)

// Manager builds the chapter task graph and runs it through the stage cache.
type Manager struct {
	cfg    *config.Config
	layout artifacts.Layout
	logger *slog.Logger

	fetcher   fetch.Fetcher
	converter pandoc.Converter
	renderer  pdflatex.Renderer
	notifier  notifications.Service
	store     stagecache.Store
	table     *corrections.Table

	markup   normalize.RuleSet
	typeset  normalize.RuleSet
	policy   stagecache.Policy
	verifier *verify.Verifier
}

// ManagerOption overrides a collaborator, mainly for tests.
type ManagerOption func(*Manager)

// WithFetcher replaces the configured page fetcher.
func WithFetcher(f fetch.Fetcher) ManagerOption {
	return func(m *Manager) { m.fetcher = f }
}

// WithConverter replaces the pandoc client.
func WithConverter(c pandoc.Converter) ManagerOption {
	return func(m *Manager) { m.converter = c }
}

// WithRenderer replaces the pdflatex client.
func WithRenderer(r pdflatex.Renderer) ManagerOption {
	return func(m *Manager) { m.renderer = r }
}

// WithNotifier replaces the notification service.
func WithNotifier(n notifications.Service) ManagerOption {
	return func(m *Manager) { m.notifier = n }
}

// WithStore replaces the stage cache state store.
func WithStore(s stagecache.Store) ManagerOption {
	return func(m *Manager) { m.store = s }
}

// WithCorrections replaces the correction table.
func WithCorrections(t corrections.Table) ManagerOption {
	return func(m *Manager) { m.table = &t }
}

// NewManager wires the pipeline from cfg. Collaborators not supplied through
// options are constructed from configuration.
func NewManager(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow manager requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		layout: artifacts.New(cfg.Paths.ArtifactDir, cfg.Renderer.JobName),
		logger: logging.NewComponentLogger(logger, "workflow"),
	}
	for _, opt := range opts {
		opt(m)
	}

	policy, err := stagecache.ParsePolicy(cfg.State.Freshness)
	if err != nil {
		return nil, err
	}
	m.policy = policy

	if m.table == nil {
		table, err := loadCorrections(cfg)
		if err != nil {
			return nil, err
		}
		m.table = &table
	}
	m.markup = normalize.MarkupRules(*m.table)
	m.typeset = normalize.TypesetRules(*m.table)

	if m.fetcher == nil {
		if m.fetcher, err = newFetcher(cfg); err != nil {
			return nil, err
		}
	}
	if m.converter == nil {
		if m.converter, err = pandoc.New(cfg.Converter.Binary, cfg.Converter.TimeoutSeconds); err != nil {
			return nil, err
		}
	}
	if m.renderer == nil {
		if m.renderer, err = pdflatex.New(cfg.Renderer.Binary, cfg.Renderer.Passes, cfg.Renderer.Interaction, cfg.Renderer.TimeoutSeconds); err != nil {
			return nil, err
		}
	}
	if m.notifier == nil {
		m.notifier = notifications.NewService(cfg)
	}
	if m.store == nil {
		if m.store, err = openStore(ctx, cfg); err != nil {
			return nil, err
		}
	}

	m.verifier = &verify.Verifier{
		Checklist: cfg.Verify.Checklist,
		Notifier:  m.notifier,
		Logger:    m.logger,
	}
	return m, nil
}

// Close releases the state store.
func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Layout exposes the artifact naming used by the manager.
func (m *Manager) Layout() artifacts.Layout {
	return m.layout
}

func loadCorrections(cfg *config.Config) (corrections.Table, error) {
	if cfg.Corrections.Path == "" {
		return corrections.Default(), nil
	}
	return corrections.Load(cfg.Corrections.Path)
}

func newFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	interval := time.Duration(cfg.Source.MinIntervalSeconds) * time.Second
	switch cfg.Source.FetchMode {
	case config.FetchModeSeed:
		return fetch.SeedFetcher{Dir: cfg.Source.SeedDir}, nil
	case config.FetchModeHTTP:
		timeout := time.Duration(cfg.Source.RequestTimeout) * time.Second
		return fetch.NewPaced(fetch.NewHTTPFetcher(cfg.Source.UserAgent, timeout), interval), nil
	case config.FetchModeBrowser:
		client, err := browser.New(cfg.Browser.Command, cfg.Browser.Args, cfg.Browser.TimeoutSeconds)
		if err != nil {
			return nil, err
		}
		return fetch.NewPaced(fetch.BrowserFetcher{Browser: client}, interval), nil
	default:
		return nil, fmt.Errorf("unsupported fetch mode %q", cfg.Source.FetchMode)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (stagecache.Store, error) {
	switch cfg.State.Backend {
	case config.StateBackendMemory:
		return stagecache.NewMemoryStore(), nil
	case config.StateBackendSQLite, "":
		return stagecache.OpenSQLite(ctx, cfg.Paths.StateDB)
	default:
		return nil, fmt.Errorf("unsupported state backend %q", cfg.State.Backend)
	}
}
