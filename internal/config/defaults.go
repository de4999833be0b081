package config

const (
	defaultConfigPath         = "~/.config/quire/config.toml"
	defaultArtifactDir        = "./files"
	defaultHeader             = "./header.tex"
	defaultFooter             = "./footer.tex"
	defaultLogDir             = "~/.local/share/quire/logs"
	defaultStateDBName        = ".quire-state.db"
	defaultStoryID            = 10360716
	defaultURLTemplate        = "https://www.fanfiction.net/s/{story_id}/{chapter}/The-Metropolitan-Man"
	defaultChapters           = 13
	defaultUserAgent          = "Mozilla/5.0 (X11; Linux x86_64) quire"
	defaultRequestTimeout     = 30
	defaultMinIntervalSeconds = 5
	defaultBrowserCommand     = "chromium"
	defaultBrowserTimeout     = 60
	defaultConverterBinary    = "pandoc"
	defaultConverterFrom      = "html+smart"
	defaultConverterTo        = "latex+smart"
	defaultTopLevelDivision   = "chapter"
	defaultConverterTimeout   = 60
	defaultRendererBinary     = "pdflatex"
	defaultJobName            = "mm"
	defaultRendererPasses     = 2
	defaultInteraction        = "batchmode"
	defaultRendererTimeout    = 600
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Fetch modes.
const (
	FetchModeSeed    = "seed"
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// State backends.
const (
	StateBackendSQLite = "sqlite"
	StateBackendMemory = "memory"
)

// Freshness policies.
const (
	FreshnessHash   = "hash"
	FreshnessMtime  = "mtime"
	FreshnessExists = "exists"
)

var defaultBrowserArgs = []string{"--headless", "--disable-gpu", "--dump-dom", "{url}"}

// DefaultChecklist returns the strings a correctly normalized composite must contain.
func DefaultChecklist() []string {
	return []string{
		"bringing pistols into",
		"to explain how I got",
		"goodness of humanity",
		"he could actually",
		"--- that he",
		"bric\u2010a\u2010brac",
		"presumptions.",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArtifactDir: defaultArtifactDir,
			Header:      defaultHeader,
			Footer:      defaultFooter,
			LogDir:      defaultLogDir,
		},
		Source: Source{
			StoryID:            defaultStoryID,
			URLTemplate:        defaultURLTemplate,
			Chapters:           defaultChapters,
			FetchMode:          FetchModeSeed,
			UserAgent:          defaultUserAgent,
			RequestTimeout:     defaultRequestTimeout,
			MinIntervalSeconds: defaultMinIntervalSeconds,
		},
		Browser: Browser{
			Command:        defaultBrowserCommand,
			Args:           append([]string(nil), defaultBrowserArgs...),
			TimeoutSeconds: defaultBrowserTimeout,
		},
		Converter: Converter{
			Binary:           defaultConverterBinary,
			From:             defaultConverterFrom,
			To:               defaultConverterTo,
			TopLevelDivision: defaultTopLevelDivision,
			TimeoutSeconds:   defaultConverterTimeout,
		},
		Renderer: Renderer{
			Binary:         defaultRendererBinary,
			JobName:        defaultJobName,
			Passes:         defaultRendererPasses,
			Interaction:    defaultInteraction,
			TimeoutSeconds: defaultRendererTimeout,
		},
		Verify: Verify{
			Checklist: DefaultChecklist(),
		},
		State: State{
			Backend:   StateBackendSQLite,
			Freshness: FreshnessHash,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Verified:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
