package preflight

import (
	"quire/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every filesystem check that applies to cfg. Binary checks
// live in CheckSystemDeps.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Artifact directory", cfg.Paths.ArtifactDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Source.FetchMode == config.FetchModeSeed && cfg.Source.SeedDir != cfg.Paths.ArtifactDir {
		results = append(results, CheckDirectoryAccess("Seed directory", cfg.Source.SeedDir))
	}

	results = append(results,
		CheckBoilerplate("Header", cfg.Paths.Header, `\begin{document}`),
		CheckBoilerplate("Footer", cfg.Paths.Footer, `\end{document}`),
	)

	if cfg.Corrections.Path != "" {
		results = append(results, CheckCorrections(cfg.Corrections.Path))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
