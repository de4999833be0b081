package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"quire/internal/config"
	"quire/internal/corrections"
	"quire/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBoilerplate verifies a preamble or postamble file is readable and
// contains marker.
func CheckBoilerplate(name, path, marker string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if marker != "" && !strings.Contains(string(data), marker) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing %s)", path, marker)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes)", path, len(data))}
}

// CheckCorrections verifies a replacement correction table parses.
func CheckCorrections(path string) Result {
	const name = "Corrections"
	table, err := corrections.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d typos, %d patches)", path, len(table.Typos), len(table.TypesetPatches))}
}

// CheckSystemDeps evaluates the external binaries the configured pipeline
// runs. The browser is only required for the browser fetch mode.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "pandoc",
			Command:     cfg.Converter.Binary,
			Description: "Required for markup to typeset conversion",
		},
		{
			Name:        "pdflatex",
			Command:     cfg.Renderer.Binary,
			Description: "Required for rendering the document",
		},
	}
	requirements = append(requirements, deps.Requirement{
		Name:        "browser",
		Command:     cfg.Browser.Command,
		Description: "Required for the browser fetch mode",
		Optional:    cfg.Source.FetchMode != config.FetchModeBrowser,
	})
	return deps.CheckBinaries(requirements)
}
