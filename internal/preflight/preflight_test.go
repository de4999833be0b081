package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quire/internal/config"
	"quire/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBoilerplate(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "header.tex")
	testsupport.WriteText(t, header, testsupport.Header)

	tests := []struct {
		name   string
		path   string
		marker string
		pass   bool
		detail string
	}{
		{name: "present", path: header, marker: `\begin{document}`, pass: true},
		{name: "missing marker", path: header, marker: `\end{document}`, detail: "missing"},
		{name: "missing file", path: filepath.Join(dir, "footer.tex"), marker: `\end{document}`, detail: "does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckBoilerplate("Header", tt.path, tt.marker)
			if got.Passed != tt.pass {
				t.Fatalf("passed = %v, detail %q", got.Passed, got.Detail)
			}
			if tt.detail != "" && !strings.Contains(got.Detail, tt.detail) {
				t.Fatalf("detail %q missing %q", got.Detail, tt.detail)
			}
		})
	}
}

func TestCheckCorrections(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	testsupport.WriteText(t, good, "[[typo]]\nold = 'a'\nnew = 'b'\n")
	if r := CheckCorrections(good); !r.Passed || !strings.Contains(r.Detail, "1 typos") {
		t.Fatalf("expected pass, got %+v", r)
	}
	bad := filepath.Join(dir, "bad.toml")
	testsupport.WriteText(t, bad, "[[typo]]\nold = \n")
	if r := CheckCorrections(bad); r.Passed {
		t.Fatal("expected failure for malformed table")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBoilerplate())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	results := RunAll(cfg)
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "Artifact directory,Log directory,Header,Footer" {
		t.Fatalf("checks = %s", got)
	}

	cfg.Paths.Footer = filepath.Join(testsupport.BaseDir(cfg), "absent.tex")
	if !Failed(RunAll(cfg)) {
		t.Fatal("expected failure when the footer is missing")
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 3 {
		t.Fatalf("statuses = %+v", statuses)
	}
	if !statuses[0].Available || !statuses[1].Available {
		t.Fatalf("stubbed binaries should resolve: %+v", statuses)
	}
	if !statuses[2].Optional {
		t.Fatal("browser is optional outside the browser fetch mode")
	}

	cfg.Source.FetchMode = config.FetchModeBrowser
	if CheckSystemDeps(cfg)[2].Optional {
		t.Fatal("browser is required in the browser fetch mode")
	}
}
