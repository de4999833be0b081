// Package artifacts maps pipeline stages onto file names inside the artifact
// directory. Names sort in stage order: per-chapter files lead with the
// zero-padded ordinal and a stage letter, whole-run files with a later letter.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quire/internal/fileutil"
	"quire/internal/stage"
)

var chapterSuffix = map[stage.Name]string{
	stage.Download:   "a_orig.html",
	stage.Extract:    "b_pruned.html",
	stage.FixMarkup:  "c_fix.html",
	stage.Convert:    "d_pandoc.tex",
	stage.FixTypeset: "e_good.tex",
}

// Layout resolves artifact paths under Dir.
type Layout struct {
	Dir     string
	JobName string
}

// New returns a layout rooted at dir for the given render job name.
func New(dir, jobName string) Layout {
	return Layout{Dir: dir, JobName: jobName}
}

// ChapterFile returns the bare file name for a per-chapter stage.
func ChapterFile(ordinal int, name stage.Name) (string, error) {
	suffix, ok := chapterSuffix[name]
	if !ok {
		return "", fmt.Errorf("stage %s has no per-chapter artifact", name)
	}
	return fmt.Sprintf("%02d_%s", ordinal, suffix), nil
}

// Chapter returns the absolute path of a per-chapter artifact.
func (l Layout) Chapter(ordinal int, name stage.Name) string {
	file, err := ChapterFile(ordinal, name)
	if err != nil {
		panic(err)
	}
	return filepath.Join(l.Dir, file)
}

// Composite is the aggregated typeset source.
func (l Layout) Composite() string {
	return filepath.Join(l.Dir, "f_"+l.JobName+".tex")
}

// RenderJob is the job name handed to the renderer; its output lands at
// Document().
func (l Layout) RenderJob() string {
	return "g_" + l.JobName
}

// Document is the rendered binary document.
func (l Layout) Document() string {
	return filepath.Join(l.Dir, l.RenderJob()+".pdf")
}

// Write stores data at path atomically.
func (l Layout) Write(path string, data string) error {
	return fileutil.WriteAtomic(path, []byte(data), 0o644)
}

// Read returns the text of an artifact.
func (l Layout) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Entry describes one file found in the artifact directory.
type Entry struct {
	Name string
	Path string
	Size int64
	Raw  bool
}

// List returns every artifact file in name order. Renderer side files
// (aux, log, toc) are included because clean removes them too.
func (l Layout) List() ([]Entry, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !l.owns(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Name: e.Name(),
			Path: filepath.Join(l.Dir, e.Name()),
			Size: info.Size(),
			Raw:  strings.HasSuffix(e.Name(), "_"+chapterSuffix[stage.Download]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (l Layout) owns(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, suffix := range chapterSuffix {
		if len(name) == len(suffix)+3 && strings.HasSuffix(name, "_"+suffix) && isDigits(name[:2]) {
			return true
		}
	}
	if name == filepath.Base(l.Composite()) {
		return true
	}
	return strings.HasPrefix(name, l.RenderJob()+".")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
