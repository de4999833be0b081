// Package corrections loads the literal correction tables applied by the
// normalizer: the markup typo table and one-off typeset patches.
//
// A built-in table ships with the binary; a TOML file with the same shape can
// replace it without touching code.
package corrections

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed corrections.toml
var builtin []byte

// Entry replaces every occurrence of Old with New.
type Entry struct {
	Old string `toml:"old"`
	New string `toml:"new"`
}

// Table holds both correction lists in application order.
type Table struct {
	Typos          []Entry `toml:"typo"`
	TypesetPatches []Entry `toml:"typeset_patch"`
}

// Default returns the built-in table.
func Default() Table {
	table, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in corrections table: %v", err))
	}
	return table
}

// Load reads a table from path, or returns the built-in table when path is empty.
func Load(path string) (Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read corrections %s: %w", path, err)
	}
	table, err := Parse(data)
	if err != nil {
		return Table{}, fmt.Errorf("corrections %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a TOML table and rejects empty Old values.
func Parse(data []byte) (Table, error) {
	var table Table
	decoder := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := decoder.Decode(&table); err != nil {
		return Table{}, fmt.Errorf("parse corrections: %w", err)
	}
	if err := table.Validate(); err != nil {
		return Table{}, err
	}
	return table, nil
}

// Validate reports entries that could never match.
func (t Table) Validate() error {
	for i, e := range t.Typos {
		if e.Old == "" {
			return fmt.Errorf("typo[%d]: old must not be empty", i)
		}
	}
	for i, e := range t.TypesetPatches {
		if e.Old == "" {
			return fmt.Errorf("typeset_patch[%d]: old must not be empty", i)
		}
	}
	if len(t.Typos) == 0 && len(t.TypesetPatches) == 0 {
		return errors.New("corrections table is empty")
	}
	return nil
}

// Fingerprint hashes both lists in order. Changing any entry changes the
// fingerprint, which invalidates the stages that apply the table.
func (t Table) Fingerprint() string {
	h := sha256.New()
	write := func(section string, entries []Entry) {
		for _, e := range entries {
			fmt.Fprintf(h, "%s\x00%d:%s\x00%d:%s\x00", section, len(e.Old), e.Old, len(e.New), e.New)
		}
	}
	write("typo", t.Typos)
	write("typeset_patch", t.TypesetPatches)
	return hex.EncodeToString(h.Sum(nil))
}
