package stagecache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"quire/internal/fileutil"
)

// Policy decides when a task's existing output can be reused.
type Policy string

const (
	// PolicyExists reuses any output that is present.
	PolicyExists Policy = "exists"
	// PolicyMtime reuses output that is not older than any input.
	PolicyMtime Policy = "mtime"
	// PolicyHash reuses output when the recorded signature, input hashes and
	// output hash all match.
	PolicyHash Policy = "hash"
)

// ParsePolicy resolves a configured policy name.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case PolicyExists, PolicyMtime, PolicyHash:
		return p, nil
	case "":
		return PolicyHash, nil
	default:
		return "", fmt.Errorf("unknown freshness policy %q", value)
	}
}

// Verdict explains a freshness decision.
type Verdict struct {
	Fresh  bool
	Reason string
}

func stale(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// Checker evaluates freshness against the filesystem and a store.
type Checker struct {
	Policy Policy
	Store  Store
}

// Check reports whether t can be skipped. Tasks without an output always run;
// tasks without inputs are fresh whenever their output exists, unless the hash
// policy holds a record of them made under a different signature. A source
// output with no record (a seeded file) is fresh.
func (c Checker) Check(ctx context.Context, t Task) (Verdict, error) {
	if t.Output == "" {
		return stale("no output declared"), nil
	}
	outInfo, err := os.Stat(t.Output)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stale("output missing"), nil
		}
		return Verdict{}, fmt.Errorf("stat output %s: %w", t.Output, err)
	}
	if len(t.Inputs) == 0 {
		return c.checkSource(ctx, t)
	}

	switch c.Policy {
	case PolicyExists:
		return Verdict{Fresh: true, Reason: "output present"}, nil
	case PolicyMtime:
		for _, in := range t.Inputs {
			info, err := os.Stat(in)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return stale("input %s missing", in), nil
				}
				return Verdict{}, fmt.Errorf("stat input %s: %w", in, err)
			}
			if info.ModTime().After(outInfo.ModTime()) {
				return stale("input %s is newer than output", in), nil
			}
		}
		return Verdict{Fresh: true, Reason: "output newer than inputs"}, nil
	case PolicyHash, "":
		return c.checkHashes(ctx, t)
	default:
		return Verdict{}, fmt.Errorf("unknown freshness policy %q", c.Policy)
	}
}

func (c Checker) checkSource(ctx context.Context, t Task) (Verdict, error) {
	if (c.Policy == PolicyHash || c.Policy == "") && c.Store != nil {
		rec, err := c.Store.Lookup(ctx, t.Name)
		if err != nil {
			return Verdict{}, err
		}
		if rec != nil && rec.Signature != t.Signature {
			return stale("signature changed"), nil
		}
	}
	return Verdict{Fresh: true, Reason: "source present"}, nil
}

func (c Checker) checkHashes(ctx context.Context, t Task) (Verdict, error) {
	if c.Store == nil {
		return stale("no state store"), nil
	}
	rec, err := c.Store.Lookup(ctx, t.Name)
	if err != nil {
		return Verdict{}, err
	}
	if rec == nil {
		return stale("no record of a previous run"), nil
	}
	if rec.Signature != t.Signature {
		return stale("signature changed"), nil
	}
	current, err := HashInputs(t.Inputs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stale("input missing"), nil
		}
		return Verdict{}, err
	}
	if len(current) != len(rec.InputHashes) {
		return stale("input set changed"), nil
	}
	for path, hash := range current {
		if rec.InputHashes[path] != hash {
			return stale("input %s changed", path), nil
		}
	}
	outHash, err := fileutil.HashFile(t.Output)
	if err != nil {
		return Verdict{}, fmt.Errorf("hash output %s: %w", t.Output, err)
	}
	if outHash != rec.OutputHash {
		return stale("output modified since last run"), nil
	}
	return Verdict{Fresh: true, Reason: "hashes match"}, nil
}

// HashInputs returns the SHA-256 of every input file keyed by path.
func HashInputs(paths []string) (map[string]string, error) {
	hashes := make(map[string]string, len(paths))
	for _, p := range paths {
		h, err := fileutil.HashFile(p)
		if err != nil {
			return nil, fmt.Errorf("hash input %s: %w", p, err)
		}
		hashes[p] = h
	}
	return hashes, nil
}
