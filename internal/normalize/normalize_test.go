package normalize_test

import (
	"strings"
	"testing"

	"quire/internal/corrections"
	"quire/internal/normalize"
)

func applyAll(rules []normalize.Rule, s string) string {
	return normalize.RuleSet{Rules: rules}.Apply(s)
}

func TestDashClassification(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bric-a-brac", "bric&hyphen;a&hyphen;brac"},
		{"pages 10-20", "pages 10&ndash;20"},
		{"Uranium U-238", "Uranium U&hyphen;238"},
		{"I thought - no", "I thought &mdash; no"},
		{"well--maybe", "well&ndash;maybe"},
		{"wait---what", "wait&mdash;what"},
		{"a-b-c-d", "a&hyphen;b&hyphen;c&hyphen;d"},
		{"1-2-3-4", "1&ndash;2&ndash;3&ndash;4"},
		{"x---y---z", "x&mdash;y&mdash;z"},
		{"---", "&mdash;&mdash;&mdash;"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := applyAll(normalize.DashRules(), tt.in); got != tt.want {
				t.Fatalf("dash(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDashSinglePassLeavesAbuttingMatches(t *testing.T) {
	rules := normalize.DashRules()
	for i := range rules {
		rules[i].Passes = 1
	}
	if got := applyAll(rules, "bric-a-brac"); got != "bric&hyphen;a&mdash;brac" {
		t.Fatalf("single pass = %q", got)
	}
}

func TestDashConvergesAfterTwoPasses(t *testing.T) {
	inputs := []string{
		"bric-a-brac and 1-2-3-4 with x---y---z -- or -",
		"a-b-c-d-e-f-g",
		"--a--b--",
		"9-9-9 and well-to-do---right?",
	}
	for _, in := range inputs {
		once := applyAll(normalize.DashRules(), in)
		twice := applyAll(normalize.DashRules(), once)
		if once != twice {
			t.Fatalf("dash rules not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.Contains(once, "-") {
			t.Fatalf("plain dash survived in %q", once)
		}
	}
}

func TestSlashSpacing(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"reviews/comments/favorites/recommendations", "reviews / comments / favorites / recommendations"},
		{"him/her/them", "him / her / them"},
		{"a/bb/ccc", "a/bb/ccc"},
		{"and/or", "and/or"},
		{"http://x.io/abc", "http://x.io/abc"},
	}
	for _, tt := range tests {
		if got := normalize.SlashRule().Apply(tt.in); got != tt.want {
			t.Fatalf("slash(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlashSinglePass(t *testing.T) {
	rule := normalize.SlashRule()
	rule.Passes = 1
	if got := rule.Apply("reviews/comments/favorites/recommendations"); got != "reviews / comments/favorites / recommendations" {
		t.Fatalf("single pass = %q", got)
	}
}

func TestEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"he said...", "he said…"},
		{"he said ...", "he said…"},
		{"wait ... what", "wait… what"},
		{"... start", "… start"},
		{"so . . . no", "so . . . no"},
	}
	for _, tt := range tests {
		if got := applyAll(normalize.EllipsisRules(), tt.in); got != tt.want {
			t.Fatalf("ellipsis(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkupRulesOrder(t *testing.T) {
	rs := normalize.MarkupRules(corrections.Default())
	in := `<div><h1>Chapter</h1><p>He was as a mathematician" and well-known... reviews/comments - then spaceship inside.. now</p>` + "\n</div>\n"
	got := rs.Apply(in)

	for _, want := range []string{
		`as a mathematician."`,
		"well&hyphen;known…",
		"reviews / comments",
		"comments &mdash; then",
		"spaceship inside. now",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if strings.Count(got, "\n") != strings.Count(in, "\n") {
		t.Fatalf("markup rules changed line structure: %q", got)
	}
}

func TestMarkupTypoBeforeDashes(t *testing.T) {
	table := corrections.Table{Typos: []corrections.Entry{{Old: "foo-bar", New: "foo - bar"}}}
	got := normalize.MarkupRules(table).Apply("x foo-bar y")
	if got != "x foo &mdash; bar y" {
		t.Fatalf("got %q", got)
	}
}

func TestTypesetRules(t *testing.T) {
	rs := normalize.TypesetRules(corrections.Default())
	tests := []struct {
		in   string
		want string
	}{
		{`"Hello," he said.`, "``Hello,'' he said."},
		{"he said ---''", `he said~\===''`},
		{"a word --- another", "a word~--- another"},
		{"bringing pistols into your home---''", `bringing pistols into your \\ home\===''`},
		{`x "? y`, "x ``? y"},
	}
	for _, tt := range tests {
		if got := rs.Apply(tt.in); got != tt.want {
			t.Fatalf("typeset(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFingerprintTracksRules(t *testing.T) {
	base := normalize.MarkupRules(corrections.Default())
	if base.Fingerprint() != normalize.MarkupRules(corrections.Default()).Fingerprint() {
		t.Fatal("fingerprint must be deterministic")
	}
	edited := corrections.Default()
	edited.Typos[0].New = "spaceship inside!"
	if base.Fingerprint() == normalize.MarkupRules(edited).Fingerprint() {
		t.Fatal("editing the typo table must change the fingerprint")
	}
	if base.Fingerprint() == normalize.TypesetRules(corrections.Default()).Fingerprint() {
		t.Fatal("markup and typeset fingerprints must differ")
	}
}

func TestTrace(t *testing.T) {
	rs := normalize.RuleSet{Name: "t", Rules: []normalize.Rule{
		normalize.Literal("a", "cat", "dog"),
		normalize.Literal("b", "bird", "fish"),
	}}
	out, changed := rs.Trace("the cat")
	if out != "the dog" || len(changed) != 1 || changed[0] != "a" {
		t.Fatalf("Trace = %q %v", out, changed)
	}
}
