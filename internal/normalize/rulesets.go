package normalize

import (
	"fmt"

	"quire/internal/corrections"
)

// Entity markers emitted by dash classification. The converter maps them to
// the typeset em-dash, en-dash, and hyphen.
const (
	EmDash = "&mdash;"
	EnDash = "&ndash;"
	Hyphen = "&hyphen;"
)

// Ellipsis is the single glyph that replaces three periods.
const Ellipsis = "…"

// DashRules classifies every plain dash, narrowest context first.
func DashRules() []Rule {
	return []Rule{
		Regex("dash-triple", `([^-])---([^-])`, "${1}"+EmDash+"${2}", 2),
		Regex("dash-double", `([^-])--([^-])`, "${1}"+EnDash+"${2}", 2),
		Regex("dash-numeric-range", `([0-9])-([0-9])`, "${1}"+EnDash+"${2}", 2),
		Regex("dash-compound", `([a-zA-Z0-9])-([a-zA-Z0-9])`, "${1}"+Hyphen+"${2}", 2),
		Regex("dash-remaining", `-`, EmDash, 2),
	}
}

// SlashRule spaces a slash joining two words of three or more letters.
func SlashRule() Rule {
	return Regex("slash-spacing", `([a-zA-Z]{3,})/([a-zA-Z]{3,})`, "${1} / ${2}", 2)
}

// EllipsisRules collapse "..." and drop a space between a word and the glyph.
func EllipsisRules() []Rule {
	return []Rule{
		Regex("ellipsis-glyph", `\.\.\.`, Ellipsis, 1),
		Regex("ellipsis-tighten", `([a-zA-Z0-9]) `+Ellipsis, "${1}"+Ellipsis, 1),
	}
}

// MarkupRules builds the rule set applied to extracted fragments: the typo
// table, dash classification, slash spacing, then ellipses.
func MarkupRules(table corrections.Table) RuleSet {
	rules := make([]Rule, 0, len(table.Typos)+8)
	for i, entry := range table.Typos {
		rules = append(rules, Literal(fmt.Sprintf("typo-%02d", i+1), entry.Old, entry.New))
	}
	rules = append(rules, DashRules()...)
	rules = append(rules, SlashRule())
	rules = append(rules, EllipsisRules()...)
	return RuleSet{Name: "markup", Rules: rules}
}

// TypesetRules builds the rule set applied to converter output: residual
// straight quotes, dash line-break protection, then one-off patches.
func TypesetRules(table corrections.Table) RuleSet {
	rules := []Rule{
		Regex("quote-open", `"([a-zA-Z0-9.,!\-?])`, "``${1}", 1),
		Regex("quote-close", `([a-zA-Z0-9.,!\-?])"`, "${1}''", 1),
		Regex("dash-nobreak-before", `([a-zA-Z0-9]) ---`, "${1}~---", 1),
		Literal("dash-nobreak-quote", `---''`, `\===''`),
	}
	for i, entry := range table.TypesetPatches {
		rules = append(rules, Literal(fmt.Sprintf("patch-%02d", i+1), entry.Old, entry.New))
	}
	return RuleSet{Name: "typeset", Rules: rules}
}
