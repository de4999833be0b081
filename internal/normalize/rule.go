package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Rule is one ordered replacement. Exactly one of Pattern or Literal is set.
// Passes is how many times the rule runs back to back; regexp replacement
// resumes after each match, so abutting matches need a second pass.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Literal     string
	Replacement string
	Passes      int
}

// Regex builds a pattern rule. Replacement uses regexp.Expand syntax (${1}).
func Regex(name, pattern, replacement string, passes int) Rule {
	return Rule{
		Name:        name,
		Pattern:     regexp.MustCompile(pattern),
		Replacement: replacement,
		Passes:      passes,
	}
}

// Literal builds an exact substring rule applied once.
func Literal(name, old, replacement string) Rule {
	return Rule{Name: name, Literal: old, Replacement: replacement, Passes: 1}
}

// Apply runs the rule Passes times (at least once).
func (r Rule) Apply(s string) string {
	passes := r.Passes
	if passes < 1 {
		passes = 1
	}
	for range passes {
		if r.Pattern != nil {
			s = r.Pattern.ReplaceAllString(s, r.Replacement)
		} else if r.Literal != "" {
			s = strings.ReplaceAll(s, r.Literal, r.Replacement)
		}
	}
	return s
}

func (r Rule) source() string {
	if r.Pattern != nil {
		return "re:" + r.Pattern.String()
	}
	return "lit:" + r.Literal
}

// RuleSet is an ordered, named list of rules. Order is significant.
type RuleSet struct {
	Name  string
	Rules []Rule
}

// Apply runs every rule in order.
func (rs RuleSet) Apply(s string) string {
	for _, rule := range rs.Rules {
		s = rule.Apply(s)
	}
	return s
}

// Trace runs every rule in order and reports the names of rules that changed
// the text.
func (rs RuleSet) Trace(s string) (string, []string) {
	var changed []string
	for _, rule := range rs.Rules {
		next := rule.Apply(s)
		if next != s {
			changed = append(changed, rule.Name)
		}
		s = next
	}
	return s, changed
}

// Fingerprint identifies the rule set contents. Stages that apply the set use
// it as their signature so editing a rule invalidates cached output.
func (rs RuleSet) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00", rs.Name)
	for _, rule := range rs.Rules {
		src := rule.source()
		fmt.Fprintf(h, "%d:%s\x00%d:%s\x00%d:%s\x00%d\x00",
			len(rule.Name), rule.Name, len(src), src, len(rule.Replacement), rule.Replacement, rule.Passes)
	}
	return hex.EncodeToString(h.Sum(nil))
}
