package cilog

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
)

// UnclassifiedCategory is assigned to lines matched by a rule that declares
// no category of its own, typically the generic error catch-all at the end
// of the table.
const UnclassifiedCategory = "unclassified"

// Rule pairs a failure category with the pattern that detects it. Rules are
// evaluated in table order and the first match wins, so narrow signatures
// must appear before broad ones.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
}

// RuleSet is an ordered failure-signature table.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a rule set, normalizing empty categories to
// UnclassifiedCategory.
func NewRuleSet(rules ...Rule) *RuleSet {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		if r.Category == "" {
			r.Category = UnclassifiedCategory
		}
		normalized[i] = r
	}
	return &RuleSet{rules: normalized}
}

// Rules returns the rule table in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// Match returns the first rule whose pattern matches the line.
func (rs *RuleSet) Match(line string) (Rule, bool) {
	for _, r := range rs.rules {
		if r.Pattern.MatchString(line) {
			return r, true
		}
	}
	return Rule{}, false
}

// DefaultRules returns the built-in signature table. Ordering matters: the
// retry and timeout signatures are more specific than the trailing generic
// error catch-all, which only exists so that unexpected failures still show
// up in the report instead of vanishing.
func DefaultRules() *RuleSet {
	return NewRuleSet(
		Rule{Category: "timeout", Pattern: regexp.MustCompile(`(?i)timed?[ -]?out|deadline exceeded`)},
		Rule{Category: "test_failure", Pattern: regexp.MustCompile(`Tests:\s+\d+ failed,`)},
		Rule{Category: "final_attempt_failure", Pattern: regexp.MustCompile(`Final attempt failed`)},
		Rule{Category: "attempt_failure", Pattern: regexp.MustCompile(`Attempt \d+ failed`)},
		Rule{Category: "assertion", Pattern: regexp.MustCompile(`(?i)assertion(?: error)? failed|--- FAIL:|panic: `)},
		Rule{Category: "network", Pattern: regexp.MustCompile(`(?i)connection (?:refused|reset)|network is unreachable|no such host|TLS handshake`)},
		Rule{Category: "oom", Pattern: regexp.MustCompile(`(?i)out of memory|OOMKilled|cannot allocate memory`)},
		Rule{Pattern: regexp.MustCompile(`##\[error\]|ERROR:`)},
	)
}

// ruleFile is the YAML schema for a user-supplied rule table.
type ruleFile struct {
	Version int        `yaml:"version"`
	Rules   []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// LoadRules reads an ordered rule table from a YAML file. The file replaces
// the built-in table entirely; callers wanting the defaults plus extras
// should restate the defaults in the file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if file.Version != 0 && file.Version != 1 {
		return nil, fmt.Errorf("unsupported rules file version %d in %s", file.Version, path)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		if spec.Pattern == "" {
			return nil, fmt.Errorf("rule %d in %s has an empty pattern", i+1, path)
		}
		pattern, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d in %s has an invalid pattern: %w", i+1, path, err)
		}
		rules = append(rules, Rule{Category: spec.Category, Pattern: pattern})
	}
	return NewRuleSet(rules...), nil
}
