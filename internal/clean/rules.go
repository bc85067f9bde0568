package clean

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Rule rewrites every cell containing Match with Replace.
type Rule struct {
	Match   string `yaml:"match" json:"match" validate:"required"`
	Replace string `yaml:"replace" json:"replace"`
}

// RuleSet is an ordered list of keyword rules. Order is part of the result:
// each rule scans the column as left by the rules before it.
//
// In YAML a RuleSet is a mapping of keyword to replacement; key order in the
// file is the rule order.
type RuleSet []Rule

// UnmarshalYAML decodes a mapping node, keeping key order.
func (rs *RuleSet) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rules must be a mapping of keyword to replacement", n.Line)
	}
	seen := make(map[string]int, len(n.Content)/2)
	out := make(RuleSet, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: rule keyword and replacement must be scalars", k.Line)
		}
		if prev, dup := seen[k.Value]; dup {
			return fmt.Errorf("line %d: duplicate keyword '%s' (first on line %d)", k.Line, k.Value, prev)
		}
		seen[k.Value] = k.Line
		out = append(out, Rule{Match: k.Value, Replace: v.Value})
	}
	*rs = out
	return nil
}

// MarshalYAML encodes the rules as an ordered mapping.
func (rs RuleSet) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, r := range rs {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Match},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Replace},
		)
	}
	return m, nil
}

// Labels returns the distinct replacement values in rule order.
func (rs RuleSet) Labels() []string {
	seen := make(map[string]struct{}, len(rs))
	var out []string
	for _, r := range rs {
		if _, ok := seen[r.Replace]; ok {
			continue
		}
		seen[r.Replace] = struct{}{}
		out = append(out, r.Replace)
	}
	return out
}

// ConflictKind classifies a rule interaction found by Conflicts.
type ConflictKind string

const (
	// Overridden: the rule's replacement is matched and rewritten by a later rule.
	Overridden ConflictKind = "overridden"
	// Unreachable: an earlier rule's keyword is inside this rule's keyword, so
	// every cell this rule could match has already been rewritten.
	Unreachable ConflictKind = "unreachable"
)

// Conflict names a rule (by position) and the rule that interferes with it.
type Conflict struct {
	Kind ConflictKind `json:"kind"`
	Rule int          `json:"rule"`
	By   int          `json:"by"`
	Self Rule         `json:"self"`
	With Rule         `json:"with"`
}

func (c Conflict) String() string {
	switch c.Kind {
	case Overridden:
		return fmt.Sprintf("rule %d '%s' -> '%s' is rewritten by rule %d '%s' -> '%s'",
			c.Rule+1, c.Self.Match, c.Self.Replace, c.By+1, c.With.Match, c.With.Replace)
	default:
		return fmt.Sprintf("rule %d '%s' never fires: rule %d '%s' matches first",
			c.Rule+1, c.Self.Match, c.By+1, c.With.Match)
	}
}

// Conflicts statically lists overridden and unreachable rules, in rule order.
// Matching is case-insensitive, as in ReplaceByKeyword.
func (rs RuleSet) Conflicts() []Conflict {
	f := newFolder()
	keys := make([]string, len(rs))
	repls := make([]string, len(rs))
	for i, r := range rs {
		keys[i] = f.fold(r.Match)
		repls[i] = f.fold(r.Replace)
	}
	var out []Conflict
	for i, r := range rs {
		for j := i + 1; j < len(rs); j++ {
			if strings.Contains(repls[i], keys[j]) && rs[j].Replace != r.Replace {
				out = append(out, Conflict{Kind: Overridden, Rule: i, By: j, Self: r, With: rs[j]})
				break
			}
		}
	}
	for i, r := range rs {
		for e := 0; e < i; e++ {
			if !strings.Contains(keys[i], keys[e]) || refilled(repls[e:i], keys[i]) {
				continue
			}
			out = append(out, Conflict{Kind: Unreachable, Rule: i, By: e, Self: r, With: rs[e]})
			break
		}
	}
	return out
}

// refilled reports whether any of the replacements would produce a value the
// keyword matches again.
func refilled(repls []string, keyword string) bool {
	for _, r := range repls {
		if strings.Contains(r, keyword) {
			return true
		}
	}
	return false
}

// Literals is an ordered list of exact cell values. In YAML, plain numbers
// decode as numbers and everything else as text; quote a number ("2017") to
// match it only as text.
type Literals []dataset.Value

// Match returns the position of the first literal equal to v.
//
// Text literals match text cells byte for byte. Number literals match numeric
// cells of the same value and text cells spelling the number.
func (ls Literals) Match(v dataset.Value) (int, bool) {
	if v.IsMissing() {
		return -1, false
	}
	for i, l := range ls {
		if l.Equal(v) {
			return i, true
		}
		if n, ok := l.Number(); ok {
			if s, ok := v.Text(); ok && s == cast.ToString(n) {
				return i, true
			}
		}
	}
	return -1, false
}

// UnmarshalYAML decodes a sequence of scalars.
func (ls *Literals) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: literals must be a list", n.Line)
	}
	out := make(Literals, 0, len(n.Content))
	for _, c := range n.Content {
		if c.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: literal must be a scalar", c.Line)
		}
		switch c.ShortTag() {
		case "!!null":
			return fmt.Errorf("line %d: null is not a literal; missing cells never match", c.Line)
		case "!!int", "!!float":
			f, err := cast.ToFloat64E(c.Value)
			if err != nil {
				return fmt.Errorf("line %d: literal %q: %w", c.Line, c.Value, err)
			}
			out = append(out, dataset.Number(f))
		default:
			out = append(out, dataset.Text(c.Value))
		}
	}
	*ls = out
	return nil
}

// MarshalYAML writes text literals double-quoted so padding stays visible.
func (ls Literals) MarshalYAML() (interface{}, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, l := range ls {
		if n, ok := l.Number(); ok {
			tag := "!!float"
			if n == math.Trunc(n) {
				tag = "!!int"
			}
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: cast.ToString(n)})
			continue
		}
		s, _ := l.Text()
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle})
	}
	return seq, nil
}
