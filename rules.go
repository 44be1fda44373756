package remake

import (
	"fmt"
	"strings"
)

// PhonyTarget is the pseudo-target whose dependencies name phony rules.
const PhonyTarget = ".PHONY"

// A Command is one line of a rule's recipe. Quiet commands are not echoed.
type Command struct {
	Text  string `yaml:"text"`
	Quiet bool   `yaml:"quiet,omitempty"`
}

// A Rule builds Target from Dependencies by running Commands in order.
type Rule struct {
	Target       string    `yaml:"target"`
	Dependencies []string  `yaml:"dependencies,omitempty"`
	Commands     []Command `yaml:"commands,omitempty"`
	Phony        bool      `yaml:"phony,omitempty"`
}

func (r *Rule) empty() bool {
	return r.Target == "" && len(r.Dependencies) == 0 && len(r.Commands) == 0
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s: %s", r.Target, strings.Join(r.Dependencies, " "))
}

func (r Rule) clone() Rule {
	r.Dependencies = append([]string(nil), r.Dependencies...)
	r.Commands = append([]Command(nil), r.Commands...)
	return r
}

// A Wildcard is a named macro whose values are substituted, joined by
// spaces, wherever the symbol is referenced.
type Wildcard struct {
	Symbol string   `yaml:"symbol"`
	Values []string `yaml:"values,omitempty"`
}

// Value returns the substitution text of the wildcard.
func (w *Wildcard) Value() string {
	return strings.Join(w.Values, " ")
}

// A RuleSet is a compiled rule file. The first rule is the default target.
type RuleSet struct {
	Rules     []Rule     `yaml:"rules"`
	Wildcards []Wildcard `yaml:"wildcards,omitempty"`
}

// Lookup returns the rule building target, if there is one.
func (rs *RuleSet) Lookup(target string) (*Rule, bool) {
	for i := range rs.Rules {
		if rs.Rules[i].Target == target {
			return &rs.Rules[i], true
		}
	}
	return nil, false
}

// MainTarget returns the target of the first rule, or "" for an empty set.
func (rs *RuleSet) MainTarget() string {
	if len(rs.Rules) == 0 {
		return ""
	}
	return rs.Rules[0].Target
}

// Clone returns a deep copy of rs that shares no slices with it.
func (rs RuleSet) Clone() RuleSet {
	c := RuleSet{
		Rules:     make([]Rule, 0, len(rs.Rules)),
		Wildcards: make([]Wildcard, 0, len(rs.Wildcards)),
	}
	for _, r := range rs.Rules {
		c.Rules = append(c.Rules, r.clone())
	}
	for _, w := range rs.Wildcards {
		c.Wildcards = append(c.Wildcards, Wildcard{
			Symbol: w.Symbol,
			Values: append([]string(nil), w.Values...),
		})
	}
	return c
}

// Assemble groups parsed items into rules and wildcards. Each header closes
// the rule before it; command lines belong to the most recent header.
// Assignments with "=" or "+=" extend an existing wildcard, ":=" replaces
// its values.
func Assemble(items []Item) RuleSet {
	var rs RuleSet
	var cur Rule
	wildcards := make(map[string]int)

	for _, it := range items {
		switch it := it.(type) {
		case *Assignment:
			i, ok := wildcards[it.Symbol]
			if !ok {
				rs.Wildcards = append(rs.Wildcards, Wildcard{Symbol: it.Symbol})
				i = len(rs.Wildcards) - 1
				wildcards[it.Symbol] = i
			}
			w := &rs.Wildcards[i]
			if it.Op == ":=" {
				w.Values = nil
			}
			w.Values = append(w.Values, it.Values...)
		case *Header:
			if !cur.empty() {
				rs.Rules = append(rs.Rules, cur)
			}
			cur = Rule{
				Target:       it.Target,
				Dependencies: append([]string(nil), it.Dependencies...),
			}
		case *CommandLine:
			if it.Text == "" {
				continue
			}
			cur.Commands = append(cur.Commands, Command{Text: it.Text})
		}
	}
	if !cur.empty() {
		rs.Rules = append(rs.Rules, cur)
	}
	return rs
}
