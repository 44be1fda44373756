package remake

import "strings"

// Placeholder marks the stem in a pattern rule such as `%.o: %.c`.
const Placeholder = "%"

func isPatternRule(r *Rule) bool {
	return len(r.Dependencies) > 0 && strings.Contains(r.Dependencies[0], Placeholder)
}

// GeneratePatternRules replaces every pattern rule in rs with one concrete
// rule per working directory entry containing the pattern's literal text.
// The stem of each match is substituted into the target's placeholder.
// Explicit rules take precedence over generated ones, and a pattern target
// without a placeholder collects all matches as its dependencies. rs is
// consumed.
func GeneratePatternRules(rs RuleSet, fsys FileSystem) (RuleSet, error) {
	explicit := make(map[string]bool)
	for i := range rs.Rules {
		if !isPatternRule(&rs.Rules[i]) {
			explicit[rs.Rules[i].Target] = true
		}
	}

	m := &matcher{fs: fsys}
	rules := make([]Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		if !isPatternRule(&r) {
			rules = append(rules, r)
			continue
		}
		lit := strings.Replace(r.Dependencies[0], Placeholder, "", 1)
		matches, err := m.containing(lit)
		if err != nil {
			return rs, err
		}
		if len(matches) == 0 {
			continue
		}

		if !strings.Contains(r.Target, Placeholder) {
			if explicit[r.Target] {
				continue
			}
			c := r.clone()
			c.Dependencies = matches
			rules = append(rules, c)
			explicit[c.Target] = true
			continue
		}

		for _, match := range matches {
			stem := strings.Replace(match, lit, "", 1)
			target := strings.Replace(r.Target, Placeholder, stem, 1)
			if explicit[target] {
				continue
			}
			c := r.clone()
			c.Target = target
			c.Dependencies = []string{match}
			rules = append(rules, c)
			explicit[target] = true
		}
	}
	rs.Rules = rules
	return rs, nil
}
