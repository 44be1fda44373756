package remake

// NormalizePhony marks every rule named by a .PHONY dependency as phony and
// removes the .PHONY rules. Names that match no rule are ignored. rs is
// consumed.
func NormalizePhony(rs RuleSet) RuleSet {
	phony := make(map[string]bool)
	rules := rs.Rules[:0]
	for _, r := range rs.Rules {
		if r.Target == PhonyTarget {
			for _, d := range r.Dependencies {
				phony[d] = true
			}
			continue
		}
		rules = append(rules, r)
	}
	for i := range rules {
		if phony[rules[i].Target] {
			rules[i].Phony = true
		}
	}
	rs.Rules = rules
	return rs
}
