package remake

import (
	"sort"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
)

const (
	quietMarker = "@"
	globChar    = "*"

	autoTarget = "$@"
	autoDeps   = "$^"
	autoFirst  = "$<"
)

// wildcardReplacer substitutes every reference to a wildcard: $(SYM), ${SYM}
// and $SYM. Longer symbols come first so that $CCFLAGS is never read as $CC
// followed by FLAGS.
func wildcardReplacer(ws []Wildcard) *strings.Replacer {
	sorted := append([]Wildcard(nil), ws...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Symbol) > len(sorted[j].Symbol)
	})
	var pairs []string
	for i := range sorted {
		w := &sorted[i]
		v := w.Value()
		pairs = append(pairs,
			"$("+w.Symbol+")", v,
			"${"+w.Symbol+"}", v,
			"$"+w.Symbol, v,
		)
	}
	return strings.NewReplacer(pairs...)
}

// ExpandWildcards substitutes wildcard references in every target,
// dependency and command of rs. Dependencies are re-split on whitespace so a
// wildcard naming several files yields several dependencies. rs is consumed.
func ExpandWildcards(rs RuleSet) RuleSet {
	if len(rs.Wildcards) == 0 {
		return rs
	}
	sub := wildcardReplacer(rs.Wildcards)
	for i := range rs.Rules {
		r := &rs.Rules[i]
		r.Target = sub.Replace(r.Target)

		var deps []string
		for _, d := range r.Dependencies {
			deps = append(deps, strings.Fields(sub.Replace(d))...)
		}
		r.Dependencies = deps

		for j := range r.Commands {
			r.Commands[j].Text = sub.Replace(r.Commands[j].Text)
		}
	}
	return rs
}

// ResolveCommands finishes every command of rs: it strips the quiet marker,
// substitutes the automatic variables and resolves glob tokens against the
// working directory of fsys. rs is consumed.
func ResolveCommands(rs RuleSet, fsys FileSystem) (RuleSet, error) {
	m := &matcher{fs: fsys}
	for i := range rs.Rules {
		r := &rs.Rules[i]
		first := ""
		if len(r.Dependencies) > 0 {
			first = r.Dependencies[0]
		}
		auto := strings.NewReplacer(
			autoTarget, r.Target,
			autoDeps, strings.Join(r.Dependencies, " "),
			autoFirst, first,
		)
		for j := range r.Commands {
			c := &r.Commands[j]
			if strings.HasPrefix(c.Text, quietMarker) {
				c.Quiet = true
				c.Text = strings.TrimSpace(strings.TrimPrefix(c.Text, quietMarker))
			}
			c.Text = auto.Replace(c.Text)
			text, err := m.expandGlobs(c.Text)
			if err != nil {
				return rs, err
			}
			c.Text = text
		}
	}
	return rs, nil
}

// A matcher finds working directory entries by substring. The directory is
// listed at most once.
type matcher struct {
	fs      FileSystem
	entries []string
	listed  bool
}

func (m *matcher) list() ([]string, error) {
	if !m.listed {
		ents, err := m.fs.Entries()
		if err != nil {
			return nil, err
		}
		m.entries = ents
		m.listed = true
	}
	return m.entries, nil
}

// containing returns the entries whose name contains lit.
func (m *matcher) containing(lit string) ([]string, error) {
	ents, err := m.list()
	if err != nil {
		return nil, err
	}
	g, err := glob.Compile("*" + glob.QuoteMeta(lit) + "*")
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, e := range ents {
		if g.Match(e) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

// expandGlobs replaces each token holding a glob character with the entries
// containing the token's literal text. Tokens that match nothing, and quoted
// tokens, are kept. Text between tokens is copied unchanged.
func (m *matcher) expandGlobs(cmd string) (string, error) {
	if !strings.Contains(cmd, globChar) {
		return cmd, nil
	}
	var sb strings.Builder
	rest := cmd
	for rest != "" {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		word := rest[:end]
		if strings.Contains(word, globChar) && !strings.ContainsAny(word, `'"`) {
			matches, err := m.containing(strings.ReplaceAll(word, globChar, ""))
			if err != nil {
				return "", err
			}
			if len(matches) > 0 {
				word = strings.Join(matches, " ")
			}
		}
		sb.WriteString(word)

		rest = rest[end:]
		next := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsSpace(r) })
		if next < 0 {
			next = len(rest)
		}
		sb.WriteString(rest[:next])
		rest = rest[next:]
	}
	return sb.String(), nil
}
