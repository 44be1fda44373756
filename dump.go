package remake

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/repr"
	"gopkg.in/yaml.v3"
)

// Dump writes rs to w in the given format: "repr" (the default), "yaml" or
// "remaker".
func Dump(w io.Writer, rs *RuleSet, format string) error {
	switch format {
	case "", "repr":
		repr.New(w, repr.Indent("  "), repr.OmitEmpty(true)).Println(rs)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rs); err != nil {
			return err
		}
		return enc.Close()
	case "remaker":
		return Format(w, rs)
	}
	return fmt.Errorf("unknown dump format: %s", format)
}

// Format writes rs as a rule file. Wildcards are not written since rs is
// already expanded; phony rules are listed in a trailing .PHONY line.
func Format(w io.Writer, rs *RuleSet) error {
	bw := bufio.NewWriter(w)
	var phony []string
	for i, r := range rs.Rules {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(strings.TrimSpace(r.String()) + "\n")
		for _, c := range r.Commands {
			text := c.Text
			if c.Quiet {
				text = quietMarker + text
			}
			fmt.Fprintf(bw, "\t%s\n", text)
		}
		if r.Phony {
			phony = append(phony, r.Target)
		}
	}
	if len(phony) > 0 {
		fmt.Fprintf(bw, "\n%s: %s\n", PhonyTarget, strings.Join(phony, " "))
	}
	return bw.Flush()
}
