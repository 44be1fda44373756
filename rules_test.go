package remake

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func mustAssemble(t *testing.T, src string) RuleSet {
	t.Helper()
	items, err := Parse("remaker", []byte(src))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	return Assemble(items)
}

func TestAssembleRules(t *testing.T) {
	rs := mustAssemble(t, `out: a.o b.o
	ld -o out a.o b.o
	strip out
X = 1
a.o: a.c

	cc -c a.c
.PHONY: clean
clean:
	rm -f *.o
`)
	want := []Rule{
		{Target: "out", Dependencies: []string{"a.o", "b.o"}, Commands: []Command{{Text: "ld -o out a.o b.o"}, {Text: "strip out"}}},
		{Target: "a.o", Dependencies: []string{"a.c"}, Commands: []Command{{Text: "cc -c a.c"}}},
		{Target: ".PHONY", Dependencies: []string{"clean"}},
		{Target: "clean", Commands: []Command{{Text: "rm -f *.o"}}},
	}
	if !reflect.DeepEqual(rs.Rules, want) {
		t.Errorf("Assemble() rules = %s\nwant %s", spew.Sdump(rs.Rules), spew.Sdump(want))
	}
	if rs.MainTarget() != "out" {
		t.Errorf("MainTarget() = %q, want %q", rs.MainTarget(), "out")
	}
}

func TestAssembleWildcards(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Wildcard
	}{
		{
			name: "accumulate",
			src:  "SRC = a.c\nCC = gcc\nSRC = b.c c.c\n",
			want: []Wildcard{
				{Symbol: "SRC", Values: []string{"a.c", "b.c", "c.c"}},
				{Symbol: "CC", Values: []string{"gcc"}},
			},
		},
		{
			name: "append operator",
			src:  "CFLAGS = -O2\nCFLAGS += -g\n",
			want: []Wildcard{{Symbol: "CFLAGS", Values: []string{"-O2", "-g"}}},
		},
		{
			name: "replace operator",
			src:  "CC = gcc\nLD = ld\nCC := clang\n",
			want: []Wildcard{
				{Symbol: "CC", Values: []string{"clang"}},
				{Symbol: "LD", Values: []string{"ld"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustAssemble(t, tt.src)
			if !reflect.DeepEqual(rs.Wildcards, tt.want) {
				t.Errorf("Assemble() wildcards = %s\nwant %s", spew.Sdump(rs.Wildcards), spew.Sdump(tt.want))
			}
		})
	}
}

func TestRuleSetLookup(t *testing.T) {
	rs := mustAssemble(t, "a: b\nb:\n")
	r, ok := rs.Lookup("b")
	if !ok || r.Target != "b" {
		t.Fatalf("Lookup(b) = %v, %t", r, ok)
	}
	if _, ok := rs.Lookup("c"); ok {
		t.Errorf("Lookup(c) found a rule")
	}
	var empty RuleSet
	if empty.MainTarget() != "" {
		t.Errorf("MainTarget() of empty set = %q", empty.MainTarget())
	}
}

func TestRuleSetClone(t *testing.T) {
	rs := mustAssemble(t, "X = 1\nout: a\n\techo hi\n")
	c := rs.Clone()
	c.Rules[0].Dependencies[0] = "changed"
	c.Rules[0].Commands[0].Text = "changed"
	c.Wildcards[0].Values[0] = "changed"
	if rs.Rules[0].Dependencies[0] != "a" || rs.Rules[0].Commands[0].Text != "echo hi" || rs.Wildcards[0].Values[0] != "1" {
		t.Errorf("Clone() shares memory with the original: %s", spew.Sdump(rs))
	}
}
