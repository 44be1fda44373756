package remake

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
)

const roundTripSource = `CC = gcc
CFLAGS = -O2
prog: main.o
	$CC $(CFLAGS) -o $@ $^
%.o: %.c
	@$CC -c $< -o $@
clean:
	rm -f prog *.o
.PHONY: clean
`

func TestFormat(t *testing.T) {
	fsys := newMemFS()
	fsys.touch("main.c", time.Now())
	c := &Compiler{FS: fsys}
	rs, err := c.CompileSource("remaker", []byte(roundTripSource))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Dump(&buf, &rs, "remaker"); err != nil {
		t.Fatal(err)
	}
	want := `prog: main.o
	gcc -O2 -o prog main.o

main.o: main.c
	@gcc -c main.c -o main.o

clean:
	rm -f prog *.o

.PHONY: clean
`
	if got := buf.String(); got != want {
		t.Errorf("Format() = %q\nwant %q", got, want)
	}

	again, err := c.CompileSource("formatted", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again.Rules, rs.Rules) {
		t.Errorf("reparsed rules = %s\nwant %s", spew.Sdump(again.Rules), spew.Sdump(rs.Rules))
	}
}

func TestDumpFormats(t *testing.T) {
	rs := RuleSet{Rules: []Rule{{Target: "prog", Dependencies: []string{"main.c"}}}}
	tests := []struct {
		format string
		want   string
	}{
		{format: "", want: `Target: "prog"`},
		{format: "repr", want: `Dependencies: []string{`},
		{format: "yaml", want: "  - target: prog\n    dependencies:\n      - main.c\n"},
		{format: "remaker", want: "prog: main.c\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Dump(&buf, &rs, tt.format); err != nil {
			t.Fatalf("Dump(%q): %v", tt.format, err)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("Dump(%q) = %q, want it to contain %q", tt.format, buf.String(), tt.want)
		}
	}

	if err := Dump(&bytes.Buffer{}, &rs, "json"); err == nil {
		t.Errorf("Dump(json) succeeded, want an unknown format error")
	}
}
