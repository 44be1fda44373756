package remake_test

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/knusbaum/remake"
	"github.com/pelletier/go-toml/v2"
)

type Test struct {
	Disable bool
	Flags   remake.Flags
	Builds  []Build
}

type Build struct {
	Target   string
	Output   string
	Built    []string
	Notbuilt []string
	Error    string
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadTest(dir string, t *testing.T) *Test {
	data, err := os.ReadFile(filepath.Join(dir, "test.toml"))
	if err != nil {
		t.Fatal(err)
	}
	var test Test
	if err := toml.Unmarshal(data, &test); err != nil {
		t.Fatal(err)
	}
	return &test
}

// stage copies the fixture files of dir into a scratch directory and backdates
// them so that anything a build creates is newer.
func stage(dir string, t *testing.T) string {
	work := t.TempDir()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	for _, e := range ents {
		if e.IsDir() || e.Name() == "test.toml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		dst := filepath.Join(work, e.Name())
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(dst, past, past); err != nil {
			t.Fatal(err)
		}
	}
	return work
}

func runTest(dir string, t *testing.T) {
	test := loadTest(dir, t)
	if test.Disable {
		t.Skipf("%s disabled", dir)
	}

	work := stage(dir, t)
	for i, b := range test.Builds {
		flags := test.Flags
		flags.Dir = work
		flags.Target = b.Target

		buf := &bytes.Buffer{}
		err := remake.Run(buf, flags)
		if err != nil {
			if err.Error() != b.Error {
				t.Fatalf("%d: %v", i, err)
			}
		} else if b.Error != "" {
			t.Fatalf("%d: expected error %q", i, b.Error)
		}

		if b.Error == "" {
			expected := strings.TrimSpace(b.Output)
			got := strings.TrimSpace(buf.String())
			if expected != got {
				t.Fatalf("%d: expected %q, got %q", i, expected, got)
			}
		}

		for _, f := range b.Built {
			if !exists(filepath.Join(work, f)) {
				t.Fatalf("%d: expected %s to exist, but it does not", i, f)
			}
		}
		for _, f := range b.Notbuilt {
			if exists(filepath.Join(work, f)) {
				t.Fatalf("%d: expected %s not to exist, but it does", i, f)
			}
		}
	}
}

func TestAll(t *testing.T) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	files, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if !f.IsDir() {
			continue
		}
		dir := filepath.Join("testdata", f.Name())
		t.Run(f.Name(), func(t *testing.T) {
			runTest(dir, t)
		})
	}
}
