package remake

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lex tokenizes rule files. The Root state is only ever active at the start
// of a line, which is what makes a leading tab a command line.
var Lex = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Newline", Pattern: `\n`, Action: nil},
		{Name: "Command", Pattern: `\t[^\n]*`, Action: nil},
		{Name: "indent", Pattern: ` +`, Action: nil}, // Rules starting with a lower-case letter are elided automatically.
		{Name: "comment", Pattern: `#[^\n]*`, Action: nil},
		{Name: "Assign", Pattern: `[A-Za-z_][A-Za-z0-9_]*[ \t]*[:+]?=`, Action: lexer.Push("Value")},
		{Name: "Target", Pattern: `[^\s:=#]+`, Action: lexer.Push("Header")},
	},
	"Header": {
		{Name: "Colon", Pattern: `:`, Action: nil},
		{Name: "Word", Pattern: `[^\s:#]+`, Action: nil},
		{Name: "whitespace", Pattern: `[\t\f ]+`, Action: nil},
		{Name: "comment", Pattern: `#[^\n]*`, Action: nil},
		{Name: "Newline", Pattern: `\n`, Action: lexer.Pop()},
	},
	"Value": {
		{Name: "Value", Pattern: `[^\s#]+`, Action: nil},
		{Name: "whitespace", Pattern: `[\t\f ]+`, Action: nil},
		{Name: "comment", Pattern: `#[^\n]*`, Action: nil},
		{Name: "Newline", Pattern: `\n`, Action: lexer.Pop()},
	},
})

var Parser = participle.MustBuild[File](
	participle.Lexer(Lex),
	participle.Union[Item](&Assignment{}, &Header{}, &CommandLine{}),
)

type File struct {
	Items []Item `parser:"(@@ | Newline)*"`
}

// Item is one syntactic line of a rule file: an *Assignment, a *Header or a
// *CommandLine.
type Item interface {
	item()
	Position() lexer.Position
}

// Assignment is a line of the form `SYMBOL = value value ...`. Op is one of
// "=", "+=" or ":=".
type Assignment struct {
	Pos    lexer.Position
	Head   string   `parser:"@Assign"`
	Values []string `parser:"@Value* Newline"`

	Symbol string
	Op     string
}

// Header is a line of the form `target: dep dep ...`.
type Header struct {
	Pos          lexer.Position
	Target       string   `parser:"@Target Colon"`
	Dependencies []string `parser:"@Word* Newline"`
}

// CommandLine is a tab-indented line belonging to the preceding header.
type CommandLine struct {
	Pos  lexer.Position
	Text string `parser:"@Command Newline"`
}

func (*Assignment) item()  {}
func (*Header) item()      {}
func (*CommandLine) item() {}

func (a *Assignment) Position() lexer.Position  { return a.Pos }
func (h *Header) Position() lexer.Position      { return h.Pos }
func (c *CommandLine) Position() lexer.Position { return c.Pos }

// Parse turns the text of a rule file into its items. Parsing is all or
// nothing: on error no items are returned and the error is a *SyntaxError.
func Parse(filename string, src []byte) ([]Item, error) {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	f, err := Parser.ParseString(filename, text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &SyntaxError{Pos: perr.Position(), Msg: perr.Message()}
		}
		return nil, &SyntaxError{Pos: lexer.Position{Filename: filename}, Msg: err.Error()}
	}
	if err := sanitize(f); err != nil {
		return nil, err
	}
	return f.Items, nil
}

// sanitize splits assignment heads, trims command text and rejects command
// lines that do not follow a header.
func sanitize(f *File) error {
	seenHeader := false
	for _, it := range f.Items {
		switch it := it.(type) {
		case *Assignment:
			i := strings.IndexAny(it.Head, ":+=")
			it.Symbol = strings.TrimRight(it.Head[:i], " \t")
			it.Op = it.Head[i:]
		case *Header:
			seenHeader = true
		case *CommandLine:
			it.Text = strings.TrimSpace(it.Text)
			if !seenHeader && it.Text != "" {
				return &SyntaxError{Pos: it.Pos, Msg: "command line outside of a rule"}
			}
		}
	}
	return nil
}
