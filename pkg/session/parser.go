package session

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/OpenTraceLab/OpenTracePPDev/pkg/signal"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// CommandLexer tokenizes the session command language. Statements are
// separated by newlines or semicolons; '#' starts a comment.
var CommandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Newline", Pattern: `[\n;]+`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Number", Pattern: `[-+]?(0[xX][0-9a-fA-F_]+|0[bB][01_]+|[0-9]+)`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[:=]`},
})

type scriptAST struct {
	Stmts []*stmtAST `( @@ | Newline )*`
}

type stmtAST struct {
	Pos lexer.Position

	Open     *string   `  "open" @Number`
	Close    *string   `| "close" @Number`
	CloseAll bool      `| @"closeall"`
	Write    *writeAST `| "write" @@`
	Read     *readAST  `| "read" @@`
	Set      *setAST   `| "set" @@`
}

type writeAST struct {
	Port   string `@Number`
	Value  string `@Number`
	Output bool   `@"out"?`
}

type readAST struct {
	Port  string     `@Number`
	Lines []*lineAST `@@+`
}

type setAST struct {
	Port   string        `@Number`
	Lines  []*setLineAST `@@+`
	Output bool          `@"out"?`
}

type lineAST struct {
	Pos lexer.Position

	Name string  `@Ident`
	Bit  *string `( ":" @Number )?`
}

type setLineAST struct {
	Pos lexer.Position

	Name  string  `@Ident`
	Bit   *string `( ":" @Number )?`
	Value string  `"=" @Number`
}

// Parser parses the session command language into Commands.
type Parser struct {
	parser *participle.Parser[scriptAST]
}

// NewParser builds the command parser.
func NewParser() (*Parser, error) {
	p, err := participle.Build[scriptAST](
		participle.Lexer(CommandLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(4),
	)
	if err != nil {
		return nil, fmt.Errorf("session: failed to build parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// ParseString parses every statement in input.
func (p *Parser) ParseString(input string) ([]Command, error) {
	ast, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("session: parse error: %w", err)
	}
	return compile(ast)
}

// Parse parses a script from r. name is used in error positions.
func (p *Parser) Parse(name string, r io.Reader) ([]Command, error) {
	ast, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("session: parse error: %w", err)
	}
	return compile(ast)
}

// ParseCommand parses a single statement. Empty input and comments yield
// a nil Command.
func (p *Parser) ParseCommand(line string) (Command, error) {
	cmds, err := p.ParseString(line)
	if err != nil {
		return nil, err
	}
	switch len(cmds) {
	case 0:
		return nil, nil
	case 1:
		return cmds[0], nil
	}
	return nil, fmt.Errorf("session: expected one command, got %d", len(cmds))
}

func compile(ast *scriptAST) ([]Command, error) {
	cmds := make([]Command, 0, len(ast.Stmts))
	for _, st := range ast.Stmts {
		cmd, err := st.command()
		if err != nil {
			return nil, fmt.Errorf("session: %s: %w", st.Pos, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func (st *stmtAST) command() (Command, error) {
	switch {
	case st.Open != nil:
		port, err := ParseNumber(*st.Open)
		return Open{Port: port}, err
	case st.Close != nil:
		port, err := ParseNumber(*st.Close)
		return Close{Port: port}, err
	case st.CloseAll:
		return CloseAll{}, nil
	case st.Write != nil:
		port, err := ParseNumber(st.Write.Port)
		if err != nil {
			return nil, err
		}
		value, err := ParseNumber(st.Write.Value)
		if err != nil {
			return nil, err
		}
		return Write{Port: port, Value: value, Output: st.Write.Output}, nil
	case st.Read != nil:
		port, err := ParseNumber(st.Read.Port)
		if err != nil {
			return nil, err
		}
		lines := make([]Line, 0, len(st.Read.Lines))
		for _, l := range st.Read.Lines {
			line, err := l.resolve(false)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", l.Pos, err)
			}
			lines = append(lines, line)
		}
		return Read{Port: port, Lines: lines}, nil
	case st.Set != nil:
		port, err := ParseNumber(st.Set.Port)
		if err != nil {
			return nil, err
		}
		lines := make([]Line, 0, len(st.Set.Lines))
		for _, l := range st.Set.Lines {
			line, err := l.resolve()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", l.Pos, err)
			}
			lines = append(lines, line)
		}
		return Set{Port: port, Lines: lines, Output: st.Set.Output}, nil
	}
	return nil, fmt.Errorf("empty statement")
}

func (l *setLineAST) resolve() (Line, error) {
	v, err := ParseNumber(l.Value)
	if err != nil {
		return Line{}, err
	}
	if v != 0 && v != 1 {
		return Line{}, fmt.Errorf("%w: %s=%d", parport.ErrBadBitSpec, l.Name, v)
	}
	ref := lineAST{Pos: l.Pos, Name: l.Name, Bit: l.Bit}
	return ref.resolve(v == 1)
}

func (l *lineAST) resolve(value bool) (Line, error) {
	if l.Bit == nil {
		s, err := signal.Lookup(l.Name)
		if err != nil {
			return Line{}, err
		}
		return SignalLine(s, value), nil
	}

	reg, err := parport.ParseRegister(strings.ToLower(l.Name))
	if err != nil {
		return Line{}, err
	}
	bit, err := ParseNumber(*l.Bit)
	if err != nil {
		return Line{}, err
	}
	if bit < 0 || bit > 7 {
		return Line{}, fmt.Errorf("%w: bit %d", parport.ErrBadBitSpec, bit)
	}
	return BitLine(reg, uint8(bit), value)
}

// ParseNumber parses a decimal, 0x hex or 0b binary integer with optional
// '_' separators. Magnitudes beyond the int32 range are clamped so range
// checks further down report them.
func ParseNumber(s string) (int, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 0, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return int(max(min(n, math.MaxInt32), math.MinInt32)), nil
}
