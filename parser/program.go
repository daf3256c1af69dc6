package parser

import (
	"fmt"

	"github.com/gosuda/brewin/ast"
)

// ParseProgram tokenizes a whole source text into the line store.
func ParseProgram(src string) (*ast.Program, error) {
	lines := toLines(src)
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty program")
	}
	raw := make([]string, len(lines))
	for i, l := range lines {
		raw[i] = l.Content
	}
	return ParseLines(raw)
}

// ParseLines builds the line store from an already split line list, the way
// the CLI reads a file. Line i of the input becomes source line i+1.
func ParseLines(lines []string) (*ast.Program, error) {
	prog := &ast.Program{Lines: make([]ast.Line, 0, len(lines))}
	for i, content := range lines {
		tokens, err := Tokenize(content)
		if err != nil {
			return nil, &Error{Line: i + 1, Msg: err.Error()}
		}
		prog.Lines = append(prog.Lines, ast.Line{
			Number: i + 1,
			Indent: indentOf(content),
			Tokens: tokens,
		})
	}
	return prog, nil
}
