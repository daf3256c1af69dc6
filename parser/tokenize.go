package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gosuda/brewin/ast"
)

// Error is a lexical fault found while splitting a line into tokens.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Tokenize splits one source line into tokens. Whitespace separates tokens,
// a double-quoted run is a single token with its quotes kept, and '#' outside
// quotes discards the rest of the line.
func Tokenize(raw string) ([]string, error) {
	line := strings.TrimSpace(raw)
	tokens := []string{}
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ast.CommentChar:
			flush()
			return tokens, nil
		case c == ast.QuoteChar:
			end := strings.IndexByte(line[i+1:], ast.QuoteChar)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string literal at column %d", i+1)
			}
			flush()
			tokens = append(tokens, line[i:i+end+2])
			i += end + 1
		case c < 0x80 && unicode.IsSpace(rune(c)):
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens, nil
}
