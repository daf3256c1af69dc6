package parser

import (
	"strings"
	"unicode"
)

type rawLine struct {
	Number  int
	Content string
}

func normalize(raw string) string {
	if after, ok := strings.CutPrefix(raw, "\uFEFF"); ok {
		return after
	}
	return raw
}

func toLines(raw string) []rawLine {
	norm := normalize(raw)
	norm = strings.ReplaceAll(norm, "\r\n", "\n")
	norm = strings.ReplaceAll(norm, "\r", "\n")
	norm = strings.TrimSuffix(norm, "\n")
	if norm == "" {
		return nil
	}
	parts := strings.Split(norm, "\n")
	out := make([]rawLine, 0, len(parts))
	for i, p := range parts {
		out = append(out, rawLine{Number: i + 1, Content: p})
	}
	return out
}

// indentOf counts leading whitespace runes. A tab counts as one column.
func indentOf(raw string) int {
	n := 0
	for _, r := range raw {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}
