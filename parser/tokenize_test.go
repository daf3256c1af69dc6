package parser_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gosuda/brewin/parser"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"assign", "assign x 5", []string{"assign", "x", "5"}},
		{"indented expression", "    assign y + x 3", []string{"assign", "y", "+", "x", "3"}},
		{"quoted with spaces", `funccall print "hello  world" x`, []string{"funccall", "print", `"hello  world"`, "x"}},
		{"comment", "assign x 1 # trailing note", []string{"assign", "x", "1"}},
		{"comment only", "# nothing here", []string{}},
		{"hash inside quotes", `funccall print "#1"`, []string{"funccall", "print", `"#1"`}},
		{"tabs", "\tif\tcond", []string{"if", "cond"}},
		{"empty quotes", `assign s ""`, []string{"assign", "s", `""`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Tokenize(tt.line)
			if err != nil {
				t.Fatalf("tokenize failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("tokens = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	if _, err := parser.Tokenize(`funccall print "oops`); err == nil {
		t.Fatalf("expected error for unterminated string")
	}
}

func TestParseProgramKeepsLineIndices(t *testing.T) {
	src := "func main\n\n  # comment\n  assign x 1\nendfunc\n"
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(prog.Lines) != 5 {
		t.Fatalf("unexpected line count: %d", len(prog.Lines))
	}
	if !prog.Lines[1].Empty() || !prog.Lines[2].Empty() {
		t.Fatalf("blank and comment lines must be kept empty: %+v", prog.Lines[1:3])
	}
	x := prog.Lines[3]
	if x.Number != 4 || x.Indent != 2 || x.Leading() != "assign" {
		t.Fatalf("unexpected line: %+v", x)
	}
}

func TestParseLinesReportsLine(t *testing.T) {
	_, err := parser.ParseLines([]string{"func main", `  funccall print "x`, "endfunc"})
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.Error, got %v", err)
	}
	if perr.Line != 2 {
		t.Fatalf("unexpected line: %d", perr.Line)
	}
}
