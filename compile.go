package brewin

import (
	"fmt"

	"github.com/gosuda/brewin/ast"
	"github.com/gosuda/brewin/parser"
	bruntime "github.com/gosuda/brewin/runtime"
)

// Compile parses Brewin source text and builds a VM instance.
func Compile(src string, cfg bruntime.Config) (*bruntime.VM, error) {
	program, err := parser.ParseProgram(src)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return build(program, cfg)
}

// CompileLines is Compile for a program already split into lines.
func CompileLines(lines []string, cfg bruntime.Config) (*bruntime.VM, error) {
	program, err := parser.ParseLines(lines)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return build(program, cfg)
}

func build(program *ast.Program, cfg bruntime.Config) (*bruntime.VM, error) {
	vm, err := bruntime.New(program, cfg)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return vm, nil
}

// Parse only returns the line store for tooling use.
func Parse(src string) (*ast.Program, error) {
	return parser.ParseProgram(src)
}
