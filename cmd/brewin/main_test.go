package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gosuda/brewin"
	bruntime "github.com/gosuda/brewin/runtime"
)

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.brewin")
	if err := os.WriteFile(path, []byte("\uFEFFfunc main\r\n  funccall print 1\r\nendfunc\r\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	lines, err := loadScript(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := []string{"func main", "  funccall print 1", "endfunc"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
}

func TestLoadScriptEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.brewin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := loadScript(path); err == nil {
		t.Fatalf("expected error for empty program")
	}
}

func TestFormatErrorQuotesSourceLine(t *testing.T) {
	lines := []string{"func main", "  assign x + y 1", "endfunc"}
	vm, err := brewin.CompileLines(lines, bruntime.DefaultConfig())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	_, err = vm.Run(t.Context())
	got := formatError(err, lines)
	if !strings.Contains(got, "UndefinedVariable on line 2") || !strings.HasSuffix(got, "2 | assign x + y 1") {
		t.Fatalf("unexpected report: %q", got)
	}

	plain := errors.New("boom")
	if formatError(plain, lines) != "boom" {
		t.Fatalf("plain errors must pass through")
	}
}
