package bruntime

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gosuda/brewin/parser"
	"github.com/rs/zerolog"
)

func newTestVM(t *testing.T, src string, cfg Config) *VM {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	vm, err := New(prog, cfg)
	if err != nil {
		t.Fatalf("new vm failed: %v", err)
	}
	return vm
}

func texts(out []Output) []string {
	s := make([]string, 0, len(out))
	for _, o := range out {
		s = append(s, o.Text)
	}
	return s
}

func expectKind(t *testing.T, err error, kind Kind, line int) {
	t.Helper()
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if rerr.Kind != kind || rerr.Line != line {
		t.Fatalf("got %s on line %d, want %s on line %d", rerr.Kind, rerr.Line, kind, line)
	}
}

func TestRunLoopWithIfElse(t *testing.T) {
	vm := newTestVM(t, loopProgram, DefaultConfig())
	out, err := vm.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := []string{"0", "one", "2"}
	if !reflect.DeepEqual(texts(out), want) {
		t.Fatalf("got %v, want %v", texts(out), want)
	}
	for _, o := range out {
		if !o.NewLine {
			t.Fatalf("print output must end a line: %+v", o)
		}
	}
	if got := vm.Globals()["i"]; !got.Equal(Int(3)) {
		t.Fatalf("unexpected i after loop: %v", got)
	}
}

func TestRunEvaluationOrder(t *testing.T) {
	src := `func main
  assign x 10
  assign y - x 3
  assign z / - x 1 2
  funccall print y " " z
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	out, err := vm.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(out) != 1 || out[0].Text != "7 4" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestRunWhileFalseSkipsBody(t *testing.T) {
	src := `func main
  while False
    funccall print "body"
  endwhile
  funccall print "after"
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	out, err := vm.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !reflect.DeepEqual(texts(out), []string{"after"}) {
		t.Fatalf("unexpected output: %v", texts(out))
	}
}

func TestRunIfElseExclusive(t *testing.T) {
	src := `func main
  if True
    funccall print "then"
  else
    funccall print "else"
  endif
  if False
    funccall print "then"
  else
    funccall print "else"
  endif
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	var visited []int
	vm.SetStepHook(func(s StepInfo) { visited = append(visited, s.Line) })
	out, err := vm.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !reflect.DeepEqual(texts(out), []string{"then", "else"}) {
		t.Fatalf("unexpected output: %v", texts(out))
	}
	want := []int{2, 3, 4, 7, 10, 11, 12}
	if !reflect.DeepEqual(visited, want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
}

func TestRunNonBooleanConditionStopsBeforeBody(t *testing.T) {
	src := `func main
  assign n 1
  while n
    funccall print "body"
  endwhile
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	out, err := vm.Run(context.Background())
	expectKind(t, err, KindNonBooleanCondition, 3)
	if !errors.Is(err, ErrType) {
		t.Fatalf("expected a type error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("body must not run: %v", texts(out))
	}
}

func TestRunFunctionCallAndReturn(t *testing.T) {
	src := `func main
  assign a 4
  funccall square
  funccall print result
  funccall bump
  funccall print a
endfunc

func square
  return * a a
endfunc

func bump
  assign a + a 1
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	depths := map[int]int{}
	vm.SetStepHook(func(s StepInfo) { depths[s.Line] = s.Depth })
	out, err := vm.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !reflect.DeepEqual(texts(out), []string{"16", "5"}) {
		t.Fatalf("unexpected output: %v", texts(out))
	}
	if depths[10] != 1 || depths[14] != 1 || depths[6] != 0 {
		t.Fatalf("unexpected call depths: %v", depths)
	}
	if vm.CallDepth() != 0 {
		t.Fatalf("call stack not drained: %d", vm.CallDepth())
	}
}

func TestRunUnboundedRecursion(t *testing.T) {
	src := `func main
  funccall recurse
endfunc
func recurse
  funccall recurse
endfunc`
	cfg := DefaultConfig()
	cfg.MaxCallDepth = 50
	vm := newTestVM(t, src, cfg)
	_, err := vm.Run(context.Background())
	expectKind(t, err, KindCallDepthExceeded, 5)
	if !errors.Is(err, ErrResource) {
		t.Fatalf("expected resource exhaustion: %v", err)
	}
}

func TestRunStepLimit(t *testing.T) {
	src := `func main
  while True
  endwhile
endfunc`
	cfg := DefaultConfig()
	cfg.MaxSteps = 100
	vm := newTestVM(t, src, cfg)
	_, err := vm.Run(context.Background())
	if !errors.Is(err, &Error{Kind: KindStepLimitExceeded}) {
		t.Fatalf("expected step limit, got %v", err)
	}
}

func TestRunHonorsContext(t *testing.T) {
	vm := newTestVM(t, "func main\n  while True\n  endwhile\nendfunc", DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := vm.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunInputQueueAndStrToInt(t *testing.T) {
	src := `func main
  funccall input "number? "
  funccall strtoint result
  assign n + result 1
  funccall print n
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	vm.EnqueueInput(" 41 ")
	out, err := vm.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !reflect.DeepEqual(texts(out), []string{"number? ", "42"}) {
		t.Fatalf("unexpected output: %q", texts(out))
	}
	st := vm.InputState()
	if st.Phase != InputIdle || st.LastValue != " 41 " || len(st.Queue) != 0 {
		t.Fatalf("unexpected input state: %+v", st)
	}
}

func TestRunInputProvider(t *testing.T) {
	src := `func main
  funccall input "name?"
  funccall print "hi " result
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	var seen InputRequest
	vm.SetInputProvider(func(req InputRequest) (string, error) {
		seen = req
		return "bob", nil
	})
	out, err := vm.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if seen.Prompt != "name?" || seen.Line != 2 {
		t.Fatalf("unexpected request: %+v", seen)
	}
	if out[len(out)-1].Text != "hi bob" {
		t.Fatalf("unexpected output: %q", texts(out))
	}
}

func TestRunInputProviderError(t *testing.T) {
	boom := errors.New("stdin closed")
	vm := newTestVM(t, "func main\n  funccall input\nendfunc", DefaultConfig())
	vm.SetInputProvider(func(InputRequest) (string, error) { return "", boom })
	_, err := vm.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestRunStrToIntRejectsText(t *testing.T) {
	vm := newTestVM(t, "func main\n  funccall strtoint \"abc\"\nendfunc", DefaultConfig())
	_, err := vm.Run(context.Background())
	expectKind(t, err, KindInvalidConversion, 2)
}

func TestRunUndefinedVariableSuggests(t *testing.T) {
	src := `func main
  assign count 1
  funccall print cuont
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	_, err := vm.Run(context.Background())
	expectKind(t, err, KindUndefinedVariable, 3)
	var rerr *Error
	errors.As(err, &rerr)
	if rerr.Hint != "count" {
		t.Fatalf("unexpected hint: %q", rerr.Hint)
	}
	if !errors.Is(err, ErrName) {
		t.Fatalf("expected a name error: %v", err)
	}
}

func TestRunUnknownFunctionSuggests(t *testing.T) {
	src := `func main
  funccall gret
endfunc
func greet
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	_, err := vm.Run(context.Background())
	expectKind(t, err, KindUnknownFunction, 2)
	var rerr *Error
	errors.As(err, &rerr)
	if rerr.Hint != "greet" {
		t.Fatalf("unexpected hint: %q", rerr.Hint)
	}
}

func TestRunStackFaults(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind Kind
	}{
		{"assign without value", "assign x", KindOperandUnderflow},
		{"operator without operands", "assign x +", KindOperandUnderflow},
		{"assign to a value", "assign + 1 2 3", KindMalformedStatement},
		{"if without condition", "if", KindOperandUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "func main\n  " + tt.line + "\nendfunc"
			if tt.line == "if" {
				src = "func main\n  if\n  endif\nendfunc"
			}
			vm := newTestVM(t, src, DefaultConfig())
			_, err := vm.Run(context.Background())
			expectKind(t, err, tt.kind, 2)
		})
	}
}

func TestRunKeepsOutputOnFailure(t *testing.T) {
	src := `func main
  funccall print "before"
  assign x / 1 0
  funccall print "after"
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	var hooked []string
	vm.SetOutputHook(func(o Output) { hooked = append(hooked, o.Text) })
	out, err := vm.Run(context.Background())
	expectKind(t, err, KindDivideByZero, 3)
	if !reflect.DeepEqual(texts(out), []string{"before"}) || !reflect.DeepEqual(hooked, []string{"before"}) {
		t.Fatalf("unexpected output: %v / %v", texts(out), hooked)
	}
}

func TestRunTwiceStartsFresh(t *testing.T) {
	vm := newTestVM(t, "func main\n  funccall print \"x\"\nendfunc", DefaultConfig())
	for i := 0; i < 2; i++ {
		out, err := vm.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		if len(out) != 1 {
			t.Fatalf("run %d: unexpected output count %d", i, len(out))
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	prog, err := parser.ParseProgram("func main\nendfunc")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	cfg := DefaultConfig()
	cfg.MaxCallDepth = 0
	if _, err := New(prog, cfg); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestRunTraceEvents(t *testing.T) {
	src := `func main
  funccall helper
endfunc
func helper
endfunc`
	vm := newTestVM(t, src, DefaultConfig())
	var buf bytes.Buffer
	vm.SetTraceLogger(zerolog.New(&buf))
	if _, err := vm.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	out := buf.String()
	if strings.Count(out, `"message":"exec"`) != 3 {
		t.Fatalf("expected one exec event per line:\n%s", out)
	}
	if !strings.Contains(out, `"func":"helper"`) || strings.Count(out, `"message":"return"`) != 2 {
		t.Fatalf("missing call/return events:\n%s", out)
	}
}
