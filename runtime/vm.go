package bruntime

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/gosuda/brewin/ast"
	"github.com/rs/zerolog"
)

type Output struct {
	Text    string `json:"text"`
	NewLine bool   `json:"newline"`
}

// StepInfo describes the line the engine is about to interpret.
type StepInfo struct {
	Index  int // line index in the program
	Line   int // 1-based source line
	Depth  int // active user function calls
	Tokens []string
}

// VM interprets one program. Variables live in a single table shared by
// every function; calls only push return addresses.
type VM struct {
	program *ast.Program
	cfg     Config
	jumps   *JumpTable
	funcs   map[string]int

	vars      map[string]Value
	callStack []int
	operands  []operand
	ip        int
	cur       int
	steps     int

	outputs       []Output
	outputHook    func(Output)
	stepHook      func(StepInfo)
	inputProvider InputProvider
	input         InputState
	log           zerolog.Logger
}

// New resolves the block structure of program and prepares a VM for it.
// Block and function faults are reported here, before anything runs.
func New(program *ast.Program, cfg Config) (*VM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	jumps, funcs, err := ResolveBlocks(program)
	if err != nil {
		return nil, err
	}
	vm := &VM{
		program:   program,
		cfg:       cfg,
		jumps:     jumps,
		funcs:     funcs,
		vars:      map[string]Value{},
		callStack: nil,
		operands:  make([]operand, 0, 16),
		outputs:   nil,
		input:     defaultInputState(),
		log:       zerolog.Nop(),
	}
	if cfg.Trace {
		vm.log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return vm, nil
}

func (vm *VM) SetOutputHook(fn func(Output)) {
	vm.outputHook = fn
}

func (vm *VM) SetStepHook(fn func(StepInfo)) {
	vm.stepHook = fn
}

// SetTraceLogger routes per-line trace events to l.
func (vm *VM) SetTraceLogger(l zerolog.Logger) {
	vm.log = l
}

func (vm *VM) Config() Config {
	return vm.cfg
}

func (vm *VM) Program() *ast.Program {
	return vm.program
}

func (vm *VM) JumpTable() *JumpTable {
	return vm.jumps
}

func (vm *VM) Functions() map[string]int {
	cp := make(map[string]int, len(vm.funcs))
	for k, v := range vm.funcs {
		cp[k] = v
	}
	return cp
}

func (vm *VM) Globals() map[string]Value {
	cp := make(map[string]Value, len(vm.vars))
	for k, v := range vm.vars {
		cp[k] = v
	}
	return cp
}

// CallDepth is the number of user function calls currently active.
func (vm *VM) CallDepth() int {
	if len(vm.callStack) == 0 {
		return 0
	}
	return len(vm.callStack) - 1
}

// Run executes main until the call stack empties or a fault occurs. The
// outputs produced so far are returned in both cases.
func (vm *VM) Run(ctx context.Context) ([]Output, error) {
	vm.outputs = vm.outputs[:0]
	vm.vars = map[string]Value{}
	vm.steps = 0

	start := vm.funcs[ast.MainFunc] + 1
	vm.ip = start
	vm.callStack = append(vm.callStack[:0], start)

	for len(vm.callStack) > 0 {
		if err := ctx.Err(); err != nil {
			return vm.snapshot(), err
		}
		if vm.ip < 0 || vm.ip >= len(vm.program.Lines) {
			return vm.snapshot(), newError(KindUnmatchedBlock, 0, "execution ran past the end of the program")
		}
		vm.steps++
		if vm.cfg.MaxSteps > 0 && vm.steps > vm.cfg.MaxSteps {
			return vm.snapshot(), newError(KindStepLimitExceeded, vm.program.Lines[vm.ip].Number, "more than %d lines executed", vm.cfg.MaxSteps)
		}
		if err := vm.interpret(); err != nil {
			return vm.snapshot(), err
		}
		vm.ip++
	}
	return vm.snapshot(), nil
}

func (vm *VM) snapshot() []Output {
	return append([]Output(nil), vm.outputs...)
}

func (vm *VM) lineNo() int {
	return vm.program.Lines[vm.cur].Number
}

func (vm *VM) emitOutput(out Output) {
	vm.outputs = append(vm.outputs, out)
	if vm.outputHook != nil {
		vm.outputHook(out)
	}
}

// interpret runs the line at ip. Tokens are scanned right to left so every
// operand is on the stack before the keyword or operator that consumes it.
func (vm *VM) interpret() error {
	vm.cur = vm.ip
	line := vm.program.Lines[vm.cur]
	vm.operands = vm.operands[:0]
	if line.Empty() {
		return nil
	}
	if vm.stepHook != nil {
		vm.stepHook(StepInfo{Index: vm.cur, Line: line.Number, Depth: vm.CallDepth(), Tokens: line.Tokens})
	}
	vm.log.Debug().
		Int("ip", vm.cur).
		Int("line", line.Number).
		Int("depth", vm.CallDepth()).
		Strs("tokens", line.Tokens).
		Msg("exec")

	for i := len(line.Tokens) - 1; i >= 0; i-- {
		tok := line.Tokens[i]
		var err error
		switch tok {
		case ast.AssignDef:
			err = vm.execAssign()
		case ast.FuncCallDef:
			err = vm.execFuncCall()
		case ast.EndFuncDef:
			vm.ret()
		case ast.ReturnDef:
			err = vm.execReturn()
		case ast.WhileDef:
			err = vm.execWhile()
		case ast.EndWhileDef:
			err = vm.execEndWhile()
		case ast.IfDef:
			err = vm.execIf()
		case ast.ElseDef:
			err = vm.execElse()
		case ast.FuncDef, ast.EndIfDef:
			vm.operands = vm.operands[:0]
		default:
			if ast.IsOperator(tok) {
				err = vm.execOperator(tok)
			} else {
				vm.push(tokenOperand(tok))
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) push(o operand) {
	vm.operands = append(vm.operands, o)
}

func (vm *VM) pop(what string) (operand, error) {
	n := len(vm.operands)
	if n == 0 {
		return operand{}, newError(KindOperandUnderflow, vm.lineNo(), "%s is missing an operand", what)
	}
	o := vm.operands[n-1]
	vm.operands = vm.operands[:n-1]
	return o, nil
}

// Control transitions. The main loop advances ip by one after every line,
// so each transition stores the index just before the next line to run.

// continueAfter makes the line after idx the next one executed.
func (vm *VM) continueAfter(idx int) {
	vm.ip = idx
}

// continueAt makes idx itself the next line executed (loop re-entry).
func (vm *VM) continueAt(idx int) {
	vm.ip = idx - 1
}

func (vm *VM) target(table map[int]int, what string) (int, error) {
	idx, ok := table[vm.cur]
	if !ok {
		return 0, newError(KindUnmatchedBlock, vm.lineNo(), "%s is not a block marker at the start of the line", what)
	}
	return idx, nil
}

func (vm *VM) call(name string) error {
	def, ok := vm.funcs[name]
	if !ok {
		err := newError(KindUnknownFunction, vm.lineNo(), "function %s is not defined", name)
		err.Hint = suggest(name, vm.funcNames())
		return err
	}
	if vm.CallDepth() >= vm.cfg.MaxCallDepth {
		return newError(KindCallDepthExceeded, vm.lineNo(), "call depth limit %d reached calling %s", vm.cfg.MaxCallDepth, name)
	}
	vm.callStack = append(vm.callStack, vm.cur)
	vm.log.Debug().Str("func", name).Int("from", vm.lineNo()).Int("depth", vm.CallDepth()).Msg("call")
	vm.continueAfter(def)
	return nil
}

func (vm *VM) ret() {
	n := len(vm.callStack)
	if n == 0 {
		return
	}
	back := vm.callStack[n-1]
	vm.callStack = vm.callStack[:n-1]
	vm.log.Debug().Int("line", vm.lineNo()).Int("depth", vm.CallDepth()).Msg("return")
	vm.continueAfter(back)
}

func (vm *VM) execAssign() error {
	target, err := vm.pop(ast.AssignDef)
	if err != nil {
		return err
	}
	if target.computed {
		return newError(KindMalformedStatement, vm.lineNo(), "assign target must be a name, got the value %s", target)
	}
	src, err := vm.pop(ast.AssignDef)
	if err != nil {
		return err
	}
	v, err := vm.resolve(src)
	if err != nil {
		return err
	}
	vm.vars[target.tok] = v
	return nil
}

func (vm *VM) execFuncCall() error {
	callee, err := vm.pop(ast.FuncCallDef)
	if err != nil {
		return err
	}
	switch name := callee.String(); name {
	case ast.PrintDef:
		text, err := vm.drainText()
		if err != nil {
			return err
		}
		vm.emitOutput(Output{Text: text, NewLine: true})
		return nil
	case ast.InputDef:
		prompt, err := vm.drainText()
		if err != nil {
			return err
		}
		vm.emitOutput(Output{Text: prompt, NewLine: true})
		text, err := vm.resolveInput(InputRequest{Prompt: prompt, Line: vm.lineNo()})
		if err != nil {
			return err
		}
		vm.vars[ast.ResultVar] = Str(text)
		return nil
	case ast.StrToIntDef:
		return vm.execStrToInt()
	default:
		return vm.call(name)
	}
}

// drainText empties the operand stack top first, which is textual order,
// and concatenates the resolved values.
func (vm *VM) drainText() (string, error) {
	var b strings.Builder
	for len(vm.operands) > 0 {
		o, _ := vm.pop("")
		v, err := vm.resolve(o)
		if err != nil {
			return "", err
		}
		b.WriteString(v.String())
	}
	return b.String(), nil
}

func (vm *VM) execStrToInt() error {
	o, err := vm.pop(ast.StrToIntDef)
	if err != nil {
		return err
	}
	v, err := vm.resolve(o)
	if err != nil {
		return err
	}
	switch v.Kind() {
	case IntKind:
		vm.vars[ast.ResultVar] = v
		return nil
	case StringKind:
		text := strings.TrimSpace(v.String())
		n, perr := strconv.ParseInt(text, 10, 64)
		if errors.Is(perr, strconv.ErrRange) {
			return newError(KindIntegerOverflow, vm.lineNo(), "%s does not fit in 64 bits", text)
		}
		if perr != nil {
			return newError(KindInvalidConversion, vm.lineNo(), "%q is not an integer", v.String())
		}
		vm.vars[ast.ResultVar] = Int(n)
		return nil
	default:
		return newError(KindInvalidConversion, vm.lineNo(), "%s needs a string, got %s", ast.StrToIntDef, v.Kind())
	}
}

func (vm *VM) execReturn() error {
	if len(vm.operands) > 0 {
		o, _ := vm.pop(ast.ReturnDef)
		v, err := vm.resolve(o)
		if err != nil {
			return err
		}
		vm.vars[ast.ResultVar] = v
	}
	vm.ret()
	return nil
}

func (vm *VM) popCondition(what string) (bool, error) {
	o, err := vm.pop(what)
	if err != nil {
		return false, err
	}
	v, err := vm.resolve(o)
	if err != nil {
		return false, err
	}
	if v.Kind() != BoolKind {
		return false, newError(KindNonBooleanCondition, vm.lineNo(), "%s condition %s resolved to %s", what, o, v.Kind())
	}
	return v.Bool(), nil
}

func (vm *VM) execWhile() error {
	cond, err := vm.popCondition(ast.WhileDef)
	if err != nil {
		return err
	}
	if cond {
		return nil
	}
	end, err := vm.target(vm.jumps.WhileEnd, ast.WhileDef)
	if err != nil {
		return err
	}
	vm.continueAfter(end)
	return nil
}

func (vm *VM) execEndWhile() error {
	head, err := vm.target(vm.jumps.EndWhile, ast.EndWhileDef)
	if err != nil {
		return err
	}
	vm.continueAt(head)
	return nil
}

func (vm *VM) execIf() error {
	cond, err := vm.popCondition(ast.IfDef)
	if err != nil {
		return err
	}
	if cond {
		return nil
	}
	if alt, ok := vm.jumps.IfElse[vm.cur]; ok {
		vm.continueAfter(alt)
		return nil
	}
	end, err := vm.target(vm.jumps.IfEnd, ast.IfDef)
	if err != nil {
		return err
	}
	vm.continueAfter(end)
	return nil
}

// execElse only runs when the if-body fell through, so it skips the
// else-body.
func (vm *VM) execElse() error {
	end, err := vm.target(vm.jumps.ElseEnd, ast.ElseDef)
	if err != nil {
		return err
	}
	vm.continueAfter(end)
	return nil
}

func (vm *VM) execOperator(op string) error {
	lo, err := vm.pop(op)
	if err != nil {
		return err
	}
	ro, err := vm.pop(op)
	if err != nil {
		return err
	}
	left, err := vm.resolve(lo)
	if err != nil {
		return err
	}
	right, err := vm.resolve(ro)
	if err != nil {
		return err
	}
	v, err := vm.evalBinary(op, left, right)
	if err != nil {
		return err
	}
	vm.push(valueOperand(v))
	return nil
}
