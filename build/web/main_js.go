//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/gosuda/brewin"
	bruntime "github.com/gosuda/brewin/runtime"
)

type runResult struct {
	Outputs []bruntime.Output `json:"outputs"`
	Error   string            `json:"error,omitempty"`
	Line    int               `json:"line,omitempty"`
}

type inputRequestPayload struct {
	Prompt string `json:"prompt"`
	Line   int    `json:"line"`
}

const abortSentinel = "__BREWIN_ABORT__"

// inputPrompt asks the page for the next answer once the queued inputs are
// used up.
func inputPrompt(req bruntime.InputRequest) (string, error) {
	fn := js.Global().Get("brewinInputNext")
	if fn.Type() != js.TypeFunction {
		return "", nil
	}
	b, _ := json.Marshal(inputRequestPayload{Prompt: req.Prompt, Line: req.Line})
	v := fn.Invoke(string(b))
	if v.IsUndefined() || v.IsNull() {
		return "", nil
	}
	out := v.String()
	if strings.TrimSpace(out) == abortSentinel {
		return "", fmt.Errorf("input queue is empty for line %d (add input and run again)", req.Line)
	}
	return out, nil
}

func encode(r runResult) string {
	b, _ := json.Marshal(r)
	return string(b)
}

// runProgram(source, inputsJSON?, configYAML?)
func runProgram(this js.Value, args []js.Value) any {
	result := runResult{Outputs: nil}
	if len(args) < 1 {
		result.Error = "brewinRun requires the program source"
		return encode(result)
	}

	cfg := bruntime.DefaultConfig()
	if len(args) > 2 {
		parsed, err := bruntime.ParseConfig([]byte(args[2].String()))
		if err != nil {
			result.Error = err.Error()
			return encode(result)
		}
		cfg = parsed
	}
	cfg.Trace = false
	cfg = cfg.Bounded()

	var queued []string
	if len(args) > 1 {
		if strings.TrimSpace(args[1].String()) != "" {
			_ = json.Unmarshal([]byte(args[1].String()), &queued)
		}
	}

	vm, err := brewin.Compile(args[0].String(), cfg)
	if err != nil {
		result.Error = err.Error()
		result.Line = bruntime.ErrorLine(err)
		return encode(result)
	}
	if len(queued) > 0 {
		vm.EnqueueInput(queued...)
	}
	vm.SetInputProvider(inputPrompt)

	out, err := vm.Run(context.Background())
	result.Outputs = out
	if err != nil {
		result.Error = err.Error()
		result.Line = bruntime.ErrorLine(err)
	}
	return encode(result)
}

func main() {
	js.Global().Set("brewinRun", js.FuncOf(runProgram))
	select {}
}
