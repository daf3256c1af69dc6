package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gosuda/brewin"
	bruntime "github.com/gosuda/brewin/runtime"
)

type runResult struct {
	Outputs []bruntime.Output `json:"outputs"`
	Error   string            `json:"error,omitempty"`
	Line    int               `json:"line,omitempty"`
}

// Run executes a Brewin program and returns a JSON result.
// inputsJSON format: ["1","hello", ...], answered in order by `input`.
// configYAML uses the same keys as the CLI config file and may be empty.
func Run(source, inputsJSON, configYAML string) string {
	result := runResult{Outputs: nil}

	cfg, err := bruntime.ParseConfig([]byte(configYAML))
	if err != nil {
		result.Error = err.Error()
		return encode(result)
	}
	// no stderr on mobile, and no way to interrupt a runaway loop
	cfg.Trace = false
	cfg = cfg.Bounded()

	var queued []string
	if strings.TrimSpace(inputsJSON) != "" {
		if err := json.Unmarshal([]byte(inputsJSON), &queued); err != nil {
			result.Error = fmt.Sprintf("invalid inputs json: %v", err)
			return encode(result)
		}
	}

	vm, err := brewin.Compile(source, cfg)
	if err != nil {
		return encode(withError(result, err))
	}
	if len(queued) > 0 {
		vm.EnqueueInput(queued...)
	}

	out, err := vm.Run(context.Background())
	result.Outputs = out
	if err != nil {
		result = withError(result, err)
	}
	return encode(result)
}

func withError(r runResult, err error) runResult {
	r.Error = err.Error()
	if line := bruntime.ErrorLine(err); line > 0 {
		r.Line = line
	}
	return r
}

func encode(r runResult) string {
	b, _ := json.Marshal(r)
	return string(b)
}
