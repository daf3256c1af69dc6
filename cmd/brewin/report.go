package main

import (
	"errors"
	"fmt"
	"strings"

	bruntime "github.com/gosuda/brewin/runtime"
)

// formatError renders err, quoting the offending source line when the fault
// carries one.
func formatError(err error, lines []string) string {
	var rerr *bruntime.Error
	if !errors.As(err, &rerr) || rerr.Line < 1 || rerr.Line > len(lines) {
		return err.Error()
	}
	return fmt.Sprintf("%v\n  %4d | %s", err, rerr.Line, strings.TrimSpace(lines[rerr.Line-1]))
}
