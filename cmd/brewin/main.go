package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	tea "charm.land/bubbletea/v2"
	bruntime "github.com/gosuda/brewin/runtime"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	numeric := flag.String("numeric", "", "numeric model: integer|float")
	lenient := flag.Bool("lenient", false, "allow operands of different kinds")
	maxDepth := flag.Int("max-depth", 0, "maximum call depth (0 keeps the configured value)")
	maxSteps := flag.Int("max-steps", -1, "maximum executed lines, 0 for unlimited (-1 keeps the configured value)")
	trace := flag.Bool("trace", false, "log every executed line")
	plain := flag.Bool("plain", false, "run without the TUI")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <program.brewin>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	vmCfg := bruntime.DefaultConfig()
	if *configPath != "" {
		loaded, err := bruntime.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		vmCfg = loaded
	}
	if *numeric != "" {
		vmCfg.Numeric = bruntime.NumericModel(strings.ToLower(*numeric))
	}
	if *lenient {
		vmCfg.Strict = false
	}
	if *maxDepth > 0 {
		vmCfg.MaxCallDepth = *maxDepth
	}
	if *maxSteps >= 0 {
		vmCfg.MaxSteps = *maxSteps
	}
	if err := vmCfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	traceOn := *trace || vmCfg.Trace
	// the CLI installs its own trace sink
	vmCfg.Trace = false

	path := flag.Arg(0)
	lines, err := loadScript(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load program: %v\n", err)
		os.Exit(1)
	}

	cfg := appConfig{
		path:  path,
		lines: lines,
		vm:    vmCfg,
		trace: traceOn,
	}

	if *plain {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runPlain(ctx, cfg); err != nil {
			fmt.Fprintln(os.Stderr, formatError(err, lines))
			stop()
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(newModel(cfg))
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(model); ok && m.failed {
		os.Exit(1)
	}
}
