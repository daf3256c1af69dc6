package main

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/gosuda/brewin"
	bruntime "github.com/gosuda/brewin/runtime"
	"github.com/rs/zerolog"
)

// send delivers msg unless ctx ends first. It reports whether msg was sent.
func send(ctx context.Context, events chan<- tea.Msg, msg tea.Msg) bool {
	select {
	case events <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// traceSink forwards formatted trace events to the TUI.
type traceSink struct {
	ctx    context.Context
	events chan<- tea.Msg
}

func (s traceSink) Write(p []byte) (int, error) {
	send(s.ctx, s.events, vmTraceMsg{text: strings.TrimRight(string(p), "\n")})
	return len(p), nil
}

func runVM(ctx context.Context, cfg appConfig, events chan<- tea.Msg) {
	defer close(events)
	vm, err := brewin.CompileLines(cfg.lines, cfg.vm)
	if err != nil {
		send(ctx, events, vmDoneMsg{err: err})
		return
	}
	if cfg.trace {
		vm.SetTraceLogger(zerolog.New(zerolog.ConsoleWriter{
			Out:     traceSink{ctx: ctx, events: events},
			NoColor: true,
		}))
	}

	vm.SetOutputHook(func(out bruntime.Output) {
		send(ctx, events, vmOutputMsg{out: out})
	})
	vm.SetInputProvider(func(req bruntime.InputRequest) (string, error) {
		resp := make(chan string, 1)
		if !send(ctx, events, vmPromptMsg{req: req, resp: resp}) {
			return "", ctx.Err()
		}
		select {
		case v := <-resp:
			return v, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	_, err = vm.Run(ctx)
	send(ctx, events, vmDoneMsg{err: err})
}
