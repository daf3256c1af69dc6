package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gosuda/brewin"
	bruntime "github.com/gosuda/brewin/runtime"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
)

func runPlain(ctx context.Context, cfg appConfig) error {
	vm, err := brewin.CompileLines(cfg.lines, cfg.vm)
	if err != nil {
		return err
	}
	if cfg.trace {
		vm.SetTraceLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	vm.SetOutputHook(func(out bruntime.Output) {
		if out.NewLine {
			fmt.Println(out.Text)
		} else {
			fmt.Print(out.Text)
		}
	})

	vm.SetInputProvider(func(req bruntime.InputRequest) (string, error) {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", context.Canceled
		}
		if err != nil {
			return "", fmt.Errorf("read input for line %d: %w", req.Line, err)
		}
		ln.AppendHistory(line)
		return line, nil
	})

	_, err = vm.Run(ctx)
	return err
}
