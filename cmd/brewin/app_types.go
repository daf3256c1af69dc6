package main

import (
	tea "charm.land/bubbletea/v2"
	bruntime "github.com/gosuda/brewin/runtime"
)

type appConfig struct {
	path  string
	lines []string
	vm    bruntime.Config
	trace bool
}

type vmStartedMsg struct {
	events <-chan tea.Msg
	cancel func()
}

type vmOutputMsg struct {
	out bruntime.Output
}

type vmTraceMsg struct {
	text string
}

type vmDoneMsg struct {
	err error
}

type vmPromptMsg struct {
	req  bruntime.InputRequest
	resp chan string
}

type vmPollMsg struct{}

type pendingInput struct {
	req  bruntime.InputRequest
	resp chan string
}

// transcriptLine is one rendered row of the viewport.
type transcriptLine struct {
	text  string
	trace bool
}
