package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuda/brewin"
	bruntime "github.com/gosuda/brewin/runtime"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <program.brewin>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := dump(os.Stdout, string(src)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dump(w io.Writer, src string) error {
	prog, err := brewin.Parse(src)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, headStyle.Render("lines"))
	for i, l := range prog.Lines {
		if l.Empty() {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%4d  (empty)", i)))
			continue
		}
		fmt.Fprintf(w, "%4d  L%-4d indent=%-2d %s\n", i, l.Number, l.Indent, strings.Join(quoteAll(l.Tokens), " "))
	}

	jt, funcs, err := bruntime.ResolveBlocks(prog)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, headStyle.Render("functions"))
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %4d -> %d\n", name, funcs[name], jt.FuncEnd[funcs[name]])
	}

	tables := []struct {
		name  string
		table map[int]int
	}{
		{"while -> endwhile", jt.WhileEnd},
		{"endwhile -> while", jt.EndWhile},
		{"if -> else", jt.IfElse},
		{"if -> endif", jt.IfEnd},
		{"else -> endif", jt.ElseEnd},
	}
	for _, t := range tables {
		fmt.Fprintln(w, headStyle.Render(t.name))
		keys := make([]int, 0, len(t.table))
		for k := range t.table {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %4d -> %d\n", k, t.table[k])
		}
	}
	return nil
}

func quoteAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = "[" + t + "]"
	}
	return out
}
