package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/npillmayer/ebnfkit/regex"
)

// The REPL is a sandbox for regex experiments: set a pattern once, then
// throw inputs at it.
//
//   re> :re [a-e]+x
//   re> aax
//   match
//   re> :find
//   re> zzaax!
//   "aax" @ 2..5

func replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactive regex sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			repl, err := readline.New("re> ")
			if err != nil {
				return err
			}
			defer repl.Close()
			pterm.Info.Println("Set a pattern with :re PATTERN, toggle search mode with :find,")
			pterm.Info.Println("every other line is matched. Quit with <ctrl>D")
			run(repl)
			return nil
		},
	}
}

func run(repl *readline.Instance) {
	var r *regex.Regex
	find := false
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF on <ctrl>D
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ":find":
			find = !find
			pterm.Info.Printf("search mode %v\n", find)
		case strings.HasPrefix(line, ":re "):
			pattern := strings.TrimSpace(strings.TrimPrefix(line, ":re "))
			compiled, err := regex.Compile(pattern)
			if err != nil {
				pterm.Error.Println(err.Error())
				continue
			}
			r = compiled
			pterm.Success.Printf("pattern %q compiled\n", pattern)
		default:
			if r == nil {
				pterm.Error.Println("no pattern set, use :re PATTERN")
				continue
			}
			if find {
				span, ok := r.Find([]byte(line))
				if ok {
					pterm.Success.Printf("%q @ %d..%d\n", line[span.From():span.To()], span.From(), span.To())
				} else {
					pterm.Error.Println("no match")
				}
				continue
			}
			if r.MatchStrict([]byte(line)) {
				pterm.Success.Println("match")
			} else {
				pterm.Error.Println("no match")
			}
		}
	}
}
