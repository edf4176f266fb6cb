/*
Command ebnfkit drives the parsing toolkit from the command line.

	ebnfkit fmt [--pretty] [file...]     format JSON from files or stdin
	ebnfkit match PATTERN [input...]     match a regex against inputs
	ebnfkit check GRAMMAR-FILE           LL(1)-check an EBNF grammar
	ebnfkit repl                         interactive regex sandbox

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/ebnfkit/ebnf"
	"github.com/npillmayer/ebnfkit/langs/json"
	"github.com/npillmayer/ebnfkit/regex"
)

// tracer traces with key 'ebnfkit.cli'.
func tracer() tracing.Trace {
	return tracing.Select("ebnfkit.cli")
}

func main() {
	gtrace.SyntaxTracer = gologadapter.New()
	var level string

	root := &cobra.Command{
		Use:           "ebnfkit",
		Short:         "grammar-driven parsing toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			tracer().SetTraceLevel(traceLevel(level))
		},
	}
	root.PersistentFlags().StringVar(&level, "trace", "Info", "Trace level [Debug|Info|Error]")

	root.AddCommand(fmtCommand())
	root.AddCommand(matchCommand())
	root.AddCommand(checkCommand())
	root.AddCommand(replCommand())

	if err := root.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}

// --- fmt --------------------------------------------------------------

func fmtCommand() *cobra.Command {
	var pretty, tree bool
	cmd := &cobra.Command{
		Use:   "fmt [file...]",
		Short: "format JSON from files or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := json.NewFormatter()
			if err != nil {
				return err
			}
			formatter.Pretty = pretty
			if len(args) == 0 {
				return formatBuffer(formatter, os.Stdin, tree)
			}
			for _, filename := range args {
				f, err := os.Open(filename)
				if err != nil {
					return err
				}
				err = formatBuffer(formatter, f, tree)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", filename, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print with two-space indents")
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "dump the AST instead of formatting")
	return cmd
}

func formatBuffer(formatter *json.Formatter, in io.Reader, tree bool) error {
	buf, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	if tree {
		ast, ok := formatter.Parse(buf)
		if !ok {
			return fmt.Errorf("input is not valid JSON")
		}
		fmt.Print(ast.TreeString(buf))
		return nil
	}
	return formatter.Format(buf, os.Stdout)
}

// --- match ------------------------------------------------------------

func matchCommand() *cobra.Command {
	var find bool
	cmd := &cobra.Command{
		Use:   "match PATTERN [input...]",
		Short: "match a regex against inputs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := regex.Compile(args[0])
			if err != nil {
				return err
			}
			for _, input := range args[1:] {
				if find {
					span, ok := r.Find([]byte(input))
					if ok {
						pterm.Success.Printf("%q @ %d..%d\n", input[span.From():span.To()], span.From(), span.To())
					} else {
						pterm.Error.Printf("no match in %q\n", input)
					}
					continue
				}
				if r.MatchStrict([]byte(input)) {
					pterm.Success.Printf("%q matches\n", input)
				} else {
					pterm.Error.Printf("%q does not match\n", input)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&find, "find", "f", false, "search for the leftmost match instead of strict matching")
	return cmd
}

// --- check ------------------------------------------------------------

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check GRAMMAR-FILE",
		Short: "LL(1)-check an EBNF grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := ebnf.NewParserEBNF(string(buf), nil)
			if err != nil {
				return err
			}
			for _, prod := range p.Productions() {
				if len(prod.Identifier) == 0 {
					continue
				}
				fmt.Printf(" First(%20s)  =  %s\n", prod.Identifier, setString(p.FirstSet(prod)))
				fmt.Printf("Follow(%20s)  =  %s\n", prod.Identifier, setString(p.FollowSet(prod)))
			}
			conflicts := p.Conflicts()
			if len(conflicts) == 0 {
				pterm.Success.Println("grammar is LL(1)")
				return nil
			}
			for _, c := range conflicts {
				pterm.Error.Println(c.String())
			}
			return fmt.Errorf("grammar is not LL(1)")
		},
	}
}

func setString(set interface{ Test(uint) bool }) string {
	out := []byte{'{'}
	for i := uint(0); i < 256; i++ {
		if !set.Test(i) {
			continue
		}
		if len(out) > 1 {
			out = append(out, ' ')
		}
		if i > 0x20 && i < 0x7f {
			out = append(out, byte(i))
		} else {
			out = append(out, []byte(fmt.Sprintf("0x%02x", i))...)
		}
	}
	return string(append(out, '}'))
}
