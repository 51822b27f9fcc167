package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"quill/interpreter-go/pkg/binder"
	"quill/interpreter-go/pkg/fixture"
	"quill/interpreter-go/pkg/interpreter"
	"quill/interpreter-go/pkg/runtime"
)

const (
	historyFile = ".quill_history"
	promptMain  = "quill> "
	promptCont  = "  ...> "
)

const replHelp = `Enter statements as YAML or JSON fixture nodes, for example
  {type: VarDecl, name: x, init: 1}
  [{type: Binary, op: "+", left: {type: Var, name: x}, right: 2}]
A single line runs as soon as it decodes; otherwise input continues until
an empty line.

Commands:
  :help          show this text
  :load <source> run a fixture file or git+ source in this session
  :reset         discard every binding
  :quit          leave the REPL
`

// replSession keeps one binder and one interpreter session so later inputs
// see the variables, functions and classes of earlier ones.
type replSession struct {
	ctx     context.Context
	interp  *interpreter.Interpreter
	binder  *binder.Binder
	decoder *fixture.Decoder
	session *interpreter.Session
}

func newReplSession(ctx context.Context, opts interpreter.Options) *replSession {
	r := &replSession{ctx: ctx, interp: interpreter.New(opts)}
	r.reset()
	return r
}

func (r *replSession) reset() {
	r.binder = binder.New(interpreter.GlobalNames())
	r.decoder = fixture.NewDecoder()
	r.session = r.interp.NewSession(r.ctx)
}

// eval decodes, binds and runs one input. It returns the rendered value, or
// an empty string when there is nothing to show.
func (r *replSession) eval(src []byte) (string, error) {
	prog, err := r.decoder.Decode(src)
	if err != nil {
		return "", err
	}
	if err := r.binder.Bind(prog); err != nil {
		return "", err
	}
	value, diags, err := r.session.Run(prog)
	var notes []string
	for _, d := range diags {
		notes = append(notes, d.String())
	}
	if err != nil {
		if !diags.HasErrors() {
			notes = append(notes, interpreter.DescribeError(err))
		}
		return "", errors.New(strings.Join(notes, "\n"))
	}
	out := ""
	if !runtime.IsNull(value) && value.Kind() != runtime.KindVoid {
		out = runtime.ToString(value)
	}
	if len(notes) > 0 {
		out = strings.Join(append(notes, out), "\n")
	}
	return out, nil
}

func (c *cli) runRepl(args []string) int {
	fs, configPath := c.flagSet("repl")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(c.stderr, "quill repl does not take arguments (received %s)\n", strings.Join(fs.Args(), " "))
		return 2
	}
	cfg, ok := c.loadConfig(*configPath)
	if !ok {
		return 1
	}
	opts := cfg.Options()
	opts.Stdout = c.stdout
	repl := newReplSession(context.Background(), opts)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Fprintln(c.stdout, cliToolVersion+" (:help for help)")
	for {
		src, ok := readInput(ln, repl.decoder)
		if !ok {
			fmt.Fprintln(c.stdout)
			break
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if strings.HasPrefix(trimmed, ":") {
			if c.replCommand(repl, trimmed) {
				break
			}
			continue
		}
		out, err := repl.eval([]byte(src))
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			continue
		}
		if out != "" {
			fmt.Fprintln(c.stdout, out)
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// replCommand handles a ':' command and reports whether the REPL should end.
func (c *cli) replCommand(repl *replSession, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprint(c.stdout, replHelp)
	case ":reset":
		repl.reset()
		fmt.Fprintln(c.stdout, "session reset.")
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(c.stderr, "usage: :load <source>")
			return false
		}
		data, err := fixture.Read(repl.ctx, fields[1])
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			return false
		}
		out, err := repl.eval(data)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			return false
		}
		if out != "" {
			fmt.Fprintln(c.stdout, out)
		}
	default:
		fmt.Fprintf(c.stderr, "unknown command %s. Type :help for help.\n", fields[0])
	}
	return false
}

// readInput returns one complete input. A first line that is a command or
// already decodes stands alone; anything else accumulates until a blank line.
func readInput(ln *liner.State, probe *fixture.Decoder) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C abandons the pending input.
			return "", true
		}
		if b.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, ":") || singleLineComplete(probe, line) {
				return line, true
			}
		} else if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// singleLineComplete reports whether a line is a whole flow-style document.
// Block-style YAML could continue on the next line, so only flow
// collections are accepted early.
func singleLineComplete(probe *fixture.Decoder, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return false
	}
	_, err := probe.Probe([]byte(line))
	return err == nil
}
