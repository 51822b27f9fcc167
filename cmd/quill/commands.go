package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/binder"
	"quill/interpreter-go/pkg/config"
	"quill/interpreter-go/pkg/fixture"
	"quill/interpreter-go/pkg/interpreter"
	"quill/interpreter-go/pkg/printer"
	"quill/interpreter-go/pkg/runtime"
)

func (c *cli) flagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("quill "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	configPath := fs.String("config", "", "path to quill.yml (default $QUILL_CONFIG or ./quill.yml)")
	return fs, configPath
}

// parseSource parses flags and returns the single fixture argument.
func (c *cli) parseSource(fs *flag.FlagSet, args []string) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "%s: expected one fixture, got %d argument(s)\n", fs.Name(), fs.NArg())
		return "", false
	}
	return fs.Arg(0), true
}

func (c *cli) loadConfig(path string) (*config.Config, bool) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return nil, false
	}
	return cfg, true
}

func (c *cli) loadProgram(ctx context.Context, source string, bind bool) (*ast.Program, bool) {
	prog, err := fixture.Load(ctx, source)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return nil, false
	}
	if bind {
		if err := binder.Bind(prog, interpreter.GlobalNames()); err != nil {
			fmt.Fprintf(c.stderr, "%s: %v\n", source, err)
			return nil, false
		}
	}
	return prog, true
}

func (c *cli) reportDiagnostics(diags interpreter.Diagnostics) {
	for _, d := range diags {
		fmt.Fprintln(c.stderr, d.String())
	}
}

func (c *cli) runProgram(args []string) int {
	fs, configPath := c.flagSet("run")
	level := fs.Int("O", -1, "optimization level 0-2 (default from config)")
	check := fs.Bool("check", false, "refuse to run programs with check errors")
	showResult := fs.Bool("result", false, "print the program's value")
	source, ok := c.parseSource(fs, args)
	if !ok {
		return 2
	}
	cfg, ok := c.loadConfig(*configPath)
	if !ok {
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	prog, ok := c.loadProgram(ctx, source, true)
	if !ok {
		return 1
	}
	opts := cfg.Options()
	if *level >= 0 {
		opts.Optimize = *level
	}
	opts.Check = opts.Check || *check
	opts.Stdout = c.stdout

	value, diags, err := interpreter.New(opts).Execute(ctx, prog)
	c.reportDiagnostics(diags)
	if err != nil {
		if !diags.HasErrors() {
			fmt.Fprintln(c.stderr, interpreter.DescribeError(err))
		}
		return 1
	}
	if *showResult && value != nil && value.Kind() != runtime.KindVoid {
		fmt.Fprintln(c.stdout, runtime.ToString(value))
	}
	return 0
}

func (c *cli) runCheck(args []string) int {
	fs, configPath := c.flagSet("check")
	werror := fs.Bool("Werror", false, "treat warnings as errors")
	source, ok := c.parseSource(fs, args)
	if !ok {
		return 2
	}
	cfg, ok := c.loadConfig(*configPath)
	if !ok {
		return 1
	}
	prog, ok := c.loadProgram(context.Background(), source, true)
	if !ok {
		return 1
	}
	opts := cfg.Options()
	opts.WarningsAsErrors = opts.WarningsAsErrors || *werror
	diags := interpreter.New(opts).CheckProgram(prog)
	c.reportDiagnostics(diags)
	if diags.HasErrors() {
		return 1
	}
	return 0
}

func (c *cli) runPrint(args []string) int {
	fs, configPath := c.flagSet("print")
	golden := fs.String("check", "", "compare the rendering with this file and show a diff")
	source, ok := c.parseSource(fs, args)
	if !ok {
		return 2
	}
	cfg, ok := c.loadConfig(*configPath)
	if !ok {
		return 1
	}
	prog, ok := c.loadProgram(context.Background(), source, false)
	if !ok {
		return 1
	}
	rendered := printer.String(prog, cfg.SyntaxTable(), cfg.FormatConfig(), 0)
	if *golden == "" {
		fmt.Fprintln(c.stdout, rendered)
		return 0
	}
	data, err := os.ReadFile(*golden)
	if err != nil {
		fmt.Fprintf(c.stderr, "print: read %s: %v\n", *golden, err)
		return 1
	}
	want := strings.TrimRight(string(data), "\n")
	if want == rendered {
		return 0
	}
	fmt.Fprintf(c.stderr, "%s does not match %s:\n", source, *golden)
	c.writeLineDiff(want, rendered)
	return 1
}

// writeLineDiff prints a line-oriented diff of want against got.
func (c *cli) writeLineDiff(want, got string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want+"\n", got+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				fmt.Fprint(c.stderr, prefix+line)
			}
		}
	}
}

func (c *cli) runOptimize(args []string) int {
	fs, configPath := c.flagSet("optimize")
	level := fs.Int("O", -1, "optimization level 0-2 (default from config, or 2 when unset)")
	format := fs.String("format", string(fixture.FormatYAML), "output format: yaml or json")
	source, ok := c.parseSource(fs, args)
	if !ok {
		return 2
	}
	cfg, ok := c.loadConfig(*configPath)
	if !ok {
		return 1
	}
	prog, ok := c.loadProgram(context.Background(), source, true)
	if !ok {
		return 1
	}
	lvl := *level
	if lvl < 0 {
		lvl = cfg.Optimize
		if lvl == 0 {
			lvl = 2
		}
	}
	if lvl > 2 {
		fmt.Fprintf(c.stderr, "optimize: level must be 0, 1 or 2, got %d\n", lvl)
		return 2
	}
	optimized := interpreter.Optimize(prog, lvl).(*ast.Program)
	data, err := fixture.Marshal(optimized, fixture.Format(*format))
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	if _, err := c.stdout.Write(data); err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	return 0
}
