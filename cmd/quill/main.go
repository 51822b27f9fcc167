package main

import (
	"fmt"
	"io"
	"os"
)

const cliToolVersion = "quill 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cli carries the output streams so commands can be exercised in tests.
type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		c.printUsage()
		return 1
	}
	switch args[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "run":
		return c.runProgram(args[1:])
	case "check":
		return c.runCheck(args[1:])
	case "print":
		return c.runPrint(args[1:])
	case "optimize":
		return c.runOptimize(args[1:])
	case "repl":
		return c.runRepl(args[1:])
	default:
		return c.runProgram(args)
	}
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  quill [run] [-config quill.yml] [-O level] [-check] [-result] <fixture>")
	fmt.Fprintln(c.stderr, "  quill check [-config quill.yml] [-Werror] <fixture>")
	fmt.Fprintln(c.stderr, "  quill print [-config quill.yml] [-check golden.txt] <fixture>")
	fmt.Fprintln(c.stderr, "  quill optimize [-config quill.yml] [-O level] [-format yaml|json] <fixture>")
	fmt.Fprintln(c.stderr, "  quill repl [-config quill.yml]")
	fmt.Fprintln(c.stderr, "  quill version")
	fmt.Fprintln(c.stderr, "")
	fmt.Fprintln(c.stderr, "A fixture is a YAML or JSON file, or git+<repo>//<path>[@<rev>].")
}
