package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/ArturMroz/clox/internal/config"
	"github.com/ArturMroz/clox/internal/vm"
)

func main() {
	switch len(os.Args) {
	case 1:
		repl()
	case 2:
		runFile(os.Args[1])
	default:
		fmt.Fprintln(os.Stderr, "Usage: clox [path]")
		os.Exit(config.ExitUsage)
	}
}

func runFile(path string) {
	opts := loadOptions(filepath.Dir(path))

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file %q: %v\n", path, err)
		os.Exit(config.ExitIOError)
	}

	machine := vm.New(opts)
	machine.SetOutput(os.Stdout, errorWriter())
	defer machine.Free()

	switch err := machine.Interpret(string(source)); {
	case errors.Is(err, vm.ErrCompile):
		os.Exit(config.ExitCompileError)
	case errors.Is(err, vm.ErrRuntime):
		os.Exit(config.ExitRuntimeError)
	}
}

func repl() {
	opts := loadOptions(".")

	machine := vm.New(opts)
	machine.SetOutput(os.Stdout, errorWriter())
	defer machine.Free()

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			if interactive {
				fmt.Println()
			}
			return
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		// errors were already reported; the REPL just moves on
		_ = machine.Interpret(line)
	}
}

func loadOptions(dir string) config.Options {
	opts, err := config.LoadOptions(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if opts.LogGC {
		commonlog.Configure(2, nil)
	}

	return opts
}

// errorWriter wraps stderr so diagnostics come out red on capable
// terminals. NO_COLOR (https://no-color.org/) and dumb terminals disable it.
func errorWriter() io.Writer {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return os.Stderr
	}
	if os.Getenv("TERM") == "dumb" {
		return os.Stderr
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return os.Stderr
	}
	return colorWriter{os.Stderr}
}

type colorWriter struct {
	w io.Writer
}

func (c colorWriter) Write(p []byte) (int, error) {
	if _, err := fmt.Fprintf(c.w, "\x1b[31m%s\x1b[0m", p); err != nil {
		return 0, err
	}
	return len(p), nil
}
