// Package repl compiles classes typed at an interactive prompt.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"jmmc/internal/compiler"
	"jmmc/internal/errors"
)

const (
	PROMPT       = ">> "
	CONTINUATION = ".. "
	// END on a line of its own compiles the buffered source
	END = "."
)

// Start reads source from in until a line holding only END, compiles it with cfg
// and writes the Jasmin listing or the rendered errors to out. A pending buffer
// is compiled at end of input.
func Start(in io.Reader, out io.Writer, cfg compiler.Config) {
	scanner := bufio.NewScanner(in)
	var buffer []string

	fmt.Fprint(out, PROMPT)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != END {
			buffer = append(buffer, line)
			fmt.Fprint(out, CONTINUATION)
			continue
		}
		compile(out, strings.Join(buffer, "\n"), cfg)
		buffer = nil
		fmt.Fprint(out, PROMPT)
	}
	if len(buffer) > 0 {
		compile(out, strings.Join(buffer, "\n"), cfg)
	}
	fmt.Fprintln(out)
}

func compile(out io.Writer, source string, cfg compiler.Config) {
	if strings.TrimSpace(source) == "" {
		return
	}
	text, err := compiler.Compile("<repl>", source, cfg)
	if err != nil {
		fmt.Fprint(out, errors.NewErrorReporter("<repl>", source).Format(err))
		return
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, text)
	fmt.Fprintln(out, color.GreenString("ok"))
}
