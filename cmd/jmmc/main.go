package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/xyproto/env/v2"
	"jmmc/internal/compiler"
	"jmmc/internal/errors"
	"jmmc/internal/ir"
	"jmmc/internal/regalloc"
	"jmmc/repl"
)

const usage = `Usage: jmmc [-o] [-r=<n>] [-v] [-d] <file.jmm>
       jmmc [-o] [-r=<n>] [-v] -i

  -o      run constant folding and propagation before lowering
  -r=<n>  register allocation: -1 disables it, 0 minimises registers,
          n > 0 caps the locals of every method
  -v      raise log verbosity (repeatable)
  -d      print the allocated IR to stderr before the Jasmin listing
  -i      read classes from stdin, each ended by a line holding only "."

Defaults come from JMMC_OPTIMIZE, JMMC_REGISTER_ALLOCATION and JMMC_VERBOSE.
`

// options is the command line after environment defaults and flags are merged
type options struct {
	config      compiler.Config
	verbosity   int
	dump        bool
	interactive bool
	path        string
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n\n%s", color.RedString("error"), err, usage)
		os.Exit(2)
	}

	commonlog.Configure(opts.verbosity, nil)

	if opts.interactive {
		repl.Start(os.Stdin, os.Stdout, opts.config)
		return
	}

	startTime := time.Now()
	source, err := os.ReadFile(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	result, err := compiler.CompileSource(opts.path, string(source), opts.config)
	duration := formatDuration(time.Since(startTime))
	if err != nil {
		reporter := errors.NewErrorReporter(opts.path, string(source))
		fmt.Fprint(os.Stderr, reporter.Format(err))
		fmt.Fprintln(os.Stderr, color.RedString("Compilation failed after %s", duration))
		os.Exit(1)
	}

	if opts.dump {
		fmt.Fprintln(os.Stderr, ir.PrintUnit(result.Unit))
	}
	fmt.Print(result.Jasmin())
	fmt.Fprintln(os.Stderr, color.GreenString("Successfully compiled %s in %s", opts.path, duration))
}

// parseArgs merges the JMMC_* environment defaults with the flags in args
func parseArgs(args []string) (options, error) {
	opts := options{
		config: compiler.Config{
			Optimize:           env.Bool("JMMC_OPTIMIZE"),
			RegisterAllocation: env.Int("JMMC_REGISTER_ALLOCATION", regalloc.Disabled),
			Verify:             true,
		},
		verbosity: env.Int("JMMC_VERBOSE", -1),
	}

	for _, arg := range args {
		switch {
		case arg == "-o":
			opts.config.Optimize = true
		case arg == "-v":
			opts.verbosity++
		case arg == "-d":
			opts.dump = true
		case arg == "-i":
			opts.interactive = true
		case strings.HasPrefix(arg, "-r="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "-r="))
			if err != nil {
				return opts, fmt.Errorf("invalid register count %q", strings.TrimPrefix(arg, "-r="))
			}
			opts.config.RegisterAllocation = n
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			if opts.path != "" {
				return opts, fmt.Errorf("more than one input file")
			}
			opts.path = arg
		}
	}

	if opts.interactive {
		if opts.path != "" {
			return opts, fmt.Errorf("-i does not take an input file")
		}
		return opts, nil
	}
	if opts.path == "" {
		return opts, fmt.Errorf("no input file")
	}
	return opts, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
