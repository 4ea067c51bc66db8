// Command clayout prints the memory layout of C structs and unions.
//
//	clayout -types types.json [-type NAME] [-profile NAME|FILE] [-format text|json]
//	clayout -fixtures [-profile NAME|FILE]
//	clayout -list-profiles
//
// Exit status is 0 on success, 1 for unreadable or malformed input and
// invalid profiles, and 2 when a declaration cannot be laid out.
package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/internal/fixtures"
	"github.com/wippyai/clayout/layout"
)

type options struct {
	typesFile    string
	typeName     string
	profile      string
	format       string
	fixtures     bool
	listProfiles bool
	verify       bool
	interactive  bool
	verbose      bool
	color        bool
}

// entry is one laid out declaration.
type entry struct {
	name string
	res  *layout.Result
}

func main() {
	var opts options
	flag.StringVar(&opts.typesFile, "types", "", "Path to a JSON or TOML type-tree document")
	flag.StringVar(&opts.typeName, "type", "", "Declaration to lay out (default: all)")
	flag.StringVar(&opts.profile, "profile", "", "ABI profile preset or TOML profile file (default x86_64-sysv)")
	flag.StringVar(&opts.format, "format", "text", "Output format: text or json")
	flag.BoolVar(&opts.fixtures, "fixtures", false, "Lay out the built-in reference declarations")
	flag.BoolVar(&opts.listProfiles, "list-profiles", false, "List the built-in ABI profiles and exit")
	flag.BoolVar(&opts.verify, "verify", false, "Re-check every computed layout")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&opts.verbose, "v", false, "Debug logging to stderr")
	flag.Parse()

	if opts.typesFile == "" && !opts.fixtures && !opts.listProfiles {
		fmt.Fprintln(os.Stderr, "Usage: clayout -types <file.json|file.toml> [-type name] [-profile name|file] [-format text|json]")
		fmt.Fprintln(os.Stderr, "       clayout -fixtures [-profile name|file]")
		fmt.Fprintln(os.Stderr, "       clayout -list-profiles")
		os.Exit(1)
	}

	opts.color = term.IsTerminal(int(os.Stdout.Fd()))
	if opts.interactive && !opts.color {
		fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
		os.Exit(1)
	}

	os.Exit(execute(opts, os.Stdout, os.Stderr))
}

var newLogger = zap.NewDevelopment

// execute runs the command and returns the exit status. The debug logger is
// flushed before it returns.
func execute(opts options, stdout, stderr io.Writer) int {
	if opts.verbose {
		l, err := newLogger()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer func() { _ = l.Sync() }()
		layout.SetLogger(l)
		abi.SetLogger(l)
	}

	if err := run(opts, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func run(opts options, w io.Writer) error {
	if opts.listProfiles {
		return renderProfiles(w, opts.color)
	}

	if opts.format != "text" && opts.format != "json" {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown output format %q", opts.format))
	}

	profile, err := abi.Resolve(opts.profile)
	if err != nil {
		return err
	}

	decls, err := loadDecls(opts)
	if err != nil {
		return err
	}

	engine := layout.NewEngine()
	entries := make([]entry, 0, len(decls))
	for _, d := range decls {
		res, err := engine.Compute(d.Type, profile)
		if err != nil {
			return err
		}
		if opts.verify {
			if err := layout.Verify(res); err != nil {
				return err
			}
		}
		entries = append(entries, entry{name: d.Name, res: res})
	}

	if opts.interactive {
		return runInteractive(entries, profile.Name)
	}

	if opts.format == "json" {
		return renderJSON(w, entries)
	}
	return renderText(w, entries, profile.Name, opts.color)
}

func loadDecls(opts options) ([]ctype.Decl, error) {
	var (
		decls  []ctype.Decl
		lookup func(string) (ctype.Type, bool)
	)
	if opts.fixtures {
		decls = fixtures.Decls()
		lookup = fixtures.Lookup
	} else {
		f, err := ctype.DecodeFile(opts.typesFile)
		if err != nil {
			return nil, err
		}
		decls = f.Decls
		lookup = f.Lookup
	}

	if opts.typeName == "" {
		return decls, nil
	}
	t, ok := lookup(opts.typeName)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "type", opts.typeName)
	}
	return []ctype.Decl{{Name: opts.typeName, Type: t}}, nil
}

// exitCode maps err to the process exit status.
func exitCode(err error) int {
	var e *errors.Error
	if stderrors.As(err, &e) && errors.IsLayoutKind(e.Kind) {
		return 2
	}
	return 1
}
