package main

import (
	"regexp"

	"github.com/spf13/pflag"

	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/record"
)

// bindGlobalFlags registers spec.md §6's global option table onto fs,
// writing into opts. Called once against the root command's own
// flag set, before any `!`-delimited subcommand segment is parsed.
func bindGlobalFlags(fs *pflag.FlagSet, opts *bus.Options) {
	var headerOn, headerOff bool
	fs.BoolVarP(&headerOn, "header", "H", false, "force the first row to be treated as a header")
	fs.BoolVarP(&headerOff, "no-header", "N", false, "force the first row to be treated as data")
	fs.BoolVar(&opts.DropHeader, "drop-header", false, "suppress header emission")

	trailer := fs.String("trailer", "auto", "never|auto|always: repeat the header at the bottom of tall output")

	numbered := fs.Bool("numbered-columns", false, "prefix header cells with their 1-based column index")

	fs.StringVarP(&opts.ExplicitIFS, "ifs", "d", "", "input field separator (regex by default)")
	fs.BoolVar(&opts.PlainIFS, "plain-ifs", false, "treat --ifs as a literal string, not a regex")
	fs.StringVarP(&opts.OFS, "ofs", "D", "", "output field separator")
	fs.StringVar(&opts.IRS, "irs", "", "input record separator (default \\n)")
	fs.StringVar(&opts.ORS, "ors", "", "output record separator (default \\n)")

	fs.BoolVar(&opts.CSV, "csv", false, "comma-separated input")
	fs.BoolVar(&opts.TSV, "tsv", false, "tab-separated input")
	fs.BoolVar(&opts.SSV, "ssv", false, "space-separated input")
	fs.BoolVar(&opts.CombineTrailing, "combine-trailing-columns", false, "merge overflow fields into the last column")

	fs.BoolVarP(&opts.Pretty, "pretty", "P", false, "aligned, gathered output")
	fs.BoolVar(&opts.Page, "page", false, "pipe output through a pager")

	colour := fs.String("colour", "auto", "auto|always|never: ANSI color policy")
	fs.StringVar(&opts.HeaderColour, "header-colour", "", "ANSI override for the header row")
	fs.StringVar(&opts.HeaderBgColour, "header-bg-colour", "", "ANSI background override for the header row")
	rainbow := fs.Bool("rainbow-columns", false, "HSV-rotate a distinct color per column")

	fs.BoolVarP(&opts.NoQuoting, "no-quoting", "Q", false, "disable CSV-style quoting on input")
	fs.BoolVar(&opts.NoQuoteOutput, "no-quote-output", false, "never quote output fields")

	fs.StringVarP(&opts.Jobs, "jobs", "j", "", "ParallelExec job limit: N or N%")
	fs.StringVarP(&opts.ReplaceStr, "replace-str", "I", "{}", "ParallelExec placeholder delimiter")
	fs.StringVar(&opts.LogLevel, "log-level", "error", "logrus level for diagnostics")

	// Resolve the tri-state header flags, the string-enum flags, and
	// --numbered-columns' tty-gated default once parsing is done.
	headerModeFn := func() {
		switch {
		case headerOn:
			opts.HeaderMode = record.HeaderForceOn
		case headerOff:
			opts.HeaderMode = record.HeaderForceOff
		default:
			opts.HeaderMode = record.HeaderAuto
		}
	}
	postParseHooks = append(postParseHooks, headerModeFn)
	postParseHooks = append(postParseHooks, func() {
		opts.Trailer = parseTrailerMode(*trailer)
	})
	postParseHooks = append(postParseHooks, func() {
		opts.Colour = parseColourMode(*colour)
	})
	postParseHooks = append(postParseHooks, func() {
		if fs.Changed("numbered-columns") {
			opts.NumberedColumns = *numbered
		} else {
			opts.RequestNumberedColumnsDefault()
		}
	})
	postParseHooks = append(postParseHooks, func() {
		opts.RainbowColumns = *rainbow
	})
}

// postParseHooks run after pflag has populated the scalar bindings
// above, resolving enum-like flags (string flags parsed into typed
// Options fields) and the tty-gated numbered-columns default. Declared
// at package scope since bindGlobalFlags can't return a closure list
// through cobra's flag-registration callback style cleanly; nothing
// resets the list, so each bindGlobalFlags call appends to it.
var postParseHooks []func()

func runPostParseHooks() {
	for _, h := range postParseHooks {
		h()
	}
}

func parseTrailerMode(s string) bus.TrailerMode {
	switch s {
	case "never":
		return bus.TrailerNever
	case "always":
		return bus.TrailerAlways
	default:
		return bus.TrailerAuto
	}
}

func parseColourMode(s string) bus.ColourMode {
	switch s {
	case "always":
		return bus.ColourAlways
	case "never":
		return bus.ColourNever
	default:
		return bus.ColourAuto
	}
}

// resolveIFS turns --csv/--tsv/--ssv/--ifs/--plain-ifs into a concrete
// record.IFS, or nil if it must be autodetected from the first line.
func resolveIFS(opts *bus.Options) (*record.IFS, error) {
	switch {
	case opts.CSV:
		ifs := record.Comma()
		return &ifs, nil
	case opts.TSV:
		ifs := record.Tab()
		return &ifs, nil
	case opts.SSV:
		ifs := record.Whitespace()
		return &ifs, nil
	case opts.ExplicitIFS != "":
		if opts.PlainIFS {
			ifs := record.Literal([]byte(opts.ExplicitIFS))
			return &ifs, nil
		}
		re, err := compileIFSRegex(opts.ExplicitIFS)
		if err != nil {
			return nil, dsverr.NewUsageError("bad --ifs regex: %v", err)
		}
		ifs := record.CompiledRegex(re)
		return &ifs, nil
	default:
		return nil, nil
	}
}

func compileIFSRegex(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}
