package main

import (
	"regexp"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dsv-cli/dsv/internal/bus"
	"github.com/dsv-cli/dsv/internal/dsverr"
	"github.com/dsv-cli/dsv/internal/expr"
	"github.com/dsv-cli/dsv/internal/pexec"
	"github.com/dsv-cli/dsv/internal/record"
	"github.com/dsv-cli/dsv/internal/selector"
	"github.com/dsv-cli/dsv/internal/subcommand"
)

// buildSubcommand parses one pipeline segment's own argv (its name
// plus flags/positional args) and instantiates the matching
// subcommand.Subcommand, wired to pb's outbound bus.
func buildSubcommand(segment []string, pb *bus.ProcessingBase) (subcommand.Subcommand, error) {
	if len(segment) == 0 {
		return nil, dsverr.NewUsageError("empty pipeline segment")
	}
	name := segment[0]
	args := segment[1:]
	base := subcommand.NewBase(pb)

	switch name {
	case "cat":
		return subcommand.NewCat(base), nil

	case "cut", "select":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		fields := fs.StringSliceP("fields", "f", nil, "field expressions")
		complement := fs.BoolP("complement", "c", false, "emit complement of the selection")
		regexMode := fs.Bool("regex", false, "treat name predicates as regexes")
		allowEmpty := fs.Bool("allow-empty", false, "fill missing indices with empty instead of omitting")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		sel, err := selector.Compile(*fields, *regexMode)
		if err != nil {
			return nil, err
		}
		return subcommand.NewCut(base, sel, *complement, *allowEmpty, nil), nil

	case "grep":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		invert := fs.BoolP("invert-match", "v", false, "invert match")
		countOnly := fs.BoolP("count", "c", false, "emit only the match count")
		before := fs.IntP("before-context", "B", 0, "lines of context before a match")
		after := fs.IntP("after-context", "A", 0, "lines of context after a match")
		context := fs.IntP("context", "C", 0, "lines of context before and after a match")
		fieldsCSV := fs.String("fields", "", "comma-separated 1-based field indices to search")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() < 1 {
			return nil, dsverr.NewUsageError("grep: missing pattern")
		}
		pattern, err := regexp.Compile(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		b, a := *before, *after
		if *context > 0 {
			b, a = *context, *context
		}
		return subcommand.NewGrep(base, pattern, *invert, *countOnly, parseIntCSV(*fieldsCSV), b, a), nil

	case "head":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		n := fs.IntP("lines", "n", 10, "number of rows to keep")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return subcommand.NewHead(base, *n), nil

	case "tail":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		n := fs.IntP("lines", "n", 10, "number of rows to keep")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return subcommand.NewTail(base, *n), nil

	case "tac":
		return subcommand.NewTac(base), nil

	case "uniq":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		fieldsCSV := fs.StringP("fields", "f", "", "comma-separated 1-based field indices to key on")
		withCount := fs.BoolP("count", "c", false, "prefix each row with its repeat count")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return subcommand.NewUniq(base, parseIntCSV(*fieldsCSV), *withCount), nil

	case "set-header":
		return subcommand.NewSetHeader(base, record.RowFromStrings(args...)), nil

	case "replace":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		fieldsCSV := fs.StringP("fields", "f", "", "comma-separated 1-based field indices")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() < 2 {
			return nil, dsverr.NewUsageError("replace: need PATTERN REPLACEMENT")
		}
		pattern, err := regexp.Compile(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		return subcommand.NewReplace(base, pattern, []byte(fs.Arg(1)), parseIntCSV(*fieldsCSV)), nil

	case "flip", "transpose":
		return subcommand.NewFlip(base), nil

	case "pretty":
		return subcommand.NewPretty(base), nil

	case "page":
		return subcommand.NewPage(base), nil

	case "tocsv":
		return subcommand.NewToCSV(base), nil

	case "totsv":
		return subcommand.NewToTSV(base), nil

	case "tomarkdown":
		return subcommand.NewToMarkdown(base), nil

	case "tojson":
		return subcommand.NewToJSON(base), nil

	case "fromjson", "frommarkdown", "fromhtml":
		return subcommand.NewNotImplemented(base, name), nil

	case "summary":
		return subcommand.NewSummary(base), nil

	case "reshape-long":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		idsCSV := fs.StringP("ids", "i", "1", "comma-separated 1-based id-column indices")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return subcommand.NewReshapeLong(base, parseIntCSV(*idsCSV)), nil

	case "reshape-wide":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		idCount := fs.IntP("id-count", "i", 1, "number of leading id columns")
		keyCol := fs.Int("key-col", 1, "0-based key column index, id columns included")
		valueCol := fs.Int("value-col", 2, "0-based value column index, id columns included")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return subcommand.NewReshapeWide(base, *idCount, *keyCol, *valueCol), nil

	case "eval":
		if len(args) < 1 {
			return nil, dsverr.NewUsageError("eval: missing expression")
		}
		compiled, err := expr.NewDefaultEngine().Compile(args[0])
		if err != nil {
			return nil, err
		}
		return subcommand.NewEval(base, compiled), nil

	case "eval-filter":
		if len(args) < 1 {
			return nil, dsverr.NewUsageError("eval-filter: missing expression")
		}
		compiled, err := expr.NewDefaultEngine().Compile(args[0])
		if err != nil {
			return nil, err
		}
		return subcommand.NewEvalFilter(base, compiled), nil

	case "eval-groupby":
		if len(args) < 1 {
			return nil, dsverr.NewUsageError("eval-groupby: missing expression")
		}
		compiled, err := expr.NewDefaultEngine().Compile(args[0])
		if err != nil {
			return nil, err
		}
		return subcommand.NewEvalGroupby(base, compiled), nil

	case "paste":
		return subcommand.NewPaste(base, args, pb.IFS)

	case "join":
		fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
		leftKeysCSV := fs.String("left-keys", "1", "comma-separated 1-based left join-key indices")
		rightKeysCSV := fs.String("right-keys", "1", "comma-separated 1-based right join-key indices")
		mode := fs.String("mode", "inner", "inner|left|right|outer")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() < 1 {
			return nil, dsverr.NewUsageError("join: missing right-side file")
		}
		return subcommand.NewJoin(base, fs.Arg(0), parseIntCSV(*leftKeysCSV), parseIntCSV(*rightKeysCSV), parseJoinMode(*mode), pb.IFS), nil

	case "sort":
		return subcommand.NewShellOut(base, append([]string{"sort"}, args...), pb.IFS, pb.Opts.ResolvedOFS().Literal), nil

	case "sqlite":
		return subcommand.NewShellOut(base, append([]string{"sqlite3"}, args...), pb.IFS, pb.Opts.ResolvedOFS().Literal), nil

	case "xargs", "exec":
		return buildXargs(base, pb, args)

	case "pipe":
		if len(args) < 1 {
			return nil, dsverr.NewUsageError("pipe: missing command")
		}
		return subcommand.NewShellOut(base, args, pb.IFS, pb.Opts.ResolvedOFS().Literal), nil

	default:
		return nil, dsverr.NewUsageError("unknown subcommand %q", name)
	}
}

func buildXargs(base subcommand.Base, pb *bus.ProcessingBase, args []string) (subcommand.Subcommand, error) {
	fs := pflag.NewFlagSet("xargs", pflag.ContinueOnError)
	jobs := fs.StringP("jobs", "j", pb.Opts.Jobs, "job limit: N or N%")
	replaceStr := fs.StringP("replace-str", "I", pb.Opts.ReplaceStr, "placeholder delimiter")
	noTag := fs.Bool("no-tag", false, "don't prefix output with the originating row")
	dryRun := fs.Bool("dry-run", false, "don't actually run anything")
	stdinTemplate := fs.String("stdin-template", "", "template rendered as each child's stdin")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, dsverr.NewUsageError("xargs: missing command template")
	}

	templates := make([]*pexec.Template, 0, fs.NArg())
	for _, word := range fs.Args() {
		tmpl, err := pexec.CompileTemplate(word, *replaceStr)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}

	var stdinTmpl *pexec.Template
	if *stdinTemplate != "" {
		t, err := pexec.CompileTemplate(*stdinTemplate, *replaceStr)
		if err != nil {
			return nil, err
		}
		stdinTmpl = t
	}

	engine := pexec.New(pexec.Config{
		Templates:     templates,
		StdinTemplate: stdinTmpl,
		JobLimit:      *jobs,
		Tag:           !*noTag,
		DryRun:        *dryRun,
		IRS:           []byte("\n"),
	})
	return subcommand.NewXargs(base, engine, *noTag), nil
}

func parseIntCSV(csv string) []int {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n := 0
		neg := false
		p = strings.TrimSpace(p)
		for i, r := range p {
			if i == 0 && r == '-' {
				neg = true
				continue
			}
			if r < '0' || r > '9' {
				n = -1
				break
			}
			n = n*10 + int(r-'0')
		}
		if n < 0 {
			continue
		}
		if neg {
			n = -n
		}
		out = append(out, n-1)
	}
	return out
}

func parseJoinMode(s string) subcommand.JoinMode {
	switch strings.ToLower(s) {
	case "left":
		return subcommand.JoinLeft
	case "right":
		return subcommand.JoinRight
	case "outer", "full":
		return subcommand.JoinOuter
	default:
		return subcommand.JoinInner
	}
}
