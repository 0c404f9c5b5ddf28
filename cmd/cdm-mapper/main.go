// Package main provides the CLI entrypoint for cdm-mapper.
//
// cdm-mapper maps clinical source tables onto the fixed Common Data Model:
//   - Lists the CDM fields and inspects source files (CSV, XLSX, XLS, JSON)
//   - Suggests column and value mappings best-effort
//   - Lets humans build and review mappings as YAML
//   - Replays a saved mapping to produce the CDM table and its metadata
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"

	"cdm-mapper/internal/builder"
	"cdm-mapper/internal/config"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/logging"
	"cdm-mapper/internal/pipeline"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

// errUsage marks invalid invocations; the usage text has already been printed.
var errUsage = errors.New("usage")

// errInvalidMapping is returned by check when the mapping has errors.
var errInvalidMapping = errors.New("mapping has errors")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, builder.NewSurveyPrompter())

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "cdm-mapper: %v\n", err)
		os.Exit(1)
	}
}

// env carries what every subcommand needs.
type env struct {
	stdout io.Writer
	stderr io.Writer
	prompt builder.Prompter
	runner *pipeline.Runner
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

func commands() []command {
	return []command{
		{"fields", "list the CDM fields", fieldsCmd},
		{"sheets", "list the sheets of a spreadsheet", sheetsCmd},
		{"inspect", "describe the columns of a data file", inspectCmd},
		{"suggest", "propose a mapping for a data file", suggestCmd},
		{"map", "build a mapping interactively", mapCmd},
		{"check", "validate a mapping file", checkCmd},
		{"transform", "apply a mapping and export the CDM table", transformCmd},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, p builder.Prompter) error {
	if len(args) < 1 {
		usage(stderr)
		return errUsage
	}

	for _, c := range commands() {
		if c.name == args[0] {
			return c.run(ctx, &env{stdout: stdout, stderr: stderr, prompt: p}, args[1:])
		}
	}

	fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
	usage(stderr)

	return errUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "cdm-mapper maps clinical tables onto the Common Data Model.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cdm-mapper <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	for _, c := range commands() {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'cdm-mapper <command> -h' for the flags of a command.")
}

// parse registers -config, parses args and prepares the runner. required
// names flags that must not be empty.
func (e *env) parse(fs *flag.FlagSet, args []string, required map[string]*string) error {
	fs.SetOutput(e.stderr)

	configPath := fs.String("config", "", "path to a YAML config file")

	// ContinueOnError has already printed the problem and the defaults.
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var missing []string

	for name, v := range required {
		if *v == "" {
			missing = append(missing, "-"+name)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		fmt.Fprintf(e.stderr, "missing required flags: %s\n", strings.Join(missing, ", "))
		fs.Usage()

		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(e.stderr, cfg.LogLevel, logging.Format(cfg.LogFormat))
	if err != nil {
		return err
	}

	e.runner = pipeline.NewRunner(cfg, pipeline.WithLogger(log))

	return nil
}

func fieldsCmd(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("fields", flag.ContinueOnError)
	if err := e.parse(fs, args, nil); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tVALUES\tSTANDARD")

	for _, f := range schema.Fields() {
		values := f.FormatHint
		if len(f.AllowedValues) > 0 {
			values = strings.Join(f.AllowedValues, ", ")
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.DataType, values, f.PreferredStandard)
	}

	return tw.Flush()
}

func sheetsCmd(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("sheets", flag.ContinueOnError)
	data := fs.String("data", "", "spreadsheet file (xlsx, xls)")

	if err := e.parse(fs, args, map[string]*string{"data": data}); err != nil {
		return err
	}

	sheets, err := e.runner.Sheets(*data)
	if err != nil {
		return err
	}

	for i, s := range sheets {
		fmt.Fprintf(e.stdout, "%d\t%s\n", i, s)
	}

	return nil
}

func inspectCmd(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	data := fs.String("data", "", "data file (csv, xlsx, xls, json)")
	sheet := fs.String("sheet", "", "sheet name or zero-based index")
	samples := fs.Int("samples", 5, "sample values per column")

	if err := e.parse(fs, args, map[string]*string{"data": data}); err != nil {
		return err
	}

	s, summaries, err := e.runner.Inspect(ctx, *data, *sheet, *samples)
	if err != nil {
		return err
	}

	fmt.Fprintln(e.stdout, s.String())

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tMISSING\tSAMPLES")

	for _, c := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Name, c.Kind, c.Missing, formatSamples(c.Samples))
	}

	return tw.Flush()
}

func suggestCmd(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("suggest", flag.ContinueOnError)
	data := fs.String("data", "", "data file (csv, xlsx, xls, json)")
	sheet := fs.String("sheet", "", "sheet name or zero-based index")
	pinned := fs.String("mapping", "", "existing mapping whose entries are kept")
	out := fs.String("out", "", "write the suggested mapping here")

	if err := e.parse(fs, args, map[string]*string{"data": data}); err != nil {
		return err
	}

	p, err := e.runner.Suggest(ctx, pipeline.SuggestRequest{
		DataPath:   *data,
		Sheet:      *sheet,
		PinnedPath: *pinned,
		OutPath:    *out,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tCOLUMN\tSOURCE\tCONFIDENCE\tVALUES")

	for _, s := range p.Suggestions {
		var values []string
		for _, v := range s.Values {
			values = append(values, fmt.Sprintf("%s=%s", v.Observed, v.Allowed))
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", s.Field, s.Column, s.Source, s.Confidence, strings.Join(values, ", "))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	printDiagnostics(e.stdout, &p.Diagnostics)

	if *out != "" {
		fmt.Fprintf(e.stdout, "mapping written to %s\n", *out)
	}

	return nil
}

func mapCmd(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("map", flag.ContinueOnError)
	data := fs.String("data", "", "data file (csv, xlsx, xls, json)")
	sheet := fs.String("sheet", "", "sheet name or zero-based index")
	out := fs.String("out", "column_mappings.yaml", "write the mapping here")
	suggest := fs.Bool("suggest", false, "preselect suggested columns and values")

	if err := e.parse(fs, args, map[string]*string{"data": data, "out": out}); err != nil {
		return err
	}

	doc, err := e.runner.Map(ctx, pipeline.MapRequest{
		DataPath: *data,
		Sheet:    *sheet,
		OutPath:  *out,
		Suggest:  *suggest,
	}, e.prompt)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "mapping with %d entries written to %s\n", doc.Len(), *out)

	return nil
}

func checkCmd(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	mappingPath := fs.String("mapping", "", "mapping file")
	data := fs.String("data", "", "optional data file to check against")
	sheet := fs.String("sheet", "", "sheet name or zero-based index")

	if err := e.parse(fs, args, map[string]*string{"mapping": mappingPath}); err != nil {
		return err
	}

	diags, err := e.runner.Check(ctx, pipeline.CheckRequest{
		MappingPath: *mappingPath,
		DataPath:    *data,
		Sheet:       *sheet,
	})
	if err != nil {
		return err
	}

	printDiagnostics(e.stdout, diags)

	if diags.HasErrors() {
		return errInvalidMapping
	}

	fmt.Fprintln(e.stdout, "mapping OK")

	return nil
}

func transformCmd(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	data := fs.String("data", "", "data file (csv, xlsx, xls, json)")
	sheet := fs.String("sheet", "", "sheet name or zero-based index")
	mappingPath := fs.String("mapping", "", "mapping file")
	out := fs.String("out", "cdm_transformed_data.csv", "CDM table (CSV)")
	meta := fs.String("metadata", "cdm_metadata.json", "metadata record (JSON); empty to skip")
	parquet := fs.String("parquet", "", "CDM table (Parquet); empty to skip")

	required := map[string]*string{"data": data, "mapping": mappingPath, "out": out}
	if err := e.parse(fs, args, required); err != nil {
		return err
	}

	rep, err := e.runner.Transform(ctx, pipeline.TransformRequest{
		DataPath:     *data,
		Sheet:        *sheet,
		MappingPath:  *mappingPath,
		OutPath:      *out,
		MetadataPath: *meta,
		ParquetPath:  *parquet,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "transformed %d rows\n", rep.Rows)

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CDM FIELD\tMISSING\tUNREADABLE")

	for _, m := range rep.Missing {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", m.Column, m.Missing, rep.Unreadable[m.Column])
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	printDiagnostics(e.stdout, &rep.Diagnostics)

	for _, path := range rep.Written {
		fmt.Fprintf(e.stdout, "wrote %s\n", path)
	}

	return nil
}

func printDiagnostics(w io.Writer, d *diagnostic.Diagnostics) {
	for _, diag := range d.All() {
		fmt.Fprintf(w, "%s: %s\n", diag.Severity, diag.String())

		if len(diag.Suggestions) > 0 {
			fmt.Fprintf(w, "  did you mean: %s\n", strings.Join(diag.Suggestions, ", "))
		}
	}
}

func formatSamples(samples []any) string {
	parts := make([]string, len(samples))
	for i, v := range samples {
		if v == nil {
			parts[i] = "<missing>"
			continue
		}

		parts[i] = table.Format(v)
	}

	return strings.Join(parts, ", ")
}
