package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"cdm-mapper/internal/builder"
	"cdm-mapper/internal/config"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/export"
	"cdm-mapper/internal/ingest"
	"cdm-mapper/internal/mapping"
	"cdm-mapper/internal/metadata"
	"cdm-mapper/internal/plan"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
	"cdm-mapper/internal/transform"
)

// ErrNoMappings is returned when a mapping file is unreadable as a mapping
// or holds no entries.
var ErrNoMappings = errors.New("no mapping available")

// Runner executes the command line workflows.
type Runner struct {
	cfg   config.Config
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger handed to every component.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithClock sets the time source of metadata records.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithIDGenerator sets the identifier source of metadata records.
func WithIDGenerator(newID func() string) Option {
	return func(r *Runner) {
		r.newID = newID
	}
}

// NewRunner returns a Runner using cfg.
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, log: zerolog.Nop()}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// TransformRequest names the inputs and outputs of a transform run.
type TransformRequest struct {
	DataPath    string
	Sheet       string
	MappingPath string
	// OutPath receives the CDM table as CSV.
	OutPath string
	// MetadataPath receives the metadata record; skipped when empty.
	MetadataPath string
	// ParquetPath receives the CDM table as Parquet; skipped when empty.
	ParquetPath string
}

// Report summarizes a transform run.
type Report struct {
	Rows     int
	Missing  []table.MissingCount
	Failures []transform.CellFailure
	// Unreadable counts the failures per CDM field; fields without
	// failures are absent.
	Unreadable  map[string]int
	Diagnostics diagnostic.Diagnostics
	Metadata    metadata.Record
	// Written lists the files created, in write order.
	Written []string
}

// Transform applies a saved mapping to a data file and writes the CDM
// artifacts.
func (r *Runner) Transform(ctx context.Context, req TransformRequest) (*Report, error) {
	src, err := ingest.ReadFile(req.DataPath, req.Sheet)
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("file", req.DataPath).
		Int("rows", src.Len()).
		Int("columns", src.Width()).
		Msg("data loaded")

	doc, err := loadMapping(req.MappingPath)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{}
	rep.Diagnostics.Merge(*mapping.Validate(doc, schema.Fields()))

	engine := transform.New(
		transform.WithDayFirst(r.cfg.DayFirst),
		transform.WithLogger(r.log),
	)
	res := engine.Apply(src, doc)

	rep.Rows = res.Table.Len()
	rep.Missing = res.Table.MissingCounts()
	rep.Failures = res.Failures
	rep.Unreadable = make(map[string]int)

	for _, f := range schema.Fields() {
		if n := len(res.FailuresFor(f.Name)); n > 0 {
			rep.Unreadable[f.Name] = n
		}
	}

	rep.Diagnostics.Merge(res.Diagnostics)
	rep.Metadata = r.generator().Generate(res.Table, filepath.Base(req.DataPath), filepath.Base(req.MappingPath))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{req.OutPath, func(w io.Writer) error { return export.WriteCSV(w, res.Table, r.cfg.MissingMarker) }},
		{req.MetadataPath, func(w io.Writer) error { return export.WriteMetadata(w, rep.Metadata) }},
		{req.ParquetPath, func(w io.Writer) error { return export.WriteParquet(w, res.Table) }},
	}

	for _, out := range outputs {
		if out.path == "" {
			continue
		}

		if err := export.WriteFile(out.path, out.write); err != nil {
			return rep, err
		}

		rep.Written = append(rep.Written, out.path)
		r.log.Info().Str("file", out.path).Msg("written")
	}

	return rep, nil
}

// SuggestRequest names the inputs of a suggestion run.
type SuggestRequest struct {
	DataPath string
	Sheet    string
	// PinnedPath is an existing mapping whose entries are kept; optional.
	PinnedPath string
	// OutPath receives the suggested mapping; skipped when empty.
	OutPath string
}

// Suggest proposes a mapping for a data file.
func (r *Runner) Suggest(ctx context.Context, req SuggestRequest) (*plan.Plan, error) {
	src, err := ingest.ReadFile(req.DataPath, req.Sheet)
	if err != nil {
		return nil, err
	}

	var pinned *mapping.Document
	if req.PinnedPath != "" {
		if pinned, err = mapping.LoadFile(req.PinnedPath); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := plan.NewResolver(schema.Fields(), pinned, r.cfg.Matching.Resolution()).Resolve(src)

	r.log.Info().
		Int("suggested", len(p.Suggestions)).
		Int("unmapped", len(p.Unmapped)).
		Msg("suggestions ready")

	if req.OutPath != "" {
		if err := mapping.WriteFile(p.Document(), req.OutPath); err != nil {
			return p, err
		}
	}

	return p, nil
}

// CheckRequest names the inputs of a mapping check.
type CheckRequest struct {
	MappingPath string
	// DataPath optionally checks the mapping against a concrete file.
	DataPath string
	Sheet    string
}

// Check validates a mapping file against the CDM and optionally a data file.
func (r *Runner) Check(ctx context.Context, req CheckRequest) (*diagnostic.Diagnostics, error) {
	doc, err := mapping.LoadFile(req.MappingPath)
	if err != nil {
		return nil, noMapping(err)
	}

	diags := mapping.Validate(doc, schema.Fields())

	if req.DataPath == "" {
		return diags, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := ingest.ReadFile(req.DataPath, req.Sheet)
	if err != nil {
		return nil, err
	}

	diags.Merge(*mapping.CheckAgainstTable(doc, src))

	return diags, nil
}

// MapRequest names the inputs of an interactive mapping session.
type MapRequest struct {
	DataPath string
	Sheet    string
	OutPath  string
	// Suggest preselects the answers proposed by the suggestion planner.
	Suggest bool
}

// Map builds a mapping interactively and saves it to OutPath. A workbook
// with several sheets and no Sheet asks which to use.
func (r *Runner) Map(ctx context.Context, req MapRequest, p builder.Prompter) (*mapping.Document, error) {
	var s Session

	err := s.Load(req.DataPath, req.Sheet)
	if sel := (*ingest.SheetSelectionError)(nil); errors.As(err, &sel) {
		sheet, cerr := builder.ChooseSheet(ctx, p, sel.Sheets)
		if cerr != nil {
			return nil, cerr
		}

		err = s.Load(req.DataPath, sheet)
	}

	if err != nil {
		return nil, err
	}

	p.Info(fmt.Sprintf("Loaded %s", s.String()))

	opts := []builder.Option{builder.WithLogger(r.log)}
	if req.Suggest {
		opts = append(opts, builder.WithDefaults(
			plan.NewResolver(schema.Fields(), nil, r.cfg.Matching.Resolution()).Resolve(s.Table()),
		))
	}

	doc, err := builder.New(p, opts...).Build(ctx, s.Table())
	if err != nil {
		return nil, err
	}

	if err := mapping.WriteFile(doc, req.OutPath); err != nil {
		return doc, err
	}

	r.log.Info().Str("file", req.OutPath).Int("entries", doc.Len()).Msg("mapping saved")

	return doc, nil
}

// Inspect loads a data file and describes its columns.
func (r *Runner) Inspect(_ context.Context, path, sheet string, samples int) (*Session, []table.ColumnSummary, error) {
	var s Session
	if err := s.Load(path, sheet); err != nil {
		return nil, nil, err
	}

	return &s, s.Table().Summaries(samples), nil
}

// Sheets lists the sheets of a spreadsheet file.
func (r *Runner) Sheets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer f.Close()

	return ingest.ListSheets(f, filepath.Base(path))
}

func (r *Runner) generator() *metadata.Generator {
	return metadata.NewGenerator(
		metadata.WithInfo(r.cfg.Metadata.Info()),
		metadata.WithClock(r.now),
		metadata.WithIDGenerator(r.newID),
	)
}

func loadMapping(path string) (*mapping.Document, error) {
	doc, err := mapping.LoadFile(path)
	if err != nil {
		return nil, noMapping(err)
	}

	if doc.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no entries", ErrNoMappings, path)
	}

	return doc, nil
}

// noMapping marks parse failures as ErrNoMappings; other errors pass through.
func noMapping(err error) error {
	if errors.Is(err, mapping.ErrParse) {
		return fmt.Errorf("%w: %w", ErrNoMappings, err)
	}

	return err
}
