package metadata

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"cdm-mapper/internal/table"
)

// TimeLayout renders timestamps as UTC ISO-8601 with microseconds and a Z suffix.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Default descriptive values used when none are configured.
const (
	DefaultTitle          = "CDM-Compliant Healthcare Dataset"
	DefaultDescription    = "A dataset transformed into a Common Data Model (CDM) format for healthcare procedures."
	DefaultCreatorName    = "Your Organization"
	DefaultCreatorContact = "contact@yourorg.com"
	DefaultLicense        = "CC-BY-4.0"
	DefaultTool           = "CDM Transformer App"
)

// Record is the metadata document written next to a CDM export.
type Record struct {
	Identifier  string        `json:"identifier"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Created     string        `json:"created"`
	Creator     Creator       `json:"creator"`
	License     string        `json:"license"`
	Provenance  Provenance    `json:"provenance"`
	Schema      []SchemaEntry `json:"schema"`
}

// Creator names the party responsible for the dataset.
type Creator struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Provenance records the inputs and tool that produced the dataset.
type Provenance struct {
	SourceDataFile     string `json:"source_data_file"`
	MappingFileUsed    string `json:"mapping_file_used"`
	TransformationTool string `json:"transformation_tool"`
	TransformationDate string `json:"transformation_date"`
}

// SchemaEntry describes one output column.
type SchemaEntry struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

// Info holds the descriptive, configurable part of a record.
type Info struct {
	Title          string
	Description    string
	CreatorName    string
	CreatorContact string
	License        string
	Tool           string
}

// DefaultInfo returns the built-in descriptive values.
func DefaultInfo() Info {
	return Info{
		Title:          DefaultTitle,
		Description:    DefaultDescription,
		CreatorName:    DefaultCreatorName,
		CreatorContact: DefaultCreatorContact,
		License:        DefaultLicense,
		Tool:           DefaultTool,
	}
}

// withDefaults fills empty fields from DefaultInfo.
func (i Info) withDefaults() Info {
	d := DefaultInfo()
	if i.Title == "" {
		i.Title = d.Title
	}

	if i.Description == "" {
		i.Description = d.Description
	}

	if i.CreatorName == "" {
		i.CreatorName = d.CreatorName
	}

	if i.CreatorContact == "" {
		i.CreatorContact = d.CreatorContact
	}

	if i.License == "" {
		i.License = d.License
	}

	if i.Tool == "" {
		i.Tool = d.Tool
	}

	return i
}

// Generator builds metadata records.
type Generator struct {
	info  Info
	now   func() time.Time
	newID func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithInfo overrides the descriptive values; empty fields keep their defaults.
func WithInfo(info Info) Option {
	return func(g *Generator) {
		g.info = info.withDefaults()
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDGenerator sets the identifier source.
func WithIDGenerator(newID func() string) Option {
	return func(g *Generator) {
		if newID != nil {
			g.newID = newID
		}
	}
}

// NewGenerator returns a Generator using the wall clock and random UUIDs
// unless overridden.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		info:  DefaultInfo(),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate describes out, which was produced from sourceFile using mappingFile.
func (g *Generator) Generate(out *table.Table, sourceFile, mappingFile string) Record {
	stamp := g.now().UTC().Format(TimeLayout)

	return Record{
		Identifier:  g.newID(),
		Title:       g.info.Title,
		Description: g.info.Description,
		Created:     stamp,
		Creator: Creator{
			Name:    g.info.CreatorName,
			Contact: g.info.CreatorContact,
		},
		License: g.info.License,
		Provenance: Provenance{
			SourceDataFile:     sourceFile,
			MappingFileUsed:    mappingFile,
			TransformationTool: g.info.Tool,
			TransformationDate: stamp,
		},
		Schema: schemaOf(out),
	}
}

// Generate describes out with a default Generator.
func Generate(out *table.Table, sourceFile, mappingFile string) Record {
	return NewGenerator().Generate(out, sourceFile, mappingFile)
}

func schemaOf(t *table.Table) []SchemaEntry {
	entries := make([]SchemaEntry, 0, t.Width())
	for i := range t.Width() {
		col := t.ColumnAt(i)
		entries = append(entries, SchemaEntry{
			Name:        col.Name,
			DataType:    col.Kind().String(),
			Description: fmt.Sprintf("CDM field %s", col.Name),
		})
	}

	return entries
}
