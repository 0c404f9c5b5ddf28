package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/writer"

	"cdm-mapper/internal/table"
)

// parquetParallelism is the number of marshalling goroutines used per row group.
const parquetParallelism = 1

type parquetSchema struct {
	Tag    string          `json:"Tag"`
	Fields []parquetSchema `json:"Fields,omitempty"`
}

// ParquetColumnNames returns the snake_case column names WriteParquet uses for
// t. Names that collide after conversion get a numeric suffix.
func ParquetColumnNames(t *table.Table) []string {
	names := make([]string, 0, t.Width())
	seen := make(map[string]int, t.Width())

	for _, col := range t.Columns() {
		name := snakeCase(col)
		if name == "" {
			name = "column"
		}

		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = base + "_" + strconv.Itoa(n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}

		seen[name] = 1
		names = append(names, name)
	}

	return names
}

// WriteParquet writes t as a Parquet file. Every column is an optional UTF-8
// string holding the canonical cell form; missing cells are null.
func WriteParquet(w io.Writer, t *table.Table) error {
	names := ParquetColumnNames(t)

	schema, err := parquetSchemaJSON(names)
	if err != nil {
		return err
	}

	pw, err := writer.NewJSONWriter(schema, writerfile.NewWriterFile(w), parquetParallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}

	for i := range t.Len() {
		row := make(map[string]*string, len(names))

		for j, v := range t.Row(i) {
			if v == nil {
				row[names[j]] = nil
				continue
			}

			s := table.Format(v)
			row[names[j]] = &s
		}

		rec, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode parquet row %d: %w", i, err)
		}

		if err := pw.Write(string(rec)); err != nil {
			return fmt.Errorf("write parquet row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}

	return nil
}

func parquetSchemaJSON(names []string) (string, error) {
	root := parquetSchema{Tag: "name=cdm, repetitiontype=REQUIRED"}
	for _, name := range names {
		root.Fields = append(root.Fields, parquetSchema{
			Tag: fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", name),
		})
	}

	data, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("encode parquet schema: %w", err)
	}

	return string(data), nil
}

// snakeCase lower-cases name and joins its ASCII letter and digit runs with
// underscores: "Date of Surgery" becomes "date_of_surgery".
func snakeCase(name string) string {
	var b strings.Builder

	pending := false
	for _, r := range name {
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r)) {
			pending = b.Len() > 0
			continue
		}

		if pending {
			b.WriteByte('_')
			pending = false
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
