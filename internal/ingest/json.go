package ingest

import (
	"bytes"
	"errors"
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"cdm-mapper/internal/table"
)

// parseJSON accepts a top-level array of records, or a top-level object
// mapping column names to cell arrays (or to objects keyed by row index).
func parseJSON(r io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, parseErr("reading json: %v", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, parseErr("empty json document")
	}

	switch data[0] {
	case '[':
		return parseJSONRecords(data)
	case '{':
		return parseJSONColumns(data)
	default:
		return nil, parseErr("json document must be an array of records or an object of columns")
	}
}

func parseJSONRecords(data []byte) (*table.Table, error) {
	var raws []json.RawMessage

	err := json.Unmarshal(data, &raws)
	if err != nil {
		return nil, parseErr("decoding json records: %v", err)
	}

	var (
		names []string
		seen  = map[string]struct{}{}
		recs  = make([]map[string]any, len(raws))
	)

	for i, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, parseErr("record %d is not an object", i)
		}

		keys, err := objectKeys(raw)
		if err != nil {
			return nil, parseErr("record %d: %v", i, err)
		}

		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				names = append(names, k)
			}
		}

		if err := decodeNumbers(raw, &recs[i]); err != nil {
			return nil, parseErr("record %d: %v", i, err)
		}
	}

	cols := make([]table.Column, len(names))
	for j, name := range names {
		values := make([]any, len(recs))
		for i, rec := range recs {
			values[i] = jsonCell(rec[name])
		}

		cols[j] = table.NewColumn(name, values...)
	}

	return newJSONTable(cols)
}

func parseJSONColumns(data []byte) (*table.Table, error) {
	names, err := objectKeys(data)
	if err != nil {
		return nil, parseErr("%v", err)
	}

	var raw map[string]json.RawMessage

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return nil, parseErr("decoding json columns: %v", err)
	}

	cols := make([]table.Column, len(names))
	for j, name := range names {
		values, err := columnCells(raw[name])
		if err != nil {
			return nil, parseErr("column %q: %v", name, err)
		}

		cols[j] = table.NewColumn(name, values...)
	}

	return newJSONTable(cols)
}

func newJSONTable(cols []table.Column) (*table.Table, error) {
	t, err := table.New(cols...)
	if err != nil {
		return nil, parseErr("%v", err)
	}

	return t, nil
}

// columnCells decodes one column given either as an array of cells or as an
// object keyed by row index.
func columnCells(raw json.RawMessage) ([]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty column")
	}

	switch raw[0] {
	case '[':
		var cells []any
		if err := decodeNumbers(raw, &cells); err != nil {
			return nil, err
		}

		for i := range cells {
			cells[i] = jsonCell(cells[i])
		}

		return cells, nil
	case '{':
		var byRow map[string]any
		if err := decodeNumbers(raw, &byRow); err != nil {
			return nil, err
		}

		rows := make([]int, 0, len(byRow))
		for k := range byRow {
			n, err := strconv.Atoi(k)
			if err != nil {
				return nil, errors.New("row keys must be integers")
			}

			rows = append(rows, n)
		}

		sort.Ints(rows)

		cells := make([]any, len(rows))
		for i, n := range rows {
			cells[i] = jsonCell(byRow[strconv.Itoa(n)])
		}

		return cells, nil
	default:
		return nil, errors.New("column must be an array or an object keyed by row")
	}
}

func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	return dec.Decode(v)
}

// jsonCell maps a decoded JSON value onto the table cell model.
func jsonCell(v any) any {
	switch x := v.(type) {
	case nil, string, bool:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}

		if f, err := x.Float64(); err == nil {
			return f
		}

		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}

		return string(b)
	}
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	var (
		keys      []string
		depth     int
		expectKey bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return keys, nil
		}

		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
				expectKey = depth == 1 && d == '{'
			case '}', ']':
				depth--
				expectKey = depth == 1
			}

			continue
		}

		if depth != 1 {
			continue
		}

		if expectKey {
			key, ok := tok.(string)
			if !ok {
				return nil, errors.New("object key is not a string")
			}

			keys = append(keys, key)
			expectKey = false
		} else {
			expectKey = true
		}
	}
}
