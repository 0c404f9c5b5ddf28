package ingest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cdm-mapper/internal/mapping"
	"cdm-mapper/internal/table"
	"cdm-mapper/internal/transform"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"data.csv", FormatCSV},
		{"DATA.CSV", FormatCSV},
		{"book.xlsx", FormatXLSX},
		{"legacy.xls", FormatXLS},
		{"records.json", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectFormat("notes.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestIngest_CSV(t *testing.T) {
	src := "id,sex,weight,enrolled\n1,M,70.5,2024-01-15\n2,F,,2023-12-01\n3,,82,\n"

	tbl, err := Ingest(strings.NewReader(src), "patients.csv", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "sex", "weight", "enrolled"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())

	v, _ := tbl.Value(0, "id")
	assert.Equal(t, int64(1), v)

	v, _ = tbl.Value(0, "weight")
	assert.InDelta(t, 70.5, v, 1e-9)

	v, _ = tbl.Value(1, "weight")
	assert.Nil(t, v)

	v, _ = tbl.Value(2, "sex")
	assert.Nil(t, v)

	v, _ = tbl.Value(0, "enrolled")
	assert.Equal(t, "2024-01-15", v)
}

func TestIngest_CSVHeaderCleanup(t *testing.T) {
	src := "\ufeffname,name,\nAlice,Smith,x\n"

	tbl, err := Ingest(strings.NewReader(src), "people.csv", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "name.1", "Unnamed: 2"}, tbl.Columns())
}

func TestIngest_CSVErrors(t *testing.T) {
	_, err := Ingest(strings.NewReader(""), "empty.csv", "")
	require.ErrorIs(t, err, ErrParse)

	_, err = Ingest(strings.NewReader("a,b\n1,2,3\n"), "ragged.csv", "")
	require.ErrorIs(t, err, ErrParse)

	_, err = Ingest(strings.NewReader("a,b\n1,2\n"), "data.txt", "")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestIngest_CSVShortRowsArePadded(t *testing.T) {
	src := "pid,side,date\np1,L,2024-01-15\np2,R\np3\n"

	tbl, err := Ingest(strings.NewReader(src), "surgeries.csv", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"pid", "side", "date"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []any{"p2", "R", nil}, tbl.Row(1))
	assert.Equal(t, []any{"p3", nil, nil}, tbl.Row(2))
}

func TestIngest_RestoresStreamPosition(t *testing.T) {
	r := strings.NewReader("a,b\n1,2\n")

	_, err := Ingest(r, "data.csv", "")
	require.NoError(t, err)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)

	// A second pass over the same stream sees the same content.
	tbl, err := Ingest(r, "data.csv", "")
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestIngest_RestoresPositionOnError(t *testing.T) {
	r := strings.NewReader("a,b\n1,2,3\n")

	_, err := Ingest(r, "data.csv", "")
	require.Error(t, err)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func workbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}

		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return bytes.NewReader(buf.Bytes())
}

func TestIngest_XLSXSingleSheet(t *testing.T) {
	r := workbook(t, map[string][][]any{
		"Patients": {
			{"patient_id", "sex"},
			{"p-1", "M"},
			{"p-2", "F"},
		},
	}, "Patients")

	tbl, err := Ingest(r, "patients.xlsx", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"patient_id", "sex"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())

	v, _ := tbl.Value(1, "sex")
	assert.Equal(t, "F", v)
}

func TestIngest_XLSXSheetSelection(t *testing.T) {
	data := map[string][][]any{
		"Cohort":   {{"id"}, {1}},
		"Visits":   {{"visit", "date"}, {"v1", "2024-01-15"}, {"v2", "2024-02-01"}},
		"Controls": {{"id"}, {7}, {8}, {9}},
	}
	order := []string{"Cohort", "Visits", "Controls"}

	_, err := Ingest(workbook(t, data, order...), "book.xlsx", "")
	require.ErrorIs(t, err, ErrSheetRequired)
	require.ErrorIs(t, err, ErrParse)

	var selErr *SheetSelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, order, selErr.Sheets)

	tbl, err := Ingest(workbook(t, data, order...), "book.xlsx", "Visits")
	require.NoError(t, err)
	assert.Equal(t, []string{"visit", "date"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())

	tbl, err = Ingest(workbook(t, data, order...), "book.xlsx", "2")
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = Ingest(workbook(t, data, order...), "book.xlsx", "Missing")
	require.ErrorIs(t, err, ErrParse)
}

func TestIngest_XLSXDateCells(t *testing.T) {
	surgery := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	read := func(t *testing.T) *table.Table {
		t.Helper()

		tbl, err := Ingest(workbook(t, map[string][][]any{
			"Surgeries": {
				{"pid", "opdatum", "code"},
				{"p-1", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 101},
				{"p-2", surgery, 102},
			},
		}, "Surgeries"), "surgeries.xlsx", "")
		require.NoError(t, err)

		return tbl
	}

	tbl := read(t)

	col, ok := tbl.Column("opdatum")
	require.True(t, ok)
	assert.Equal(t, table.KindTime, col.Kind())

	v, _ := tbl.Value(1, "opdatum")
	require.IsType(t, time.Time{}, v)
	assert.True(t, surgery.Equal(v.(time.Time)), "got %v", v)

	// Plain numbers keep their number kind.
	v, _ = tbl.Value(0, "code")
	assert.Equal(t, int64(101), v)

	doc := mapping.NewDocument()
	doc.Set("opdatum", mapping.Entry{CDMField: "Date of Surgery"})

	for _, dayFirst := range []bool{false, true} {
		res := transform.New(transform.WithDayFirst(dayFirst)).Apply(read(t), doc)

		out, ok := res.Table.Column("Date of Surgery")
		require.True(t, ok)
		assert.Equal(t, []any{"15/01/2024", "04/03/2024"}, out.Values, "day first: %v", dayFirst)
		assert.Empty(t, res.Failures)
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm", true},
		{"[$-409]d-mmm-yy", true},
		{"hh:mm:ss", false},
		{"0.00", false},
		{`0.0 "days"`, false},
		{`#,##0\d`, false},
		{"General", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return f
}

func TestIngest_XLS(t *testing.T) {
	f := openFixture(t, "cohort.xls")

	sheets, err := ListSheets(f, "cohort.xls")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cohort", "Visits"}, sheets)

	_, err = Ingest(f, "cohort.xls", "")
	require.ErrorIs(t, err, ErrSheetRequired)

	var selErr *SheetSelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, sheets, selErr.Sheets)

	cohort, err := Ingest(f, "cohort.xls", "Cohort")
	require.NoError(t, err)
	assert.Equal(t, []string{"pid", "age"}, cohort.Columns())
	assert.Equal(t, []any{"p-1", 42.0}, cohort.Row(0))
	assert.Equal(t, []any{"p-2", 37.5}, cohort.Row(1))

	visits, err := Ingest(f, "cohort.xls", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"visit", "date"}, visits.Columns())
	require.Equal(t, 3, visits.Len())

	// Row 3 of the sheet is not stored and reads as missing.
	assert.Equal(t, []any{nil, nil}, visits.Row(1))
	assert.Equal(t, []any{"v3", "2024-02-01"}, visits.Row(2))

	v, _ := visits.Value(0, "date")
	require.IsType(t, time.Time{}, v)
	assert.True(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Equal(v.(time.Time)), "got %v", v)

	_, err = Ingest(f, "cohort.xls", "Controls")
	require.ErrorIs(t, err, ErrParse)
}

func TestIngest_XLSCorrupt(t *testing.T) {
	_, err := Ingest(strings.NewReader("not a workbook"), "broken.xls", "")
	require.ErrorIs(t, err, ErrParse)
}

func TestSelectSheet(t *testing.T) {
	_, err := selectSheet(nil, "")
	require.ErrorIs(t, err, ErrNoSheets)

	_, err = selectSheet([]string{}, "Visits")
	require.ErrorIs(t, err, ErrNoSheets)

	idx, err := selectSheet([]string{"Only"}, "")
	require.NoError(t, err)
	assert.Zero(t, idx)

	idx, err = selectSheet([]string{"A", "B"}, "B")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = selectSheet([]string{"A", "B"}, "5")
	require.ErrorIs(t, err, ErrParse)
}

func TestListSheets(t *testing.T) {
	r := workbook(t, map[string][][]any{
		"A": {{"x"}},
		"B": {{"y"}},
	}, "A", "B")

	sheets, err := ListSheets(r, "book.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sheets)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)

	sheets, err = ListSheets(strings.NewReader("a\n1\n"), "data.csv")
	require.NoError(t, err)
	assert.Nil(t, sheets)
}

func TestIngest_JSONRecords(t *testing.T) {
	src := `[
		{"id": 1, "sex": "M", "weight": 70.5},
		{"id": 2, "sex": null, "smoker": true},
		{"id": 3, "sex": "F", "tags": ["a", "b"]}
	]`

	tbl, err := Ingest(strings.NewReader(src), "records.json", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "sex", "weight", "smoker", "tags"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())

	v, _ := tbl.Value(0, "id")
	assert.Equal(t, int64(1), v)

	v, _ = tbl.Value(0, "weight")
	assert.InDelta(t, 70.5, v, 1e-9)

	v, _ = tbl.Value(1, "sex")
	assert.Nil(t, v)

	v, _ = tbl.Value(1, "smoker")
	assert.Equal(t, true, v)

	v, _ = tbl.Value(0, "smoker")
	assert.Nil(t, v)

	v, _ = tbl.Value(2, "tags")
	assert.Equal(t, `["a","b"]`, v)
}

func TestIngest_JSONColumns(t *testing.T) {
	src := `{"id": [1, 2], "sex": ["M", "F"]}`

	tbl, err := Ingest(strings.NewReader(src), "columns.json", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "sex"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())

	src = `{"sex": {"1": "F", "0": "M"}, "age": {"0": 40, "1": 51}}`

	tbl, err = Ingest(strings.NewReader(src), "indexed.json", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sex", "age"}, tbl.Columns())

	v, _ := tbl.Value(0, "sex")
	assert.Equal(t, "M", v)

	v, _ = tbl.Value(1, "age")
	assert.Equal(t, int64(51), v)
}

func TestIngest_JSONErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"scalar", `42`},
		{"broken", `[{"id": 1,`},
		{"record not object", `[1, 2]`},
		{"ragged columns", `{"a": [1, 2], "b": [1]}`},
		{"bad row key", `{"a": {"x": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ingest(strings.NewReader(tt.src), "data.json", "")
			require.ErrorIs(t, err, ErrParse)
		})
	}

	tbl, err := Ingest(strings.NewReader(`[]`), "data.json", "")
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
	assert.Zero(t, tbl.Width())
}
