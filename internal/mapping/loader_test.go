package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yaml := `
mappings:
  patient_nr:
    cdm_field: Patient ID
  side:
    cdm_field: Operation Side
    transformation:
      value_mapping:
        L: left
        R: right
        1: left
  opdatum:
    cdm_field: Date of Surgery
`

	doc, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, []string{"patient_nr", "side", "opdatum"}, doc.Columns())

	e, ok := doc.Get("side")
	require.True(t, ok)
	assert.Equal(t, "Operation Side", e.CDMField)
	assert.Equal(t, map[string]string{"L": "left", "R": "right", "1": "left"}, e.ValueMapping())

	e, _ = doc.Get("patient_nr")
	assert.Nil(t, e.Transformation)
}

func TestParse_EmptyAndAbsent(t *testing.T) {
	for _, src := range []string{"", "mappings:\n", "mappings: {}\n", "version: 2\n"} {
		doc, err := Parse([]byte(src))
		require.NoError(t, err, "source %q", src)
		assert.Zero(t, doc.Len(), "source %q", src)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "mappings: [unclosed"},
		{"list of mappings", "mappings:\n  - cdm_field: Patient ID\n"},
		{"scalar mappings", "mappings: nope\n"},
		{"scalar entry", "mappings:\n  id: Patient ID\n"},
		{"duplicate column", "mappings:\n  id:\n    cdm_field: Patient ID\n  id:\n    cdm_field: Result\n"},
		{"top level list", "- a\n- b\n"},
		{"bad value mapping", "mappings:\n  s:\n    cdm_field: Result\n    transformation:\n      value_mapping: [a, b]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrParse)
			assert.Nil(t, doc)
		})
	}
}

func TestMarshal_Layout(t *testing.T) {
	doc := NewDocument()
	doc.Set("patient_nr", Entry{CDMField: "Patient ID"})
	doc.Set("side", Entry{
		CDMField:       "Operation Side",
		Transformation: &Transformation{ValueMapping: map[string]string{"R": "right", "L": "left"}},
	})

	data, err := Marshal(doc)
	require.NoError(t, err)

	want := `mappings:
  patient_nr:
    cdm_field: Patient ID
  side:
    cdm_field: Operation Side
    transformation:
      value_mapping:
        L: left
        R: right
`
	assert.Equal(t, want, string(data))
}

func TestRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Set("zz_last_alphabetically", Entry{CDMField: "Patient ID"})
	doc.Set("1", Entry{CDMField: "Sample number culture collection"})
	doc.Set("result", Entry{
		CDMField:       "Result",
		Transformation: &Transformation{ValueMapping: map[string]string{"pos": "positive", "true": "positive", "0": "negative"}},
	})
	doc.Set("material", Entry{
		CDMField:       "Breeding Material",
		Transformation: &Transformation{ValueMapping: map[string]string{}},
	})
	doc.Set("with: colon", Entry{CDMField: "Result"})

	data, err := Marshal(doc)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)

	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s\nyaml:\n%s\nparsed:\n%s", diff, data, spew.Sdump(got.Columns()))
	}

	e, _ := got.Get("material")
	require.NotNil(t, e.Transformation)
	assert.Empty(t, e.ValueMapping())
}

func TestSaveLoad(t *testing.T) {
	doc := NewDocument()
	doc.Set("side", sideEntry())

	var sb strings.Builder
	require.NoError(t, Save(&sb, doc))

	got, err := Load(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.True(t, doc.Equal(got))
}

func TestWriteFileLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mapping.yaml")

	doc := NewDocument()
	doc.Set("side", sideEntry())
	require.NoError(t, WriteFile(doc, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, doc.Equal(got))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
