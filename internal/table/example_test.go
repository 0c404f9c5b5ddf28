package table_test

import (
	"fmt"

	"cdm-mapper/internal/table"
)

func Example() {
	tbl := table.MustNew(
		table.NewColumn("id", table.InferColumn([]string{"1", "2"})...),
		table.NewColumn("weight", table.InferColumn([]string{"71.5", ""})...),
		table.NewColumn("side", table.InferColumn([]string{"L", "R"})...),
	)

	for _, s := range tbl.Summaries(1) {
		fmt.Println(s.Name, s.Kind, s.Missing)
	}
	// Output:
	// id int64 0
	// weight float64 1
	// side string 0
}
