// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook creates an xlsx with sheet "A" first and sheet "B" second.
func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "A"))
	require.NoError(t, f.SetSheetRow("A", "A1", &[]interface{}{"name", "qty", "note"}))
	require.NoError(t, f.SetSheetRow("A", "A2", &[]interface{}{"apple", 3, "red"}))
	require.NoError(t, f.SetSheetRow("A", "A3", &[]interface{}{"pear", 5}))

	_, err := f.NewSheet("B")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("B", "A1", &[]interface{}{"secret"}))
	require.NoError(t, f.SetSheetRow("B", "A2", &[]interface{}{"hidden"}))

	path := filepath.Join(dir, "fruit.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSpreadsheetStrategy_XLSXFirstSheetOnly(t *testing.T) {
	dir := t.TempDir()
	in := writeWorkbook(t, dir)

	t.Run("csv", func(t *testing.T) {
		job := testJob(in, filepath.Join(dir, "out"), "csv")
		progress := runStrategy(t, SpreadsheetStrategy{}, job)
		assert.Equal(t, []int{10, 30, 50, 80, 100}, progress)

		data, err := os.ReadFile(job.OutputPath)
		require.NoError(t, err)
		assert.Equal(t, "name,qty,note\napple,3,red\npear,5,\n", string(data))
		assert.NotContains(t, string(data), "secret")
	})

	t.Run("json", func(t *testing.T) {
		job := testJob(in, filepath.Join(dir, "out"), "json")
		runStrategy(t, SpreadsheetStrategy{}, job)

		data, err := os.ReadFile(job.OutputPath)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")

		var rows []map[string]any
		require.NoError(t, json.Unmarshal(data, &rows))
		assert.Equal(t, []map[string]any{
			{"name": "apple", "qty": float64(3), "note": "red"},
			{"name": "pear", "qty": float64(5)},
		}, rows)
	})
}

func TestSpreadsheetStrategy_CSV(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "people.csv", "\xef\xbb\xbfid,name,,name\n1,Ada,x,Lovelace\n\n2,\"Grace, H\",,Hopper\n")

	t.Run("json keeps header order and dedupes keys", func(t *testing.T) {
		job := testJob(in, filepath.Join(dir, "out"), "json")
		runStrategy(t, SpreadsheetStrategy{}, job)

		data, err := os.ReadFile(job.OutputPath)
		require.NoError(t, err)
		want := `[
  {
    "id": 1,
    "name": "Ada",
    "__EMPTY": "x",
    "name_1": "Lovelace"
  },
  {
    "id": 2,
    "name": "Grace, H",
    "name_1": "Hopper"
  }
]
`
		assert.Equal(t, want, string(data))
	})

	t.Run("xlsx", func(t *testing.T) {
		job := testJob(in, filepath.Join(dir, "out"), "xlsx")
		runStrategy(t, SpreadsheetStrategy{}, job)

		f, err := excelize.OpenFile(job.OutputPath)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
		v, err := f.GetCellValue("Sheet1", "B3")
		require.NoError(t, err)
		assert.Equal(t, "Grace, H", v)

		typ, err := f.GetCellType("Sheet1", "A2")
		require.NoError(t, err)
		assert.NotEqual(t, excelize.CellTypeSharedString, typ)
		assert.NotEqual(t, excelize.CellTypeInlineString, typ)
	})
}

func TestSpreadsheetStrategy_Empty(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "empty.csv", "")

	job := testJob(in, dir, "json")
	runStrategy(t, SpreadsheetStrategy{}, job)
	data, err := os.ReadFile(job.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestHeaderKeys(t *testing.T) {
	rows := [][]string{{"a", "", "a", " b ", ""}, {"1", "2", "3", "4", "5", "6"}}
	assert.Equal(t, []string{"a", "__EMPTY", "a_1", "b", "__EMPTY_1", "__EMPTY_2"}, headerKeys(rows))
}

func TestRowsToCSV_PadsRows(t *testing.T) {
	data, err := rowsToCSV([][]string{{"a", "b", "c"}, {"1"}, {"x,y", "2"}})
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n1,,\n\"x,y\",2,\n", string(data))
}
