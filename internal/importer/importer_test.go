package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashqueue/internal/models"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheet string, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for r, row := range rows {
		for c, v := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseXLSX(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]string{
		{"Question", "Answer"},
		{"comer", "to eat"},
		{"", ""},
		{" beber ", "to drink"},
		{"dormir", ""},
	})

	result, err := Parse(buf, FormatXLSX, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []models.Card{
		{Question: "comer", Answer: "to eat"},
		{Question: "beber", Answer: "to drink"},
	}, result.Cards)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"row 5: missing answer"}, result.Errors)
}

func TestParseXLSXNamedSheet(t *testing.T) {
	buf := workbook(t, "Verbs", [][]string{{"ser", "to be"}})

	cfg := DefaultConfig()
	cfg.Sheet = "Verbs"
	cfg.StartRow = 1
	result, err := Parse(buf, FormatXLSX, cfg)
	require.NoError(t, err)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, "to be", result.Cards[0].Answer)

	cfg.Sheet = "Nouns"
	_, err = Parse(workbook(t, "Verbs", [][]string{{"ser", "to be"}}), FormatXLSX, cfg)
	assert.Error(t, err)
}

func TestParseCSVWithCustomColumns(t *testing.T) {
	input := "id,answer,question\n1,to eat,comer\n2,\"to go, to leave\",ir\n3,,\n"
	cfg := Config{QuestionColumn: 2, AnswerColumn: 1, StartRow: 2}

	result, err := Parse(strings.NewReader(input), FormatCSV, cfg)
	require.NoError(t, err)
	assert.Equal(t, []models.Card{
		{Question: "comer", Answer: "to eat"},
		{Question: "ir", Answer: "to go, to leave"},
	}, result.Cards)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestParseRejectsBadConfig(t *testing.T) {
	_, err := Parse(strings.NewReader(""), FormatCSV, Config{QuestionColumn: 1, AnswerColumn: 1})
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""), Format("ods"), DefaultConfig())
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.csv")
	require.NoError(t, os.WriteFile(path, []byte("q,a\nhola,hello\n"), 0o600))

	result, err := ParseFile(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []models.Card{{Question: "hola", Answer: "hello"}}, result.Cards)

	_, err = ParseFile(filepath.Join(dir, "deck.txt"), DefaultConfig())
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("cards.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromPath("/tmp/cards.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
}
