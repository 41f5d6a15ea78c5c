// Package importer reads question/answer decks from spreadsheets.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vytor/flashqueue/internal/models"
	"github.com/xuri/excelize/v2"
)

// Format is a supported input file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Config selects where cards live in the input.
type Config struct {
	Sheet          string // xlsx sheet name; empty means the first sheet
	QuestionColumn int    // zero-based
	AnswerColumn   int    // zero-based
	StartRow       int    // 1-based, rows before it are headers
}

// DefaultConfig reads questions from column A and answers from column B,
// skipping one header row.
func DefaultConfig() Config {
	return Config{QuestionColumn: 0, AnswerColumn: 1, StartRow: 2}
}

// Result holds the parsed cards and any rows that could not be used.
type Result struct {
	Cards   []models.Card
	Skipped int
	Errors  []string
}

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

// ParseFile opens path and parses it according to its extension.
func ParseFile(path string, cfg Config) (*Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, format, cfg)
}

// Parse reads cards from r.
func Parse(r io.Reader, format Format, cfg Config) (*Result, error) {
	if cfg.QuestionColumn < 0 || cfg.AnswerColumn < 0 || cfg.QuestionColumn == cfg.AnswerColumn {
		return nil, fmt.Errorf("invalid columns: question=%d answer=%d", cfg.QuestionColumn, cfg.AnswerColumn)
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r, cfg.Sheet)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		question := cell(row, cfg.QuestionColumn)
		answer := cell(row, cfg.AnswerColumn)
		switch {
		case question == "" && answer == "":
			result.Skipped++
		case question == "":
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing question", rowNum))
		case answer == "":
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing answer", rowNum))
		default:
			result.Cards = append(result.Cards, models.Card{Question: question, Answer: answer})
		}
	}
	return result, nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
