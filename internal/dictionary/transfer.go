package dictionary

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportConfig maps spreadsheet columns onto entry fields. Columns are
// spreadsheet letters; an empty column is not read.
type ImportConfig struct {
	SheetName          string // xlsx only; empty means the first sheet
	SourceColumn       string
	TargetColumn       string
	MeaningColumn      string
	PartOfSpeechColumn string
	ExamplesColumn     string // examples separated by ";"
	SourceLangColumn   string
	TargetLangColumn   string
	StartRow           int // 1-based

	// SourceLang and TargetLang apply to rows whose language cells are empty.
	SourceLang string
	TargetLang string
}

// DefaultImportConfig reads the layout written by ExportFile.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SourceColumn:       "A",
		TargetColumn:       "B",
		MeaningColumn:      "C",
		PartOfSpeechColumn: "D",
		ExamplesColumn:     "E",
		SourceLangColumn:   "F",
		TargetLangColumn:   "G",
		StartRow:           2,
	}
}

// ImportResult summarizes an import.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

var exportHeader = []string{"source_word", "target_word", "contextual_meaning", "part_of_speech", "examples", "source_lang", "target_lang"}

const examplesSep = ";"

// ImportFile reads entries from an .xlsx or .csv file and adds them.
// Rows that duplicate an existing entry, or an earlier row, are counted
// as skipped; rows missing a word are reported in Errors.
func (s *Store) ImportFile(ctx context.Context, path string, cfg ImportConfig) (*ImportResult, error) {
	rows, err := readRows(path, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, rows, cfg)
}

// Import adds entries parsed from rows, which are indexed from row 1.
func (s *Store) Import(ctx context.Context, rows [][]string, cfg ImportConfig) (*ImportResult, error) {
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var entries []Entry
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		e := Entry{
			SourceWord:        cols.cell(row, cols.source),
			TargetWord:        cols.cell(row, cols.target),
			ContextualMeaning: cols.cell(row, cols.meaning),
			PartOfSpeech:      cols.cell(row, cols.pos),
			SourceLang:        cmp.Or(cols.cell(row, cols.sourceLang), cfg.SourceLang),
			TargetLang:        cmp.Or(cols.cell(row, cols.targetLang), cfg.TargetLang),
		}
		if ex := cols.cell(row, cols.examples); ex != "" {
			for _, part := range strings.Split(ex, examplesSep) {
				if part = strings.TrimSpace(part); part != "" {
					e.Examples = append(e.Examples, part)
				}
			}
		}
		if e.SourceWord == "" || e.TargetWord == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing source or target word", i+1))
			continue
		}
		entries = append(entries, e)
	}

	added, err := s.addAll(ctx, entries)
	if err != nil {
		return nil, err
	}
	result.Created = added
	result.Skipped = len(entries) - added
	return result, nil
}

// ExportFile writes every entry to path as .xlsx or .csv, with a header
// row in the layout DefaultImportConfig reads back.
func (s *Store) ExportFile(ctx context.Context, path string) (int, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, exportHeader)
	for _, e := range entries {
		rows = append(rows, []string{
			e.SourceWord, e.TargetWord, e.ContextualMeaning, e.PartOfSpeech,
			strings.Join(e.Examples, examplesSep+" "), e.SourceLang, e.TargetLang,
		})
	}

	if isCSV(path) {
		err = writeCSV(path, rows)
	} else {
		err = writeXLSX(path, rows)
	}
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func readRows(path, sheet string) ([][]string, error) {
	if isCSV(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open CSV file: %w", err)
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		return rows, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write CSV: %w", err)
	}
	return f.Close()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type columns struct {
	source, target, meaning, pos, examples int
	sourceLang, targetLang                 int
}

// resolveColumns converts column letters to 0-based indexes; -1 marks an
// unused column.
func resolveColumns(cfg ImportConfig) (columns, error) {
	idx := func(name string, required bool) (int, error) {
		if name == "" {
			if required {
				return 0, fmt.Errorf("source and target columns are required")
			}
			return -1, nil
		}
		n, err := excelize.ColumnNameToNumber(name)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", name, err)
		}
		return n - 1, nil
	}

	var c columns
	var err error
	if c.source, err = idx(cfg.SourceColumn, true); err != nil {
		return c, err
	}
	if c.target, err = idx(cfg.TargetColumn, true); err != nil {
		return c, err
	}
	if c.meaning, err = idx(cfg.MeaningColumn, false); err != nil {
		return c, err
	}
	if c.pos, err = idx(cfg.PartOfSpeechColumn, false); err != nil {
		return c, err
	}
	if c.examples, err = idx(cfg.ExamplesColumn, false); err != nil {
		return c, err
	}
	if c.sourceLang, err = idx(cfg.SourceLangColumn, false); err != nil {
		return c, err
	}
	if c.targetLang, err = idx(cfg.TargetLangColumn, false); err != nil {
		return c, err
	}
	return c, nil
}

func (columns) cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
