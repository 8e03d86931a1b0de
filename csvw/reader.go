// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package csvw

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/UNO-SOFT/sheetio"
	"github.com/UNO-SOFT/sheetio/coerce"
)

// ErrStrayRow is returned for data rows outside of any sheet in a multi-sheet stream.
var ErrStrayRow = errors.New("row outside of sheet markers")

func newCSVReader(r io.Reader, dialect sheetio.Dialect) (*csv.Reader, error) {
	if dialect.Quote != '"' {
		return nil, fmt.Errorf("%w: only '\"' quote can be read, not %q", sheetio.ErrInvalidDialect, dialect.Quote)
	}
	r, err := sheetio.NewDecoderReader(r, dialect.Encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = dialect.Delimiter
	cr.FieldsPerRecord = -1
	return cr, nil
}

func detectRow(record []string, detect coerce.DetectionConfig) []any {
	row := make([]any, len(record))
	for i, s := range record {
		row[i] = coerce.Detect(s, detect)
	}
	return row
}

// ReadStream reads the sheets written by StreamWriter.
//
// A stream without markers is one sheet, named Config.DefaultSheetName.
// Every cell is converted with coerce.Detect.
func ReadStream(r io.Reader, cfg sheetio.Config, dialect sheetio.Dialect, detect coerce.DetectionConfig) (sheetio.Book, error) {
	dialect = dialect.WithDefaults(cfg)
	cr, err := newCSVReader(r, dialect)
	if err != nil {
		return sheetio.Book{}, err
	}
	var book sheetio.Book
	var pending [][]any // rows before the first marker
	var cur *sheetio.SheetData
	var seenMarker bool
	finish := func() {
		if cur != nil {
			book.Sheets = append(book.Sheets, *cur)
			cur = nil
		}
	}
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return book, err
		}
		if len(record) == 1 {
			if name, ok := cfg.SheetName(record[0]); ok {
				if len(pending) != 0 {
					line, _ := cr.FieldPos(0)
					return book, fmt.Errorf("line %d: %w", line, ErrStrayRow)
				}
				finish()
				seenMarker = true
				cur = &sheetio.SheetData{Name: name}
				continue
			}
			if record[0] == cfg.SheetEndMarker {
				if cur == nil {
					line, _ := cr.FieldPos(0)
					return book, fmt.Errorf("line %d: unexpected sheet end marker", line)
				}
				finish()
				continue
			}
		}
		row := detectRow(record, detect)
		switch {
		case cur != nil:
			cur.Rows = append(cur.Rows, row)
		case seenMarker:
			line, _ := cr.FieldPos(0)
			return book, fmt.Errorf("line %d: %w", line, ErrStrayRow)
		default:
			pending = append(pending, row)
		}
	}
	finish()
	if !seenMarker {
		book.Sheets = append(book.Sheets, sheetio.SheetData{Name: cfg.DefaultSheetName, Rows: pending})
	}
	return book, nil
}

// ReadFile reads one file as one sheet.
func ReadFile(fileName, sheetName string, cfg sheetio.Config, dialect sheetio.Dialect, detect coerce.DetectionConfig) (sheetio.SheetData, error) {
	sheet := sheetio.SheetData{Name: sheetName}
	fh, err := os.Open(fileName)
	if err != nil {
		return sheet, err
	}
	defer fh.Close()
	cr, err := newCSVReader(fh, dialect.WithDefaults(cfg))
	if err != nil {
		return sheet, err
	}
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return sheet, nil
			}
			return sheet, fmt.Errorf("%q: %w", fileName, err)
		}
		sheet.Rows = append(sheet.Rows, detectRow(record, detect))
	}
}

type sheetFile struct {
	fileName, name string
	index          int
}

// ReadFiles reads the sheets written by FileWriter to base.
//
// The base file is the first sheet, named after the file;
// the others are named and ordered by their file names.
func ReadFiles(base string, cfg sheetio.Config, dialect sheetio.Dialect, detect coerce.DetectionConfig) (sheetio.Book, error) {
	var book sheetio.Book
	files := []sheetFile{{fileName: base, name: filepath.Base(base)}}
	others, err := siblingSheets(base, cfg)
	if err != nil {
		return book, err
	}
	files = append(files, others...)
	for _, f := range files {
		sheet, err := ReadFile(f.fileName, f.name, cfg, dialect, detect)
		if err != nil {
			return book, err
		}
		book.Sheets = append(book.Sheets, sheet)
	}
	return book, nil
}

func siblingSheets(base string, cfg sheetio.Config) ([]sheetFile, error) {
	dir := filepath.Dir(base)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(filepath.Base(base), ext) + cfg.MultiSheetSeparator
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []sheetFile
	for _, de := range des {
		fn := de.Name()
		if de.IsDir() || !strings.HasPrefix(fn, prefix) || !strings.HasSuffix(fn, ext) {
			continue
		}
		rest := strings.TrimSuffix(fn[len(prefix):], ext)
		i := strings.LastIndex(rest, cfg.MultiSheetSeparator)
		if i < 0 {
			continue
		}
		index, err := strconv.Atoi(rest[i+len(cfg.MultiSheetSeparator):])
		if err != nil || index <= 0 {
			continue
		}
		files = append(files, sheetFile{
			fileName: filepath.Join(dir, fn), name: rest[:i], index: index,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })
	return files, nil
}
