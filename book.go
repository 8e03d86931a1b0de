// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetio

import (
	"context"
	"errors"
	"fmt"

	"github.com/UNO-SOFT/zlog/v2"
)

// SheetData is a named sheet with its rows.
type SheetData struct {
	Name string
	Rows [][]any
}

// Book is an ordered sequence of sheets.
// The uniqueness of the sheet names is the responsibility of the caller.
type Book struct {
	Sheets []SheetData
}

// Names of the sheets, in order.
func (b Book) Names() []string {
	names := make([]string, len(b.Sheets))
	for i, s := range b.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the named sheet.
func (b Book) Sheet(name string) (SheetData, bool) {
	for _, s := range b.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return SheetData{}, false
}

// WriteBook writes the sheets of the book one after the other,
// each with a new SheetWriter returned by newWriter.
//
// The SheetWriter is closed even if a row write fails.
func WriteBook(ctx context.Context, newWriter func() SheetWriter, book Book) error {
	logger := zlog.SFromContext(ctx)
	single := len(book.Sheets) == 1
	for i, s := range book.Sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("write sheet", "index", i, "name", s.Name, "rows", len(s.Rows))
		if err := writeSheet(newWriter(), SheetInfo{Name: s.Name, Index: i, Single: single}, s.Rows); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	return nil
}

func writeSheet(w SheetWriter, info SheetInfo, rows [][]any) (err error) {
	if err = w.Open(info); err != nil {
		// Open may have acquired the destination before failing.
		return errors.Join(err, w.Close())
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	for i, row := range rows {
		if err = w.WriteRow(row...); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

// SheetWriterOf returns a constructor of SheetWriters which create
// their sheets in the given book-level Writer.
//
// The Writer must be closed by the caller after all the sheets are written.
func SheetWriterOf(w Writer, cols []Column) func() SheetWriter {
	return func() SheetWriter { return &bookSheetWriter{w: w, cols: cols} }
}

type bookSheetWriter struct {
	w     Writer
	cols  []Column
	sheet Sheet
}

func (bsw *bookSheetWriter) Open(info SheetInfo) error {
	if bsw.sheet != nil {
		return fmt.Errorf("sheet %q: already open", info.Name)
	}
	sheet, err := bsw.w.NewSheet(info.Name, bsw.cols)
	if err != nil {
		return err
	}
	bsw.sheet = sheet
	return nil
}

func (bsw *bookSheetWriter) WriteRow(values ...any) error {
	if bsw.sheet == nil {
		return ErrNotOpen
	}
	return bsw.sheet.AppendRow(values...)
}

func (bsw *bookSheetWriter) Close() error {
	sheet := bsw.sheet
	bsw.sheet = nil
	if sheet == nil {
		return nil
	}
	return sheet.Close()
}
