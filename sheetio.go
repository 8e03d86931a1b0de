// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package sheetio reads and writes books of named sheets through
// one row model, whatever the physical encoding is.
package sheetio

import (
	"errors"
	"io"
)

// Writer writes the spreadsheet consisting of the sheets created
// with NewSheet. The write finishes when Close is called.
//
// The writer SHOULD allow writing to separate sheets concurrently,
// and document if it does not provide this functionality.
type Writer interface {
	io.Closer
	NewSheet(name string, cols []Column) (Sheet, error)
}

// Sheet should be Closed when finished.
type Sheet interface {
	io.Closer
	AppendRow(values ...any) error
}

// SheetInfo is the identity of a sheet within its book.
type SheetInfo struct {
	Name  string
	Index int
	// Single is true iff the sheet is the only one in its book.
	Single bool
}

// SheetWriter writes exactly one sheet: Open, WriteRow any number of times, then Close.
//
// A SheetWriter is not safe for concurrent use.
type SheetWriter interface {
	io.Closer
	Open(SheetInfo) error
	WriteRow(values ...any) error
}

// Style is a style for a column/row/cell.
type Style struct {
	// Format is the number format
	Format string
	// FontBold is true if the font is bold
	FontBold bool
}

// Column contains the Name of the column and header's style and column's style.
type Column struct {
	Name           string
	Header, Column Style
}

var (
	ErrTooManyRows = errors.New("too many rows")
	// ErrNotOpen is returned when writing to a sheet which is not opened, or already closed.
	ErrNotOpen = errors.New("sheet is not open")
	// ErrInvalidSheetName is returned for sheet names that cannot be encoded in the destination.
	ErrInvalidSheetName = errors.New("invalid sheet name")
)

// Number is a string that contains a number.
type Number string
