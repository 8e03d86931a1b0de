// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetio_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/sheetio"
)

// recorder records the calls of the SheetWriters it creates.
type recorder struct {
	calls   []string
	failRow int // fail the n-th WriteRow (1-based) of every sheet
}

type recordingWriter struct {
	rec  *recorder
	name string
	rows int
}

func (rec *recorder) newWriter() sheetio.SheetWriter { return &recordingWriter{rec: rec} }

func (rw *recordingWriter) Open(info sheetio.SheetInfo) error {
	rw.name = info.Name
	rw.rec.calls = append(rw.rec.calls, fmt.Sprintf("open %s %d %t", info.Name, info.Index, info.Single))
	return nil
}
func (rw *recordingWriter) WriteRow(values ...any) error {
	rw.rows++
	if rw.rows == rw.rec.failRow {
		return errors.New("row failed")
	}
	rw.rec.calls = append(rw.rec.calls, fmt.Sprintf("row %s %v", rw.name, values))
	return nil
}
func (rw *recordingWriter) Close() error {
	rw.rec.calls = append(rw.rec.calls, "close "+rw.name)
	return nil
}

func TestWriteBookSequential(t *testing.T) {
	ctx := zlog.NewSContext(context.Background(), zlog.NewT(t).SLog())
	var rec recorder
	book := sheetio.Book{Sheets: []sheetio.SheetData{
		{Name: "A", Rows: [][]any{{1}, {2}}},
		{Name: "B", Rows: [][]any{{"x", "y"}}},
	}}
	require.NoError(t, sheetio.WriteBook(ctx, rec.newWriter, book))
	assert.Equal(t, []string{
		"open A 0 false", "row A [1]", "row A [2]", "close A",
		"open B 1 false", "row B [x y]", "close B",
	}, rec.calls)

	rec.calls = nil
	require.NoError(t, sheetio.WriteBook(ctx, rec.newWriter, sheetio.Book{Sheets: book.Sheets[:1]}))
	assert.Equal(t, "open A 0 true", rec.calls[0])
}

func TestWriteBookClosesOnError(t *testing.T) {
	ctx := zlog.NewSContext(context.Background(), zlog.NewT(t).SLog())
	rec := recorder{failRow: 2}
	book := sheetio.Book{Sheets: []sheetio.SheetData{
		{Name: "A", Rows: [][]any{{1}, {2}, {3}}},
		{Name: "B", Rows: [][]any{{4}}},
	}}
	err := sheetio.WriteBook(ctx, rec.newWriter, book)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "A": row 2`)
	assert.Equal(t, []string{"open A 0 false", "row A [1]", "close A"}, rec.calls)
}

func TestWriteBookCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var rec recorder
	err := sheetio.WriteBook(ctx, rec.newWriter, sheetio.Book{Sheets: []sheetio.SheetData{{Name: "A"}}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

// memWriter is a book-level Writer collecting the sheets in memory.
type memWriter struct {
	sheets map[string]*memSheet
	order  []string
	closed bool
}
type memSheet struct {
	rows   [][]any
	closed bool
}

func (mw *memWriter) NewSheet(name string, cols []sheetio.Column) (sheetio.Sheet, error) {
	if mw.sheets == nil {
		mw.sheets = make(map[string]*memSheet)
	}
	s := &memSheet{}
	mw.sheets[name] = s
	mw.order = append(mw.order, name)
	return s, nil
}
func (mw *memWriter) Close() error { mw.closed = true; return nil }
func (ms *memSheet) AppendRow(values ...any) error { ms.rows = append(ms.rows, values); return nil }
func (ms *memSheet) Close() error { ms.closed = true; return nil }

func TestSheetWriterOf(t *testing.T) {
	var mw memWriter
	book := sheetio.Book{Sheets: []sheetio.SheetData{
		{Name: "A", Rows: [][]any{{1, "a"}}},
		{Name: "B", Rows: [][]any{{2}}},
	}}
	require.NoError(t, sheetio.WriteBook(context.Background(), sheetio.SheetWriterOf(&mw, nil), book))
	assert.False(t, mw.closed, "the book-level writer is closed by its owner")
	assert.Equal(t, []string{"A", "B"}, mw.order)
	assert.Equal(t, [][]any{{1, "a"}}, mw.sheets["A"].rows)
	assert.True(t, mw.sheets["A"].closed)
	assert.True(t, mw.sheets["B"].closed)

	sw := sheetio.SheetWriterOf(&mw, nil)()
	assert.ErrorIs(t, sw.WriteRow(1), sheetio.ErrNotOpen)
	assert.NoError(t, sw.Close())
}

func TestBookSheet(t *testing.T) {
	book := sheetio.Book{Sheets: []sheetio.SheetData{{Name: "A"}, {Name: "B", Rows: [][]any{{1}}}}}
	s, ok := book.Sheet("B")
	assert.True(t, ok)
	assert.Len(t, s.Rows, 1)
	_, ok = book.Sheet("C")
	assert.False(t, ok)
}
