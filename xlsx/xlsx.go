// Copyright 2020, 2023 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsx writes books as Office Open XML spreadsheets.
package xlsx

import (
	"database/sql/driver"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/UNO-SOFT/sheetio"
	"github.com/UNO-SOFT/sheetio/coerce"
)

var _ = (sheetio.Writer)((*XLSXWriter)(nil))

// DateFormat is the number format of the cells holding dates without time.
const DateFormat = "yyyy-mm-dd"

type XLSXWriter struct {
	w      io.Writer
	xl     *excelize.File
	styles map[string]int
	sheets []string
	mu     sync.Mutex
}

type XLSXSheet struct {
	xlw  *XLSXWriter
	Name string
	row  int64
	mu   sync.Mutex
}

// NewWriter returns a new sheetio.Writer.
//
// This writer allows concurrent writes to separate sheets.
//
// This writer collects everything in memory, so big sheets may impose problems.
func NewWriter(w io.Writer) *XLSXWriter {
	return &XLSXWriter{w: w, xl: excelize.NewFile()}
}

func (xlw *XLSXWriter) Close() error {
	if xlw == nil {
		return nil
	}
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	xl, w := xlw.xl, xlw.w
	xlw.xl, xlw.w = nil, nil
	if xl == nil || w == nil {
		return nil
	}
	_, err := xl.WriteTo(w)
	if closeErr := xl.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (xlw *XLSXWriter) NewSheet(name string, columns []sheetio.Column) (sheetio.Sheet, error) {
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	if xlw.xl == nil {
		return nil, fmt.Errorf("%q: %w", name, sheetio.ErrNotOpen)
	}
	for _, s := range xlw.sheets {
		if s == name {
			return nil, fmt.Errorf("%w: %q is duplicated", sheetio.ErrInvalidSheetName, name)
		}
	}
	xlw.sheets = append(xlw.sheets, name)
	if len(xlw.sheets) == 1 { // first
		if err := xlw.xl.SetSheetName("Sheet1", name); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", sheetio.ErrInvalidSheetName, name, err)
		}
	} else if _, err := xlw.xl.NewSheet(name); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", sheetio.ErrInvalidSheetName, name, err)
	}
	var hasHeader bool
	for i, c := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if s := xlw.getStyle(c.Column); s != 0 {
			if err = xlw.xl.SetColStyle(name, col, s); err != nil {
				return nil, err
			}
		}
		if s := xlw.getStyle(c.Header); s != 0 {
			if err = xlw.xl.SetCellStyle(name, col+"1", col+"1", s); err != nil {
				return nil, err
			}
		}
		if c.Name != "" {
			hasHeader = true
			if err = xlw.xl.SetCellStr(name, col+"1", c.Name); err != nil {
				return nil, err
			}
		}
	}
	xls := &XLSXSheet{xlw: xlw, Name: name}
	if hasHeader {
		xls.row++
	}
	return xls, nil
}

// getStyle must be called with xlw.mu held.
func (xlw *XLSXWriter) getStyle(style sheetio.Style) int {
	if !style.FontBold && style.Format == "" {
		return 0
	}
	k := fmt.Sprintf("%t\t%s", style.FontBold, style.Format)
	s, ok := xlw.styles[k]
	if ok {
		return s
	}
	var st excelize.Style
	if style.FontBold {
		st.Font = &excelize.Font{Bold: true}
	}
	if style.Format != "" {
		st.CustomNumFmt = &style.Format
	}
	s, err := xlw.xl.NewStyle(&st)
	if err != nil {
		panic(err)
	}
	if xlw.styles == nil {
		xlw.styles = make(map[string]int)
	}
	xlw.styles[k] = s
	return s
}

// MaxRowCount is the number of maximum rows.
const MaxRowCount = 1_048_576

func (xls *XLSXSheet) Close() error { return nil }

// AppendRow appends the values as a new row.
//
// Integers are stored as numbers, so they must be smaller than 2^53 in magnitude.
func (xls *XLSXSheet) AppendRow(values ...any) error {
	xls.mu.Lock()
	defer xls.mu.Unlock()
	if xls.row >= MaxRowCount {
		return sheetio.ErrTooManyRows
	}
	xls.row++
	xlw := xls.xlw
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	if xlw.xl == nil {
		return sheetio.ErrNotOpen
	}
	for i, v := range values {
		axis, err := excelize.CoordinatesToCellName(i+1, int(xls.row))
		if err != nil {
			return fmt.Errorf("%d/%d: %w", i, int(xls.row), err)
		}
		if err = xls.setCell(axis, v); err != nil {
			return fmt.Errorf("%s[%s]: %w", xls.Name, axis, err)
		}
	}
	return nil
}

// setCell must be called with xls.xlw.mu held.
func (xls *XLSXSheet) setCell(axis string, v any) error {
	xl := xls.xlw.xl
	// sql.Null* and the like
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			v = vv
		}
	}
	switch x := v.(type) {
	case nil:
		return nil
	case coerce.Value:
		switch x.Kind() {
		case coerce.Empty:
			return nil
		case coerce.Int:
			i, _ := x.Int()
			return xls.setInt(axis, i)
		case coerce.Date:
			t, _ := x.Time()
			return xls.setDate(axis, t)
		case coerce.Float:
			f, _ := x.Float()
			return xls.setFloat(axis, f)
		case coerce.Text:
			s, _ := x.Text()
			return xl.SetCellStr(xls.Name, axis, s)
		default:
			return xl.SetCellValue(xls.Name, axis, x.Any())
		}
	case time.Time:
		if x.IsZero() {
			return nil
		}
		if h, m, s := x.Clock(); h == 0 && m == 0 && s == 0 && x.Nanosecond() == 0 {
			return xls.setDate(axis, x)
		}
		return xl.SetCellValue(xls.Name, axis, x)
	case int:
		return xls.setInt(axis, int64(x))
	case int32:
		return xls.setInt(axis, int64(x))
	case int64:
		return xls.setInt(axis, x)
	case uint:
		return xls.setUint(axis, uint64(x))
	case uint32:
		return xls.setUint(axis, uint64(x))
	case uint64:
		return xls.setUint(axis, x)
	case float32:
		return xls.setFloat(axis, float64(x))
	case float64:
		return xls.setFloat(axis, x)
	case sheetio.Number:
		if coerce.IsIntegerText(string(x)) {
			i, ok := coerce.DetectInt(string(x))
			if !ok {
				return &coerce.IntegerAccuracyLossError{Value: string(x)}
			}
			return xls.setInt(axis, i)
		}
		if f, ok := coerce.DetectFloat(string(x), coerce.DetectionConfig{IgnoreNaNText: true}); ok {
			return xls.setFloat(axis, f)
		}
		return xl.SetCellStr(xls.Name, axis, string(x))
	case string:
		return xl.SetCellStr(xls.Name, axis, x)
	case fmt.Stringer:
		return xl.SetCellStr(xls.Name, axis, x.String())
	default:
		return xl.SetCellValue(xls.Name, axis, v)
	}
}

func (xls *XLSXSheet) setInt(axis string, i int64) error {
	if _, err := coerce.FloatSafe(i); err != nil {
		return err
	}
	return xls.xlw.xl.SetCellValue(xls.Name, axis, i)
}

// setFloat stores NaN and infinities as text, since cells cannot hold them.
func (xls *XLSXSheet) setFloat(axis string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return xls.xlw.xl.SetCellStr(xls.Name, axis, coerce.FormatFloat(f))
	}
	return xls.xlw.xl.SetCellFloat(xls.Name, axis, f, -1, 64)
}

func (xls *XLSXSheet) setUint(axis string, u uint64) error {
	if _, err := coerce.FloatSafeUint(u); err != nil {
		return err
	}
	return xls.xlw.xl.SetCellValue(xls.Name, axis, u)
}

func (xls *XLSXSheet) setDate(axis string, t time.Time) error {
	y, m, d := t.Date()
	if err := xls.xlw.xl.SetCellValue(xls.Name, axis, time.Date(y, m, d, 0, 0, 0, 0, time.UTC)); err != nil {
		return err
	}
	s := xls.xlw.getStyle(sheetio.Style{Format: DateFormat})
	return xls.xlw.xl.SetCellStyle(xls.Name, axis, axis, s)
}
