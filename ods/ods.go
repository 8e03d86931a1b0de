// Copyright 2019, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package ods writes books as OpenDocument spreadsheets.
package ods

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	qt "github.com/valyala/quicktemplate"

	"github.com/UNO-SOFT/sheetio"
	"github.com/UNO-SOFT/sheetio/coerce"
)

var _ = (sheetio.Writer)((*ODSWriter)(nil))

// MimeType of the OpenDocument spreadsheets.
const MimeType = "application/vnd.oasis.opendocument.spreadsheet"

var qtMu sync.Mutex

// AcquireWriter wraps the given io.Writer to be usable with quicktemplates.
func AcquireWriter(w io.Writer) *qt.Writer {
	qtMu.Lock()
	W := qt.AcquireWriter(w)
	qtMu.Unlock()
	return W
}

// ReleaseWriter returns the *quicktemplate.Writer to the pool.
func ReleaseWriter(W *qt.Writer) { qtMu.Lock(); qt.ReleaseWriter(W); qtMu.Unlock() }

// errWriter remembers the first write error, as quicktemplate does not return them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// ODSWriter writes content.xml of ODS zip.
//
// Sheets must be written one after the other: NewSheet fails while
// the previous sheet is not closed.
type ODSWriter struct {
	mu        sync.Mutex
	zipWriter *zip.Writer
	w         *errWriter
	open      *ODSSheet
	names     map[string]struct{}
}

// NewWriter writes the fixed parts of the ods zip and starts content.xml.
func NewWriter(w io.Writer) (*ODSWriter, error) {
	zw := zip.NewWriter(w)
	// mimetype must be the first, uncompressed entry.
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		zw.Close()
		return nil, err
	}
	if _, err = io.WriteString(mt, MimeType); err != nil {
		zw.Close()
		return nil, err
	}
	for _, elt := range []struct {
		Name   string
		Stream func(*qt.Writer)
	}{
		{"META-INF/manifest.xml", StreamManifest},
		{"styles.xml", StreamStyles},
	} {
		sub, err := zw.Create(elt.Name)
		if err != nil {
			zw.Close()
			return nil, err
		}
		ew := errWriter{w: sub}
		W := AcquireWriter(&ew)
		elt.Stream(W)
		ReleaseWriter(W)
		if ew.err != nil {
			zw.Close()
			return nil, fmt.Errorf("%s: %w", elt.Name, ew.err)
		}
	}

	bw, err := zw.Create("content.xml")
	if err != nil {
		zw.Close()
		return nil, err
	}
	ew := &errWriter{w: bw}
	W := AcquireWriter(ew)
	StreamBeginSpreadsheet(W)
	ReleaseWriter(W)
	if ew.err != nil {
		zw.Close()
		return nil, ew.err
	}
	return &ODSWriter{w: ew, zipWriter: zw}, nil
}

// Close the ODSWriter, finishing the zip.
func (ow *ODSWriter) Close() error {
	if ow == nil {
		return nil
	}
	ow.mu.Lock()
	defer ow.mu.Unlock()
	if ow.w == nil {
		return nil
	}
	var err error
	if ow.open != nil {
		err = ow.open.closeLocked()
	}
	W := AcquireWriter(ow.w)
	StreamEndSpreadsheet(W)
	ReleaseWriter(W)
	if err == nil {
		err = ow.w.err
	}
	ow.w = nil
	zw := ow.zipWriter
	ow.zipWriter = nil
	return errors.Join(err, zw.Close())
}

func (ow *ODSWriter) NewSheet(name string, cols []sheetio.Column) (sheetio.Sheet, error) {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	if ow.w == nil {
		return nil, fmt.Errorf("%q: %w", name, sheetio.ErrNotOpen)
	}
	if ow.open != nil {
		return nil, fmt.Errorf("%q: previous sheet %q is not closed", name, ow.open.Name)
	}
	if _, ok := ow.names[name]; ok || name == "" {
		return nil, fmt.Errorf("%w: %q", sheetio.ErrInvalidSheetName, name)
	}
	if ow.names == nil {
		ow.names = make(map[string]struct{})
	}
	ow.names[name] = struct{}{}
	sheet := &ODSSheet{Name: name, ow: ow, w: AcquireWriter(ow.w)}
	StreamBeginSheet(sheet.w, name, cols)
	if ow.w.err != nil {
		ReleaseWriter(sheet.w)
		return nil, ow.w.err
	}
	ow.open = sheet
	return sheet, nil
}

type ODSSheet struct {
	Name string
	ow   *ODSWriter
	w    *qt.Writer
	row  int
}

// AppendRow writes the values as a new row.
//
// Numbers are stored as floats, so integers must be smaller than 2^53 in magnitude.
func (ods *ODSSheet) AppendRow(values ...any) error {
	ods.ow.mu.Lock()
	defer ods.ow.mu.Unlock()
	if ods.w == nil {
		return sheetio.ErrNotOpen
	}
	cells := make([]Cell, len(values))
	for i, v := range values {
		var err error
		if cells[i], err = NewCell(v); err != nil {
			return fmt.Errorf("%s[%d/%d]: %w", ods.Name, ods.row+1, i+1, err)
		}
	}
	ods.row++
	StreamRow(ods.w, cells)
	return ods.ow.w.err
}

func (ods *ODSSheet) Close() error {
	if ods == nil {
		return nil
	}
	ods.ow.mu.Lock()
	defer ods.ow.mu.Unlock()
	return ods.closeLocked()
}

func (ods *ODSSheet) closeLocked() error {
	W := ods.w
	ods.w = nil
	if W == nil {
		return nil
	}
	StreamEndSheet(W)
	ReleaseWriter(W)
	if ods.ow.open == ods {
		ods.ow.open = nil
	}
	return ods.ow.w.err
}

// ValueType is the cell's value's type.
type ValueType uint8

const (
	// EmptyType for empty cells
	EmptyType = ValueType(0)
	// FloatType for numerical data
	FloatType = ValueType('f')
	// DateType for dates
	DateType = ValueType('d')
	// TimeType for durations
	TimeType = ValueType('t')
	// StringType for everything else
	StringType = ValueType('s')
)

func (v ValueType) String() string {
	switch v {
	case EmptyType:
		return ""
	case FloatType:
		return "float"
	case DateType:
		return "date"
	case TimeType:
		return "time"
	default:
		return "string"
	}
}

// Cell is a value prepared for writing.
type Cell struct {
	// Value is the office:*-value attribute of non-string cells.
	Value string
	// Text is the displayed text.
	Text string
	Type ValueType
}

// NewCell returns the Cell of the value.
func NewCell(v any) (Cell, error) {
	if vr, ok := v.(driver.Valuer); ok {
		vv, err := vr.Value()
		if err != nil {
			return Cell{}, err
		}
		v = vv
	}
	if cv, ok := v.(coerce.Value); ok {
		if cv.Kind() == coerce.Date {
			t, _ := cv.Time()
			s := t.Format(coerce.DateLayout)
			return Cell{Type: DateType, Value: s, Text: s}, nil
		}
		v = cv.Any()
	}
	floatCell := func(f float64) Cell {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Cell{Type: StringType, Text: coerce.FormatFloat(f)}
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		return Cell{Type: FloatType, Value: s, Text: s}
	}
	switch x := v.(type) {
	case nil:
		return Cell{}, nil
	case string:
		return Cell{Type: StringType, Text: x}, nil
	case sheetio.Number:
		if coerce.IsIntegerText(string(x)) {
			i, ok := coerce.DetectInt(string(x))
			if !ok {
				return Cell{}, &coerce.IntegerAccuracyLossError{Value: string(x)}
			}
			if _, err := coerce.FloatSafe(i); err != nil {
				return Cell{}, err
			}
			return Cell{Type: FloatType, Value: string(x), Text: string(x)}, nil
		}
		if f, ok := coerce.DetectFloat(string(x), coerce.DetectionConfig{IgnoreNaNText: true}); ok && !math.IsInf(f, 0) {
			return Cell{Type: FloatType, Value: string(x), Text: string(x)}, nil
		}
		return Cell{Type: StringType, Text: string(x)}, nil
	case int:
		return intCell(int64(x))
	case int8:
		return intCell(int64(x))
	case int16:
		return intCell(int64(x))
	case int32:
		return intCell(int64(x))
	case int64:
		return intCell(x)
	case uint:
		return uintCell(uint64(x))
	case uint8:
		return uintCell(uint64(x))
	case uint16:
		return uintCell(uint64(x))
	case uint32:
		return uintCell(uint64(x))
	case uint64:
		return uintCell(x)
	case float32:
		return floatCell(float64(x)), nil
	case float64:
		return floatCell(x), nil
	case time.Time:
		if x.IsZero() {
			return Cell{}, nil
		}
		s := x.UTC().Format("2006-01-02T15:04:05.999999")
		if h, m, sec := x.Clock(); h == 0 && m == 0 && sec == 0 && x.Nanosecond() == 0 {
			s = x.Format(coerce.DateLayout)
		}
		return Cell{Type: DateType, Value: s, Text: s}, nil
	case time.Duration:
		s := coerce.FormatDuration(x)
		return Cell{Type: TimeType, Value: s, Text: s}, nil
	case fmt.Stringer:
		return Cell{Type: StringType, Text: x.String()}, nil
	default:
		return Cell{Type: StringType, Text: fmt.Sprintf("%v", v)}, nil
	}
}

func intCell(i int64) (Cell, error) {
	if _, err := coerce.FloatSafe(i); err != nil {
		return Cell{}, err
	}
	s := strconv.FormatInt(i, 10)
	return Cell{Type: FloatType, Value: s, Text: s}, nil
}

func uintCell(u uint64) (Cell, error) {
	if _, err := coerce.FloatSafeUint(u); err != nil {
		return Cell{}, err
	}
	s := strconv.FormatUint(u, 10)
	return Cell{Type: FloatType, Value: s, Text: s}, nil
}
