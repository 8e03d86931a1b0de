// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package csvw writes (and reads back) books of sheets as delimited text:
// either one file per sheet (FileWriter), or all the sheets into one
// stream, delimited by marker rows (StreamWriter).
package csvw

import (
	"database/sql/driver"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UNO-SOFT/sheetio"
	"github.com/UNO-SOFT/sheetio/coerce"
)

// FormatCell returns the text of a cell value.
//
// Dates (time.Time at midnight in its own location, coerce.Date) are 2006-01-02,
// other times are 2006-01-02 15:04:05.999999 in UTC, durations are PT#H#M#S.
func FormatCell(v any) (string, error) {
	if vr, ok := v.(driver.Valuer); ok {
		vv, err := vr.Value()
		if err != nil {
			return "", err
		}
		v = vv
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case sheetio.Number:
		return string(x), nil
	case []byte:
		return string(x), nil
	case coerce.Value:
		return x.String(), nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return coerce.FormatFloat(float64(x)), nil
	case float64:
		return coerce.FormatFloat(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		if x.IsZero() {
			return "", nil
		}
		if h, m, s := x.Clock(); h == 0 && m == 0 && s == 0 && x.Nanosecond() == 0 {
			return coerce.DateOf(x).String(), nil
		}
		return coerce.DateTimeOf(x).String(), nil
	case time.Duration:
		return coerce.FormatDuration(x), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// rowEncoder serializes rows with the rules of a Dialect.
type rowEncoder struct {
	w       io.Writer
	dialect sheetio.Dialect
	buf     []byte
	fields  []string
}

func newRowEncoder(w io.Writer, dialect sheetio.Dialect) *rowEncoder {
	return &rowEncoder{w: w, dialect: dialect}
}

// WriteRow formats and writes the values as one row.
func (re *rowEncoder) WriteRow(values []any) error {
	re.fields = re.fields[:0]
	for i, v := range values {
		s, err := FormatCell(v)
		if err != nil {
			return fmt.Errorf("%d. field: %w", i+1, err)
		}
		re.fields = append(re.fields, s)
	}
	return re.WriteFields(re.fields)
}

// WriteFields writes the already formatted fields as one row.
func (re *rowEncoder) WriteFields(fields []string) error {
	d := re.dialect
	re.buf = re.buf[:0]
	for i, s := range fields {
		if i != 0 {
			re.buf = utf8.AppendRune(re.buf, d.Delimiter)
		}
		if !(d.QuoteAll || re.needsQuotes(s) || (len(fields) == 1 && s == "")) {
			re.buf = append(re.buf, s...)
			continue
		}
		re.buf = utf8.AppendRune(re.buf, d.Quote)
		for _, r := range s {
			if r == d.Quote {
				re.buf = utf8.AppendRune(re.buf, r)
			}
			re.buf = utf8.AppendRune(re.buf, r)
		}
		re.buf = utf8.AppendRune(re.buf, d.Quote)
	}
	re.buf = append(re.buf, d.LineTerminator...)
	_, err := re.w.Write(re.buf)
	return err
}

func (re *rowEncoder) needsQuotes(s string) bool {
	return strings.ContainsRune(s, re.dialect.Delimiter) ||
		strings.ContainsRune(s, re.dialect.Quote) ||
		strings.ContainsAny(s, "\r\n")
}
