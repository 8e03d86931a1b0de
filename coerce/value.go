// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package coerce converts raw cell text into typed values.
//
// The detection functions are pure: the same text and DetectionConfig
// always give the same result. They report "no detection" with a false
// second return value, and the caller keeps the original text.
// Only DateValue and FloatSafe return errors.
package coerce

import (
	"math"
	"strconv"
	"time"
)

// Kind is the active tag of a Value.
type Kind uint8

const (
	Empty = Kind(iota)
	Int
	Float
	Date
	DateTime
	Time
	Text
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Int:
		return "int"
	case Float:
		return "float"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Time:
		return "time"
	case Text:
		return "text"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a typed cell value. The zero Value is Empty.
type Value struct {
	t    time.Time
	s    string
	f    float64
	i    int64
	d    time.Duration
	kind Kind
}

func IntValue(i int64) Value     { return Value{kind: Int, i: i} }
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }
func TextValue(s string) Value   { return Value{kind: Text, s: s} }

// TimeOf returns a Time value: the time of day, or an elapsed duration.
func TimeOf(d time.Duration) Value { return Value{kind: Time, d: d} }

// DateOf returns a Date value of the calendar date of t.
func DateOf(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: Date, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateTimeOf returns a DateTime value of the instant t in UTC, truncated to microseconds.
func DateTimeOf(t time.Time) Value {
	return Value{kind: DateTime, t: t.UTC().Truncate(time.Microsecond)}
}

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is Empty.
func (v Value) IsEmpty() bool { return v.kind == Empty }

// Int returns the integer, and whether the value is an Int.
func (v Value) Int() (int64, bool) { return v.i, v.kind == Int }

// Float returns the float, and whether the value is a Float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == Float }

// Time returns the date (time), and whether the value is a Date or a DateTime.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == Date || v.kind == DateTime }

// Duration returns the duration, and whether the value is a Time.
func (v Value) Duration() (time.Duration, bool) { return v.d, v.kind == Time }

// Text returns the string, and whether the value is a Text.
func (v Value) Text() (string, bool) { return v.s, v.kind == Text }

// Any returns the value as a plain Go value: nil, int64, float64,
// time.Time, time.Duration or string.
func (v Value) Any() any {
	switch v.kind {
	case Int:
		return v.i
	case Float:
		return v.f
	case Date, DateTime:
		return v.t
	case Time:
		return v.d
	case Text:
		return v.s
	default:
		return nil
	}
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05.999999"
)

// String returns the text form of the value, which is detected as the same Value.
func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return FormatFloat(v.f)
	case Date:
		return v.t.Format(DateLayout)
	case DateTime:
		return v.t.Format(DateTimeLayout)
	case Time:
		return FormatDuration(v.d)
	case Text:
		return v.s
	default:
		return ""
	}
}

// FormatFloat returns the shortest representation of f which parses back to f.
//
// Integral values keep a ".0" suffix, so they are not detected as integers.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	fmtc := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e21) {
		fmtc = 'g'
	}
	s := strconv.FormatFloat(f, fmtc, -1, 64)
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '.' || c == 'e' {
			return s
		}
	}
	return s + ".0"
}
