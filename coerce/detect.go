// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DetectionConfig decides which types Detect tries.
type DetectionConfig struct {
	// DefaultFloatNaN is the only NaN text which is detected as a NaN float,
	// compared case-sensitively. Empty means no such text.
	DefaultFloatNaN string
	// AutoDetectInt tries integer detection before float.
	AutoDetectInt bool
	// AutoDetectFloat tries float detection.
	AutoDetectFloat bool
	// AutoDetectDatetime tries time, date and date-time detection.
	AutoDetectDatetime bool
	// IgnoreNaNText leaves NaN texts undetected.
	IgnoreNaNText bool
}

// DefaultDetection detects every type, and NaN texts as NaN.
func DefaultDetection() DetectionConfig {
	return DetectionConfig{AutoDetectInt: true, AutoDetectFloat: true, AutoDetectDatetime: true}
}

// MaxFloatSafeInteger is 2^53: integers of smaller magnitude convert to float64 exactly.
const MaxFloatSafeInteger = 1 << 53

var (
	rxInt     = regexp.MustCompile(`^[-+]?[0-9]+$`)
	rxFloat   = regexp.MustCompile(`^[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)
	rxSpecial = regexp.MustCompile(`(?i)^[-+]?(?:nan|inf|infinity)$`)
	rxDate    = regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})(?:[T ]([0-9]{2}):([0-9]{2}):([0-9]{2})(?:\.([0-9]+))?)?$`)
	rxTime    = regexp.MustCompile(`^(-)?PT(?:([0-9]+)H)?(?:([0-9]+)M)?(?:([0-9]+)(?:\.([0-9]+))?S)?$`)
)

// DetectInt returns the integer value of text, if it is a plain decimal integer.
//
// Digit separators ("123_123"), whitespace and out of range values are not detected.
func DetectInt(text string) (int64, bool) {
	if !IsIntegerText(text) {
		return 0, false
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// IsIntegerText reports whether text has the form of a decimal integer,
// regardless of its magnitude.
func IsIntegerText(text string) bool {
	return strings.IndexByte(text, '_') < 0 && rxInt.MatchString(text)
}

func floatSafeText(text string) bool {
	i, ok := DetectInt(text)
	if !ok {
		return false
	}
	_, err := FloatSafe(i)
	return err == nil
}

// DetectFloat returns the float value of a decimal float text (optionally with exponent),
// or of nan/inf/infinity, case-insensitively.
//
// A NaN text is detected iff it equals cfg.DefaultFloatNaN, or
// cfg.DefaultFloatNaN is empty and cfg.IgnoreNaNText is false.
func DetectFloat(text string, cfg DetectionConfig) (float64, bool) {
	if strings.IndexByte(text, '_') >= 0 {
		return 0, false
	}
	if rxSpecial.MatchString(text) {
		if strings.EqualFold(strings.TrimLeft(text, "+-"), "nan") {
			if cfg.DefaultFloatNaN != "" {
				return math.NaN(), text == cfg.DefaultFloatNaN
			}
			if cfg.IgnoreNaNText {
				return 0, false
			}
			return math.NaN(), true
		}
		if strings.HasPrefix(text, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	if !rxFloat.MatchString(text) {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !math.IsInf(f, 0) {
		// ErrRange with an infinite result is an overflow, which is the float value.
		return 0, false
	}
	return f, true
}

// DateValue parses an ISO-8601 date (2006-01-02) or date-time
// (2006-01-02T15:04:05, optionally with fractional seconds) text.
// A space is accepted instead of the T.
//
// Fractional seconds are truncated to microseconds.
// The returned Value is a Date or a DateTime, in UTC.
func DateValue(text string) (Value, error) {
	m := rxDate.FindStringSubmatch(text)
	if m == nil {
		return Value{}, &DateParsingError{Text: text}
	}
	n := func(s string) int { i, _ := strconv.Atoi(s); return i }
	year, month, day := n(m[1]), time.Month(n(m[2])), n(m[3])
	if month < time.January || month > time.December ||
		day < 1 || day > daysIn(year, month) {
		return Value{}, &DateParsingError{Text: text}
	}
	if m[4] == "" {
		return Value{kind: Date, t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}, nil
	}
	hour, minute, sec := n(m[4]), n(m[5]), n(m[6])
	if hour > 23 || minute > 59 || sec > 59 {
		return Value{}, &DateParsingError{Text: text}
	}
	var usec int
	if frac := m[7]; frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		usec = n(frac + "000000"[len(frac):])
	}
	return Value{kind: DateTime,
		t: time.Date(year, month, day, hour, minute, sec, usec*1000, time.UTC),
	}, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TimeValue parses an ISO-8601 duration of hours, minutes and seconds: PT#H#M#S,
// where every component is optional, but at least one is present.
//
// Anything else (such as "PT1111") is not detected.
func TimeValue(text string) (time.Duration, bool) {
	m := rxTime.FindStringSubmatch(text)
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "") {
		return 0, false
	}
	var d time.Duration
	for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second} {
		s := m[2+i]
		if s == "" {
			continue
		}
		u, err := strconv.ParseInt(s, 10, 64)
		if err != nil || u > int64(math.MaxInt64/unit) {
			return 0, false
		}
		if d += time.Duration(u) * unit; d < 0 {
			return 0, false
		}
	}
	if frac := m[5]; frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		ns, _ := strconv.ParseInt(frac+"000000000"[len(frac):], 10, 64)
		if d += time.Duration(ns); d < 0 {
			return 0, false
		}
	}
	if m[1] != "" {
		d = -d
	}
	return d, true
}

// FormatDuration returns d in the PT#H#M#S form TimeValue understands.
func FormatDuration(d time.Duration) string {
	var sign string
	if d < 0 {
		sign, d = "-", -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	var frac string
	if d != 0 {
		frac = strings.TrimRight("."+strconv.FormatInt(int64(d)+1e9, 10)[1:], "0")
	}
	return sign + "PT" + strconv.FormatInt(int64(h), 10) + "H" +
		pad2(int64(m)) + "M" + pad2(int64(s)) + frac + "S"
}

func pad2(i int64) string {
	if i < 10 {
		return "0" + strconv.FormatInt(i, 10)
	}
	return strconv.FormatInt(i, 10)
}

// FloatSafe returns i as a float64, or an *IntegerAccuracyLossError
// if its magnitude is at least 2^53.
func FloatSafe(i int64) (float64, error) {
	if i <= -MaxFloatSafeInteger || i >= MaxFloatSafeInteger {
		return 0, &IntegerAccuracyLossError{Value: strconv.FormatInt(i, 10)}
	}
	return float64(i), nil
}

// FloatSafeUint is FloatSafe for unsigned integers.
func FloatSafeUint(u uint64) (float64, error) {
	if u >= MaxFloatSafeInteger {
		return 0, &IntegerAccuracyLossError{Value: strconv.FormatUint(u, 10)}
	}
	return float64(u), nil
}

// Detect returns the typed value of text, trying the types cfg allows:
// integer, float, then time and date. Undetected text stays Text.
//
// Integer text is never narrowed: if it is not detected as an Int,
// it becomes a Float only if its magnitude is smaller than 2^53.
func Detect(text string, cfg DetectionConfig) Value {
	if text == "" {
		return Value{}
	}
	if cfg.AutoDetectInt {
		if i, ok := DetectInt(text); ok {
			return IntValue(i)
		}
	}
	// Integers which do not fit a float64 exactly stay Text.
	if cfg.AutoDetectFloat && !(IsIntegerText(text) && !floatSafeText(text)) {
		if f, ok := DetectFloat(text, cfg); ok {
			return FloatValue(f)
		}
	}
	if cfg.AutoDetectDatetime {
		if strings.Contains(text, "PT") {
			if d, ok := TimeValue(text); ok {
				return TimeOf(d)
			}
		} else if len(text) >= len(DateLayout) && text[4] == '-' {
			if v, err := DateValue(text); err == nil {
				return v
			}
		}
	}
	return TextValue(text)
}
