// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package coerce_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/sheetio/coerce"
)

func TestDetectInt(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int64
		ok   bool
	}{
		{"123", 123, true},
		{"-456", -456, true},
		{"+7", 7, true},
		{"0", 0, true},
		{"9223372036854775807", math.MaxInt64, true},
		{"9223372036854775808", 0, false},
		{"123_123", 0, false},
		{"1,000", 0, false},
		{" 1", 0, false},
		{"1 ", 0, false},
		{"1.0", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"0x10", 0, false},
	} {
		got, ok := coerce.DetectInt(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDetectFloat(t *testing.T) {
	var cfg coerce.DetectionConfig
	for _, tc := range []struct {
		in   string
		want float64
		ok   bool
	}{
		{"123.1", 123.1, true},
		{"123.", 123, true},
		{".5", 0.5, true},
		{"1", 1, true},
		{"-1.5e3", -1500, true},
		{"1E-2", 0.01, true},
		{"inf", math.Inf(1), true},
		{"-Infinity", math.Inf(-1), true},
		{"1e400", math.Inf(1), true},
		{"123_123.", 0, false},
		{"123_123.1", 0, false},
		{"1_0e3", 0, false},
		{"0x1p-2", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"e5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	} {
		got, ok := coerce.DetectFloat(tc.in, cfg)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDetectFloatNaN(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		cfg  coerce.DetectionConfig
		ok   bool
	}{
		{"plain", "NaN", coerce.DetectionConfig{}, true},
		{"ignored", "NaN", coerce.DetectionConfig{IgnoreNaNText: true}, false},
		{"ignored_lower", "nan", coerce.DetectionConfig{IgnoreNaNText: true}, false},
		{"custom_case_mismatch", "NaN", coerce.DetectionConfig{DefaultFloatNaN: "nan"}, false},
		{"custom", "nan", coerce.DetectionConfig{DefaultFloatNaN: "nan"}, true},
		{"custom_overrides_ignore", "nan", coerce.DetectionConfig{DefaultFloatNaN: "nan", IgnoreNaNText: true}, true},
		{"custom_mismatch_ignored", "NAN", coerce.DetectionConfig{DefaultFloatNaN: "nan", IgnoreNaNText: true}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := coerce.DetectFloat(tc.in, tc.cfg)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.True(t, math.IsNaN(got), "got %v", got)
			}
		})
	}
}

func TestDateValue(t *testing.T) {
	for _, tc := range []struct {
		in   string
		kind coerce.Kind
		want time.Time
	}{
		{"2015-08-17", coerce.Date, time.Date(2015, 8, 17, 0, 0, 0, 0, time.UTC)},
		{"2015-08-17T19:20:00", coerce.DateTime, time.Date(2015, 8, 17, 19, 20, 0, 0, time.UTC)},
		{"2015-08-17 19:20:00", coerce.DateTime, time.Date(2015, 8, 17, 19, 20, 0, 0, time.UTC)},
		{"2015-08-17T19:20:59.999999", coerce.DateTime, time.Date(2015, 8, 17, 19, 20, 59, 999999000, time.UTC)},
		{"2015-08-17T19:20:59.99999", coerce.DateTime, time.Date(2015, 8, 17, 19, 20, 59, 999990000, time.UTC)},
		{"2015-08-17T19:20:59.999999999999999", coerce.DateTime, time.Date(2015, 8, 17, 19, 20, 59, 999999000, time.UTC)},
		{"2014-12-25 11:11:11.000010", coerce.DateTime, time.Date(2014, 12, 25, 11, 11, 11, 10000, time.UTC)},
		{"2016-02-29", coerce.Date, time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC)},
	} {
		v, err := coerce.DateValue(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.kind, v.Kind(), tc.in)
		got, ok := v.Time()
		require.True(t, ok, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %v, wanted %v", tc.in, got, tc.want)
	}
}

func TestDateValueMicrosecondTruncation(t *testing.T) {
	v, err := coerce.DateValue("2015-08-17T19:20:59.999999999999999")
	require.NoError(t, err)
	got, _ := v.Time()
	assert.Equal(t, 999999, got.Nanosecond()/1000)
	assert.Equal(t, 59, got.Second())
}

func TestDateValueInvalid(t *testing.T) {
	for _, in := range []string{
		"2015-08-",
		"1234567890",
		"1234567890123456789",
		"12345678901234567890",
		"2015-02-30",
		"2015-13-01",
		"2015-08-17T24:00:00",
		"2015-08-17T19:20",
		"2015-08-17T19:20:00.",
		"",
	} {
		_, err := coerce.DateValue(in)
		var dpe *coerce.DateParsingError
		if assert.ErrorAs(t, err, &dpe, in) {
			assert.Equal(t, in, dpe.Text)
		}
	}
}

func TestTimeValue(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"PT1111", 0, false},
		{"PT", 0, false},
		{"1111", 0, false},
		{"PT1H", time.Hour, true},
		{"PT12H30M05S", 12*time.Hour + 30*time.Minute + 5*time.Second, true},
		{"PT30M", 30 * time.Minute, true},
		{"PT1.5S", 1500 * time.Millisecond, true},
		{"PT36H00M00S", 36 * time.Hour, true},
		{"-PT1H", -time.Hour, true},
		{"PT1S1H", 0, false},
		{"P1DT1H", 0, false},
	} {
		got, ok := coerce.TimeValue(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestFormatDuration(t *testing.T) {
	for _, d := range []time.Duration{
		0, time.Hour, 12*time.Hour + 30*time.Minute + 5*time.Second,
		1500 * time.Millisecond, 49 * time.Hour, -90 * time.Minute,
	} {
		s := coerce.FormatDuration(d)
		got, ok := coerce.TimeValue(s)
		if assert.True(t, ok, s) {
			assert.Equal(t, d, got, s)
		}
	}
	assert.Equal(t, "PT12H30M05S", coerce.FormatDuration(12*time.Hour+30*time.Minute+5*time.Second))
}

func TestFloatSafe(t *testing.T) {
	f, err := coerce.FloatSafe(coerce.MaxFloatSafeInteger - 1)
	require.NoError(t, err)
	assert.Equal(t, float64(coerce.MaxFloatSafeInteger-1), f)

	f, err = coerce.FloatSafe(-123)
	require.NoError(t, err)
	assert.Equal(t, -123.0, f)

	for _, i := range []int64{1_000_000_000_000_000, coerce.MaxFloatSafeInteger, -coerce.MaxFloatSafeInteger, math.MinInt64} {
		_, err := coerce.FloatSafe(i)
		var iale *coerce.IntegerAccuracyLossError
		assert.ErrorAs(t, err, &iale, "%d", i)
	}

	_, err = coerce.FloatSafeUint(math.MaxUint64)
	var iale *coerce.IntegerAccuracyLossError
	require.ErrorAs(t, err, &iale)
	assert.Equal(t, "18446744073709551615", iale.Value)
}

func TestDetect(t *testing.T) {
	all := coerce.DefaultDetection()
	noInt := all
	noInt.AutoDetectInt = false
	noFloat := all
	noFloat.AutoDetectFloat = false
	noDate := all
	noDate.AutoDetectDatetime = false

	for _, tc := range []struct {
		name string
		in   string
		cfg  coerce.DetectionConfig
		want coerce.Value
	}{
		{"empty", "", all, coerce.Value{}},
		{"int", "1", all, coerce.IntValue(1)},
		{"float", "3.1", all, coerce.FloatValue(3.1)},
		{"int_as_float", "2", noInt, coerce.FloatValue(2)},
		{"float_off", "3.1", noFloat, coerce.TextValue("3.1")},
		{"int_float_off", "2", noFloat, coerce.IntValue(2)},
		{"date", "2014-12-25", all, coerce.DateOf(time.Date(2014, 12, 25, 0, 0, 0, 0, time.UTC))},
		{"datetime", "2014-12-25 11:11:11", all, coerce.DateTimeOf(time.Date(2014, 12, 25, 11, 11, 11, 0, time.UTC))},
		{"date_off", "2014-12-25", noDate, coerce.TextValue("2014-12-25")},
		{"bad_date", "2014-12-32", all, coerce.TextValue("2014-12-32")},
		{"time", "PT1H", all, coerce.TimeOf(time.Hour)},
		{"bad_time", "PT1111", all, coerce.TextValue("PT1111")},
		{"separator", "123_123", all, coerce.TextValue("123_123")},
		{"text", "abc", all, coerce.TextValue("abc")},
		{"int_overflow", "12345678901234567890", all, coerce.TextValue("12345678901234567890")},
		{"big_int_no_int", "9007199254740993", noInt, coerce.TextValue("9007199254740993")},
		{"safe_int_no_int", "-9007199254740991", noInt, coerce.FloatValue(-9007199254740991)},
		{"big_int", "9007199254740993", all, coerce.IntValue(9007199254740993)},
		{"big_float", "12345678901234567890.0", all, coerce.FloatValue(12345678901234567890.0)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coerce.Detect(tc.in, tc.cfg))
		})
	}
}

func TestIsIntegerText(t *testing.T) {
	for s, want := range map[string]bool{
		"1": true, "-007": true, "+12345678901234567890": true,
		"1.0": false, "1e3": false, "1_000": false, "": false, " 1": false,
	} {
		assert.Equal(t, want, coerce.IsIntegerText(s), s)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	cfg := coerce.DefaultDetection()
	for _, in := range []string{"1", "1.5", "2014-12-25", "PT1H", "x", "nan"} {
		a, b := coerce.Detect(in, cfg), coerce.Detect(in, cfg)
		assert.Equal(t, a.Kind(), b.Kind(), in)
		assert.Equal(t, a.String(), b.String(), in)
	}
}
