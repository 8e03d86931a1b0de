// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package coerce_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/UNO-SOFT/sheetio/coerce"
)

func TestValueString(t *testing.T) {
	cfg := coerce.DefaultDetection()
	for _, v := range []coerce.Value{
		coerce.IntValue(-42),
		coerce.FloatValue(2),
		coerce.FloatValue(3.1),
		coerce.FloatValue(123456789.5),
		coerce.FloatValue(1e-7),
		coerce.DateOf(time.Date(2014, 12, 25, 11, 0, 0, 0, time.UTC)),
		coerce.DateTimeOf(time.Date(2014, 12, 25, 11, 11, 11, 10000, time.UTC)),
		coerce.TimeOf(90 * time.Minute),
		coerce.TextValue("abc"),
	} {
		assert.Equal(t, v, coerce.Detect(v.String(), cfg), "%s %q", v.Kind(), v.String())
	}
	assert.Equal(t, "2.0", coerce.FloatValue(2).String())
	assert.Equal(t, "123456789.5", coerce.FloatValue(123456789.5).String())
	assert.Equal(t, "2014-12-25 11:11:11.00001", coerce.DateTimeOf(time.Date(2014, 12, 25, 11, 11, 11, 10000, time.UTC)).String())
	assert.Equal(t, "2014-12-25 10:11:11", coerce.DateTimeOf(time.Date(2014, 12, 25, 11, 11, 11, 0, time.FixedZone("CET", 3600))).String())
	assert.Equal(t, "nan", coerce.FormatFloat(math.NaN()))
	assert.Equal(t, "", coerce.Value{}.String())
}

func TestValueAccessors(t *testing.T) {
	v := coerce.IntValue(3)
	i, ok := v.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)
	_, ok = v.Float()
	assert.False(t, ok)
	assert.Equal(t, int64(3), v.Any())

	assert.True(t, coerce.Value{}.IsEmpty())
	assert.Nil(t, coerce.Value{}.Any())
	assert.Equal(t, "text", coerce.Text.String())

	d := coerce.DateOf(time.Date(2020, 1, 2, 3, 4, 5, 6, time.UTC))
	tm, ok := d.Time()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), tm)

	dt := coerce.DateTimeOf(time.Date(2020, 1, 2, 3, 4, 5, 1999, time.UTC))
	tm, _ = dt.Time()
	assert.Equal(t, 1000, tm.Nanosecond())
}
