// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package coerce

import "fmt"

// DateParsingError is returned by DateValue for text which is not a valid date or date-time.
type DateParsingError struct {
	Text string
}

func (e *DateParsingError) Error() string { return fmt.Sprintf("bad date value %q", e.Text) }

// IntegerAccuracyLossError is returned by FloatSafe when the integer
// cannot be converted to a float64 without losing digits.
type IntegerAccuracyLossError struct {
	// Value is the decimal representation of the integer.
	Value string
}

func (e *IntegerAccuracyLossError) Error() string {
	return fmt.Sprintf("%s is too big to be represented as a float accurately", e.Value)
}
