// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetio

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDialect is returned by Dialect.Validate.
var ErrInvalidDialect = errors.New("invalid dialect")

// Config holds the constants of the multi-sheet emulation.
// Build it once with DefaultConfig and pass it to the writers and readers.
type Config struct {
	// MultiSheetSeparator separates the stem, the sheet name and the sheet index
	// in the names of the files of the non-default sheets.
	MultiSheetSeparator string
	// SheetStartMarker is a template with exactly one %s (the sheet name).
	SheetStartMarker string
	// SheetEndMarker ends the data of a sheet in a stream.
	SheetEndMarker string
	// LineTerminator is used when the Dialect does not specify one.
	LineTerminator string
	// DefaultSheetName is the name of the sheet read from a stream without markers.
	DefaultSheetName string
}

// DefaultConfig returns the default Config.
func DefaultConfig() Config {
	return Config{
		MultiSheetSeparator: "__",
		SheetStartMarker:    "---sheetio:%s---",
		SheetEndMarker:      "---sheetio---",
		LineTerminator:      "\r\n",
		DefaultSheetName:    "sheet1",
	}
}

// Validate the Config.
func (cfg Config) Validate() error {
	if cfg.MultiSheetSeparator == "" {
		return errors.New("empty multi-sheet separator")
	}
	if strings.Count(cfg.SheetStartMarker, "%") != 1 || !strings.Contains(cfg.SheetStartMarker, "%s") {
		return fmt.Errorf("sheet start marker %q must contain exactly one %%s", cfg.SheetStartMarker)
	}
	if cfg.SheetEndMarker == "" {
		return errors.New("empty sheet end marker")
	}
	if cfg.SheetEndMarker == cfg.StartMarker("") {
		return fmt.Errorf("sheet end marker %q is indistinguishable from the start marker", cfg.SheetEndMarker)
	}
	return nil
}

// StartMarker returns the start marker of the named sheet.
func (cfg Config) StartMarker(name string) string {
	return fmt.Sprintf(cfg.SheetStartMarker, name)
}

// SheetName returns the sheet name if field is a start marker.
func (cfg Config) SheetName(field string) (string, bool) {
	i := strings.Index(cfg.SheetStartMarker, "%s")
	if i < 0 {
		return "", false
	}
	prefix, suffix := cfg.SheetStartMarker[:i], cfg.SheetStartMarker[i+2:]
	if len(field) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(field, prefix) || !strings.HasSuffix(field, suffix) {
		return "", false
	}
	return field[len(prefix) : len(field)-len(suffix)], true
}

// Dialect is the complete set of options applied to every row of a text sheet.
type Dialect struct {
	// Delimiter separates the fields. Defaults to ','.
	Delimiter rune
	// Quote encloses fields that need quoting. Defaults to '"'.
	Quote rune
	// LineTerminator ends each row. Defaults to Config.LineTerminator.
	LineTerminator string
	// Encoding is the text encoding name (see GetEncoding). Defaults to utf-8.
	Encoding string
	// QuoteAll quotes every field, not just the ones that need it.
	QuoteAll bool
}

// WithDefaults returns the dialect with the zero fields filled from their defaults.
func (d Dialect) WithDefaults(cfg Config) Dialect {
	if d.Delimiter == 0 {
		d.Delimiter = ','
	}
	if d.Quote == 0 {
		d.Quote = '"'
	}
	if d.LineTerminator == "" {
		d.LineTerminator = cfg.LineTerminator
	}
	if d.LineTerminator == "" {
		d.LineTerminator = "\r\n"
	}
	return d
}

// Validate the dialect (after WithDefaults).
func (d Dialect) Validate() error {
	switch {
	case d.Delimiter == d.Quote:
		return fmt.Errorf("%w: delimiter and quote are the same (%q)", ErrInvalidDialect, d.Delimiter)
	case d.Delimiter == '\r' || d.Delimiter == '\n':
		return fmt.Errorf("%w: delimiter %q", ErrInvalidDialect, d.Delimiter)
	case d.Quote == '\r' || d.Quote == '\n':
		return fmt.Errorf("%w: quote %q", ErrInvalidDialect, d.Quote)
	}
	if _, err := GetEncoding(d.Encoding); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDialect, err)
	}
	return nil
}
