// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package csvw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/transform"

	"github.com/UNO-SOFT/sheetio"
)

var (
	_ = (sheetio.SheetWriter)((*FileWriter)(nil))
	_ = (sheetio.SheetWriter)((*StreamWriter)(nil))
)

// ErrAmbiguousRow is returned when a data row would be read back as a sheet marker.
var ErrAmbiguousRow = errors.New("row is indistinguishable from a sheet marker")

// encodedWriter wraps w with the encoder of the dialect's encoding.
// Flush must be called when finished, and it does not close w.
type encodedWriter struct {
	io.Writer
	tw *transform.Writer
}

func newEncodedWriter(w io.Writer, dialect sheetio.Dialect) (encodedWriter, error) {
	enc, err := sheetio.GetEncoding(dialect.Encoding)
	if err != nil || enc == nil {
		return encodedWriter{Writer: w}, err
	}
	tw := transform.NewWriter(w, enc.NewEncoder())
	return encodedWriter{Writer: tw, tw: tw}, nil
}

func (ew encodedWriter) Flush() error {
	if ew.tw == nil {
		return nil
	}
	return ew.tw.Close()
}

// SheetFileName returns the name of the file the sheet is written to.
//
// The single (or first) sheet of the book is written to base (STEM.EXT),
// the others to STEM<SEP>NAME<SEP>INDEX.EXT.
func SheetFileName(base string, info sheetio.SheetInfo, cfg sheetio.Config) (string, error) {
	if info.Single || info.Index == 0 {
		return base, nil
	}
	if info.Name == "" || strings.Contains(info.Name, cfg.MultiSheetSeparator) ||
		strings.ContainsAny(info.Name, `/\`+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", sheetio.ErrInvalidSheetName, info.Name)
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) +
		cfg.MultiSheetSeparator + info.Name +
		cfg.MultiSheetSeparator + strconv.Itoa(info.Index) + ext, nil
}

// FileWriter writes each sheet into its own file, named by SheetFileName.
//
// The file is owned by the FileWriter: Close always closes it.
type FileWriter struct {
	base    string
	cfg     sheetio.Config
	dialect sheetio.Dialect

	fileName string
	fh       *os.File
	bw       *bufio.Writer
	ew       encodedWriter
	re       *rowEncoder
}

// NewFileWriter returns a FileWriter for the book written to base.
func NewFileWriter(base string, cfg sheetio.Config, dialect sheetio.Dialect) *FileWriter {
	return &FileWriter{base: base, cfg: cfg, dialect: dialect.WithDefaults(cfg)}
}

// NewFileWriters returns a constructor of FileWriters, usable with sheetio.WriteBook.
func NewFileWriters(base string, cfg sheetio.Config, dialect sheetio.Dialect) func() sheetio.SheetWriter {
	return func() sheetio.SheetWriter { return NewFileWriter(base, cfg, dialect) }
}

// FileName returns the name of the opened file.
func (fw *FileWriter) FileName() string { return fw.fileName }

// Open creates the sheet's file.
func (fw *FileWriter) Open(info sheetio.SheetInfo) error {
	if fw.fh != nil {
		return fmt.Errorf("%q: already open", fw.fileName)
	}
	if err := fw.dialect.Validate(); err != nil {
		return err
	}
	fn, err := SheetFileName(fw.base, info, fw.cfg)
	if err != nil {
		return err
	}
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	fw.bw = bufio.NewWriter(fh)
	if fw.ew, err = newEncodedWriter(fw.bw, fw.dialect); err != nil {
		fh.Close()
		return err
	}
	fw.fh, fw.fileName = fh, fn
	fw.re = newRowEncoder(fw.ew, fw.dialect)
	return nil
}

// WriteRow writes a row into the file.
func (fw *FileWriter) WriteRow(values ...any) error {
	if fw.re == nil {
		return sheetio.ErrNotOpen
	}
	if err := fw.re.WriteRow(values); err != nil {
		return fmt.Errorf("%q: %w", fw.fileName, err)
	}
	return nil
}

// Close flushes and closes the file, even if flushing fails.
func (fw *FileWriter) Close() error {
	fh, bw, ew := fw.fh, fw.bw, fw.ew
	fw.fh, fw.bw, fw.ew, fw.re = nil, nil, encodedWriter{}, nil
	if fh == nil {
		return nil
	}
	err := ew.Flush()
	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	if closeErr := fh.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// StreamWriter writes every sheet of a book into one caller-owned stream.
//
// If the book has more than one sheet, each sheet's rows are preceded by
// a start marker row (Config.StartMarker) and followed by an end marker
// row (Config.SheetEndMarker).
//
// The stream is never closed.
type StreamWriter struct {
	w       io.Writer
	cfg     sheetio.Config
	dialect sheetio.Dialect

	info sheetio.SheetInfo
	ew   encodedWriter
	re   *rowEncoder
}

// NewStreamWriter returns a StreamWriter writing into w.
func NewStreamWriter(w io.Writer, cfg sheetio.Config, dialect sheetio.Dialect) *StreamWriter {
	return &StreamWriter{w: w, cfg: cfg, dialect: dialect.WithDefaults(cfg)}
}

// NewStreamWriters returns a constructor of StreamWriters, usable with sheetio.WriteBook.
func NewStreamWriters(w io.Writer, cfg sheetio.Config, dialect sheetio.Dialect) func() sheetio.SheetWriter {
	return func() sheetio.SheetWriter { return NewStreamWriter(w, cfg, dialect) }
}

// Open the sheet, writing the start marker for multi-sheet books.
func (sw *StreamWriter) Open(info sheetio.SheetInfo) error {
	if sw.re != nil {
		return fmt.Errorf("sheet %q: already open", sw.info.Name)
	}
	if err := sw.dialect.Validate(); err != nil {
		return err
	}
	if !info.Single {
		if err := sw.cfg.Validate(); err != nil {
			return err
		}
		if strings.ContainsAny(info.Name, "\r\n") || sw.cfg.StartMarker(info.Name) == sw.cfg.SheetEndMarker {
			return fmt.Errorf("%w: %q", sheetio.ErrInvalidSheetName, info.Name)
		}
	}
	ew, err := newEncodedWriter(sw.w, sw.dialect)
	if err != nil {
		return err
	}
	re := newRowEncoder(ew, sw.dialect)
	if !info.Single {
		if err := re.WriteFields([]string{sw.cfg.StartMarker(info.Name)}); err != nil {
			return err
		}
	}
	sw.info, sw.ew, sw.re = info, ew, re
	return nil
}

// WriteRow writes the row into the stream.
//
// A row which would be read back as a marker is refused with ErrAmbiguousRow,
// even in a single-sheet book.
func (sw *StreamWriter) WriteRow(values ...any) error {
	if sw.re == nil {
		return sheetio.ErrNotOpen
	}
	if len(values) == 1 {
		s, err := FormatCell(values[0])
		if err != nil {
			return err
		}
		if _, ok := sw.cfg.SheetName(s); ok || s == sw.cfg.SheetEndMarker {
			return fmt.Errorf("sheet %q: %q: %w", sw.info.Name, s, ErrAmbiguousRow)
		}
	}
	return sw.re.WriteRow(values)
}

// Close the sheet, writing the end marker for multi-sheet books.
//
// The underlying stream is left open.
func (sw *StreamWriter) Close() error {
	re, ew, single := sw.re, sw.ew, sw.info.Single
	sw.re, sw.ew = nil, encodedWriter{}
	if re == nil {
		return nil
	}
	var err error
	if !single {
		err = re.WriteFields([]string{sw.cfg.SheetEndMarker})
	}
	if flushErr := ew.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}
