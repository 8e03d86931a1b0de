// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command sheetconv converts csv files into one book of csv, ods or xlsx format.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/sheetio"
	"github.com/UNO-SOFT/sheetio/coerce"
	"github.com/UNO-SOFT/sheetio/csvw"
	"github.com/UNO-SOFT/sheetio/ods"
	"github.com/UNO-SOFT/sheetio/xlsx"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

func Main() error {
	cfg := sheetio.DefaultConfig()

	fs := flag.NewFlagSet("sheetconv", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagInEnc := fs.String("charset", sheetio.EncName, "input csv charset name")
	flagOut := fs.String("o", "-", "output file name")
	flagFormat := fs.String("format", "", "output format: csv (a file per sheet), stream (one csv with sheet markers), ods or xlsx (default: by the output's extension)")
	flagOutEnc := fs.String("out-charset", "utf-8", "output csv charset name")
	flagDelim := fs.String("delimiter", ",", "output csv delimiter")
	flagCRLF := fs.Bool("crlf", true, "output csv line terminator is CRLF (LF otherwise)")
	flagSep := fs.String("multi-sheet-separator", cfg.MultiSheetSeparator, "separator in the file names of the sheets")
	flagNoInt := fs.Bool("no-int", false, "do not detect integers")
	flagNoFloat := fs.Bool("no-float", false, "do not detect floats")
	flagNoDate := fs.Bool("no-date", false, "do not detect dates")
	flagNaN := fs.String("nan", "", "the only text to be read as NaN (case-sensitive)")
	flagIgnoreNaN := fs.Bool("ignore-nan", false, "do not read NaN texts as floats")

	app := ffcli.Command{Name: "sheetconv", FlagSet: fs,
		ShortUsage: "sheetconv [flags] [sheetName:]input.csv...",
		Options:    []ff.Option{ff.WithEnvVarPrefix("SHEETIO")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			cfg.MultiSheetSeparator = *flagSep
			if err := cfg.Validate(); err != nil {
				return err
			}
			detect := coerce.DetectionConfig{
				AutoDetectInt:      !*flagNoInt,
				AutoDetectFloat:    !*flagNoFloat,
				AutoDetectDatetime: !*flagNoDate,
				DefaultFloatNaN:    *flagNaN,
				IgnoreNaNText:      *flagIgnoreNaN,
			}
			outDialect := sheetio.Dialect{Encoding: *flagOutEnc, LineTerminator: "\n"}
			if *flagCRLF {
				outDialect.LineTerminator = "\r\n"
			}
			if d := []rune(*flagDelim); len(d) == 1 {
				outDialect.Delimiter = d[0]
			} else {
				return fmt.Errorf("delimiter must be one character, not %q", *flagDelim)
			}
			if err := outDialect.WithDefaults(cfg).Validate(); err != nil {
				return err
			}

			var book sheetio.Book
			for i, arg := range args {
				sheets, err := readInput(cfg, *flagInEnc, detect, i, arg)
				if err != nil {
					return fmt.Errorf("%q: %w", arg, err)
				}
				book.Sheets = append(book.Sheets, sheets...)
			}
			return writeBook(ctx, cfg, outDialect, *flagFormat, *flagOut, book)
		},
	}

	if err := app.Parse(os.Args[1:]); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = zlog.NewSContext(ctx, logger)
	return app.Run(ctx)
}

// readInput reads the [sheetName:]fileName argument.
// A multi-sheet stream keeps its sheet names.
func readInput(cfg sheetio.Config, encName string, detect coerce.DetectionConfig, i int, arg string) ([]sheetio.SheetData, error) {
	fn, sheetName := arg, fmt.Sprintf("Sheet%d", i+1)
	if j := strings.IndexByte(arg, ':'); j >= 0 {
		sheetName, fn = arg[:j], arg[j+1:]
	} else if fn != "" && fn != "-" {
		sheetName = strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
	}
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return nil, err
		}
		defer fh.Close()
	}
	r, err := sheetio.NewDecoderReader(fh, encName)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 && err != io.EOF {
		return nil, err
	}
	// The start marker may contain anything, so sniff the data.
	if line, rest, ok := strings.Cut(string(b), "\n"); ok {
		if _, isMarker := cfg.SheetName(strings.TrimSuffix(line, "\r")); isMarker {
			b = []byte(rest)
		}
	}
	// already decoded
	dialect := sheetio.Dialect{Delimiter: sheetio.SniffDelimiter(b)}
	book, err := csvw.ReadStream(br, cfg, dialect, detect)
	if err != nil {
		return nil, err
	}
	if len(book.Sheets) == 1 && book.Sheets[0].Name == cfg.DefaultSheetName {
		book.Sheets[0].Name = sheetName
	}
	logger.Debug("read", "file", fn, "sheets", book.Names(), "delimiter", string(dialect.Delimiter))
	return book.Sheets, nil
}

func writeBook(ctx context.Context, cfg sheetio.Config, dialect sheetio.Dialect, format, out string, book sheetio.Book) error {
	if format == "" {
		switch ext := strings.ToLower(filepath.Ext(out)); ext {
		case ".ods", ".xlsx":
			format = ext[1:]
		case ".csv", ".tsv", ".txt":
			format = "csv"
			if len(book.Sheets) > 1 {
				format = "stream"
			}
		default:
			format = "stream"
		}
	}
	if format == "csv" {
		if out == "" || out == "-" {
			return fmt.Errorf("csv format needs an output file name")
		}
		return sheetio.WriteBook(ctx, csvw.NewFileWriters(out, cfg, dialect), book)
	}

	fh := os.Stdout
	if !(out == "" || out == "-") {
		var err error
		if fh, err = os.Create(out); err != nil {
			return err
		}
	}
	defer fh.Close()
	var err error
	switch format {
	case "stream":
		err = sheetio.WriteBook(ctx, csvw.NewStreamWriters(fh, cfg, dialect), book)
	case "xlsx":
		w := xlsx.NewWriter(fh)
		if err = sheetio.WriteBook(ctx, sheetio.SheetWriterOf(w, nil), book); err == nil {
			err = w.Close()
		}
	case "ods":
		var w *ods.ODSWriter
		if w, err = ods.NewWriter(fh); err != nil {
			break
		}
		if err = sheetio.WriteBook(ctx, sheetio.SheetWriterOf(w, nil), book); err == nil {
			err = w.Close()
		} else {
			w.Close()
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	zlog.SFromContext(ctx).Debug("written", "format", format, "out", out, "sheets", len(book.Sheets))
	return fh.Close()
}
