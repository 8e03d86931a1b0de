// Copyright 2021 Tamas Gulacsi. All rights reserved.

// Command csv2pdf prints a csv file as a PDF table.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/sheetio"
	"github.com/UNO-SOFT/sheetio/coerce"
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
	alternateColor := Color{Color: props.Color{
		Red:   230,
		Green: 230,
		Blue:  230,
	}}

	fs := flag.NewFlagSet("csv2pdf", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagEnc := fs.String("charset", sheetio.EncName, "csv charset name")
	flagOut := fs.String("o", "", "output file name (default input file + .pdf)")
	flagColor := fs.String("alternate-color", alternateColor.String(), "alternate color")
	flagLandscape := fs.Bool("L", false, "landscape orientation (default: portrait)")
	flagFontSize := fs.Float64("f", 8, "font size")

	app := ffcli.Command{Name: "csv2pdf", FlagSet: fs,
		ShortUsage: "csv2pdf [flags] input.csv",
		Options:    []ff.Option{ff.WithEnvVarPrefix("CSV2PDF")},
		Exec: func(ctx context.Context, args []string) error {
			logger := zlog.SFromContext(ctx)
			if len(args) == 0 {
				args = []string{"-"}
			}
			if err := alternateColor.Parse(*flagColor); err != nil {
				return err
			}
			cr, err := sheetio.OpenCsv(args[0], *flagEnc)
			if err != nil {
				return err
			}
			defer cr.Close()

			headers, err := cr.Read()
			if err != nil {
				return err
			}
			headers = slices.Clone(headers)
			contents, err := cr.ReadAll()
			if err != nil {
				return err
			}
			gridSize := gridSizes(headers, contents)
			logger.Debug("grid", "headers", headers, "sizes", gridSize)

			m := newTable(tableConfig{
				Landscape:      *flagLandscape,
				FontSize:       *flagFontSize,
				AlternateColor: &alternateColor.Color,
			}, headers, contents, gridSize)
			if m == nil {
				return fmt.Errorf("no columns")
			}
			doc, err := m.Generate()
			if err != nil {
				return err
			}
			out := *flagOut
			if out == "" &&
				len(args) != 0 && args[0] != "" && args[0] != "-" {
				out = args[0] + ".pdf"
			}
			if out == "" || out == "-" {
				_, err = os.Stdout.Write(doc.GetBytes())
				return err
			}
			return doc.Save(out)
		},
	}

	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if strings.HasPrefix(a, "-f") && len(a) > 2 && '0' <= a[2] && a[2] <= '9' {
			args = append(args, "-f", a[2:])
		} else {
			args = append(args, a)
		}
	}
	logger.Debug("args", "original", os.Args[1:], "fixed", args)
	if err := app.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = zlog.NewSContext(ctx, logger)
	return app.Run(ctx)
}

// gridSizes returns the column widths in grid units, proportional to the average text widths.
func gridSizes(headers []string, contents [][]string) []int {
	widths := make([]float64, len(headers))
	var avg float64
	for i, s := range headers {
		widths[i] = float64(len(s))
		avg += widths[i]
	}
	for _, row := range contents {
		for i, s := range row {
			if i < len(widths) {
				widths[i] += float64(len(s))
				avg += float64(len(s))
			}
		}
	}
	gridSize := make([]int, len(headers))
	if len(widths) == 0 {
		return gridSize
	}
	avg /= float64(len(widths))
	for i, w := range widths {
		if avg != 0 {
			gridSize[i] = int(math.Round(4 * w / avg))
		}
		if gridSize[i] == 0 {
			gridSize[i] = 1
		}
	}
	return gridSize
}

type tableConfig struct {
	AlternateColor *props.Color
	FontSize       float64
	Landscape      bool
}

// newTable returns the document with the table; nil if there are no columns.
//
// Numbers are aligned to the right.
func newTable(tc tableConfig, headers []string, contents [][]string, gridSize []int) core.Maroto {
	var total int
	for _, n := range gridSize {
		total += n
	}
	if total == 0 {
		return nil
	}
	b := config.NewBuilder().WithPageSize(pagesize.A4).WithMaxGridSize(total)
	if tc.Landscape {
		b = b.WithOrientation(orientation.Horizontal)
	}
	m := maroto.New(b.Build())

	// points to millimeters, with some spacing
	height := tc.FontSize * 0.3528 * 1.6
	headerProp := props.Text{Family: fontfamily.Arial, Style: fontstyle.Bold, Size: tc.FontSize * 1.375, Align: align.Center}
	cols := make([]core.Col, len(headers))
	for i, s := range headers {
		cols[i] = text.NewCol(gridSize[i], s, headerProp)
	}
	if err := m.RegisterHeader(row.New(height * 1.375).Add(cols...)); err != nil {
		logger.Warn("register header", "error", err)
		m.AddRows(row.New(height * 1.375).Add(cols...))
	}

	detect := coerce.DefaultDetection()
	rows := make([]core.Row, 0, len(contents))
	for j, record := range contents {
		cols := make([]core.Col, len(headers))
		for i := range headers {
			var s string
			if i < len(record) {
				s = record[i]
			}
			prop := props.Text{Family: fontfamily.Courier, Style: fontstyle.Normal, Size: tc.FontSize, Align: align.Left}
			switch coerce.Detect(s, detect).Kind() {
			case coerce.Int, coerce.Float:
				prop.Align = align.Right
			}
			cols[i] = text.NewCol(gridSize[i], s, prop)
		}
		r := row.New(height).Add(cols...)
		if tc.AlternateColor != nil && j%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: tc.AlternateColor})
		}
		rows = append(rows, r)
	}
	m.AddRows(rows...)
	return m
}

type Color struct {
	props.Color
}

func (c *Color) String() string {
	return fmt.Sprintf("%02x%02x%02x", c.Red, c.Green, c.Blue)
}
func (c *Color) Parse(s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != 3 {
		return fmt.Errorf("%q: color needs 3 bytes, got %d", s, len(b))
	}
	c.Red, c.Green, c.Blue = int(b[0]), int(b[1]), int(b[2])
	return nil
}
