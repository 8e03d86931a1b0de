// Copyright 2019, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ods

import (
	qt "github.com/valyala/quicktemplate"

	"github.com/UNO-SOFT/sheetio"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

const nsAttrs = ` xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"` +
	` xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0"` +
	` xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"` +
	` xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"` +
	` xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"` +
	` office:version="1.2"`

// boldStyle is the name of the automatic style of bold cells.
const boldStyle = "bold"

func StreamManifest(W *qt.Writer) {
	W.N().S(xmlHeader +
		`<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">` +
		`<manifest:file-entry manifest:full-path="/" manifest:version="1.2" manifest:media-type="` + MimeType + `"/>` +
		`<manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>` +
		`<manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/>` +
		`</manifest:manifest>`)
}

func StreamStyles(W *qt.Writer) {
	W.N().S(xmlHeader + `<office:document-styles` + nsAttrs + `><office:styles/></office:document-styles>`)
}

func StreamBeginSpreadsheet(W *qt.Writer) {
	W.N().S(xmlHeader + `<office:document-content` + nsAttrs + `>` +
		`<office:automatic-styles>` +
		`<style:style style:name="` + boldStyle + `" style:family="table-cell">` +
		`<style:text-properties fo:font-weight="bold"/></style:style>` +
		`</office:automatic-styles>` +
		`<office:body><office:spreadsheet>`)
}

func StreamEndSpreadsheet(W *qt.Writer) {
	W.N().S(`</office:spreadsheet></office:body></office:document-content>`)
}

// StreamBeginSheet starts the table, and writes the header row if any column has a name.
func StreamBeginSheet(W *qt.Writer, name string, cols []sheetio.Column) {
	W.N().S(`<table:table table:name="`)
	W.E().S(name)
	W.N().S(`">`)
	var hasHeader bool
	for _, c := range cols {
		W.N().S(`<table:table-column`)
		if c.Column.FontBold {
			W.N().S(` table:default-cell-style-name="` + boldStyle + `"`)
		}
		W.N().S(`/>`)
		hasHeader = hasHeader || c.Name != ""
	}
	if !hasHeader {
		return
	}
	W.N().S(`<table:table-row>`)
	for _, c := range cols {
		W.N().S(`<table:table-cell`)
		if c.Header.FontBold {
			W.N().S(` table:style-name="` + boldStyle + `"`)
		}
		W.N().S(` office:value-type="string"><text:p>`)
		W.E().S(c.Name)
		W.N().S(`</text:p></table:table-cell>`)
	}
	W.N().S(`</table:table-row>`)
}

func StreamEndSheet(W *qt.Writer) { W.N().S(`</table:table>`) }

func StreamRow(W *qt.Writer, cells []Cell) {
	W.N().S(`<table:table-row>`)
	for _, c := range cells {
		switch c.Type {
		case EmptyType:
			W.N().S(`<table:table-cell/>`)
			continue
		case StringType:
			W.N().S(`<table:table-cell office:value-type="string">`)
		default:
			attr := "office:value"
			switch c.Type {
			case DateType:
				attr = "office:date-value"
			case TimeType:
				attr = "office:time-value"
			}
			W.N().S(`<table:table-cell office:value-type="` + c.Type.String() + `" ` + attr + `="`)
			W.E().S(c.Value)
			W.N().S(`">`)
		}
		W.N().S(`<text:p>`)
		W.E().S(c.Text)
		W.N().S(`</text:p></table:table-cell>`)
	}
	W.N().S(`</table:table-row>`)
}
