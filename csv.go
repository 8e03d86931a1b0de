package sheetio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var EncName = "utf-8"

func init() {
	EncName = os.Getenv("LANG")
	if i := strings.IndexByte(EncName, '.'); i >= 0 {
		EncName = strings.ToLower(EncName[i+1:])
	} else {
		EncName = ""
	}
	if EncName == "" {
		EncName = "utf-8"
	}
}

// GetEncoding returns the named encoding, or nil for utf-8.
func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

// NewDecoderReader returns r decoded from the named encoding.
func NewDecoderReader(r io.Reader, encName string) (io.Reader, error) {
	enc, err := GetEncoding(encName)
	if err != nil || enc == nil {
		return r, err
	}
	return enc.NewDecoder().Reader(r), nil
}

// SniffDelimiter returns the first rune which cannot be part of a field, or ','.
func SniffDelimiter(b []byte) rune {
	for _, r := range string(b) {
		if r == '"' || r == '_' || r == '-' || r == ':' || r == '.' ||
			unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		if r == '\r' || r == '\n' {
			break
		}
		return r
	}
	return ','
}

type csvReadCloser struct {
	*csv.Reader
	io.Closer
}

// OpenCsv opens the named file (or stdin for "" and "-") as csv,
// decoding it from encName and sniffing the delimiter.
func OpenCsv(fn, encName string) (csvReadCloser, error) {
	var enc encoding.Encoding
	if encName != "" {
		var err error
		if enc, err = GetEncoding(encName); err != nil {
			return csvReadCloser{}, err
		}
	}
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return csvReadCloser{}, err
		}
	}
	r := io.ReadCloser(fh)
	if enc != nil {
		r = struct {
			io.Reader
			io.Closer
		}{enc.NewDecoder().Reader(r), r}
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		r.Close()
		return csvReadCloser{}, err
	}

	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.Comma = SniffDelimiter(b)
	return csvReadCloser{cr, r}, nil
}
