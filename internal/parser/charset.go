package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader converts catalog markup to UTF-8 before it reaches goquery.
//
// contentType is the HTTP Content-Type header of the response, if known. Its charset
// parameter wins; otherwise the encoding is sniffed from a BOM, a <meta charset> or
// <meta http-equiv> tag, and finally a heuristic. UTF-8 input passes through unchanged.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(body, contentType)
}
