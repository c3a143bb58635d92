package parser

import "io"

// Parser turns an HTML document into a list of records
type Parser[T any] interface {
	ParseHtml(body io.Reader) ([]T, error)
}
