package client

import (
	"fmt"
	"net/url"
)

// RequestDecoratorFunc appends query parameters to a list request.
type RequestDecoratorFunc func([]string) []string

// Query passes a server side filter clause, such as "(alias startswith sa)",
// through unmodified.
func Query(clause string) RequestDecoratorFunc {
	return Param("query", clause)
}

func Where(column, operator, value string) RequestDecoratorFunc {
	return Query(fmt.Sprintf("(%s %s %s)", column, operator, value))
}

func Sort(clause string) RequestDecoratorFunc {
	return Param("sort", clause)
}

// Page selects a page of results. Page numbers start at 1.
func Page(rowsPerPage, pageNumber uint64) RequestDecoratorFunc {
	return func(params []string) []string {
		return append(params, fmt.Sprintf("rowsPerPage=%d&pageNumber=%d", rowsPerPage, pageNumber))
	}
}

func Param(name, value string) RequestDecoratorFunc {
	return func(params []string) []string {
		return append(params, fmt.Sprintf("%s=%s", url.QueryEscape(name), url.QueryEscape(value)))
	}
}
