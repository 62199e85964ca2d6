// Package web mounts the JSON:API resource routes and the generic resource
// handlers over the descriptor registry.
package web

import (
	"net/url"
	"strconv"

	"github.com/jobhunt-app/jobhunt/internal/jsonapi"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 50
)

// Page is a parsed pagination window.
type Page struct {
	Number int
	Size   int
}

// Limit returns the row limit for the page.
func (p Page) Limit() int { return p.Size }

// Offset returns the row offset for the page.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// ParsePage reads page[number] and page[size]. Invalid or non-positive
// values fall back silently to the defaults; pagination never fails a
// request.
func ParsePage(query url.Values) Page {
	page := Page{Number: defaultPageNumber, Size: defaultPageSize}
	if raw := query.Get("page[number]"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Number = n
		}
	}
	if raw := query.Get("page[size]"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = n
		}
	}
	return page
}

// ParseIncludes combines the include and includes query parameters into one
// list, deduplicated in first-seen order.
func ParseIncludes(query url.Values) []string {
	var names []string
	seen := make(map[string]bool)
	for _, param := range []string{"include", "includes"} {
		for _, raw := range query[param] {
			for _, name := range jsonapi.ParseIncludeParam(raw) {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	return names
}
