package http

import (
	"net/http"
	"strings"

	"controlly/internal/core"
)

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pathID returns the {id} wildcard of the matched route.
func pathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

// refDate reads an optional ?date= reference, defaulting to today.
func (s *Server) refDate(r *http.Request) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return core.DateOf(s.clock()), nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, core.Invalid("date", err)
	}
	return d, nil
}
