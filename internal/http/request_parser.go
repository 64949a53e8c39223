// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form-encoded; both are read through the same
// RequestBodyParser so handlers never care which one the client sent.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"controlly/internal/core"
)

// maxBodyBytes bounds request bodies; entity payloads are tiny.
const maxBodyBytes = 1 << 20

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if trimmed[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}
	if trimmed[0] == '[' {
		p.err = errors.New("request body must be an object")
		return p.err
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetInt returns an integer value; a missing key is zero.
func (p *RequestBodyParser) GetInt(key string) (int, error) {
	v := p.Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// GetBool returns a boolean value; a missing or unparsable key is false.
func (p *RequestBodyParser) GetBool(key string) bool {
	b, _ := strconv.ParseBool(p.Get(key))
	return b
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// TransactionInput maps the body onto a transaction form.
func (p *RequestBodyParser) TransactionInput() (core.TransactionInput, error) {
	installments, err := p.GetInt("installments")
	if err != nil {
		return core.TransactionInput{}, core.Invalid("installments", core.ErrInvalidInstallments)
	}
	return core.TransactionInput{
		Type:         core.TransactionType(p.Get("type")),
		Amount:       p.Get("amount"),
		Description:  p.Get("description"),
		Category:     p.Get("category"),
		Date:         p.Get("date"),
		CardID:       p.Get("cardId"),
		PurchaseType: core.PurchaseType(p.Get("purchaseType")),
		Installments: installments,
	}, nil
}

// CardInput maps the body onto a card form.
func (p *RequestBodyParser) CardInput() (core.CardInput, error) {
	dueDay, err := p.GetInt("dueDate")
	if err != nil {
		return core.CardInput{}, core.Invalid("dueDate", core.ErrInvalidDueDay)
	}
	return core.CardInput{
		Name:           p.Get("name"),
		Type:           core.CardType(p.Get("type")),
		LastFourDigits: p.Get("lastFourDigits"),
		Limit:          p.Get("limit"),
		DueDay:         dueDay,
		AnnualFee:      p.Get("annualFee"),
	}, nil
}

// GoalInput maps the body onto a goal form.
func (p *RequestBodyParser) GoalInput() core.GoalInput {
	return core.GoalInput{
		Title:        p.Get("title"),
		Description:  p.Get("description"),
		TargetAmount: p.Get("targetAmount"),
		TargetDate:   p.Get("targetDate"),
		Type:         core.GoalType(p.Get("type")),
		Category:     p.Get("category"),
	}
}

// ProgressInput reads a goal contribution: a positive amount and the
// optional overshoot confirmation.
func (p *RequestBodyParser) ProgressInput() (core.Money, bool, error) {
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.Money{}, false, core.Invalid("amount", err)
	}
	return amount, p.GetBool("confirm"), nil
}

// ParsePeriod reads start and end from the query. Missing bounds take the
// given defaults; a malformed bound is a validation error.
func ParsePeriod(query url.Values, defStart, defEnd core.Date) (core.Date, core.Date, error) {
	start, end := defStart, defEnd
	if v := strings.TrimSpace(query.Get("start")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Date{}, core.Date{}, core.Invalid("start", err)
		}
		start = d
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Date{}, core.Date{}, core.Invalid("end", err)
		}
		end = d
	}
	if end.Compare(start) < 0 {
		return core.Date{}, core.Date{}, core.Invalid("end", core.ErrInvalidDate)
	}
	return start, end, nil
}

// decodeBody parses the request body, mapping malformed payloads to a
// validation error on the "body" field.
func decodeBody(r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, core.Invalid("body", err)
	}
	return p, nil
}
