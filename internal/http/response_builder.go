// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the single mapping from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"controlly/internal/core"
	"controlly/internal/log"
	"controlly/internal/services"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	body       interface{}
	headers    map[string]string
}

// errorBody is the payload of every error response.
type errorBody struct {
	Error   string      `json:"error"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v interface{}) *ResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	data, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n"))
}

// ErrorResponse creates a standard {"error": ...} response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").
		Header("Retry-After", "60")
}

// ErrorFor maps an error from the service layer to its response:
// validation 400, missing entity 404, unconfirmed overshoot 409, else 500.
func ErrorFor(err error) *ResponseBuilder {
	var overshoot *services.OvershootError
	if errors.As(err, &overshoot) {
		return NewJSONResponse().
			Status(http.StatusConflict).
			JSON(errorBody{Error: overshoot.Error(), Details: overshoot.Overshoot})
	}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return NewJSONResponse().
			Status(http.StatusBadRequest).
			JSON(errorBody{Error: verr.Error(), Field: verr.Field})
	}
	if errors.Is(err, core.ErrValidation) {
		return BadRequestError(err.Error())
	}
	if errors.Is(err, core.ErrNotFound) {
		return NotFoundError(err.Error())
	}
	return InternalServerError("internal server error")
}

// writeError logs server-side failures and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorFor(err)
	if resp.statusCode >= http.StatusInternalServerError {
		fields := log.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			WithError(err)
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	}
	resp.Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	NewJSONResponse().Status(status).JSON(v).Write(w)
}
