// Package jsonapi holds the JSON:API document types served by the HTTP API.
// See https://jsonapi.org/format/ for the document structure.
package jsonapi

import (
	"encoding/json"
	"time"
)

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Error codes carried in Error.Code.
const (
	CodeNotFound             = "not_found"
	CodeInvalidInput         = "invalid_input"
	CodeUnauthorized         = "unauthorized"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeUnavailable          = "unavailable"
	CodeInternal             = "internal"
)

// Document is a top-level JSON:API document. Exactly one of Data and
// Errors is set.
type Document struct {
	Data   any     `json:"data,omitempty"`
	Meta   *Meta   `json:"meta,omitempty"`
	Links  *Links  `json:"links,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Meta is free-form document metadata such as paging totals.
type Meta map[string]any

// Links are the paging links of a list document.
type Links struct {
	Self  string `json:"self,omitempty"`
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// Resource is a single goal, contact or match in a document.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
}

// Error is one entry of a document's errors array. ID carries the request's
// correlation ID.
type Error struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// NewResource wraps attrs as a resource of the given type.
func NewResource(resourceType, id string, attrs any) *Resource {
	return &Resource{Type: resourceType, ID: id, Attributes: attrs}
}

// NewSingleResponse returns a document holding one resource.
func NewSingleResponse(resource *Resource) *Document {
	return &Document{Data: resource}
}

// NewListResponse returns a document holding a list of resources. A nil
// list is sent as an empty array.
func NewListResponse(resources []*Resource) *Document {
	if resources == nil {
		resources = []*Resource{}
	}
	return &Document{Data: resources}
}

// NewErrorResponse returns a document holding errs.
func NewErrorResponse(errs ...Error) *Document {
	return &Document{Errors: errs}
}

// NewError builds an error entry.
func NewError(status, code, title, detail string) Error {
	return Error{Status: status, Code: code, Title: title, Detail: detail}
}

// DateTime is a time.Time sent as an RFC 3339 string, or null when zero.
type DateTime time.Time

// NewDateTime converts t.
func NewDateTime(t time.Time) DateTime {
	return DateTime(t)
}

// Time returns the underlying time.
func (dt DateTime) Time() time.Time {
	return time.Time(dt)
}

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	t := time.Time(dt)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// UnmarshalJSON implements json.Unmarshaler.
func (dt *DateTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*dt = DateTime{}
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return err
	}
	*dt = DateTime(t)
	return nil
}
