package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/utils"
)

// APIError is a non-2xx backend answer. Detail holds the human readable
// message, Fields the per-field validation messages when the backend sent
// them.
type APIError struct {
	Status int
	Detail string
	Fields map[string][]string
	Body   []byte
}

func (e *APIError) Error() string {
	return e.Detail
}

// Unwrap maps well-known statuses onto the package sentinels so callers can
// use errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return errors.ErrForbidden
	case e.Status == http.StatusNotFound:
		return errors.ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return errors.ErrInternal
	default:
		return nil
	}
}

// FieldError returns the first message reported for field, or "".
func (e *APIError) FieldError(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

var messageKeys = []string{"detail", "error", "message"}

// newAPIError decodes the backend error body. A top-level detail, error or
// message string wins; otherwise field errors are collected and the first one
// becomes the detail. Anything unreadable yields a generic message.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range messageKeys {
			if msg, ok := payload[key].(string); ok && msg != "" {
				e.Detail = msg
				break
			}
		}
		e.Fields = fieldErrors(payload)
	}

	if e.Detail == "" && len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		if names[0] == "non_field_errors" {
			e.Detail = e.Fields[names[0]][0]
		} else {
			e.Detail = fmt.Sprintf("%s: %s", names[0], e.Fields[names[0]][0])
		}
	}
	if e.Detail == "" {
		e.Detail = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

func fieldErrors(payload map[string]any) map[string][]string {
	fields := map[string][]string{}
	for key, value := range payload {
		if key == "detail" || key == "error" || key == "message" {
			continue
		}
		var msgs []string
		switch v := value.(type) {
		case string:
			msgs = []string{v}
		case []any:
			msgs = utils.ToStringSlice(v)
		}
		msgs = nonEmpty(msgs)
		if len(msgs) > 0 {
			fields[key] = msgs
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
