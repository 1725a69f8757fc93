package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a service-reported failure: the request completed but the
// server answered with a non-2xx status and a detail payload.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// detailEntry covers the object form of a detail payload. FastAPI-style
// validation errors use "msg"; other handlers use "message".
type detailEntry struct {
	Msg     string          `json:"msg"`
	Message json.RawMessage `json:"message"`
}

func (d detailEntry) text() string {
	if d.Msg != "" {
		return d.Msg
	}
	if len(d.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(d.Message, &s); err == nil {
		return s
	}
	return string(d.Message)
}

// normalizeDetail collapses the three wire shapes of a detail field
// (plain string, array of message-bearing objects, single object) into
// one human-readable string. Array entries are joined with ", ".
func normalizeDetail(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var entries []detailEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			if t := e.text(); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
		return fallback
	}
	var single detailEntry
	if err := json.Unmarshal(raw, &single); err == nil {
		if t := single.text(); t != "" {
			return t
		}
	}
	return fallback
}

// IsNetworkError reports whether err should be treated as a
// network/connection failure for retry purposes. Transport errors (the
// request never completed) always qualify; service errors qualify when
// the normalized detail mentions the network.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail := strings.ToLower(apiErr.Detail)
		return strings.Contains(detail, "network") || strings.Contains(detail, "connection")
	}
	return true
}
