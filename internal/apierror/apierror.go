// Package apierror decodes the backend's error payloads.
//
// The backend answers failures with {"detail": ...} where detail is either a message
// string or a list of validation errors shaped {"loc": [...], "msg": "...", "type": "..."}.
package apierror

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBody bounds how much of an error body is read.
const maxBody = 64 << 10

// Error is a non-2xx backend answer.
type Error struct {
	StatusCode int
	// Message is the decoded detail, or "" when the body carried none.
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports a 401 answer.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ClientError reports any 4xx answer.
func (e *Error) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

type validationItem struct {
	Msg string `json:"msg"`
}

// Detail extracts a display message from an error body. String details are returned
// as-is; validation lists are joined with ", ". ok is false when no usable message exists.
func Detail(body []byte) (string, bool) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
		return "", false
	}

	var items []validationItem
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, ", "), true
		}
	}

	return "", false
}

// FromResponse reads and closes nothing; the caller owns resp.Body. It returns nil for
// 2xx responses.
func FromResponse(resp *http.Response) *Error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	msg, _ := Detail(body)
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}

// MessageOr returns the decoded message, or fallback when there is none.
func (e *Error) MessageOr(fallback string) string {
	if e == nil || e.Message == "" {
		return fallback
	}
	return e.Message
}
