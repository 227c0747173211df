package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const genericFailureMessage = "Something went wrong. Please try again."

// AuthError is returned for any 401 from the backend. By the time it is
// returned the session has already been cleared; callers only navigate.
type AuthError struct {
	Status     int
	Detail     string
	RedirectTo string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return "authorization failed: " + e.Detail
	}
	return "authorization failed"
}

// RequestFailure covers every other non-2xx response, transport errors and
// malformed payloads. Detail is safe to show to the user.
type RequestFailure struct {
	Status int
	Detail string
	Err    error
}

func (e *RequestFailure) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("request failed (%d): %s", e.Status, e.Detail)
	}
	return "request failed: " + e.Detail
}

func (e *RequestFailure) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// UserMessage extracts something presentable from any facade error.
func UserMessage(err error) string {
	var rf *RequestFailure
	if errors.As(err, &rf) && rf.Detail != "" {
		return rf.Detail
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return "Your session has expired. Please log in again."
	}
	return genericFailureMessage
}

// extractDetail reads the server message from an error body. FastAPI style
// {"detail": "..."} and {"detail": [{"msg": "..."}]} are both understood, as
// are {"message": "..."} and {"error": "..."}.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
