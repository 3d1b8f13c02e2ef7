package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// APIError is a non-2xx answer from the UMS API.
type APIError struct {
	Status int
	Detail string // Server supplied message, may be empty
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ums api: status %d", e.Status)
	}
	return fmt.Sprintf("ums api: status %d: %s", e.Status, e.Detail)
}

// Message converts any client error into the text shown inline on a form:
// the server's message when there is one, otherwise fallback. Validation and
// transport failures produce the same kind of text.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// parseDetail extracts a message from a DRF error body. It understands
// {"detail": "..."}, {"message": "..."} and field errors such as
// {"email": ["user with this email already exists."]}.
func parseDetail(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "message", "non_field_errors"} {
		if msg := firstMessage(fields[key]); msg != "" {
			return msg
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := firstMessage(fields[k]); msg != "" {
			return k + ": " + msg
		}
	}
	return ""
}

func firstMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
