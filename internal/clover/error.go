package clover

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the gateway. Body is the response
// payload: unchanged when it is JSON, otherwise the text as a JSON string.
type APIError struct {
	Status  int
	Message string
	Body    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clover error %d: %s", e.Status, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Message: http.StatusText(status)}
	e.Body = errorBody(body)

	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}
	if payload.Message != "" {
		e.Message = payload.Message
		return e
	}
	var s string
	if json.Unmarshal(payload.Error, &s) == nil && s != "" {
		e.Message = s
	}
	return e
}

// errorBody keeps a JSON payload as is and quotes anything else, such as a
// proxy's HTML error page, so the body always embeds in a JSON response.
func errorBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, err := json.Marshal(string(trimmed))
	if err != nil {
		return nil
	}
	return quoted
}

// AsAPIError returns the gateway rejection wrapped in err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
