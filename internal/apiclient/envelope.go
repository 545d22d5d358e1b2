package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// envelope is the backend response wrapper. Paginated lists nest
// objectList (or items) and totalItems under result; mutations return a bare
// result. Errors carry code and message either at the top level or inside
// result.
type envelope struct {
	Result  json.RawMessage `json:"result"`
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

type listResult[T any] struct {
	ObjectList []T `json:"objectList"`
	Items      []T `json:"items"`
	TotalItems int `json:"totalItems"`
}

func (l listResult[T]) rows() []T {
	if l.ObjectList != nil {
		return l.ObjectList
	}
	return l.Items
}

type errorBody struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

// ListEnvelope is the encoded shape of a page, used by handlers that serve
// list data in the backend format.
type ListEnvelope[T any] struct {
	Result ListPayload[T] `json:"result"`
}

// ListPayload is the result object of a page.
type ListPayload[T any] struct {
	ObjectList []T `json:"objectList"`
	TotalItems int `json:"totalItems"`
}

// NewListEnvelope wraps rows in the backend list format.
func NewListEnvelope[T any](rows []T, total int) ListEnvelope[T] {
	if rows == nil {
		rows = []T{}
	}
	return ListEnvelope[T]{Result: ListPayload[T]{ObjectList: rows, TotalItems: total}}
}

func rawCode(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		if s, err := strconv.Unquote(string(raw)); err == nil {
			return s
		}
	}
	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeError extracts {code, message} from an error body in either layout.
func decodeError(status int, body []byte) *ServerError {
	se := &ServerError{Status: status}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		se.Message = string(bytes.TrimSpace(body))
		return se
	}
	se.Code = rawCode(env.Code)
	se.Message = env.Message
	if (se.Code == "" || se.Message == "") && !isNull(env.Result) {
		var inner errorBody
		if err := json.Unmarshal(env.Result, &inner); err == nil {
			if se.Code == "" {
				se.Code = rawCode(inner.Code)
			}
			if se.Message == "" {
				se.Message = inner.Message
			}
		}
	}
	return se
}
