// Package jsonrpc implements the wire shapes and Content-Length framing for
// JSON-RPC 2.0 messages exchanged with an editor client over stdio. It does
// not interpret method names or params; that is the dispatcher's job.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

const Version = "2.0"

// Request is a client call that expects a Response carrying the same ID.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Notification is a fire-and-forget message with no ID.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response answers a Request by ID, carrying either Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the JSON-RPC error object.
type ResponseError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewResponse builds a success response.
func NewResponse(id int64, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling response result: %w", err)
	}
	return &Response{JSONRPC: Version, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an error response.
func NewErrorResponse(id int64, code int64, message string) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &ResponseError{Code: code, Message: message},
	}
}

// NewNotification builds an outbound notification.
func NewNotification(method string, params any) (*Notification, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling notification params %q: %w", method, err)
	}
	return &Notification{JSONRPC: Version, Method: method, Params: raw}, nil
}

// envelope is used to sniff an inbound message's shape before committing to
// a concrete type: messages with a method are requests (if they carry an
// id) or notifications (if they don't); messages without a method are
// responses.
type envelope struct {
	ID     *int64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *ResponseError  `json:"error"`
}

// Inbound is the tagged union of what can arrive from the client.
type Inbound struct {
	Request      *Request
	Notification *Notification
	Response     *Response
}

// ParseInbound decodes one JSON-RPC message body and classifies it.
func ParseInbound(body []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Inbound{}, fmt.Errorf("decoding message envelope: %w", err)
	}

	switch {
	case env.Method != "" && env.ID != nil:
		return Inbound{Request: &Request{JSONRPC: Version, ID: *env.ID, Method: env.Method, Params: env.Params}}, nil
	case env.Method != "":
		return Inbound{Notification: &Notification{JSONRPC: Version, Method: env.Method, Params: env.Params}}, nil
	case env.ID != nil:
		return Inbound{Response: &Response{JSONRPC: Version, ID: *env.ID, Result: env.Result, Error: env.Error}}, nil
	default:
		return Inbound{}, fmt.Errorf("message has neither method nor id")
	}
}
