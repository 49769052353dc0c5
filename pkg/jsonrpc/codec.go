package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// envelopePeek is used only to classify an inbound message: a Request has a
// non-null id, a Notification omits it.
type envelopePeek struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// DecodeRequest parses raw client→server bytes into either a Request or a
// Notification. Returns an error (suitable for wrapping in NewParseError)
// if the bytes are not valid JSON-RPC 2.0.
func DecodeRequest(data []byte) (*Request, *Notification, error) {
	var peek envelopePeek
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, nil, fmt.Errorf("parse error: %w", err)
	}
	if peek.JSONRPC != Version {
		return nil, nil, fmt.Errorf("unsupported jsonrpc version %q", peek.JSONRPC)
	}
	if peek.Method == "" {
		return nil, nil, fmt.Errorf("missing method")
	}
	if peek.ID == nil {
		return nil, &Notification{JSONRPC: peek.JSONRPC, Method: peek.Method, Params: peek.Params}, nil
	}
	return &Request{JSONRPC: peek.JSONRPC, ID: *peek.ID, Method: peek.Method, Params: peek.Params}, nil, nil
}

// EncodeMessage serializes any of Response/Error/Notification to its wire
// form. Used by the transport to write SSE `data:` lines.
func EncodeMessage(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}
