// Package rpc implements the hand-rolled, line-delimited JSON-RPC 2.0
// server loop: it owns stdin/stdout, dispatches MCP methods against the
// Index, and multiplexes inbound requests with outbound change
// notifications driven by the scanner/watcher.
package rpc

import (
	"encoding/json"

	"github.com/ramigb/semantic-skeletonizer/internal/rpcerrors"
)

// Request is the JSON-RPC 2.0 request/notification envelope.
// ID is left as raw JSON so numeric and string ids round-trip unchanged;
// its absence (nil) is what marks the envelope as a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response mirrors a Request's id and carries exactly one of Result or
// Error.
type Response struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  interface{}      `json:"result,omitempty"`
	Error   *rpcerrors.Error `json:"error,omitempty"`
}

// Notification is a server-initiated, id-less envelope — used here only
// for notifications/resources/updated.
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}
