package rpcerrors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, &Error{Code: ParseError, Message: "Parse error"}, Parsef())
	assert.Equal(t, &Error{Code: MethodNotFound, Message: "Method not found"}, MethodNotFoundf())
	assert.Equal(t, &Error{Code: InvalidParams, Message: "File not found in graph."}, InvalidParamsf("File not found in graph."))
	assert.Equal(t, &Error{Code: InternalError, Message: "Graph is empty."}, Internalf("Graph is empty."))
}

func TestError_MarshalsCodeAndMessage(t *testing.T) {
	e := New(InvalidParams, "Invalid URI scheme for resource.")
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":-32602,"message":"Invalid URI scheme for resource."}`, string(data))
}

func TestError_ErrorString(t *testing.T) {
	e := New(ParseError, "Parse error")
	assert.Contains(t, e.Error(), "Parse error")
	assert.Contains(t, e.Error(), "-32700")
}
