package jsonrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound_Request(t *testing.T) {
	in, err := ParseInbound([]byte(`{"jsonrpc":"2.0","id":7,"method":"textDocument/hover","params":{}}`))
	require.NoError(t, err)
	require.NotNil(t, in.Request)
	assert.Equal(t, int64(7), in.Request.ID)
	assert.Equal(t, "textDocument/hover", in.Request.Method)
	assert.Nil(t, in.Notification)
	assert.Nil(t, in.Response)
}

func TestParseInbound_Notification(t *testing.T) {
	in, err := ParseInbound([]byte(`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{}}`))
	require.NoError(t, err)
	require.NotNil(t, in.Notification)
	assert.Equal(t, "textDocument/didOpen", in.Notification.Method)
	assert.Nil(t, in.Request)
}

func TestParseInbound_Response(t *testing.T) {
	in, err := ParseInbound([]byte(`{"jsonrpc":"2.0","id":0,"result":{}}`))
	require.NoError(t, err)
	require.NotNil(t, in.Response)
	assert.Equal(t, int64(0), in.Response.ID)
	assert.Nil(t, in.Response.Error)
}

func TestParseInbound_InvalidShape(t *testing.T) {
	_, err := ParseInbound([]byte(`{"jsonrpc":"2.0"}`))
	assert.Error(t, err)
}

func TestNewResponse(t *testing.T) {
	resp, err := NewResponse(3, map[string]string{"ok": "yes"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.ID)
	assert.JSONEq(t, `{"ok":"yes"}`, string(resp.Result))
	assert.Nil(t, resp.Error)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(3, -32601, "method not found")
	assert.Equal(t, int64(-32601), resp.Error.Code)
	assert.Equal(t, "method not found", resp.Error.Message)
}
