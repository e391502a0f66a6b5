package jsonrpc

import (
	"bytes"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	require.NoError(t, w.Write([]byte(`{"jsonrpc":"2.0","method":"pong"}`)))

	r := NewReader(&buf)
	first, err := r.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, string(first))

	second, err := r.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"pong"}`, string(second))

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_MissingContentLength(t *testing.T) {
	r := NewReader(bytes.NewBufferString("X-Custom: 1\r\n\r\n"))
	_, err := r.Read()
	assert.Error(t, err)
}

func TestReader_CaseInsensitiveHeader(t *testing.T) {
	body := `{"jsonrpc":"2.0","method":"ping"}`
	msg := "content-length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	r := NewReader(bytes.NewBufferString(msg))
	got, err := r.Read()
	require.NoError(t, err)
	assert.JSONEq(t, body, string(got))
}
