package body

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/http/method"
	"github.com/seine-net/seine/http/proto"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/kv"
	"github.com/seine-net/seine/transport/dummy"
)

func newRequest(m method.Method, headers *kv.Storage) *http.Request {
	return http.NewRequest(m, "/", proto.HTTP11, headers)
}

func readall(t *testing.T, r http.BodyReader) string {
	var buff []byte

	for {
		data, err := r.Fetch()
		buff = append(buff, data...)
		switch err {
		case nil:
		case io.EOF:
			return string(buff)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestSelection(t *testing.T) {
	t.Run("no-body method", func(t *testing.T) {
		req := newRequest(method.GET, kv.New().Add("Host", "x"))
		reader, err := New(dummy.NewClient(), req, 0)
		require.NoError(t, err)

		length, known := reader.Length()
		require.True(t, known)
		require.Zero(t, length)
		require.Empty(t, readall(t, reader))
	})

	t.Run("no-body method with content-length", func(t *testing.T) {
		req := newRequest(method.GET, kv.New().Add("Content-Length", "5"))
		_, err := New(dummy.NewClient(), req, 0)
		require.ErrorIs(t, err, status.ErrBodyNotAllowed)
	})

	t.Run("no-body method with chunked marker", func(t *testing.T) {
		req := newRequest(method.HEAD, kv.New().Add("Transfer-Encoding", "chunked"))
		_, err := New(dummy.NewClient(), req, 0)
		require.ErrorIs(t, err, status.ErrBodyNotAllowed)
	})

	t.Run("content-length", func(t *testing.T) {
		req := newRequest(method.POST, kv.New().Add("Content-Length", "5"))
		reader, err := New(dummy.NewClient([]byte("hello")), req, 0)
		require.NoError(t, err)
		require.Equal(t, 5, req.ContentLength)

		length, known := reader.Length()
		require.True(t, known)
		require.Equal(t, 5, length)
	})

	t.Run("malformed content-length", func(t *testing.T) {
		for _, sample := range []string{"", "-1", "5x", "0x10", " 5"} {
			req := newRequest(method.POST, kv.New().Add("Content-Length", sample))
			_, err := New(dummy.NewClient(), req, 0)
			require.ErrorIs(t, err, status.ErrBadContentLength, sample)
		}
	})

	t.Run("chunked", func(t *testing.T) {
		req := newRequest(method.POST, kv.New().Add("Transfer-Encoding", "chunked"))
		reader, err := New(dummy.NewClient(), req, 0)
		require.NoError(t, err)
		require.True(t, req.Chunked)

		_, known := reader.Length()
		require.False(t, known)
	})

	t.Run("declared length over the limit", func(t *testing.T) {
		req := newRequest(method.POST, kv.New().Add("Content-Length", "11"))
		_, err := New(dummy.NewClient(), req, 10)
		require.ErrorIs(t, err, status.ErrBodyTooLarge)
	})

	t.Run("chunked body over the limit", func(t *testing.T) {
		wire := "6\r\nabcdef\r\n6\r\nghijkl\r\n0\r\n\r\n"
		req := newRequest(method.POST, kv.New().Add("Transfer-Encoding", "chunked"))
		reader, err := New(dummy.NewClient([]byte(wire)), req, 10)
		require.NoError(t, err)

		_, err = reader.Fetch() // "abcdef"
		require.NoError(t, err)
		_, err = reader.Fetch()
		require.ErrorIs(t, err, status.ErrBodyTooLarge)
	})

	t.Run("until eof fallback", func(t *testing.T) {
		req := newRequest(method.POST, kv.New())
		reader, err := New(dummy.NewClient([]byte("tail")), req, 0)
		require.NoError(t, err)

		_, known := reader.Length()
		require.False(t, known)
		require.Equal(t, "tail", readall(t, reader))
	})
}

func TestFixed(t *testing.T) {
	t.Run("split across deliveries", func(t *testing.T) {
		// Content-Length: 5, delivered as 3 bytes then 2
		reader := NewFixed(dummy.NewClient([]byte("hel"), []byte("lo")), 5)
		require.Equal(t, "hello", readall(t, reader))

		data, err := reader.Fetch()
		require.ErrorIs(t, err, io.EOF)
		require.Empty(t, data)
	})

	t.Run("never reads past the boundary", func(t *testing.T) {
		client := dummy.NewClient([]byte("hellonext request"))
		reader := NewFixed(client, 5)
		require.Equal(t, "hello", readall(t, reader))

		rest, err := client.Read()
		require.NoError(t, err)
		require.Equal(t, "next request", string(rest))
	})

	t.Run("premature end of stream", func(t *testing.T) {
		reader := NewFixed(dummy.NewClient([]byte("he")), 5)
		_, err := reader.Fetch()
		require.NoError(t, err)
		_, err = reader.Fetch()
		require.ErrorIs(t, err, status.ErrUnexpectedEOF)
	})
}

func TestChunked(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		wire := "7\r\nMozilla\r\n9\r\nDeveloper\r\n7\r\nNetwork\r\n0\r\n\r\n"
		reader := NewChunked(dummy.NewClient([]byte(wire)))
		require.Equal(t, "MozillaDeveloperNetwork", readall(t, reader))
	})

	t.Run("split at every possible point", func(t *testing.T) {
		wire := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
		for i := 1; i < len(wire); i++ {
			reader := NewChunked(dummy.NewClient([]byte(wire[:i]), []byte(wire[i:])))
			require.Equal(t, "hello world", readall(t, reader), "split at %d", i)
		}
	})

	t.Run("surplus belongs to the next message", func(t *testing.T) {
		client := dummy.NewClient([]byte("3\r\nabc\r\n0\r\n\r\nGET /"))
		reader := NewChunked(client)
		require.Equal(t, "abc", readall(t, reader))

		rest, err := client.Read()
		require.NoError(t, err)
		require.Equal(t, "GET /", string(rest))
	})

	t.Run("terminal pull stays empty", func(t *testing.T) {
		reader := NewChunked(dummy.NewClient([]byte("0\r\n\r\n")))
		require.Empty(t, readall(t, reader))

		data, err := reader.Fetch()
		require.ErrorIs(t, err, io.EOF)
		require.Empty(t, data)
	})

	t.Run("malformed size line", func(t *testing.T) {
		for _, sample := range []string{"zz\r\n", "\r\n", "3q\r\n", "123456789\r\n"} {
			reader := NewChunked(dummy.NewClient([]byte(sample)))
			_, err := reader.Fetch()
			require.ErrorIs(t, err, status.ErrBadChunk, "%q", sample)
		}
	})

	t.Run("missing chunk trailer", func(t *testing.T) {
		reader := NewChunked(dummy.NewClient([]byte("3\r\nabcXX")))
		_, err := reader.Fetch() // "abc"
		require.NoError(t, err)
		_, err = reader.Fetch()
		require.ErrorIs(t, err, status.ErrBadChunk)
	})

	t.Run("premature end of stream", func(t *testing.T) {
		reader := NewChunked(dummy.NewClient([]byte("5\r\nhe")))
		_, err := reader.Fetch() // "he"
		require.NoError(t, err)
		_, err = reader.Fetch()
		require.ErrorIs(t, err, status.ErrUnexpectedEOF)
	})
}

func TestMemory(t *testing.T) {
	reader := NewMemory([]byte("payload"))
	length, known := reader.Length()
	require.True(t, known)
	require.Equal(t, 7, length)
	require.Equal(t, "payload", readall(t, reader))

	data, err := reader.Fetch()
	require.ErrorIs(t, err, io.EOF)
	require.Empty(t, data)
}
