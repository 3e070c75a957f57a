package render

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seine-net/seine/http"
	"github.com/seine-net/seine/http/proto"
	"github.com/seine-net/seine/http/status"
	"github.com/seine-net/seine/internal/body"
	"github.com/seine-net/seine/transport/dummy"
)

func newSerializer() *Serializer {
	return NewSerializer(1024, nil)
}

func TestWrite(t *testing.T) {
	t.Run("in-memory body", func(t *testing.T) {
		client := dummy.NewClient()
		resp := http.NewResponse().
			Header("Content-Type", "text/plain").
			String("Hello, world!")

		require.NoError(t, newSerializer().Write(proto.HTTP11, resp, client))
		require.Equal(
			t,
			"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 13\r\n\r\nHello, world!",
			client.Written(),
		)
	})

	t.Run("empty body", func(t *testing.T) {
		client := dummy.NewClient()
		require.NoError(t, newSerializer().Write(proto.HTTP11, http.NewResponse(), client))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", client.Written())
	})

	t.Run("status code and proto", func(t *testing.T) {
		client := dummy.NewClient()
		resp := http.NewResponse().Code(status.NotFound)
		require.NoError(t, newSerializer().Write(proto.HTTP10, resp, client))
		require.True(t, strings.HasPrefix(client.Written(), "HTTP/1.0 404 Not Found\r\n"))
	})

	t.Run("sized stream", func(t *testing.T) {
		client := dummy.NewClient()
		resp := http.NewResponse().Stream(body.NewMemory([]byte("streamed")))

		require.NoError(t, newSerializer().Write(proto.HTTP11, resp, client))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 8\r\n\r\nstreamed", client.Written())
	})

	t.Run("lying sized stream is an internal error", func(t *testing.T) {
		// the reader serves 3 bytes but declares 5
		stream := lying{body.NewFixed(dummy.NewClient([]byte("abc")), 3)}
		resp := http.NewResponse().Stream(stream)

		err := newSerializer().Write(proto.HTTP11, resp, dummy.NewClient())
		require.ErrorIs(t, err, status.ErrInternalServer)
	})

	t.Run("default headers", func(t *testing.T) {
		s := NewSerializer(1024, map[string]string{"Server": "seine"})
		client := dummy.NewClient()
		require.NoError(t, s.Write(proto.HTTP11, http.NewResponse(), client))
		require.Contains(t, client.Written(), "Server: seine\r\n")

		client.ResetWritten()
		resp := http.NewResponse().Header("Server", "custom")
		require.NoError(t, s.Write(proto.HTTP11, resp, client))
		require.Contains(t, client.Written(), "Server: custom\r\n")
		require.NotContains(t, client.Written(), "Server: seine\r\n")
	})

	t.Run("framing headers are owned by the serializer", func(t *testing.T) {
		for _, key := range []string{"Content-Length", "content-length", "Transfer-Encoding"} {
			resp := http.NewResponse().Header(key, "13")
			require.Panics(t, func() {
				_ = newSerializer().Write(proto.HTTP11, resp, dummy.NewClient())
			}, key)
		}
	})
}

// lying reports a wrong declared length.
type lying struct {
	http.BodyReader
}

func (l lying) Length() (int, bool) {
	return 5, true
}

func TestRoundTrip(t *testing.T) {
	t.Run("known length", func(t *testing.T) {
		client := dummy.NewClient()
		resp := http.NewResponse().
			Code(status.OK).
			Header("X-One", "1").
			Header("X-Two", "2").
			String("exact body bytes")

		require.NoError(t, newSerializer().Write(proto.HTTP11, resp, client))

		head, bodyBytes, found := strings.Cut(client.Written(), "\r\n\r\n")
		require.True(t, found)
		require.Equal(t, "exact body bytes", bodyBytes)

		lines := strings.Split(head, "\r\n")
		require.Equal(t, "HTTP/1.1 200 OK", lines[0])
		require.Contains(t, lines, "X-One: 1")
		require.Contains(t, lines, "X-Two: 2")
		require.Contains(t, lines, "Content-Length: 16")
	})

	t.Run("chunked", func(t *testing.T) {
		source := dummy.NewClient([]byte("первый"), []byte("second"), []byte("third"))
		resp := http.NewResponse().Stream(body.NewUntilEOF(source))

		client := dummy.NewClient()
		require.NoError(t, newSerializer().Write(proto.HTTP11, resp, client))

		head, wire, found := strings.Cut(client.Written(), "\r\n\r\n")
		require.True(t, found)
		require.Contains(t, strings.Split(head, "\r\n"), "Transfer-Encoding: chunked")

		// feeding the emitted body back through the chunked reader must
		// reconstruct the exact original byte sequence
		reader := body.NewChunked(dummy.NewClient([]byte(wire)))
		var rebuilt []byte
		for {
			piece, err := reader.Fetch()
			rebuilt = append(rebuilt, piece...)
			if err != nil {
				require.ErrorIs(t, err, io.EOF)
				break
			}
		}

		require.Equal(t, "первыйsecondthird", string(rebuilt))

		piece, err := reader.Fetch()
		require.ErrorIs(t, err, io.EOF)
		require.Empty(t, piece)
	})
}
