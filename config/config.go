package config

import "time"

type (
	Headers struct {
		// MaxBlockSize limits the size of a whole request header section,
		// the request line included. Receiving this many bytes without the
		// blank-line terminator fails the request with 413.
		MaxBlockSize int
		// Default are appended to every response unless the handler set a
		// header with the same name itself.
		Default map[string]string
	}

	Body struct {
		// MaxSize bounds the total number of request body bytes accepted
		// before the request fails with 413.
		MaxSize int
	}

	NET struct {
		// ReadBufferSize is the size of the per-connection transport read
		// buffer. It also bounds how many unrequested bytes may sit between
		// two requests.
		ReadBufferSize int
		// ReadTimeout is applied to every transport read. Zero disables it.
		ReadTimeout time.Duration
		// BufferMinGrowth is the smallest capacity an accumulation buffer
		// grows to.
		BufferMinGrowth int
	}
)

// Config is a set of tunable limits and sizes. Prefer modifying the result
// of Default() over constructing the struct manually, as zero values here
// are mostly degenerate.
type Config struct {
	Headers Headers
	Body    Body
	NET     NET
}

func Default() *Config {
	return &Config{
		Headers: Headers{
			MaxBlockSize: 8192,
			Default: map[string]string{
				"Server": "seine",
			},
		},
		Body: Body{
			MaxSize: 512 * 1024 * 1024,
		},
		NET: NET{
			ReadBufferSize:  4 * 1024,
			ReadTimeout:     90 * time.Second,
			BufferMinGrowth: 32,
		},
	}
}
