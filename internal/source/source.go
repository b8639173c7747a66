// Package source provides the input readers the CLI uses to fetch mapping
// documents: local files, stdin, and http(s) URLs.
package source

import (
	"context"
	"io"
	"strings"
)

// Source yields the raw bytes of one mapping document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ForArg resolves a CLI input argument to a Source: "-" reads stdin, http(s)
// URLs go through client, and anything else is a local file path.
func ForArg(arg string, client *Client) Source {
	switch {
	case arg == "-":
		return Stdin{}
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return &URL{URL: arg, Client: client}
	}
	return NewLocal(arg)
}
