// Package content supplies reference-text chunks for typing sessions.
package content

import "context"

// DefaultMinChunkLength is the minimum chunk size providers aim for. It
// comfortably exceeds the streaming low watermark so one fetch always
// replenishes the buffer.
const DefaultMinChunkLength = 250

// Request describes one chunk of reference text to produce.
type Request struct {
	Lang       string
	Source     string
	Difficulty string
	// MinLength is the minimum chunk length in characters; zero means
	// DefaultMinChunkLength.
	MinLength int
	// ExcludeRecent lists identifiers of recently served chunks that
	// should not be repeated (snippet names for the code source).
	ExcludeRecent []string
}

func (r Request) minLength() int {
	if r.MinLength <= 0 {
		return DefaultMinChunkLength
	}
	return r.MinLength
}

// Provider produces one reference-text chunk per call. Implementations must
// be safe to retry; a failed call may be repeated with the same request.
type Provider interface {
	Fetch(ctx context.Context, req Request) (string, error)
}
