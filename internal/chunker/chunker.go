// Package chunker splits text into bounded, overlap-linked segments.
//
// Splitting is line oriented and greedy. Lines are accumulated until the
// next one would push the segment past the size limit; the segment is then
// emitted trimmed and the next one is seeded with its trailing overlap.
// A single line longer than the limit is hard-split into exact-size pieces
// that are emitted verbatim, with no trimming and no overlap.
//
// Sizes are counted in runes, so multi-byte text is never cut inside a
// code point.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the default maximum number of characters per chunk.
const DefaultMaxChars = 1200

// DefaultOverlap is the default number of characters repeated between chunks.
const DefaultOverlap = 200

// Chunker splits text with a fixed size limit and overlap.
type Chunker struct {
	maxChars int
	overlap  int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxChars sets the maximum chunk size in characters.
func WithMaxChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
// Zero disables overlap.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxChars: DefaultMaxChars,
		overlap:  DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxChars returns the configured size limit.
func (c *Chunker) MaxChars() int {
	return c.maxChars
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split chunks text with the configured limits.
func (c *Chunker) Split(text string) []string {
	return Chunk(text, c.maxChars, c.overlap)
}

// Chunk splits text into line-aligned chunks of up to maxChars characters,
// each seeded with up to overlap trailing characters of the previous one.
//
// A non-positive maxChars selects DefaultMaxChars; a negative overlap is
// treated as zero. The overlap seed is never shortened: when the seed plus
// the next line is longer than maxChars, that chunk exceeds the limit.
// Empty input yields no chunks.
func Chunk(text string, maxChars, overlap int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}
	if text == "" {
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		chunks  []string
		current string
	)

	flush := func() string {
		trimmed := strings.TrimSpace(current)
		if trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current = ""
		return trimmed
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)

		if lineLen > maxChars {
			flush()
			chunks = append(chunks, hardSplit(line, maxChars)...)
			continue
		}

		if utf8.RuneCountInString(current)+1+lineLen > maxChars {
			pushed := flush()
			current = tail(pushed, overlap)
		}

		if current == "" {
			current = line
		} else {
			current += "\n" + line
		}
	}
	flush()

	return chunks
}

// hardSplit cuts line into consecutive pieces of exactly size runes;
// the last piece may be shorter.
func hardSplit(line string, size int) []string {
	runes := []rune(line)
	pieces := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
