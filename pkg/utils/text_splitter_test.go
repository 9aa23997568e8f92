package utils

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterSplitterSplit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    []string
	}{
		{
			name:    "short text stays whole",
			size:    100,
			overlap: 10,
			text:    "hello\nworld",
			want:    []string{"hello\nworld"},
		},
		{
			name:    "merges lines up to size",
			size:    10,
			overlap: 0,
			text:    "aaaa\nbbbb\ncccc",
			want:    []string{"aaaa\nbbbb", "cccc"},
		},
		{
			name:    "carries overlap into next chunk",
			size:    10,
			overlap: 4,
			text:    "aaaa\nbbbb\ncccc",
			want:    []string{"aaaa\nbbbb", "bbbb\ncccc"},
		},
		{
			name:    "drops blank lines",
			size:    20,
			overlap: 0,
			text:    "one\n\n   \ntwo",
			want:    []string{"one\ntwo"},
		},
		{
			name:    "hard splits oversized line",
			size:    5,
			overlap: 1,
			text:    "abcdefghij",
			want:    []string{"abcde", "efghi", "ij"},
		},
		{
			name:    "oversized line between short lines",
			size:    5,
			overlap: 0,
			text:    "ab\nabcdefgh\ncd",
			want:    []string{"ab", "abcde", "fgh", "cd"},
		},
		{
			name:    "empty input",
			size:    5,
			overlap: 0,
			text:    "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewCharacterSplitter("\n", tt.size, tt.overlap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Split(tt.text))
		})
	}
}

func TestCharacterSplitterBoundsAndCoverage(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		fmt.Fprintf(&b, "line %d %s\n", i, strings.Repeat("x", i%70))
	}
	b.WriteString(strings.Repeat("y", 2500))
	text := b.String()

	s := NewDefaultSplitter()
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), DefaultChunkSize, "chunk %d too long", i)
	}

	// every line shows up, in order
	joined := strings.Join(chunks, "\n")
	pos := 0
	for _, line := range strings.Split(text, "\n") {
		if line == "" || len(line) > DefaultChunkSize {
			continue
		}
		idx := strings.Index(joined[pos:], line)
		require.GreaterOrEqual(t, idx, 0, "line %q missing", line)
		pos += idx
	}

	assert.Equal(t, chunks, s.Split(text), "splitting must be deterministic")
}

func TestSplitTextNoGaps(t *testing.T) {
	text := strings.Repeat("абвгд", 500)
	size, overlap := 1000, 40

	chunks := SplitText(text, size, overlap)
	require.Greater(t, len(chunks), 1)

	var rebuilt []rune
	for i, c := range chunks {
		r := []rune(c)
		assert.LessOrEqual(t, len(r), size)
		if i == 0 {
			rebuilt = append(rebuilt, r...)
			continue
		}
		rebuilt = append(rebuilt, r[overlap:]...)
	}
	assert.Equal(t, text, string(rebuilt))
}

func TestNewCharacterSplitterRejectsBadParams(t *testing.T) {
	_, err := NewCharacterSplitter("\n", 0, 0)
	assert.Error(t, err)

	_, err = NewCharacterSplitter("\n", 10, 10)
	assert.Error(t, err)

	_, err = NewCharacterSplitter("\n", 10, -1)
	assert.Error(t, err)
}

func TestSplitDocumentsTagsChunks(t *testing.T) {
	s, err := NewCharacterSplitter("\n", 10, 0)
	require.NoError(t, err)

	docs := s.SplitDocuments([]Document{{
		Content:  "aaaa\nbbbb\ncccc",
		Metadata: map[string]string{"source": "http://example.com"},
	}})

	require.Len(t, docs, 2)
	assert.Equal(t, "0", docs[0].Metadata["chunk"])
	assert.Equal(t, "1", docs[1].Metadata["chunk"])
	assert.Equal(t, "http://example.com", docs[1].Metadata["source"])
}
