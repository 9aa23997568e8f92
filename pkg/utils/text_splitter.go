package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 40
	DefaultSeparator    = "\n"
)

// Document is a unit of text with its provenance.
type Document struct {
	Content  string
	Metadata map[string]string
}

// SplitText cuts text into rune windows of chunkSize, each starting
// chunkSize-overlap runes after the previous one.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == totalLen {
			break
		}
	}

	return chunks
}

// CharacterSplitter splits on a separator and greedily merges the pieces back
// into chunks of at most ChunkSize runes. Pieces that alone exceed ChunkSize
// are cut with SplitText.
type CharacterSplitter struct {
	Separator    string
	ChunkSize    int
	ChunkOverlap int
}

func NewCharacterSplitter(separator string, chunkSize, chunkOverlap int) (*CharacterSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &CharacterSplitter{
		Separator:    separator,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}, nil
}

func NewDefaultSplitter() *CharacterSplitter {
	return &CharacterSplitter{
		Separator:    DefaultSeparator,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

func (s *CharacterSplitter) Split(text string) []string {
	var pieces []string
	if s.Separator == "" {
		pieces = []string{text}
	} else {
		pieces = strings.Split(text, s.Separator)
	}

	sepLen := utf8.RuneCountInString(s.Separator)
	var chunks []string
	var current []string
	total := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, s.Separator))
	}

	joined := func(n int) int {
		if len(current) > 0 {
			return n + sepLen
		}
		return n
	}

	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		length := utf8.RuneCountInString(piece)

		if length > s.ChunkSize {
			flush()
			current, total = nil, 0
			chunks = append(chunks, SplitText(piece, s.ChunkSize, s.ChunkOverlap)...)
			continue
		}

		if total+joined(length) > s.ChunkSize {
			flush()
			// keep a tail of the previous chunk as overlap while it still fits
			for len(current) > 0 && (total > s.ChunkOverlap || total+joined(length) > s.ChunkSize) {
				head := utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					head += sepLen
				}
				total -= head
				current = current[1:]
			}
		}

		total += joined(length)
		current = append(current, piece)
	}
	flush()

	return chunks
}

// SplitDocuments splits every document and tags each chunk with its index.
func (s *CharacterSplitter) SplitDocuments(docs []Document) []Document {
	var out []Document
	for _, doc := range docs {
		for i, chunk := range s.Split(doc.Content) {
			meta := make(map[string]string, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta["chunk"] = fmt.Sprintf("%d", i)
			out = append(out, Document{Content: chunk, Metadata: meta})
		}
	}
	return out
}
