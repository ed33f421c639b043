package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"docchat/internal/domain"
)

// separators is the boundary hierarchy tried when closing a chunk: paragraph
// breaks, then line breaks, then sentence ends, then plain whitespace. When
// none lands inside the window the chunk is cut at the size limit.
var separators = []string{"\n\n", "\n", ". ", " "}

// TextChunker splits document text into overlapping windows of at most
// chunkSize characters, preferring semantically coherent boundaries. Every
// chunk is an exact substring of the source text and each chunk after the
// first repeats the tail of its predecessor (up to overlap bytes, shortened
// to keep chunk starts on rune boundaries), so adjacent chunks agree on
// their shared region by construction.
type TextChunker struct {
	chunkSize int
	overlap   int
}

func NewTextChunker(chunkSize, overlap int) *TextChunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &TextChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Split is a pure function of its input: it holds no state between calls.
// Empty text yields no chunks; text within the size limit yields exactly one.
func (c *TextChunker) Split(doc domain.Document) []domain.Chunk {
	text := doc.Text
	if text == "" {
		return nil
	}

	if len(text) <= c.chunkSize {
		return []domain.Chunk{c.makeChunk(doc, 0, len(text))}
	}

	var chunks []domain.Chunk
	start := 0

	for {
		end := start + c.chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.cutPoint(text, start)
		}

		chunks = append(chunks, c.makeChunk(doc, start, end))

		if end == len(text) {
			break
		}

		// The overlap start can land inside a multi-byte sequence; advance
		// to the next rune boundary so every chunk is valid UTF-8. end is
		// always a rune boundary, so this never walks past it.
		start = end - c.overlap
		for start < end && !utf8.RuneStart(text[start]) {
			start++
		}
	}

	return chunks
}

// cutPoint picks the end of the chunk starting at start. It scans the window
// between the overlap region and the size limit for the highest-priority
// separator, cutting just after it. The lower bound keeps every chunk
// advancing past the previous overlap, so the walk always terminates.
func (c *TextChunker) cutPoint(text string, start int) int {
	hi := start + c.chunkSize
	lo := start + c.overlap + 1
	if lo >= hi {
		lo = start + 1
	}

	window := text[lo:hi]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			return lo + idx + len(sep)
		}
	}

	// No separator in the window: hard cut at the limit, backed off to a
	// rune boundary so multi-byte sequences are never split.
	for hi > lo && !utf8.RuneStart(text[hi]) {
		hi--
	}
	return hi
}

func (c *TextChunker) makeChunk(doc domain.Document, start, end int) domain.Chunk {
	return domain.Chunk{
		ID:          generateChunkID(doc.ID, start, end),
		DocID:       doc.ID,
		Source:      doc.Source,
		Page:        doc.Page,
		StartOffset: start,
		Length:      end - start,
		Text:        doc.Text[start:end],
	}
}

func generateChunkID(docID string, start, end int) string {
	data := fmt.Sprintf("%s:%d-%d", docID, start, end)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
