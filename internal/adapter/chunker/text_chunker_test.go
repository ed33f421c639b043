package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"docchat/internal/domain"
)

func TestTextChunkerEmptyInput(t *testing.T) {
	c := NewTextChunker(500, 50)

	chunks := c.Split(domain.Document{ID: "doc1", Text: ""})
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestTextChunkerShortInput(t *testing.T) {
	c := NewTextChunker(500, 50)

	text := "A short paragraph that fits in one chunk."
	chunks := c.Split(domain.Document{ID: "doc1", Text: text})

	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text does not match input")
	}
	if chunks[0].StartOffset != 0 || chunks[0].Length != len(text) {
		t.Errorf("unexpected offsets: start=%d len=%d", chunks[0].StartOffset, chunks[0].Length)
	}
}

func TestTextChunkerCoverage(t *testing.T) {
	overlap := 20
	c := NewTextChunker(100, overlap)

	var sb strings.Builder
	for i := 0; i < 80; i++ {
		sb.WriteString("word" + strings.Repeat("x", i%7) + " ")
	}
	text := sb.String()

	chunks := c.Split(domain.Document{ID: "doc1", Text: text})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Dropping each chunk's leading overlap region must reconstruct the
	// original text exactly.
	rebuilt := chunks[0].Text
	for _, ch := range chunks[1:] {
		rebuilt += ch.Text[overlap:]
	}
	if rebuilt != text {
		t.Errorf("reconstructed text does not match original:\n got %q\nwant %q", rebuilt, text)
	}
}

func TestTextChunkerOverlapInvariant(t *testing.T) {
	overlap := 15
	c := NewTextChunker(80, overlap)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	chunks := c.Split(domain.Document{ID: "doc1", Text: text})

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i].Text[len(chunks[i].Text)-overlap:]
		head := chunks[i+1].Text[:overlap]
		if tail != head {
			t.Errorf("chunk %d->%d overlap mismatch: tail=%q head=%q", i, i+1, tail, head)
		}
	}
}

func TestTextChunkerOffsetsAddressSource(t *testing.T) {
	c := NewTextChunker(60, 10)

	text := strings.Repeat("alpha beta gamma delta epsilon ", 15)
	doc := domain.Document{ID: "doc1", Source: "test.txt", Page: 2, Text: text}
	chunks := c.Split(doc)

	for i, ch := range chunks {
		if ch.Text != text[ch.StartOffset:ch.StartOffset+ch.Length] {
			t.Errorf("chunk %d text does not match its offsets", i)
		}
		if ch.DocID != "doc1" || ch.Source != "test.txt" || ch.Page != 2 {
			t.Errorf("chunk %d lost document provenance", i)
		}
		if i > 0 && ch.StartOffset <= chunks[i-1].StartOffset {
			t.Errorf("chunks not ordered by offset at %d", i)
		}
	}
}

func TestTextChunkerParagraphBoundary(t *testing.T) {
	c := NewTextChunker(500, 50)

	para1 := strings.Repeat("a", 300)
	para2 := strings.Repeat("b", 300)
	text := para1 + "\n\n" + para2

	chunks := c.Split(domain.Document{ID: "doc1", Text: text})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("first chunk should cut at the paragraph break, ends with %q",
			chunks[0].Text[len(chunks[0].Text)-5:])
	}
}

func TestTextChunkerPure(t *testing.T) {
	c := NewTextChunker(100, 20)
	doc := domain.Document{ID: "doc1", Text: strings.Repeat("some words here ", 40)}

	first := c.Split(doc)
	second := c.Split(doc)

	if len(first) != len(second) {
		t.Fatalf("repeated splits differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("repeated splits differ at chunk %d", i)
		}
	}
}

// A 1200-character document with the default configuration lands in exactly
// three chunks: 0-500, 450-950, 900-1200.
func TestTextChunkerThreeChunkDocument(t *testing.T) {
	c := NewTextChunker(500, 50)

	text := strings.Repeat("a", 1200)
	chunks := c.Split(domain.Document{ID: "doc1", Text: text})

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	for i, ch := range chunks {
		if ch.Length > 550 {
			t.Errorf("chunk %d longer than 550: %d", i, ch.Length)
		}
		if i > 0 && ch.StartOffset <= chunks[i-1].StartOffset {
			t.Errorf("chunks not ordered by offset at %d", i)
		}
	}

	last := chunks[len(chunks)-1]
	if last.StartOffset+last.Length != len(text) {
		t.Errorf("chunks do not reach the end of the text")
	}
}

func TestTextChunkerMultiByteHardCut(t *testing.T) {
	c := NewTextChunker(10, 2)

	// No separators at all, so every cut is a hard cut and every overlap
	// start lands between 3-byte runes.
	text := strings.Repeat("日本語テキスト", 10)
	chunks := c.Split(domain.Document{ID: "doc1", Text: text})

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Text) {
			t.Errorf("chunk %d (start=%d) is not valid UTF-8: %q", i, ch.StartOffset, ch.Text)
		}
		if !strings.HasPrefix(text[ch.StartOffset:], ch.Text) {
			t.Fatalf("chunk %d is not a substring at its offset", i)
		}
	}

	last := chunks[len(chunks)-1]
	if last.StartOffset+last.Length != len(text) {
		t.Errorf("chunks do not reach the end of the text")
	}
}
