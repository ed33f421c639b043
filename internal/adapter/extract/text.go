package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docchat/internal/port"
)

// TextExtractor handles plain-text containers. Form feeds mark page breaks,
// matching the page structure emitted by common pdf-to-text converters, so
// page metadata survives into the extracted segments.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(data []byte) ([]port.Segment, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("input is not valid UTF-8 text")
	}

	pages := strings.Split(string(data), "\f")
	segments := make([]port.Segment, 0, len(pages))
	for i, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		segments = append(segments, port.Segment{
			Text: text,
			Page: i + 1,
		})
	}

	return segments, nil
}
