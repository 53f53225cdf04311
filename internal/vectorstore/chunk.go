package vectorstore

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the maximum excerpt length in runes
const DefaultChunkSize = 1000

// SplitText splits text into chunks of at most size runes without overlap.
// Lines are kept whole where possible; an oversized line starts a new chunk
// and is split after "。", and an oversized sentence is cut at the rune limit.
func SplitText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var (
		chunks  []string
		current strings.Builder
		length  int
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		length = 0
	}

	add := func(piece string, sep string) {
		n := utf8.RuneCountInString(piece)
		if length > 0 && length+utf8.RuneCountInString(sep)+n > size {
			flush()
		}
		if length > 0 {
			current.WriteString(sep)
			length += utf8.RuneCountInString(sep)
		}
		current.WriteString(piece)
		length += n
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= size {
			add(line, "\n")
			continue
		}

		flush()
		for _, sentence := range splitSentences(line) {
			if utf8.RuneCountInString(sentence) <= size {
				add(sentence, "")
				continue
			}
			for _, piece := range splitRunes(sentence, size) {
				add(piece, "")
			}
		}
	}
	flush()

	return chunks
}

// splitSentences splits after every "。", keeping the terminator
func splitSentences(s string) []string {
	var sentences []string
	for s != "" {
		i := strings.Index(s, "。")
		if i < 0 {
			sentences = append(sentences, s)
			break
		}
		end := i + len("。")
		sentences = append(sentences, s[:end])
		s = s[end:]
	}
	return sentences
}

func splitRunes(s string, size int) []string {
	runes := []rune(s)
	var pieces []string
	for len(runes) > 0 {
		n := min(size, len(runes))
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	return pieces
}
