package retrieval

import (
	"strings"
	"unicode/utf8"
)

// Separators are tried in order: paragraphs, lines, words, then single characters.
var Separators = []string{"\n\n", "\n", " ", ""}

// Split cuts text into chunks of at most size characters, with neighbouring chunks
// sharing up to overlap characters. Pieces are split on the coarsest separator that
// yields small enough parts.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return splitRecursive(text, Separators, size, overlap)
}

func splitRecursive(text string, seps []string, size, overlap int) []string {
	sep, rest := "", []string(nil)
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, small []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) <= size {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, merge(small, sep, size, overlap)...)
			small = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, p)
		} else {
			chunks = append(chunks, splitRecursive(p, rest, size, overlap)...)
		}
	}
	if len(small) > 0 {
		chunks = append(chunks, merge(small, sep, size, overlap)...)
	}
	return chunks
}

// merge packs splits into chunks no longer than size, carrying up to overlap
// characters of the previous chunk into the next one.
func merge(splits []string, sep string, size, overlap int) []string {
	sepLen := utf8.RuneCountInString(sep)
	var (
		docs    []string
		current []string
		total   int
	)
	for _, s := range splits {
		l := utf8.RuneCountInString(s)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+l+extra > size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			for total > overlap || (total > 0 && total+l+sepLen > size) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, s)
		total += l
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
