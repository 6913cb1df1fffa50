// Package chunker turns loaded documents into bounded, overlapping text
// segments carrying provenance metadata.
package chunker

import (
	"log/slog"
	"strings"

	"ragpipe/internal/domain"
)

// Splitting strategies.
const (
	StrategyRecursive = "recursive"
	StrategyCharacter = "character"
)

// Separator priority for the recursive strategy: paragraph, line, sentence,
// word, then hard character cuts.
var recursiveSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// characterSeparator is the single separator used by the character strategy.
const characterSeparator = "\n\n"

// Chunker splits documents into chunks of at most size characters with the
// configured overlap.
type Chunker struct {
	strategy string
	size     int
	overlap  int
	log      *slog.Logger
}

// New creates a chunker. An unknown strategy falls back to recursive at
// split time with a warning rather than failing.
func New(strategy string, size, overlap int, log *slog.Logger) *Chunker {
	if log == nil {
		log = slog.Default()
	}
	return &Chunker{strategy: strategy, size: size, overlap: overlap, log: log}
}

// Chunk splits every document and tags each resulting chunk with the parent
// document's metadata plus its position. Output preserves document order,
// then chunk order within each document. Empty input yields empty output.
func (c *Chunker) Chunk(documents []domain.Document) []domain.Chunk {
	if len(documents) == 0 {
		c.log.Warn("no documents provided for chunking")
		return nil
	}

	split := c.splitFunc()
	var chunks []domain.Chunk
	for _, doc := range documents {
		pieces := split(doc.Content)
		for i, piece := range pieces {
			chunks = append(chunks, domain.Chunk{
				Content: piece,
				Meta: domain.ChunkMeta{
					DocumentMeta: doc.Meta,
					ChunkIndex:   i,
					TotalChunks:  len(pieces),
				},
			})
		}
	}

	c.log.Info("chunked documents", "documents", len(documents), "chunks", len(chunks))
	return chunks
}

func (c *Chunker) splitFunc() func(string) []string {
	switch c.strategy {
	case StrategyRecursive:
		// default below
	case StrategyCharacter:
		return c.splitCharacter
	default:
		c.log.Warn("unknown chunking strategy, defaulting to recursive", "strategy", c.strategy)
	}
	return func(text string) []string {
		return c.splitRecursive(text, recursiveSeparators)
	}
}

// splitRecursive splits on the largest separator present in the text,
// merging the pieces back into size-bounded chunks and descending to the
// next separator for any piece that is still too large. Separators stay
// attached to the piece they terminate, so no document text is lost at
// chunk boundaries.
func (c *Chunker) splitRecursive(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var next []string
	for i, s := range separators {
		if s == "" {
			sep, next = "", nil
			break
		}
		if strings.Contains(text, s) {
			sep, next = s, separators[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		for _, r := range text {
			splits = append(splits, string(r))
		}
	} else {
		splits = splitKeep(text, sep)
	}

	var out []string
	var fitting []string
	for _, s := range splits {
		if len(s) <= c.size {
			fitting = append(fitting, s)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, c.mergeSplits(fitting)...)
			fitting = nil
		}
		if len(next) == 0 {
			out = append(out, s)
		} else {
			out = append(out, c.splitRecursive(s, next)...)
		}
	}
	if len(fitting) > 0 {
		out = append(out, c.mergeSplits(fitting)...)
	}
	return out
}

// splitKeep splits on sep, keeping the separator attached to the piece it
// terminates.
func splitKeep(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeSplits greedily packs pieces into chunks of at most size characters,
// carrying trailing pieces over into the next chunk to provide the overlap.
// Pieces arrive with their separator attached, so joining is plain
// concatenation.
func (c *Chunker) mergeSplits(splits []string) []string {
	var chunks []string
	var current []string
	total := 0

	for _, s := range splits {
		l := len(s)
		if len(current) > 0 && total+l > c.size {
			chunks = appendChunk(chunks, current)
			for len(current) > 0 && (total > c.overlap || (total+l > c.size && total > 0)) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, s)
		total += l
	}
	return appendChunk(chunks, current)
}

func appendChunk(chunks, parts []string) []string {
	text := strings.Join(parts, "")
	if text == "" {
		return chunks
	}
	return append(chunks, text)
}

// splitCharacter splits on the single configured separator, keeping the
// separator attached so that concatenation without overlap reconstructs the
// original text. Oversized segments are hard-cut into overlapping windows.
func (c *Chunker) splitCharacter(text string) []string {
	var out []string
	for _, seg := range strings.SplitAfter(text, characterSeparator) {
		if seg == "" {
			continue
		}
		if len(seg) <= c.size {
			out = append(out, seg)
			continue
		}
		out = append(out, c.hardCut(seg)...)
	}
	return out
}

func (c *Chunker) hardCut(text string) []string {
	runes := []rune(text)
	step := c.size - c.overlap
	if step <= 0 {
		step = c.size
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
