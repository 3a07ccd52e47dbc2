// Package chunker splits document text into bounded, context-carrying chunks.
//
// Lines are classified as section headers, page-break markers, or body
// text. Headers become segment boundaries and are carried as heading
// context into every chunk emitted under them; page breaks advance a
// running page counter. Body paragraphs are greedily accumulated up to a
// target size, oversized paragraphs are force-split on sentence
// boundaries, and undersized chunks are merged into their neighbours.
package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/reef-labs/reefrag/internal/core/domain"
)

// Default size thresholds, in characters of trimmed chunk text.
const (
	DefaultMinSize    = domain.MinChunkSize
	DefaultTargetSize = domain.TargetChunkSize
	DefaultMaxSize    = domain.MaxChunkSize
)

// maxHeaderLen bounds how long a line can be and still count as a heading.
const maxHeaderLen = 80

var (
	// "Chapter 3", "Section 2", "Lecture 12: Entropy" style headings.
	namedHeaderRe = regexp.MustCompile(`(?i)^(chapter|section|unit|part|lecture|week|module|topic)\s+\d+`)

	// "1.", "2.3", "4)" numbered headings followed by a title.
	numberedHeaderRe = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+\S`)

	// "Page 4" or "Page 4 of 12" page markers.
	pageMarkerRe = regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`)

	// A run of three or more dashes used as a page separator.
	dashRunRe = regexp.MustCompile(`^-{3,}$`)
)

// Processor splits document text into chunks.
type Processor struct {
	minSize    int
	targetSize int
	maxSize    int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMinSize sets the minimum chunk size in characters.
func WithMinSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.minSize = size
		}
	}
}

// WithTargetSize sets the greedy accumulation target in characters.
func WithTargetSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.targetSize = size
		}
	}
}

// WithMaxSize sets the maximum chunk size in characters.
func WithMaxSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		minSize:    DefaultMinSize,
		targetSize: DefaultTargetSize,
		maxSize:    DefaultMaxSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Keep thresholds ordered: min <= target <= max.
	if p.targetSize < p.minSize {
		p.targetSize = p.minSize
	}
	if p.maxSize < p.targetSize {
		p.maxSize = p.targetSize
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// rawChunk is a chunk under construction: body text without the heading
// prefix, plus the heading and page context it was emitted under.
type rawChunk struct {
	body    string
	heading string
	page    int
}

// Chunk splits text into an ordered list of chunks for one document.
// Empty input yields no chunks.
func (p *Processor) Chunk(text, documentID string, documentType domain.DocumentType) []domain.TextChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	raw := p.segment(text)
	raw = p.mergeSmall(raw)

	chunks := make([]domain.TextChunk, 0, len(raw))
	for i, rc := range raw {
		body := strings.TrimSpace(rc.body)
		chunkText := body
		if rc.heading != "" {
			chunkText = "[" + rc.heading + "] " + body
		}
		chunks = append(chunks, domain.TextChunk{
			ID:           domain.ChunkID(documentID, i),
			DocumentID:   documentID,
			DocumentType: documentType,
			Text:         chunkText,
			Position:     i,
			Page:         rc.page,
			Heading:      rc.heading,
		})
	}

	return chunks
}

// segment walks the document line by line, carrying heading and page
// context, and emits raw chunks from the body segments between boundaries.
func (p *Processor) segment(text string) []rawChunk {
	lines := strings.Split(text, "\n")

	// Page numbers are only attached when the document carries page
	// markers at all; otherwise chunks report page 0 (unknown).
	paged := containsPageMarker(lines)

	var (
		out      []rawChunk
		heading  string
		page     int
		segment  []string
		segStart segmentContext
	)
	if paged {
		page = 1
	}
	segStart = segmentContext{heading: heading, page: page}

	flush := func() {
		body := strings.Join(segment, "\n")
		segment = segment[:0]
		if strings.TrimSpace(body) == "" {
			return
		}
		out = append(out, p.splitSegment(body, segStart.heading, segStart.page)...)
	}

	for _, line := range lines {
		switch {
		case isPageBreak(line):
			flush()
			page++
			// Heading context carries across page breaks.
			segStart = segmentContext{heading: heading, page: page}

		case isHeader(line):
			flush()
			heading = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":"))
			segStart = segmentContext{heading: heading, page: page}

		default:
			if len(segment) == 0 {
				segStart = segmentContext{heading: heading, page: page}
			}
			segment = append(segment, line)
		}
	}
	flush()

	return out
}

// segmentContext remembers the heading and page in effect where a body
// segment starts.
type segmentContext struct {
	heading string
	page    int
}

// splitSegment splits one body segment on blank-line paragraphs and
// greedily accumulates them into target-sized raw chunks.
func (p *Processor) splitSegment(body, heading string, page int) []rawChunk {
	paragraphs := splitParagraphs(body)

	var (
		out     []rawChunk
		current strings.Builder
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		out = append(out, rawChunk{body: current.String(), heading: heading, page: page})
		current.Reset()
	}

	appendPiece := func(piece string) {
		if current.Len() > 0 && current.Len()+len(piece) > p.targetSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(piece)
		if current.Len() >= p.targetSize {
			flush()
		}
	}

	for _, para := range paragraphs {
		if len(para) > p.maxSize {
			// Oversized paragraph: force-split on sentence boundaries.
			for _, piece := range p.splitOversized(para) {
				appendPiece(piece)
			}
			continue
		}
		appendPiece(para)
	}
	flush()

	return out
}

// splitOversized breaks a paragraph that exceeds the maximum size into
// sentence-bounded pieces accumulated to the target size. A single
// sentence longer than the maximum is left whole; it cannot be split.
func (p *Processor) splitOversized(para string) []string {
	sentences := splitSentences(para)

	var (
		out     []string
		current strings.Builder
	)

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > p.targetSize {
			out = append(out, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}

	return out
}

// mergeSmall merges sub-minimum chunks into their neighbours: adjacent
// sub-minimum chunks are concatenated, and a remaining sub-minimum chunk
// is folded into an adjacent normal-sized chunk when the result stays
// within the maximum. The sole chunk of a short document is kept as is.
func (p *Processor) mergeSmall(raw []rawChunk) []rawChunk {
	if len(raw) <= 1 {
		return raw
	}

	// First pass: concatenate runs of adjacent sub-minimum chunks.
	merged := make([]rawChunk, 0, len(raw))
	for _, rc := range raw {
		n := len(merged)
		if n > 0 && p.below(merged[n-1]) && p.below(rc) {
			merged[n-1].body = merged[n-1].body + "\n\n" + rc.body
			continue
		}
		merged = append(merged, rc)
	}

	// Second pass: fold leftover sub-minimum chunks into a neighbour.
	out := make([]rawChunk, 0, len(merged))
	for i := 0; i < len(merged); i++ {
		rc := merged[i]
		if !p.below(rc) || len(merged) == 1 {
			out = append(out, rc)
			continue
		}

		bodyLen := len(strings.TrimSpace(rc.body))
		if n := len(out); n > 0 && len(strings.TrimSpace(out[n-1].body))+bodyLen+2 <= p.maxSize {
			out[n-1].body = out[n-1].body + "\n\n" + rc.body
			continue
		}
		if i+1 < len(merged) && len(strings.TrimSpace(merged[i+1].body))+bodyLen+2 <= p.maxSize {
			merged[i+1].body = rc.body + "\n\n" + merged[i+1].body
			// Keep the earlier chunk's context for the combined chunk.
			merged[i+1].heading = rc.heading
			merged[i+1].page = rc.page
			continue
		}
		out = append(out, rc)
	}

	return out
}

// below reports whether a chunk's trimmed body is under the minimum size.
func (p *Processor) below(rc rawChunk) bool {
	return len(strings.TrimSpace(rc.body)) < p.minSize
}

// isHeader classifies a line as a section heading.
func isHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > maxHeaderLen {
		return false
	}

	if namedHeaderRe.MatchString(trimmed) {
		return true
	}
	if numberedHeaderRe.MatchString(trimmed) && !strings.HasSuffix(trimmed, ".") {
		return true
	}
	if isAllCaps(trimmed) {
		return true
	}
	// Short colon-terminated lines introduce a section.
	if strings.HasSuffix(trimmed, ":") && len(trimmed) <= 60 &&
		!strings.ContainsAny(trimmed[:len(trimmed)-1], ".!?:") {
		return true
	}

	return false
}

// isAllCaps reports whether a line is an all-caps heading: it contains
// letters, none of them lowercase.
func isAllCaps(s string) bool {
	if len(s) < 3 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// isPageBreak classifies a line as a page-break marker.
func isPageBreak(line string) bool {
	if strings.ContainsRune(line, '\f') {
		return true
	}
	trimmed := strings.TrimSpace(line)
	return pageMarkerRe.MatchString(trimmed) || dashRunRe.MatchString(trimmed)
}

// containsPageMarker reports whether any line is a page-break marker.
func containsPageMarker(lines []string) bool {
	for _, line := range lines {
		if isPageBreak(line) {
			return true
		}
	}
	return false
}

// splitParagraphs splits a segment on blank-line boundaries.
func splitParagraphs(body string) []string {
	var (
		out     []string
		current []string
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		para := strings.TrimSpace(strings.Join(current, "\n"))
		current = current[:0]
		if para != "" {
			out = append(out, para)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return out
}

// splitSentences splits text on sentence terminators, keeping the
// terminator with its sentence.
func splitSentences(text string) []string {
	var (
		out     []string
		current strings.Builder
	)

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(current.String())
			if s != "" {
				out = append(out, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		out = append(out, s)
	}

	return out
}
