package domain

import "fmt"

// DocumentType tags the kind of study material a chunk came from.
type DocumentType string

// Available document types.
const (
	// DocumentTypeNote is free-form lecture or study notes.
	DocumentTypeNote DocumentType = "note"

	// DocumentTypeAssignment is an assignment or problem-set document.
	DocumentTypeAssignment DocumentType = "assignment"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeNote, DocumentTypeAssignment:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Description returns a human-readable label used in prompt attribution.
func (t DocumentType) Description() string {
	switch t {
	case DocumentTypeNote:
		return "Notes"
	case DocumentTypeAssignment:
		return "Assignment"
	default:
		return "Document"
	}
}

// TextChunk is the unit of indexing: a bounded span of one document's text.
// Chunks carry the heading context they were found under and their ordinal
// position within the document.
type TextChunk struct {
	// ID is the stable chunk identifier, derived from document ID and position.
	ID string

	// DocumentID links to the owning document.
	DocumentID string

	// DocumentType tags the owning document's kind.
	DocumentType DocumentType

	// Text is the chunk content. When the chunk falls under a detected
	// section heading the text is prefixed with the bracketed heading.
	Text string

	// Position is the 0-based sequence order within the document.
	Position int

	// Page is the 1-based page number the chunk starts on, or 0 when the
	// source carries no page markers.
	Page int

	// Heading is the section heading in effect where the chunk starts,
	// empty when the document has no detected headings.
	Heading string
}

// ChunkID derives the stable identifier for a chunk from its document ID
// and position. Re-indexing a document reproduces the same IDs.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s#%d", documentID, position)
}

// Chunk size thresholds, in characters of trimmed chunk text.
const (
	// MinChunkSize is the smallest chunk emitted, except for the sole
	// chunk of a short document.
	MinChunkSize = 200

	// TargetChunkSize is the greedy accumulation target.
	TargetChunkSize = 1000

	// MaxChunkSize is the hard upper bound, exceeded only by a single
	// unsplittable sentence.
	MaxChunkSize = 1500
)
