package synth

import (
	"context"

	"google.golang.org/api/docs/v1"
)

// Backend is the document-mutation endpoint the synthesizer talks to. It
// is expressed in docs/v1 wire types; any target with the same contract
// (single linear UTF-16 text stream, order-preserving batches, structural
// inserts that do not report their cell offsets) can implement it.
//
// Implementations do not need to be safe for concurrent use: the caller
// must guarantee at most one writer per document (see Synthesizer).
type Backend interface {
	// Fetch returns the full current document state.
	Fetch(ctx context.Context) (*docs.Document, error)
	// BatchUpdate submits requests as one atomic batch, applied remotely
	// in array order.
	BatchUpdate(ctx context.Context, requests []*docs.Request) error
}

// endIndex returns the append position of a fetched document: one before
// the end of its last structural element, i.e. before the final newline
// the document always carries.
func endIndex(doc *docs.Document) int64 {
	if doc.Body == nil || len(doc.Body.Content) == 0 {
		return 1
	}
	last := doc.Body.Content[len(doc.Body.Content)-1]
	if last.EndIndex <= 1 {
		return 1
	}
	return last.EndIndex - 1
}
