package gdocs

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/docs/v1"

	"github.com/campaignkit/docweave/pkg/synth"
)

// Backend binds the docs service to one document for synthesis. The
// caller is responsible for at-most-one-writer per document.
func (c *Client) Backend(documentID string) synth.Backend {
	return &documentBackend{svc: c.docs, documentID: documentID}
}

type documentBackend struct {
	svc        *docs.Service
	documentID string
}

func (b *documentBackend) Fetch(ctx context.Context) (*docs.Document, error) {
	doc, err := b.svc.Documents.Get(b.documentID).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get document %s", b.documentID)
	}
	return doc, nil
}

func (b *documentBackend) BatchUpdate(ctx context.Context, requests []*docs.Request) error {
	_, err := b.svc.Documents.BatchUpdate(b.documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return errors.Wrapf(err, "failed to batch update document %s", b.documentID)
}
