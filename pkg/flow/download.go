package flow

import (
	"context"
	"errors"
)

// fallbackFilename is used when the server does not suggest one.
const fallbackFilename = "accessibility-report.pdf"

// Saver hands a fetched document to the embedder; a browser shell maps it
// to a native save dialog, the CLI writes a file.
type Saver func(filename string, document []byte) error

// Downloader exchanges a one-time token for the finished report.
type Downloader struct {
	transport *Transport
	save      Saver
}

func NewDownloader(t *Transport, save Saver) *Downloader {
	return &Downloader{transport: t, save: save}
}

// Download fetches the document for the token and hands it to the saver.
// A non-success response means the token is expired, unknown, or already
// spent. The user's remedy for all of those is purchasing again, so they
// are reported as KindTokenInvalid, distinct from transport faults like a
// timeout.
func (d *Downloader) Download(ctx context.Context, token string) error {
	doc, filename, err := d.transport.GetDocument(ctx, "/api/v1/payment/download/"+token, DocumentTimeout)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) && fe.Kind == KindServer {
			return &Error{Kind: KindTokenInvalid, Status: fe.Status, Message: fe.Message}
		}
		return err
	}
	if len(doc) == 0 {
		return &Error{Kind: KindMalformed, Message: "empty document"}
	}
	if filename == "" {
		filename = fallbackFilename
	}
	return d.save(filename, doc)
}
