// Package export renders invoices into downloadable documents and delivers
// them to a writer, a directory or an S3 bucket.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/invoice-generator/pkg/invoice"
	"github.com/invoice-generator/pkg/submission"
)

// Renderer turns an invoice into a document.
type Renderer interface {
	Render(w io.Writer, inv invoice.Invoice) error
	ContentType() string
	Extension() string
}

// Formats lists the names ForFormat accepts.
var Formats = []string{"pdf", "xlsx"}

// ForFormat returns the renderer for "pdf" or "xlsx".
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "pdf":
		return PDF{}, nil
	case "xlsx":
		return XLSX{}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename is the document name for inv, e.g. "invoice-123.pdf".
func Filename(r Renderer, inv invoice.Invoice) string {
	name := unsafeChars.ReplaceAllString(inv.InvoiceNumber, "_")
	if name == "" || name == "_" {
		return "invoice." + r.Extension()
	}
	return "invoice-" + name + "." + r.Extension()
}

// Download renders into W, typically an HTTP response body. The document is
// rendered fully before anything is written so a failed render leaves W
// untouched.
type Download struct {
	Renderer Renderer
	W        io.Writer
}

func (d Download) Export(_ context.Context, inv invoice.Invoice) error {
	var buf bytes.Buffer
	if err := d.Renderer.Render(&buf, inv); err != nil {
		return err
	}
	_, err := d.W.Write(buf.Bytes())
	return err
}

// Dir writes documents into a local directory.
type Dir struct {
	Renderer Renderer
	Path     string
}

func (d Dir) Export(_ context.Context, inv invoice.Invoice) error {
	var buf bytes.Buffer
	if err := d.Renderer.Render(&buf, inv); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(d.Path, Filename(d.Renderer, inv))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Multi runs every exporter, even after a failure, and joins the errors.
type Multi []submission.Exporter

func (m Multi) Export(ctx context.Context, inv invoice.Invoice) error {
	var errs []error
	for _, e := range m {
		if err := e.Export(ctx, inv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
