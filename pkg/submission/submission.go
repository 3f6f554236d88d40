// Package submission finalizes drafts: it exports them and then offers them
// to the history log.
package submission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/invoice-generator/pkg/invoice"
	"github.com/invoice-generator/pkg/logger"
)

// Exporter produces the downloadable document for an invoice.
type Exporter interface {
	Export(ctx context.Context, inv invoice.Invoice) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(ctx context.Context, inv invoice.Invoice) error

func (f ExporterFunc) Export(ctx context.Context, inv invoice.Invoice) error {
	return f(ctx, inv)
}

// History is the retention side of a submission.
type History interface {
	Append(ctx context.Context, entry invoice.Invoice) (bool, error)
}

// Policy decides what happens when the export fails.
type Policy struct {
	RetainOnExportFailure bool
}

// Result describes the effects of one Submit call.
type Result struct {
	Exported bool
	Retained bool
}

// Coordinator sequences export and retention.
type Coordinator struct {
	history History
	policy  Policy
	log     *slog.Logger
}

// New returns a Coordinator that retains into h according to p.
func New(h History, p Policy, l *slog.Logger) *Coordinator {
	return &Coordinator{history: h, policy: p, log: logger.OrDiscard(l)}
}

// Submit always runs the exporter, then appends draft to history unless the
// export failed and the policy forbids retaining failed exports. Export and
// persistence errors are both returned.
func (c *Coordinator) Submit(ctx context.Context, exp Exporter, draft invoice.Invoice) (Result, error) {
	var res Result

	exportErr := exp.Export(ctx, draft.Clone())
	if exportErr != nil {
		c.log.ErrorContext(ctx, "export failed", "invoice_number", draft.InvoiceNumber, "error", exportErr)
	} else {
		res.Exported = true
	}

	if exportErr != nil && !c.policy.RetainOnExportFailure {
		return res, exportErr
	}

	changed, err := c.history.Append(ctx, draft)
	if err != nil {
		c.log.ErrorContext(ctx, "history append failed", "error", err)
		return res, errors.Join(exportErr, err)
	}
	res.Retained = changed
	if changed {
		c.log.InfoContext(ctx, "invoice retained in history", "invoice_number", draft.InvoiceNumber)
	}
	return res, exportErr
}
