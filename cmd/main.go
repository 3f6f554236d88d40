// cmd/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/invoice-generator/pkg/config"
	"github.com/invoice-generator/pkg/export"
	"github.com/invoice-generator/pkg/history"
	"github.com/invoice-generator/pkg/logger"
	"github.com/invoice-generator/pkg/session"
	"github.com/invoice-generator/pkg/storage"
	"github.com/invoice-generator/pkg/submission"
	"github.com/invoice-generator/pkg/web"
)

func main() {
	var cfg *config.Config

	app := &cli.App{
		Name:  "invoicegen",
		Usage: "compose invoices, export them and keep a history of recent ones",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"INVOICE_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.Load(c.String("config"))
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the web form",
				Action: func(c *cli.Context) error { return serve(c.Context, cfg) },
			},
			{
				Name:  "history",
				Usage: "inspect the invoice history",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list retained invoices, newest first",
						Action: func(c *cli.Context) error { return listHistory(c.Context, cfg) },
					},
					{
						Name:  "export",
						Usage: "render a retained invoice into a directory",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "index", Aliases: []string{"i"}, Usage: "history position, 0 is the newest"},
							&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "pdf or xlsx"},
							&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
						},
						Action: func(c *cli.Context) error {
							format := c.String("format")
							if format == "" {
								format = cfg.Export.Format
							}
							return exportHistory(c.Context, cfg, c.Int("index"), format, c.String("out"))
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("invoicegen failed", "error", err)
		os.Exit(1)
	}
}

func openHistory(ctx context.Context, cfg *config.Config) (*history.Log, storage.Backend, error) {
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	h, err := history.Open(ctx, backend, slog.Default())
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return h, backend, nil
}

// archive builds the exporters that receive a copy of every submitted
// invoice besides the browser download.
func archive(ctx context.Context, cfg *config.Config) (submission.Exporter, error) {
	renderer, err := export.ForFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}
	var exps export.Multi
	if cfg.Export.Dir != "" {
		exps = append(exps, export.Dir{Renderer: renderer, Path: cfg.Export.Dir})
	}
	if cfg.Export.S3.Bucket != "" {
		s3, err := export.NewS3(ctx, cfg.Export.S3, renderer)
		if err != nil {
			return nil, err
		}
		exps = append(exps, s3)
	}
	if len(exps) == 0 {
		return nil, nil
	}
	return exps, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	h, backend, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	arch, err := archive(ctx, cfg)
	if err != nil {
		return err
	}

	sess := session.New(h, submission.Policy{RetainOnExportFailure: cfg.History.RetainOnExportFailure}, slog.Default())
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      web.New(sess, web.Options{Format: cfg.Export.Format, Archive: arch}, slog.Default()).Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver, "history_entries", h.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server exited gracefully")
	return nil
}

func listHistory(ctx context.Context, cfg *config.Config) error {
	h, backend, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tINVOICE\tBILL TO\tDATE\tITEMS\tTOTAL")
	for i, inv := range h.Entries() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s %s\n",
			i, inv.InvoiceNumber, firstLine(inv.ToName), inv.Date,
			len(inv.LineItems), inv.Subtotal().StringFixed(2), inv.Currency)
	}
	return tw.Flush()
}

func exportHistory(ctx context.Context, cfg *config.Config, index int, format, out string) error {
	h, backend, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	inv, err := h.Select(index)
	if err != nil {
		return err
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		return err
	}
	if err := (export.Dir{Renderer: renderer, Path: out}).Export(ctx, inv); err != nil {
		return err
	}
	fmt.Println(export.Filename(renderer, inv))
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
