package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/invoice-generator/pkg/currency"
	"github.com/invoice-generator/pkg/editor"
	"github.com/invoice-generator/pkg/export"
	"github.com/invoice-generator/pkg/invoice"
	"github.com/invoice-generator/pkg/submission"
)

var errBadRequest = errors.New("bad request")

// textValue accepts either a JSON string or a JSON number.
type textValue string

func (v *textValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = textValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = textValue(n.String())
	return nil
}

type fieldRequest struct {
	Value textValue `json:"value"`
}

type itemRequest struct {
	Field string    `json:"field"`
	Value textValue `json:"value"`
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) respondDraft(w http.ResponseWriter, r *http.Request, draft invoice.Invoice, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) getDraft(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Draft())
}

func (s *Server) setField(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var req fieldRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if name == string(invoice.FieldCurrency) && !currency.Valid(string(req.Value)) {
		s.writeError(w, r, fmt.Errorf("%w: unknown currency %q", errBadRequest, req.Value))
		return
	}
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		return e.SetField(name, string(req.Value))
	})
	s.respondDraft(w, r, draft, err)
}

func (s *Server) uploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize+1024)
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	logo := &invoice.Logo{Name: header.Filename, ContentType: contentType, Data: data}
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		e.SetLogo(logo)
		return nil
	})
	s.respondDraft(w, r, draft, err)
}

func (s *Server) removeLogo(w http.ResponseWriter, r *http.Request) {
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		e.SetLogo(nil)
		return nil
	})
	s.respondDraft(w, r, draft, err)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var id string
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		id = e.AddLineItem()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID    string          `json:"id"`
		Draft invoice.Invoice `json:"draft"`
	}{id, draft})
}

func (s *Server) editItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		return e.EditLineItemByID(id, req.Field, string(req.Value))
	})
	s.respondDraft(w, r, draft, err)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		return e.RemoveLineItemByID(id)
	})
	s.respondDraft(w, r, draft, err)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		e.Reset()
		return nil
	})
	s.respondDraft(w, r, draft, err)
}

func (s *Server) example(w http.ResponseWriter, r *http.Request) {
	draft, err := s.session.Edit(func(e *editor.Editor) error {
		e.LoadPreset()
		return nil
	})
	s.respondDraft(w, r, draft, err)
}

// submit streams the rendered document back and offers the draft to history.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	format := r.FormValue("format")
	if format == "" {
		format = s.opts.Format
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var (
		doc        bytes.Buffer
		filename   string
		archiveErr error
	)
	// Only the download decides the export outcome. Archive failures are
	// reported on their own and never keep the invoice out of history.
	exp := submission.ExporterFunc(func(ctx context.Context, inv invoice.Invoice) error {
		filename = export.Filename(renderer, inv)
		err := export.Download{Renderer: renderer, W: &doc}.Export(ctx, inv)
		if s.opts.Archive != nil {
			archiveErr = s.opts.Archive.Export(ctx, inv)
		}
		return err
	})

	res, err := s.session.Submit(r.Context(), exp)
	w.Header().Set("X-History-Retained", strconv.FormatBool(res.Retained))
	if archiveErr != nil {
		s.log.WarnContext(r.Context(), "archive failed", "error", archiveErr)
		w.Header().Set("X-Archive-Failed", "true")
	}
	if doc.Len() == 0 {
		if err == nil {
			err = errors.New("export produced no document")
		}
		s.writeError(w, r, err)
		return
	}
	if err != nil {
		s.log.WarnContext(r.Context(), "document delivered with errors", "error", err)
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(doc.Len()))
	_, _ = w.Write(doc.Bytes())
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.History())
}

func (s *Server) loadHistory(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	draft, err := s.session.LoadHistory(i)
	s.respondDraft(w, r, draft, err)
}
