package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoice-generator/pkg/editor"
	"github.com/invoice-generator/pkg/history"
	"github.com/invoice-generator/pkg/invoice"
	"github.com/invoice-generator/pkg/session"
	"github.com/invoice-generator/pkg/storage"
	"github.com/invoice-generator/pkg/submission"
)

func newTestServer(t *testing.T, opts Options) (*Server, http.Handler) {
	t.Helper()
	return newTestServerWithPolicy(t, opts, submission.Policy{RetainOnExportFailure: true})
}

func newTestServerWithPolicy(t *testing.T, opts Options, p submission.Policy) (*Server, http.Handler) {
	t.Helper()
	h, err := history.Open(context.Background(), storage.NewMemory(), nil)
	require.NoError(t, err)
	s := New(session.New(h, p, nil), opts, nil)
	return s, s.Router()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeDraft(t *testing.T, w *httptest.ResponseRecorder) invoice.Invoice {
	t.Helper()
	var inv invoice.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv), w.Body.String())
	return inv
}

func TestHealthAndCurrencies(t *testing.T) {
	_, h := newTestServer(t, Options{})

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(t, h, http.MethodGet, "/api/currencies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var codes []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &codes))
	assert.Contains(t, codes, "USD")
}

func TestSetField(t *testing.T) {
	_, h := newTestServer(t, Options{})

	tests := []struct {
		name           string
		field          string
		body           any
		expectedStatus int
	}{
		{"invoice number", "invoiceNumber", map[string]any{"value": "INV-1"}, http.StatusOK},
		{"currency", "currency", map[string]any{"value": "EUR"}, http.StatusOK},
		{"unknown currency", "currency", map[string]any{"value": "ZZZ"}, http.StatusBadRequest},
		{"unknown field", "Conditions", map[string]any{"value": "x"}, http.StatusBadRequest},
		{"bad body", "notes", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPut, "/api/draft/fields/"+tt.field, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	inv := decodeDraft(t, do(t, h, http.MethodGet, "/api/draft", nil))
	assert.Equal(t, "INV-1", inv.InvoiceNumber)
	assert.Equal(t, "EUR", inv.Currency)
}

func TestLineItems(t *testing.T) {
	_, h := newTestServer(t, Options{})

	w := do(t, h, http.MethodPost, "/api/draft/items", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = do(t, h, http.MethodPut, "/api/draft/items/"+created.ID, map[string]any{"field": "rate", "value": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	inv := decodeDraft(t, w)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "50", inv.LineItems[0].Rate.String())

	w = do(t, h, http.MethodPut, "/api/draft/items/"+created.ID, map[string]any{"field": "rate", "value": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPut, "/api/draft/items/missing", map[string]any{"field": "rate", "value": "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodDelete, "/api/draft/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeDraft(t, w).LineItems)

	w = do(t, h, http.MethodDelete, "/api/draft/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogo(t *testing.T) {
	_, h := newTestServer(t, Options{})

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/draft/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	inv := decodeDraft(t, w)
	require.NotNil(t, inv.Logo)
	assert.Equal(t, "logo.png", inv.Logo.Name)
	assert.Equal(t, "image/png", inv.Logo.ContentType)
	assert.Equal(t, img.Bytes(), inv.Logo.Data)

	w = do(t, h, http.MethodDelete, "/api/draft/logo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeDraft(t, w).Logo)

	w = do(t, h, http.MethodPost, "/api/draft/logo", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAndHistory(t *testing.T) {
	_, h := newTestServer(t, Options{})

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/draft/example", nil).Code)

	w := do(t, h, http.MethodPost, "/api/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-123.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "true", w.Header().Get("X-History-Retained"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = do(t, h, http.MethodPost, "/api/submit?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", w.Header().Get("X-History-Retained"), "unchanged draft is not retained twice")

	w = do(t, h, http.MethodPost, "/api/submit?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/draft/reset", nil).Code)
	w = do(t, h, http.MethodPost, "/api/history/0/load", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, invoice.Equal(invoice.Example(), decodeDraft(t, w)))

	w = do(t, h, http.MethodPost, "/api/history/5/load", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []invoice.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestSubmit_ArchiveFailureStillDownloads(t *testing.T) {
	archive := submission.ExporterFunc(func(context.Context, invoice.Invoice) error {
		return errors.New("bucket unavailable")
	})
	_, h := newTestServer(t, Options{Archive: archive})

	w := do(t, h, http.MethodPost, "/api/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "true", w.Header().Get("X-History-Retained"))
	assert.Equal(t, "true", w.Header().Get("X-Archive-Failed"))
}

func TestSubmit_ArchiveFailureDoesNotBlockRetention(t *testing.T) {
	var archived []invoice.Invoice
	archive := submission.ExporterFunc(func(_ context.Context, inv invoice.Invoice) error {
		archived = append(archived, inv)
		return errors.New("bucket unavailable")
	})
	s, h := newTestServerWithPolicy(t, Options{Archive: archive}, submission.Policy{RetainOnExportFailure: false})
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/draft/example", nil).Code)

	w := do(t, h, http.MethodPost, "/api/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "true", w.Header().Get("X-History-Retained"))
	assert.Equal(t, "true", w.Header().Get("X-Archive-Failed"))
	assert.Len(t, archived, 1)
	assert.Len(t, s.session.History(), 1)
}

func TestSubmit_RenderFailureNotRetainedWhenPolicyForbids(t *testing.T) {
	s, h := newTestServerWithPolicy(t, Options{}, submission.Policy{RetainOnExportFailure: false})
	_, err := s.session.Edit(func(e *editor.Editor) error {
		e.SetLogo(&invoice.Logo{Name: "broken.png", Data: []byte("garbage")})
		return nil
	})
	require.NoError(t, err)

	w := do(t, h, http.MethodPost, "/api/submit", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "false", w.Header().Get("X-History-Retained"))
	assert.Empty(t, s.session.History())
}

func TestSubmit_RenderFailure(t *testing.T) {
	s, h := newTestServer(t, Options{})
	_, err := s.session.Edit(func(e *editor.Editor) error {
		e.SetLogo(&invoice.Logo{Name: "broken.png", Data: []byte("garbage")})
		return nil
	})
	require.NoError(t, err)

	w := do(t, h, http.MethodPost, "/api/submit", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-History-Retained"), "failed exports are retained by default")
	assert.Len(t, s.session.History(), 1)
}

func TestIndex(t *testing.T) {
	s, h := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/draft/example", nil).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/submit", nil).Code)
	_, err := s.session.Edit(func(e *editor.Editor) error {
		e.SetLogo(&invoice.Logo{Name: "logo.png", ContentType: "image/png", Data: []byte{1}})
		return nil
	})
	require.NoError(t, err)

	w := do(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "Front End React js #1"))
	assert.Contains(t, body, `<option value="MAD" selected>`)
	assert.Contains(t, body, `<option value="pdf" selected>`)
	assert.Contains(t, body, "<script>")
	assert.NotContains(t, body, "<form id=\"invoice\"", "controls must not submit the page")

	for _, f := range invoice.Fields {
		assert.Contains(t, body, `data-field="`+string(f)+`"`)
	}
	for _, f := range []string{"description", "quantity", "rate"} {
		assert.Contains(t, body, `data-item-field="`+f+`"`)
	}

	// Every button names an API route the router serves with that method.
	actions := regexp.MustCompile(`data-action="([^"]+)" data-method="([A-Z]+)"`).FindAllStringSubmatch(body, -1)
	seen := map[string]bool{}
	for _, a := range actions {
		path, method := a[1], a[2]
		req := httptest.NewRequest(method, path, nil)
		var match mux.RouteMatch
		assert.True(t, s.Router().Match(req, &match), "%s %s", method, path)
		assert.NoError(t, match.MatchErr, "%s %s", method, path)
		seen[method+" "+regexp.MustCompile(`[0-9a-f-]{36}`).ReplaceAllString(path, "{id}")] = true
	}
	for _, want := range []string{
		"POST /api/draft/example",
		"POST /api/draft/reset",
		"DELETE /api/draft/logo",
		"POST /api/draft/items",
		"DELETE /api/draft/items/example-1",
		"POST /api/history/0/load",
	} {
		assert.True(t, seen[want], "missing action %s", want)
	}

	// Buttons work end to end: delete the first row as the page would.
	w = do(t, h, http.MethodDelete, "/api/draft/items/example-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeDraft(t, w).LineItems, 1)
}

func TestSubmit_FormPostedFormat(t *testing.T) {
	_, h := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(url.Values{"format": {"xlsx"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="invoice.xlsx"`, w.Header().Get("Content-Disposition"))
}
