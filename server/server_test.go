package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdflayout"
	"github.com/ivanvanderbyl/pdflayout/server"
)

type fakeAnnotator struct {
	pages    []pdflayout.PageAnnotation
	err      error
	received []byte
}

func (f *fakeAnnotator) AnnotateBytes(_ context.Context, data []byte) ([]pdflayout.PageAnnotation, error) {
	f.received = data
	return f.pages, f.err
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/annotate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv := server.New(&fakeAnnotator{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnnotate(t *testing.T) {
	page := pdflayout.NewPageAnnotation(612, 792, "page_1.png")
	page.Regions[pdflayout.RegionTitle] = append(page.Regions[pdflayout.RegionTitle],
		pdflayout.Box{X0: 90, Y0: 60, X1: 500, Y1: 80})
	annotator := &fakeAnnotator{pages: []pdflayout.PageAnnotation{page}}
	srv := server.New(annotator, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "file", "report.pdf", []byte("%PDF-1.7")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("%PDF-1.7"), annotator.received)

	var resp server.AnnotateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.DocumentID)
	assert.NoError(t, err)
	assert.Equal(t, "report.pdf", resp.Filename)
	require.Len(t, resp.Pages, 1)
	assert.Equal(t, page, resp.Pages[0])
}

func TestAnnotate_NoPages(t *testing.T) {
	srv := server.New(&fakeAnnotator{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "file", "empty.pdf", []byte("%PDF-1.7")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pages":[]`)
}

func TestAnnotate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		annotator *fakeAnnotator
		request   func(t *testing.T) *http.Request
		status    int
	}{
		{
			name:      "not multipart",
			annotator: &fakeAnnotator{},
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/annotate", strings.NewReader("%PDF"))
			},
			status: http.StatusBadRequest,
		},
		{
			name:      "missing file field",
			annotator: &fakeAnnotator{},
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "document", "report.pdf", []byte("%PDF"))
			},
			status: http.StatusBadRequest,
		},
		{
			name:      "annotation error",
			annotator: &fakeAnnotator{err: errors.New("failed to open document")},
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "broken.pdf", []byte("garbage"))
			},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			server.New(tt.annotator, nil).ServeHTTP(rec, tt.request(t))

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnnotate_TooLarge(t *testing.T) {
	srv := server.New(&fakeAnnotator{}, nil).WithMaxUploadBytes(8)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "file", "big.pdf", bytes.Repeat([]byte("x"), 64)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	server.New(&fakeAnnotator{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/annotate", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
