package server

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/narrate/internal/pdf"
	"github.com/dgnsrekt/narrate/internal/pipeline"
)

type fakeConverter struct {
	err   error
	calls int
}

func (f *fakeConverter) ConvertFile(ctx context.Context, pdfPath, outPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("mp3-bytes"), 0o644)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return &body, w.FormDataContentType()
}

func doConvert(t *testing.T, s *Server, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestConvertHappyPath(t *testing.T) {
	fc := &fakeConverter{}
	s := New(fc)

	body, contentType := multipartUpload(t, "file", "moby dick.pdf", []byte("%PDF-1.4 fake"))
	rec := doConvert(t, s, body, contentType)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if fc.calls != 1 {
		t.Errorf("converter called %d times, want 1", fc.calls)
	}
	if got := rec.Body.String(); got != "mp3-bytes" {
		t.Errorf("body = %q, want mp3-bytes", got)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "moby dick.mp3") {
		t.Errorf("Content-Disposition = %q, want attachment named moby dick.mp3", disposition)
	}
}

func TestConvertNoFile(t *testing.T) {
	s := New(&fakeConverter{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.Close()

	rec := doConvert(t, s, &body, w.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConvertEmptyFile(t *testing.T) {
	s := New(&fakeConverter{})
	body, contentType := multipartUpload(t, "file", "empty.pdf", nil)

	rec := doConvert(t, s, body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConvertRejectsNonPDF(t *testing.T) {
	fc := &fakeConverter{}
	s := New(fc)
	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("plain text"))

	rec := doConvert(t, s, body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if fc.calls != 0 {
		t.Errorf("converter called for a non-PDF upload")
	}
}

func TestConvertErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"extraction failure", fmt.Errorf("%w: bad xref", pdf.ErrExtraction), http.StatusBadRequest},
		{"empty document", fmt.Errorf("%w: nothing to say", pipeline.ErrInvalidInput), http.StatusUnprocessableEntity},
		{"engine failure", fmt.Errorf("synthesis exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeConverter{err: tt.err})
			body, contentType := multipartUpload(t, "file", "doc.pdf", []byte("%PDF"))
			rec := doConvert(t, s, body, contentType)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestConvertRemovesRequestTempDir(t *testing.T) {
	// Request files land under os.TempDir; pointing TMPDIR at a scratch
	// directory makes leftovers observable.
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	leftovers := func() []string {
		t.Helper()
		matches, err := filepath.Glob(filepath.Join(tmp, "narrate-upload-*"))
		if err != nil {
			t.Fatalf("glob: %v", err)
		}
		return matches
	}

	s := New(&fakeConverter{})
	body, contentType := multipartUpload(t, "file", "doc.pdf", []byte("%PDF"))
	if rec := doConvert(t, s, body, contentType); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if left := leftovers(); len(left) != 0 {
		t.Errorf("temp dirs left after success: %v", left)
	}

	s = New(&fakeConverter{err: fmt.Errorf("synthesis exploded")})
	body, contentType = multipartUpload(t, "file", "doc.pdf", []byte("%PDF"))
	if rec := doConvert(t, s, body, contentType); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if left := leftovers(); len(left) != 0 {
		t.Errorf("temp dirs left after failure: %v", left)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := New(&fakeConverter{})

	req := httptest.NewRequest(http.MethodOptions, "/convert", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
