package httpupload

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamupload/errors"
	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/storage"
	"github.com/kbukum/streamupload/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUploader struct {
	got  upload.Request
	body string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, src io.Reader, req upload.Request) (*upload.Result, error) {
	f.got = req
	data, _ := io.ReadAll(src)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &upload.Result{Key: req.Filename, Location: "mem://" + req.Filename, BytesWritten: uint64(len(data)), Backend: "memory"}, nil
}

func post(t *testing.T, u Uploader, body, contentType, filename string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	NewHandler(u).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if filename != "" {
		req.Header.Set(FilenameHeader, filename)
	}
	req.Header.Set("X-Request-Id", "req-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) errors.ErrorCode {
	t.Helper()
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rr.Body.String())
	}
	return resp.Error.Code
}

func TestUpload_Created(t *testing.T) {
	fake := &fakeUploader{}
	rr := post(t, fake, "hello", "text/plain; charset=utf-8", "a.txt")

	if rr.Code != http.StatusCreated {
		t.Fatalf("code = %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if fake.got.Type != "text/plain" {
		t.Errorf("declared type = %q, want text/plain without parameters", fake.got.Type)
	}
	if fake.got.Filename != "a.txt" || fake.got.RequestID != "req-1" || !fake.got.Confine || fake.body != "hello" {
		t.Errorf("unexpected request: %+v body=%q", fake.got, fake.body)
	}

	var resp struct {
		Data upload.Result `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.BytesWritten != 5 || resp.Data.Location != "mem://a.txt" {
		t.Errorf("unexpected result: %+v", resp.Data)
	}
}

func TestUpload_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want errors.ErrorCode
	}{
		{"type mismatch", errors.TypeMismatch("image/jpeg", "a.txt"), http.StatusForbidden, errors.ErrCodeTypeMismatch},
		{"size exceeded", errors.SizeExceeded(33, 32), http.StatusForbidden, errors.ErrCodeSizeExceeded},
		{"backend", errors.BackendFailure("objectstore", stderrors.New("timeout")), http.StatusBadGateway, errors.ErrCodeBackendFailure},
		{"source", errors.IOFailure(io.ErrUnexpectedEOF), http.StatusBadRequest, errors.ErrCodeIOFailure},
		{"unclassified", stderrors.New("boom"), http.StatusInternalServerError, errors.ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := post(t, &fakeUploader{err: tc.err}, "data", "text/plain", "a.txt")
			if rr.Code != tc.code {
				t.Errorf("code = %d, want %d", rr.Code, tc.code)
			}
			if got := errorCode(t, rr); got != tc.want {
				t.Errorf("error code = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestUpload_MissingContentType(t *testing.T) {
	fake := &fakeUploader{}
	rr := post(t, fake, "data", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rr.Code)
	}
	if got := errorCode(t, rr); got != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %s", got)
	}
	if fake.body != "" {
		t.Error("uploader should not be called")
	}
}

func newLocalUploader(t *testing.T, dir string) *upload.Uploader {
	t.Helper()
	limit := int64(8)
	u, err := upload.New(upload.Options{
		Extensions: []string{"txt"},
		MaxSize:    &limit,
		Storage:    storage.Local{BaseFolder: dir},
	}, upload.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("upload.New: %v", err)
	}
	return u
}

func TestUpload_EndToEndLocal(t *testing.T) {
	dir := t.TempDir()
	u := newLocalUploader(t, dir)

	if rr := post(t, u, "small", "text/plain", "docs/ok.txt"); rr.Code != http.StatusCreated {
		t.Fatalf("small upload: %d %s", rr.Code, rr.Body.String())
	}
	if data, _ := os.ReadFile(filepath.Join(dir, "docs", "ok.txt")); string(data) != "small" {
		t.Errorf("stored %q", data)
	}

	big := filepath.Join(dir, "big.txt")
	rr := post(t, u, "this is far too large", "text/plain", "big.txt")
	if rr.Code != http.StatusForbidden || errorCode(t, rr) != errors.ErrCodeSizeExceeded {
		t.Errorf("large upload: %d %s", rr.Code, rr.Body.String())
	}
	if _, err := os.Stat(big); !os.IsNotExist(err) {
		t.Error("rejected upload should leave no file")
	}

	rr = post(t, u, "fake", "image/jpeg", "spoof.txt")
	if rr.Code != http.StatusForbidden || errorCode(t, rr) != errors.ErrCodeTypeMismatch {
		t.Errorf("spoofed upload: %d %s", rr.Code, rr.Body.String())
	}
}

func TestUpload_FilenameStaysInsideBaseFolder(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "uploads")
	outside := filepath.Join(root, "secret.txt")
	u := newLocalUploader(t, base)

	tests := []struct {
		name        string
		filename    string
		contentType string
	}{
		{"relative escape with rejected type", "../secret.txt", "image/jpeg"},
		{"absolute path with rejected type", base + "/../secret.txt", "image/jpeg"},
		{"relative escape with allowed type", "../secret.txt", "text/plain"},
		{"escape after descent", "a/../../secret.txt", "text/plain"},
		{"absolute path inside base", filepath.Join(base, "x.txt"), "text/plain"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := os.WriteFile(outside, []byte("keep"), 0o600); err != nil {
				t.Fatal(err)
			}

			rr := post(t, u, "evil", tc.contentType, tc.filename)
			if rr.Code != http.StatusBadRequest || errorCode(t, rr) != errors.ErrCodeInvalidInput {
				t.Errorf("got %d %s, want 400 INVALID_INPUT", rr.Code, rr.Body.String())
			}
			if data, err := os.ReadFile(outside); err != nil || string(data) != "keep" {
				t.Errorf("file outside the base folder was touched: %q %v", data, err)
			}
		})
	}
}
