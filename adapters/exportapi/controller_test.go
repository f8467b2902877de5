package exportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"

	"github.com/goliatone/go-site-export/export"
	"github.com/klauspost/compress/zip"
)

type fakeRequest struct {
	ctx    context.Context
	method string
	path   string
}

func (r fakeRequest) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}
func (r fakeRequest) Method() string            { return r.method }
func (r fakeRequest) Path() string              { return r.path }
func (r fakeRequest) Header(name string) string { return "" }

type fakeResponse struct {
	headers   map[string]string
	status    int
	body      bytes.Buffer
	streaming bool
}

func newFakeResponse(streaming bool) *fakeResponse {
	return &fakeResponse{headers: map[string]string{}, streaming: streaming}
}

func (r *fakeResponse) SetHeader(name, value string) { r.headers[name] = value }
func (r *fakeResponse) DelHeader(name string)        { delete(r.headers, name) }
func (r *fakeResponse) WriteHeader(status int)       { r.status = status }
func (r *fakeResponse) Write(data []byte) (int, error) {
	return r.body.Write(data)
}

func (r *fakeResponse) WriteJSON(status int, payload any) error {
	r.headers["Content-Type"] = "application/json"
	r.status = status
	return json.NewEncoder(&r.body).Encode(payload)
}

func (r *fakeResponse) Writer() (io.Writer, bool) {
	if !r.streaming {
		return nil, false
	}
	return &r.body, true
}

type staticActor struct {
	actor export.Actor
	err   error
}

func (p staticActor) FromContext(ctx context.Context) (export.Actor, error) {
	return p.actor, p.err
}

var admin = export.Actor{ID: "admin", Capabilities: []string{export.DefaultCapability}}

func newTestController(t *testing.T, provider export.ActorProvider) (*Controller, string) {
	t.Helper()
	dir := t.TempDir()
	exporter := export.NewExporter(export.NewMemorySource(
		export.Template{Slug: "index", Type: export.TypeTemplate, Content: `<!-- wp:template-part {"slug":"header","theme":"tt1"} /-->`},
		export.Template{Slug: "header", Type: export.TypeTemplatePart, Content: `<!-- wp:site-title /-->`},
	))
	exporter.TempDir = dir
	ctrl := NewController(Config{
		Exporter:      exporter,
		ActorProvider: provider,
		IDGenerator:   func() string { return "exp-1" },
	})
	return ctrl, dir
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected temp dir empty, found %d files", len(files))
	}
}

func TestController_ExportStreamsArchive(t *testing.T) {
	ctrl, dir := newTestController(t, staticActor{actor: admin})
	res := newFakeResponse(true)

	ctrl.Serve(fakeRequest{method: http.MethodGet, path: DefaultBasePath + "/export"}, res)

	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.status, res.body.String())
	}
	if res.headers["Content-Type"] != "application/zip" {
		t.Fatalf("unexpected content type %q", res.headers["Content-Type"])
	}
	if res.headers["Content-Disposition"] != "attachment; filename=edit-site-export.zip" {
		t.Fatalf("unexpected disposition %q", res.headers["Content-Disposition"])
	}
	if res.headers["X-Export-Id"] != "exp-1" {
		t.Fatalf("unexpected export id %q", res.headers["X-Export-Id"])
	}
	if res.headers["Content-Length"] != strconv.Itoa(res.body.Len()) {
		t.Fatalf("content length %q does not match body %d", res.headers["Content-Length"], res.body.Len())
	}

	zr, err := zip.NewReader(bytes.NewReader(res.body.Bytes()), int64(res.body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name != "theme/block-templates/index.html" {
			continue
		}
		found = true
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry: %v", err)
		}
		data, _ := io.ReadAll(rc)
		_ = rc.Close()
		if string(data) != `<!-- wp:template-part {"slug":"header"} /-->` {
			t.Fatalf("unexpected template content %q", data)
		}
	}
	if !found {
		t.Fatalf("expected index template in archive")
	}
	assertNoTempFiles(t, dir)
}

func TestController_ExportBuffersWithoutStream(t *testing.T) {
	ctrl, dir := newTestController(t, staticActor{actor: admin})
	res := newFakeResponse(false)

	ctrl.Serve(fakeRequest{method: http.MethodGet, path: DefaultBasePath + "/export/"}, res)

	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	if res.headers["Content-Length"] != strconv.Itoa(res.body.Len()) {
		t.Fatalf("content length %q does not match body %d", res.headers["Content-Length"], res.body.Len())
	}
	assertNoTempFiles(t, dir)
}

func TestController_BufferLimitExceeded(t *testing.T) {
	ctrl, dir := newTestController(t, staticActor{actor: admin})
	ctrl.maxBufferBytes = 1
	res := newFakeResponse(false)

	ctrl.Serve(fakeRequest{method: http.MethodGet, path: ctrl.ExportPath()}, res)

	if res.status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.status)
	}
	if _, ok := res.headers["Content-Disposition"]; ok {
		t.Fatalf("expected no download headers on error")
	}
	assertNoTempFiles(t, dir)
}

func TestController_Forbidden(t *testing.T) {
	ctrl, dir := newTestController(t, staticActor{actor: export.Actor{ID: "author", Capabilities: []string{"edit_posts"}}})
	res := newFakeResponse(true)

	ctrl.Serve(fakeRequest{method: http.MethodGet, path: ctrl.ExportPath()}, res)

	if res.status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.status)
	}
	var payload ErrorResponse
	if err := json.Unmarshal(res.body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Message == "" {
		t.Fatalf("expected error message")
	}
	assertNoTempFiles(t, dir)
}

func TestController_ActorResolutionFailure(t *testing.T) {
	ctrl, _ := newTestController(t, staticActor{err: errors.New("no session")})
	res := newFakeResponse(true)

	ctrl.Serve(fakeRequest{method: http.MethodGet, path: ctrl.ExportPath()}, res)

	if res.status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.status)
	}
}

func TestController_ZipUnsupported(t *testing.T) {
	ctrl, dir := newTestController(t, staticActor{actor: admin})
	ctrl.exporter.NewArchive = nil
	res := newFakeResponse(true)

	ctrl.Serve(fakeRequest{method: http.MethodGet, path: ctrl.ExportPath()}, res)

	if res.status != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", res.status)
	}
	var payload ErrorResponse
	if err := json.Unmarshal(res.body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != "not_implemented" {
		t.Fatalf("expected not_implemented code, got %q", payload.Error.Code)
	}
	assertNoTempFiles(t, dir)
}

func TestController_RoutingErrors(t *testing.T) {
	ctrl, _ := newTestController(t, staticActor{actor: admin})

	res := newFakeResponse(true)
	ctrl.Serve(fakeRequest{method: http.MethodPost, path: ctrl.ExportPath()}, res)
	if res.status != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.status)
	}
	if res.headers["Allow"] != http.MethodGet {
		t.Fatalf("expected Allow GET, got %q", res.headers["Allow"])
	}

	res = newFakeResponse(true)
	ctrl.Serve(fakeRequest{method: http.MethodGet, path: DefaultBasePath + "/templates"}, res)
	if res.status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.status)
	}
}

func TestController_CustomBasePath(t *testing.T) {
	ctrl := NewController(Config{BasePath: "/api/site/"})
	if ctrl.BasePath() != "/api/site" {
		t.Fatalf("unexpected base path %q", ctrl.BasePath())
	}
	if ctrl.ExportPath() != "/api/site/export" {
		t.Fatalf("unexpected export path %q", ctrl.ExportPath())
	}
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		kind export.ErrorKind
		want int
	}{
		{export.KindValidation, http.StatusBadRequest},
		{export.KindAuthz, http.StatusForbidden},
		{export.KindNotFound, http.StatusNotFound},
		{export.KindNotImpl, http.StatusNotImplemented},
		{export.KindCanceled, http.StatusConflict},
		{export.KindTimeout, http.StatusRequestTimeout},
		{export.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ge := export.AsGoError(export.NewError(tc.kind, "boom", nil))
		if got := statusForError(ge); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
}
