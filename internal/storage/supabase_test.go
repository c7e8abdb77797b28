package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"evidencechain/pkg/types"
)

type fakeSupabase struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer service-key" || r.Header.Get("apikey") != "service-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	key, ok := strings.CutPrefix(r.URL.Path, "/storage/v1/object/evidence/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		switch key {
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
			return
		case "legacy-missing":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))
			return
		case "bad-request":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid"}`))
			return
		}
		content, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(content))
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newSupabaseFixture(t *testing.T) (*fakeSupabase, *SupabaseStorage) {
	t.Helper()
	fake := &fakeSupabase{
		objects: map[string]string{"C1/scene photo.jpg": "jpeg bytes"},
		types:   map[string]string{},
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, NewSupabaseStorage(srv.URL+"/", "service-key", "evidence")
}

func TestSupabaseStorage_Download(t *testing.T) {
	_, storage := newSupabaseFixture(t)

	tests := []struct {
		name     string
		path     string
		want     string
		wantKind types.ErrorKind
	}{
		{name: "existing object", path: "C1/scene photo.jpg", want: "jpeg bytes"},
		{name: "missing object", path: "C1/none", wantKind: types.ErrorKindBlobNotFound},
		{name: "missing object reported as bad request", path: "legacy-missing", wantKind: types.ErrorKindBlobNotFound},
		{name: "other bad request", path: "bad-request", wantKind: types.ErrorKindStorageUnavailable},
		{name: "upstream failure", path: "broken", wantKind: types.ErrorKindStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := storage.Download(context.Background(), tt.path)
			if tt.wantKind != "" {
				if kind := types.KindOf(err); kind != tt.wantKind {
					t.Fatalf("expected kind %s, got %s (%v)", tt.wantKind, kind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("download: %v", err)
			}
			if string(content) != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, content)
			}
		})
	}
}

func TestSupabaseStorage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	storage := NewSupabaseStorage(srv.URL, "service-key", "evidence")
	_, err := storage.Download(context.Background(), "a")
	if !errors.Is(err, types.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}

func TestSupabaseStorage_UploadThenDownload(t *testing.T) {
	fake, storage := newSupabaseFixture(t)

	key, err := storage.UploadFile(context.Background(), "C2/report.txt", strings.NewReader("report body"), "text/plain")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if key != "C2/report.txt" {
		t.Fatalf("unexpected key %s", key)
	}
	if fake.types["C2/report.txt"] != "text/plain" {
		t.Fatalf("content type not forwarded: %q", fake.types["C2/report.txt"])
	}

	content, err := storage.Download(context.Background(), key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(content) != "report body" {
		t.Fatalf("unexpected content %q", content)
	}
}
