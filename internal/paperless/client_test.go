package paperless_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"scanpi/internal/paperless"
	"scanpi/internal/services"
	"scanpi/internal/testsupport"
)

func newClient(t *testing.T, baseURL string) *paperless.Client {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithPaperless(baseURL, "secret-token"))
	client := paperless.NewClient(cfg, nil)
	if client == nil {
		t.Fatal("expected client for configured paperless section")
	}
	return client
}

func TestUploadPostsMultipartDocument(t *testing.T) {
	var (
		gotAuth  string
		gotTitle string
		gotName  string
		gotBody  []byte
		gotPath  string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotTitle = r.FormValue("title")
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			gotName = header.Filename
			gotBody, _ = io.ReadAll(file)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	doc := filepath.Join(dir, "invoice.pdf")
	testsupport.WritePDF(t, doc, "document body")

	client := newClient(t, server.URL)
	if err := client.Upload(context.Background(), doc, "Invoice"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if gotPath != "/api/documents/post_document/" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Token secret-token" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotTitle != "Invoice" {
		t.Fatalf("unexpected title: %q", gotTitle)
	}
	if gotName != "invoice.pdf" {
		t.Fatalf("unexpected filename: %q", gotName)
	}
	if len(gotBody) == 0 {
		t.Fatal("expected document bytes")
	}
}

func TestUploadRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid token", http.StatusForbidden)
	}))
	defer server.Close()

	dir := t.TempDir()
	doc := filepath.Join(dir, "scan.pdf")
	testsupport.WritePDF(t, doc, "body")

	client := newClient(t, server.URL)
	err := client.Upload(context.Background(), doc, "Scan")
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if services.Fatal(err) {
		t.Fatal("upload failures must not be fatal")
	}
}

func TestUploadMissingFile(t *testing.T) {
	client := newClient(t, "http://paperless.invalid")
	err := client.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), "Scan")
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestNewClientNilWithoutBaseURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if client := paperless.NewClient(cfg, nil); client != nil {
		t.Fatal("expected nil client when paperless is not configured")
	}
}

func TestTitleFromFilename(t *testing.T) {
	cases := map[string]string{
		"tax_return-2026.pdf": "Tax Return 2026",
		"scan.pdf":            "Scan",
		"  ":                  "",
		"water bill.pdf":      "Water Bill",
	}
	for input, want := range cases {
		if got := paperless.TitleFromFilename(input); got != want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", input, got, want)
		}
	}
}
