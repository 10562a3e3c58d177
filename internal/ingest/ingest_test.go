package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/logicguard/internal/model"
)

func TestHTMLText_Generic(t *testing.T) {
	page, err := HTMLText(`<html><head><title> My  Post </title><style>p{}</style></head>
<body><nav>Home | About</nav>
<article><h1>Neutron stars</h1><p>They are   very dense.<br>Cores are exotic.</p>
<script>var x = 1;</script><ul><li>First</li><li>Second</li></ul></article>
<footer>Copyright</footer></body></html>`, "https://example.com/post")
	if err != nil {
		t.Fatalf("HTMLText: %v", err)
	}

	want := "Neutron stars\n\nThey are very dense. Cores are exotic.\n\nFirst\n\nSecond"
	if page.Text != want {
		t.Errorf("Unexpected text:\n%q\nwant\n%q", page.Text, want)
	}
	if page.Title != "My Post" {
		t.Errorf("Unexpected title: %q", page.Title)
	}
	if page.Site != "generic" {
		t.Errorf("Expected generic site, got %s", page.Site)
	}
}

func TestHTMLText_Wikipedia(t *testing.T) {
	page, err := HTMLText(`<html><body><div id="siteNotice">Donate</div>
<div class="mw-parser-output"><p>Laksa is a spicy noodle soup.<sup class="reference">[1]</sup></p>
<table class="infobox"><tr><td>Course</td></tr></table>
<div class="reflist">1. Source</div></div></body></html>`, "https://en.wikipedia.org/wiki/Laksa")
	if err != nil {
		t.Fatalf("HTMLText: %v", err)
	}
	if page.Site != "wikipedia" {
		t.Errorf("Expected wikipedia site, got %s", page.Site)
	}
	if page.Text != "Laksa is a spicy noodle soup." {
		t.Errorf("Unexpected text: %q", page.Text)
	}
}

func TestSiteFor(t *testing.T) {
	tests := map[string]string{
		"https://vi.wikipedia.org/wiki/Ph%E1%BB%9F":            "wikipedia",
		"https://thuvienphapluat.vn/van-ban/Luat-Dat-dai.aspx": "legal",
		"https://www.legislation.gov.uk/ukpga/2018/12":         "legal",
		"https://example.com/blog":                             "generic",
	}
	for u, want := range tests {
		if got := siteFor(u).Name(); got != want {
			t.Errorf("siteFor(%q) = %s, want %s", u, got, want)
		}
	}
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`, body)
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXText(t *testing.T) {
	raw := buildDOCX(t, `<w:p><w:r><w:t>Doanh thu tăng </w:t></w:r><w:r><w:t>10%.</w:t></w:r></w:p>`+
		`<w:p></w:p><w:p><w:r><w:t>Revenue</w:t><w:tab/><w:t>fell.</w:t></w:r></w:p>`)

	text, err := DOCXText(raw)
	if err != nil {
		t.Fatalf("DOCXText: %v", err)
	}
	if want := "Doanh thu tăng 10%.\n\nRevenue fell."; text != want {
		t.Errorf("Unexpected text %q, want %q", text, want)
	}

	if _, err := DOCXText([]byte("not a zip")); err == nil {
		t.Error("Expected an error for a non-zip file")
	}
}

func TestPDFText_Invalid(t *testing.T) {
	if _, err := PDFText([]byte("%PDF-garbage")); err == nil {
		t.Error("Expected an error for a broken PDF")
	}
}

func TestRegistry_Files(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "essay.txt")
	if err := os.WriteFile(txt, []byte("Line one.\n\nLine two."), 0o644); err != nil {
		t.Fatal(err)
	}
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte("<html><head><title>T</title></head><body><p>Hello.</p></body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := filepath.Join(dir, "report.docx")
	if err := os.WriteFile(doc, buildDOCX(t, `<w:p><w:r><w:t>Word text.</w:t></w:r></w:p>`), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(testConfig())
	ctx := context.Background()

	src, err := reg.Load(ctx, txt)
	if err != nil {
		t.Fatalf("load text: %v", err)
	}
	if src.Kind != KindText || src.Text != "Line one.\n\nLine two." || src.Title != "essay" {
		t.Errorf("Unexpected text source: %+v", src)
	}

	src, err = reg.Load(ctx, page)
	if err != nil {
		t.Fatalf("load html: %v", err)
	}
	if src.Kind != KindHTML || src.Text != "Hello." || src.Title != "T" {
		t.Errorf("Unexpected html source: %+v", src)
	}

	src, err = reg.Load(ctx, doc)
	if err != nil {
		t.Fatalf("load docx: %v", err)
	}
	if src.Kind != KindDOCX || src.Text != "Word text." {
		t.Errorf("Unexpected docx source: %+v", src)
	}

	if _, err := reg.Load(ctx, empty); !errors.Is(err, model.ErrMalformedInput) {
		t.Errorf("Expected malformed input for an empty file, got %v", err)
	}
	if _, err := reg.Load(ctx, filepath.Join(dir, "missing.txt")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for a missing file, got %v", err)
	}
}

func TestRegistry_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = fmt.Fprint(w, "Plain notes.")
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprint(w, "<html><body><main><p>Fetched page.</p></main></body></html>")
		}
	}))
	defer server.Close()

	reg := NewRegistry(testConfig())

	src, err := reg.Load(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("load url: %v", err)
	}
	if src.Kind != KindHTML || src.Text != "Fetched page." {
		t.Errorf("Unexpected source: %+v", src)
	}
	if !strings.HasPrefix(src.FinalURL, server.URL) {
		t.Errorf("Unexpected final URL: %s", src.FinalURL)
	}

	src, err = reg.Load(context.Background(), server.URL+"/notes.txt")
	if err != nil {
		t.Fatalf("load text url: %v", err)
	}
	if src.Kind != KindText || src.Text != "Plain notes." {
		t.Errorf("Unexpected source: %+v", src)
	}
}

func TestStdinLoader(t *testing.T) {
	l := NewStdinLoader(strings.NewReader("From a pipe."), 100)
	if !l.CanHandle("-") || l.CanHandle("file.txt") {
		t.Error("StdinLoader should only handle -")
	}
	src, err := l.Load(context.Background(), "-")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Text != "From a pipe." || src.Name != "stdin" {
		t.Errorf("Unexpected source: %+v", src)
	}

	big := NewStdinLoader(strings.NewReader(strings.Repeat("x", 101)), 100)
	if _, err := big.Load(context.Background(), "-"); err == nil {
		t.Error("Expected an error for input over the limit")
	}
}
