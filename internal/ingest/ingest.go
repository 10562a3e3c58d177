// Package ingest loads documents from files, URLs and stdin and turns them
// into the plain text the analysis runs on. Offsets in every report refer
// to the text returned here.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/logicguard/internal/model"
)

// ErrUnsupported is returned when no loader handles a source
var ErrUnsupported = errors.New("unsupported source")

// Source is a loaded document
type Source struct {
	Name     string // File path, final URL or "stdin"
	Kind     string // text, html, pdf or docx
	Title    string
	Text     string
	FinalURL string // Set for URL sources after redirects
}

// Loader loads one kind of source
type Loader interface {
	// CanHandle reports whether the loader understands source
	CanHandle(source string) bool

	// Load reads source and extracts its text
	Load(ctx context.Context, source string) (*Source, error)
}

// Registry tries loaders in order
type Registry struct {
	loaders []Loader
}

// NewRegistry creates a registry with the URL, stdin and file loaders
func NewRegistry(cfg model.IngestConfig) *Registry {
	r := &Registry{}
	r.Register(NewURLLoader(cfg))
	r.Register(NewStdinLoader(os.Stdin, cfg.MaxBytes))
	r.Register(NewFileLoader(cfg.MaxBytes))
	return r
}

// Register appends a loader
func (r *Registry) Register(l Loader) {
	r.loaders = append(r.loaders, l)
}

// Load finds the first loader for source and runs it
func (r *Registry) Load(ctx context.Context, source string) (*Source, error) {
	source = strings.TrimSpace(source)
	for _, l := range r.loaders {
		if l.CanHandle(source) {
			src, err := l.Load(ctx, source)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(src.Text) == "" {
				return nil, &model.MalformedInputError{Reason: fmt.Sprintf("%s has no text", src.Name)}
			}
			return src, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, source)
}

// StdinLoader reads "-" from a reader
type StdinLoader struct {
	in       io.Reader
	maxBytes int64
}

// NewStdinLoader creates a loader for "-"
func NewStdinLoader(in io.Reader, maxBytes int64) *StdinLoader {
	return &StdinLoader{in: in, maxBytes: maxBytes}
}

// CanHandle accepts "-"
func (l *StdinLoader) CanHandle(source string) bool {
	return source == "-"
}

// Load reads the whole input as plain text
func (l *StdinLoader) Load(_ context.Context, _ string) (*Source, error) {
	data, err := readLimited(l.in, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return &Source{Name: "stdin", Kind: KindText, Text: string(data)}, nil
}

// Source kinds
const (
	KindText = "text"
	KindHTML = "html"
	KindPDF  = "pdf"
	KindDOCX = "docx"
)

// FileLoader reads local files, choosing the parser by extension
type FileLoader struct {
	maxBytes int64
}

// NewFileLoader creates a loader for local paths
func NewFileLoader(maxBytes int64) *FileLoader {
	return &FileLoader{maxBytes: maxBytes}
}

// CanHandle accepts any existing regular file
func (l *FileLoader) CanHandle(source string) bool {
	info, err := os.Stat(source)
	return err == nil && info.Mode().IsRegular()
}

// Load reads and parses the file
func (l *FileLoader) Load(_ context.Context, path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	raw, err := readLimited(f, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	src := &Source{Name: path, Title: title}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		src.Kind = KindPDF
		src.Text, err = PDFText(raw)
	case ".docx":
		src.Kind = KindDOCX
		src.Text, err = DOCXText(raw)
	case ".html", ".htm", ".xhtml":
		src.Kind = KindHTML
		var page *Page
		page, err = HTMLText(string(raw), "")
		if page != nil {
			src.Text = page.Text
			if page.Title != "" {
				src.Title = page.Title
			}
		}
	default:
		src.Kind = KindText
		src.Text = string(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// readLimited reads r, failing when it holds more than max bytes. A max
// of zero or less means unlimited.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("input exceeds %d bytes", max)
	}
	return data, nil
}

// paragraphs joins non-empty blocks with blank lines, collapsing runs of
// whitespace inside each block
func paragraphs(blocks []string) string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.Join(strings.Fields(b), " ")
		if b != "" {
			out = append(out, b)
		}
	}
	return strings.Join(out, "\n\n")
}
